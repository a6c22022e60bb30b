// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML settings file (~/.storm/config.toml)
//   - PromptStore: editable LLM prompts (~/.storm/prompts)
//   - LoadSynonyms / WatchSynonyms: YAML company synonym table with live reload
package file

// Package domain defines the core business entities for Storm retrieval.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Company: A canonical company in the registry
//   - AnalysisReport: One ingested disclosure report owned by a company
//   - Fragment: An atomic retrievable unit of report content
//   - QueryAnalysis: Structured intent derived from a free-text question
//   - RankedFragment: A scored, provenance-tagged search result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

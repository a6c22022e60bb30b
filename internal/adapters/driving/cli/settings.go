package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the fragment store, AI providers and search defaults.

Secrets can also come from the environment (OPENAI_API_KEY, SERPER_API_KEY,
RERANKER_API_KEY, DATABASE_URL) or a .env file; those are never written
to the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Configure the provider used to embed queries and fragments.
The model must produce vectors of the dimension stored with the fragments.`,
	RunE: runSettingsEmbedding,
}

var settingsAnalyzerCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Configure the query analyzer",
	Long: `Configure the LLM that classifies intent and extracts company names.
Without one every query is treated as a single-company factual question.`,
	RunE: runSettingsAnalyzer,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that configured providers are reachable",
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsEmbeddingCmd, settingsAnalyzerCmd, settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", s.Store.Driver)
	switch s.Store.Driver {
	case domain.StoreDriverPostgres:
		cmd.Printf("  DSN: %s\n", maskSecret(s.Store.DSN))
	case domain.StoreDriverSQLite:
		cmd.Printf("  Data dir: %s\n", orDefault(s.Store.DataDir))
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, s.Embedding.Provider, s.Embedding.Model, s.Embedding.BaseURL, s.Embedding.APIKey,
		s.Embedding.IsConfigured())
	if s.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", s.Embedding.Dimensions)
	}
	cmd.Println()

	cmd.Println("[Analyzer]")
	printProvider(cmd, s.Analyzer.Provider, s.Analyzer.Model, s.Analyzer.BaseURL, s.Analyzer.APIKey,
		s.Analyzer.IsConfigured())
	cmd.Println()

	cmd.Println("[Reranker]")
	if s.Reranker.Enabled {
		cmd.Printf("  Enabled: yes\n  Model: %s\n  Base URL: %s\n", s.Reranker.Model, orDefault(s.Reranker.BaseURL))
	} else {
		cmd.Println("  Enabled: no")
	}
	cmd.Println()

	cmd.Println("[Web Search]")
	cmd.Printf("  Provider: %s\n", s.WebSearch.Provider)
	if s.WebSearch.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.WebSearch.APIKey))
	} else {
		cmd.Println("  API Key: (not set)")
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Top K: %d\n", s.Search.TopK)
	cmd.Printf("  Hybrid ratio: %d internal / %d external\n", s.Search.InternalK, s.Search.ExternalK)
	cmd.Printf("  Fuzzy threshold: %g\n", s.Search.FuzzyThreshold)
	if s.Search.SynonymsFile != "" {
		cmd.Printf("  Synonyms: %s\n", s.Search.SynonymsFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'storm settings embedding' to configure a provider.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if !configured && p == "" {
		cmd.Println("  Status: not configured")
		return
	}
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Println("  API Key: (not set)")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider, model, apiKey, err := promptProvider(cmd, reader, "Embedding", domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if configValidator != nil {
		cmd.Print("Validating configuration... ")
		s, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to reload settings: %w", err)
		}
		if err := configValidator.ValidateEmbedding(&s.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsAnalyzer(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider, model, apiKey, err := promptProvider(cmd, reader, "Analyzer", domain.DefaultAnalyzerModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetAnalyzerProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure analyzer: %w", err)
	}

	if configValidator != nil {
		cmd.Print("Validating configuration... ")
		s, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to reload settings: %w", err)
		}
		if err := configValidator.ValidateAnalyzer(&s.Analyzer); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			cmd.Println("Searches will use the default analysis until the analyzer is reachable.")
			return nil
		}
		cmd.Println("OK")
	}

	cmd.Printf("Analyzer configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// promptProvider asks for a provider, a model and, when needed, an API key.
func promptProvider(cmd *cobra.Command, reader *bufio.Reader, label string,
	defaults map[domain.AIProvider]string) (domain.AIProvider, string, string, error) {
	cmd.Printf("Select %s Provider\n", label)
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use OPENAI_API_KEY): ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if configValidator == nil {
		return errors.New("provider validation not available")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	failed := 0
	check := func(name string, configured bool, fn func() error) {
		if !configured {
			cmd.Printf("  %-10s skipped (not configured)\n", name)
			return
		}
		if err := fn(); err != nil {
			failed++
			cmd.Printf("  %-10s FAILED: %v\n", name, err)
			return
		}
		cmd.Printf("  %-10s OK\n", name)
	}

	cmd.Println("Checking providers...")
	check("embedding", s.Embedding.IsConfigured(), func() error { return configValidator.ValidateEmbedding(&s.Embedding) })
	check("analyzer", s.Analyzer.IsConfigured(), func() error { return configValidator.ValidateAnalyzer(&s.Analyzer) })
	check("reranker", s.Reranker.IsConfigured(), func() error { return configValidator.ValidateReranker(&s.Reranker) })

	if failed > 0 {
		return fmt.Errorf("%d provider(s) unreachable", failed)
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise a line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskSecret hides the password of a connection URL.
func maskSecret(dsn string) string {
	if dsn == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return maskAPIKey(dsn)
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":****@" + host
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// Package cli provides the storm command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// annotationSkipInit marks commands that run without services.
const annotationSkipInit = "storm/skip-init"

var (
	version    = "dev"
	verbose    bool
	configPath string
)

// Services are the driving ports the commands call.
type Services struct {
	Search    driving.SearchService
	Retriever driving.Retriever
	Companies driving.CompanyService
	Reports   driving.ReportService
	Ingest    driving.IngestService
	Settings  driving.SettingsService
	Validator driven.AIConfigValidator

	// StartWatchers starts background reloaders for long-running
	// commands and returns a function that stops them. Optional.
	StartWatchers func(ctx context.Context) (stop func())

	// Close releases everything the services hold. Optional.
	Close func()
}

// InitConfig carries the persistent flags to an Initializer.
type InitConfig struct {
	ConfigPath string
	Verbose    bool
}

// Initializer builds the services after flags are parsed. It may return
// partially populated Services with an error; commands that need a
// missing service report that error.
type Initializer func(ctx context.Context, cfg InitConfig) (*Services, error)

var (
	searchService   driving.SearchService
	retriever       driving.Retriever
	companyService  driving.CompanyService
	reportService   driving.ReportService
	ingestService   driving.IngestService
	settingsService driving.SettingsService
	configValidator driven.AIConfigValidator
	startWatchers   func(ctx context.Context) func()
	closeServices   func()

	initializer Initializer
	initialised bool
	initErr     error
)

var rootCmd = &cobra.Command{
	Use:   "storm",
	Short: "Search Korean corporate disclosure reports",
	Long: `storm answers questions about companies from their disclosure reports.

Reports are stored as ordered fragments (text, tables and merged legends).
A search resolves company mentions, embeds the question, retrieves the
nearest text fragments, attaches the tables that follow them, reranks by
company relevance and tags every result with its source report.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.storm/config.toml)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetInitializer registers the function that builds the services.
func SetInitializer(fn Initializer) {
	initializer = fn
	initialised = false
	initErr = nil
}

// SetServices installs services directly.
func SetServices(s *Services) {
	searchService = s.Search
	retriever = s.Retriever
	companyService = s.Companies
	reportService = s.Reports
	ingestService = s.Ingest
	settingsService = s.Settings
	configValidator = s.Validator
	startWatchers = s.StartWatchers
	closeServices = s.Close
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("reading .env: %v", err)
	}

	if cmd.Annotations[annotationSkipInit] == "true" || initializer == nil || initialised {
		return nil
	}
	initialised = true

	svcs, err := initializer(cmd.Context(), InitConfig{ConfigPath: configPath, Verbose: verbose})
	if svcs != nil {
		SetServices(svcs)
	}
	if err != nil {
		initErr = err
		logger.Debug("initialisation incomplete: %v", err)
	}
	return nil
}

func shutdown() {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
}

// notConfigured reports a missing service, with the initialisation
// error when there was one.
func notConfigured(name string) error {
	if initErr != nil {
		return fmt.Errorf("%s service not configured: %w", name, initErr)
	}
	return fmt.Errorf("%s service not configured", name)
}

// runWatchers starts the background reloaders when the services provide them.
func runWatchers(ctx context.Context) func() {
	if startWatchers == nil {
		return func() {}
	}
	return startWatchers(ctx)
}

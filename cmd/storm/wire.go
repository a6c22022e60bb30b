package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/leh60245/enterprise-storm/internal/adapters/driven/ai"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/config/file"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/storage/postgres"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/storage/sqlite"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/cli"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/core/services"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// fragmentBackend is a store the services both read and write.
type fragmentBackend interface {
	driven.FragmentStore
	driven.FragmentWriter
}

// initialise builds the services from the config file. Failures past the
// settings stage return what could be built so that settings commands
// keep working against a broken configuration.
func initialise(ctx context.Context, cfg cli.InitConfig) (*cli.Services, error) {
	configStore, err := openConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(configStore)
	svcs := &cli.Services{
		Settings:  settingsService,
		Validator: ai.NewConfigValidator(),
	}

	settings, err := settingsService.Get()
	if err != nil {
		return svcs, fmt.Errorf("load settings: %w", err)
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return svcs, fmt.Errorf("open store: %w", err)
	}

	promptDir := ""
	if cfg.ConfigPath != "" {
		promptDir = filepath.Join(filepath.Dir(cfg.ConfigPath), "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		_ = store.Close()
		return svcs, err
	}

	caps, aiErr := ai.Initialise(settings, prompts)
	if aiErr != nil {
		caps = &ai.InitResult{}
	}
	for _, w := range caps.Warnings {
		logger.Warn("%s", w)
	}

	wired := wire(ctx, settings, store, caps)
	wired.Settings = svcs.Settings
	wired.Validator = svcs.Validator
	if aiErr != nil {
		// Without embeddings only the store-backed commands can run.
		wired.Search = nil
		wired.Retriever = nil
	}
	return wired, aiErr
}

func openConfig(path string) (*file.ConfigStore, error) {
	if path != "" {
		return file.NewConfigStoreAt(path)
	}
	return file.NewConfigStore("")
}

// openStore opens the backend named by store.driver.
func openStore(ctx context.Context, settings *domain.Settings) (fragmentBackend, error) {
	switch settings.Store.Driver {
	case domain.StoreDriverPostgres:
		if settings.Store.DSN == "" {
			return nil, errors.New("postgres needs store.dsn or " + services.EnvDatabaseURL)
		}
		cfg := postgres.DefaultConfig(settings.Store.DSN)
		if dims := embeddingDimensions(&settings.Embedding); dims > 0 {
			cfg.Dimensions = dims
		}
		store, err := postgres.NewStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.StoreDriverSQLite, "":
		store, err := sqlite.NewStore(settings.Store.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", settings.Store.Driver)
	}
}

// embeddingDimensions is the configured vector size, or the known size of
// the configured model.
func embeddingDimensions(e *domain.EmbeddingSettings) int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return domain.EmbeddingDimensions()[e.Model]
}

// wire assembles the core services over store and the AI capabilities.
func wire(ctx context.Context, settings *domain.Settings, store fragmentBackend, caps *ai.InitResult) *cli.Services {
	synonyms := services.DefaultSynonyms()
	if path := settings.Search.SynonymsFile; path != "" {
		merged, err := file.LoadSynonyms(path, synonyms)
		if err != nil {
			logger.Warn("Using built-in synonyms: %v", err)
		} else {
			synonyms = merged
		}
	}
	resolver := services.NewEntityResolver(synonyms, nil)

	search := services.NewSearchService(store, caps.Embedding, caps.Analyzer, resolver,
		services.WithReranker(caps.Reranker))
	if _, err := search.RefreshCompanies(ctx); err != nil {
		logger.Warn("Company roster not loaded: %v", err)
	}

	internal := services.NewInternalRetriever(search,
		services.WithDefaultTopK(settings.Search.TopK),
		services.WithMinScore(settings.Search.MinScore))

	closers := []func(){caps.Close}
	var retriever driving.Retriever = internal
	if caps.WebSearch != nil {
		hybrid, err := services.NewHybridRetriever(internal, caps.WebSearch,
			services.WithRatio(settings.Search.InternalK, settings.Search.ExternalK))
		if err != nil {
			logger.Warn("Web search disabled: %v", err)
		} else {
			retriever = hybrid
			closers = append(closers, func() { _ = hybrid.Close() })
		}
	}
	closers = append(closers, func() { _ = store.Close() })

	svcs := &cli.Services{
		Search:    search,
		Retriever: retriever,
		Companies: services.NewCompanyService(store, resolver,
			services.WithFuzzyThreshold(settings.Search.FuzzyThreshold)),
		Reports: services.NewReportService(store),
		Ingest:  services.NewIngestService(store, caps.Embedding),
		Close: func() {
			for _, c := range closers {
				c()
			}
		},
	}

	if path := settings.Search.SynonymsFile; path != "" {
		svcs.StartWatchers = func(ctx context.Context) func() {
			w, err := file.WatchSynonyms(ctx, path, services.DefaultSynonyms(), resolver.UpdateSynonyms)
			if err != nil {
				logger.Warn("Not watching %s: %v", path, err)
				return func() {}
			}
			return func() { _ = w.Close() }
		}
	}
	return svcs
}

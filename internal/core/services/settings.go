package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver      = "store.driver"
	keyStoreDSN         = "store.dsn"
	keyStoreDataDir     = "store.data_dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyAnalyzerProvider = "analyzer.provider"
	keyAnalyzerModel    = "analyzer.model"
	keyAnalyzerBaseURL  = "analyzer.base_url"
	keyAnalyzerAPIKey   = "analyzer.api_key"
	keyRerankEnabled    = "reranker.enabled"
	keyRerankBaseURL    = "reranker.base_url"
	keyRerankModel      = "reranker.model"
	keyRerankAPIKey     = "reranker.api_key"
	keyWebProvider      = "websearch.provider"
	keyWebAPIKey        = "websearch.api_key"
	keyWebRate          = "websearch.rate_per_second"
	keySearchTopK       = "search.top_k"
	keySearchMinScore   = "search.min_score"
	keySearchInternalK  = "search.internal_k"
	keySearchExternalK  = "search.external_k"
	keySearchFuzzy      = "search.fuzzy_threshold"
	keySearchSynonyms   = "search.synonyms_file"
	keyCacheEnabled     = "cache.enabled"
	keyCacheDir         = "cache.dir"
	keyCacheTTL         = "cache.ttl_hours"
)

// Environment variables that override stored secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvSerperAPIKey   = "SERPER_API_KEY"
	EnvRerankerAPIKey = "RERANKER_API_KEY"
	EnvDatabaseURL    = "DATABASE_URL"
)

// defaultOllamaURL is the base URL assumed for local providers.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings. Secrets set in the
// environment take precedence over stored values.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.load()
	s.applyEnv(settings)
	return settings, nil
}

// load reads stored settings without environment overrides.
func (s *SettingsService) load() *domain.Settings {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Store: domain.StoreSettings{
			Driver:  s.getDriver(d.Store.Driver),
			DSN:     s.configStore.GetString(keyStoreDSN),
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		Analyzer: domain.AnalyzerSettings{
			Provider: s.getProvider(keyAnalyzerProvider, d.Analyzer.Provider),
			Model:    s.configStore.GetString(keyAnalyzerModel),
			BaseURL:  s.configStore.GetString(keyAnalyzerBaseURL),
			APIKey:   s.configStore.GetString(keyAnalyzerAPIKey),
		},
		Reranker: domain.RerankerSettings{
			Enabled: s.configStore.GetBool(keyRerankEnabled),
			BaseURL: s.configStore.GetString(keyRerankBaseURL),
			Model:   s.getString(keyRerankModel, d.Reranker.Model),
			APIKey:  s.configStore.GetString(keyRerankAPIKey),
		},
		WebSearch: domain.WebSearchSettings{
			Provider:      s.getString(keyWebProvider, d.WebSearch.Provider),
			APIKey:        s.configStore.GetString(keyWebAPIKey),
			RatePerSecond: s.getFloat(keyWebRate, d.WebSearch.RatePerSecond),
		},
		Search: domain.SearchSettings{
			TopK:           s.getInt(keySearchTopK, d.Search.TopK),
			MinScore:       s.getFloat(keySearchMinScore, d.Search.MinScore),
			InternalK:      s.getInt(keySearchInternalK, d.Search.InternalK),
			ExternalK:      s.getInt(keySearchExternalK, d.Search.ExternalK),
			FuzzyThreshold: s.getFloat(keySearchFuzzy, d.Search.FuzzyThreshold),
			SynonymsFile:   s.configStore.GetString(keySearchSynonyms),
		},
		Cache: domain.CacheSettings{
			Enabled:  s.configStore.GetBool(keyCacheEnabled),
			Dir:      s.configStore.GetString(keyCacheDir),
			TTLHours: s.getInt(keyCacheTTL, d.Cache.TTLHours),
		},
	}

	s.applyModelDefaults(settings)
	return settings
}

// applyModelDefaults fills in provider-specific models and URLs.
func (s *SettingsService) applyModelDefaults(settings *domain.Settings) {
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	}

	if settings.Analyzer.Model == "" {
		settings.Analyzer.Model = domain.DefaultAnalyzerModels()[settings.Analyzer.Provider]
	}
	if settings.Analyzer.Provider == domain.AIProviderOllama && settings.Analyzer.BaseURL == "" {
		settings.Analyzer.BaseURL = defaultOllamaURL
	}
}

// applyEnv overlays secrets from the environment.
func (s *SettingsService) applyEnv(settings *domain.Settings) {
	if key, ok := s.env(EnvOpenAIAPIKey); ok {
		if settings.Embedding.Provider == domain.AIProviderOpenAI {
			settings.Embedding.APIKey = key
		}
		if settings.Analyzer.Provider == domain.AIProviderOpenAI {
			settings.Analyzer.APIKey = key
		}
	}
	if key, ok := s.env(EnvSerperAPIKey); ok {
		settings.WebSearch.APIKey = key
	}
	if key, ok := s.env(EnvRerankerAPIKey); ok {
		settings.Reranker.APIKey = key
	}
	if dsn, ok := s.env(EnvDatabaseURL); ok {
		settings.Store.DSN = dsn
		if _, set := s.configStore.Get(keyStoreDriver); !set {
			settings.Store.Driver = domain.StoreDriverPostgres
		}
	}
}

func (s *SettingsService) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Save persists application settings. Empty secrets are not written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStoreDriver, string(settings.Store.Driver)},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyAnalyzerProvider, settings.Analyzer.Provider.String()},
		{keyAnalyzerModel, settings.Analyzer.Model},
		{keyAnalyzerBaseURL, settings.Analyzer.BaseURL},
		{keyRerankEnabled, settings.Reranker.Enabled},
		{keyRerankBaseURL, settings.Reranker.BaseURL},
		{keyRerankModel, settings.Reranker.Model},
		{keyWebProvider, settings.WebSearch.Provider},
		{keyWebRate, settings.WebSearch.RatePerSecond},
		{keySearchTopK, settings.Search.TopK},
		{keySearchMinScore, settings.Search.MinScore},
		{keySearchInternalK, settings.Search.InternalK},
		{keySearchExternalK, settings.Search.ExternalK},
		{keySearchFuzzy, settings.Search.FuzzyThreshold},
		{keySearchSynonyms, settings.Search.SynonymsFile},
		{keyCacheEnabled, settings.Cache.Enabled},
		{keyCacheDir, settings.Cache.Dir},
		{keyCacheTTL, settings.Cache.TTLHours},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
	}{
		{keyStoreDSN, settings.Store.DSN},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyAnalyzerAPIKey, settings.Analyzer.APIKey},
		{keyRerankAPIKey, settings.Reranker.APIKey},
		{keyWebAPIKey, settings.WebSearch.APIKey},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.load()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	if provider == domain.AIProviderOllama {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]

	return s.Save(settings)
}

// SetAnalyzerProvider configures the query analyzer provider.
func (s *SettingsService) SetAnalyzerProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid analyzer provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.load()
	settings.Analyzer.Provider = provider
	settings.Analyzer.Model = model
	if model == "" {
		settings.Analyzer.Model = domain.DefaultAnalyzerModels()[provider]
	}
	settings.Analyzer.BaseURL = ""
	if provider == domain.AIProviderOllama {
		settings.Analyzer.BaseURL = defaultOllamaURL
	}
	settings.Analyzer.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the settings can drive a search.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Store.Driver.IsValid() {
		return fmt.Errorf("invalid store driver: %s", settings.Store.Driver)
	}
	if !settings.Store.IsConfigured() {
		return fmt.Errorf("store driver %q requires a DSN (set %s or store.dsn)", settings.Store.Driver, EnvDatabaseURL)
	}
	if !settings.Embedding.IsConfigured() {
		return errors.New("embedding provider must be configured")
	}
	if settings.Search.TopK <= 0 {
		return domain.NewValidationError("search.top_k", "must be positive")
	}
	if settings.Search.InternalK < 0 || settings.Search.ExternalK < 0 {
		return domain.NewValidationError("search.internal_k/external_k", "must not be negative")
	}
	if settings.Search.FuzzyThreshold < 0 || settings.Search.FuzzyThreshold > 100 {
		return domain.NewValidationError("search.fuzzy_threshold", "must be between 0 and 100")
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (s *SettingsService) getDriver(def domain.StoreDriver) domain.StoreDriver {
	d := domain.StoreDriver(s.configStore.GetString(keyStoreDriver))
	if d.IsValid() {
		return d
	}
	return def
}

func (s *SettingsService) getProvider(key string, def domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(key))
	if p.IsValid() {
		return p
	}
	return def
}

func (s *SettingsService) getString(key, def string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return def
}

func (s *SettingsService) getFloat(key string, def float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	if v := s.configStore.GetFloat(key); v > 0 {
		return v
	}
	return def
}

// LoadSettings reads settings from a config store with environment
// overrides applied.
func LoadSettings(configStore driven.ConfigStore) (*domain.Settings, error) {
	return NewSettingsService(configStore).Get()
}

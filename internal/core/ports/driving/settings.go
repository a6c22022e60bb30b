package driving

import "github.com/leh60245/enterprise-storm/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetAnalyzerProvider configures the query analyzer provider.
	SetAnalyzerProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that the settings can drive a search.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}

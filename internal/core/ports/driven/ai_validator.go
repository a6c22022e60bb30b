package driven

import "github.com/leh60245/enterprise-storm/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
// Each method returns nil when the section is valid or not configured.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateAnalyzer pings the query analyzer provider.
	ValidateAnalyzer(config *domain.AnalyzerSettings) error

	// ValidateReranker scores one pair against the configured model.
	ValidateReranker(config *domain.RerankerSettings) error
}

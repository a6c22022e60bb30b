package ai

import (
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings against the live providers.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the embedding provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(config)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

// ValidateAnalyzer pings the query analyzer provider.
func (v *ConfigValidator) ValidateAnalyzer(config *domain.AnalyzerSettings) error {
	svc, err := CreateAndValidateQueryAnalyzer(config, nil)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

// ValidateReranker checks that the reranker serves the configured model.
func (v *ConfigValidator) ValidateReranker(config *domain.RerankerSettings) error {
	svc, err := CreateAndValidateReranker(config)
	if svc != nil {
		_ = svc.Close()
	}
	return err
}

package driven

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// QueryAnalyzer reads intent and company mentions out of a free-text question.
// This is an optional service - when nil, every query is searched unfiltered.
//
// Failures are expected (network, model, malformed output). Callers
// fall back to domain.DefaultQueryAnalysis rather than propagating them.
type QueryAnalyzer interface {
	// Analyze returns the structured analysis of query.
	Analyze(ctx context.Context, query string) (*domain.QueryAnalysis, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

package driven

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// WebSearch is a best-effort external search capability.
type WebSearch interface {
	// Search returns at most k results for query, skipping any URL in excludeURLs.
	// Results carry at least Content, URL and Title.
	Search(ctx context.Context, query string, k int, excludeURLs []string) ([]domain.RankedFragment, error)

	// UsageAndReset returns the queries served since the last call and zeroes the counter.
	UsageAndReset() domain.Usage

	// Close releases resources.
	Close() error
}

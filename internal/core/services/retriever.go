package services

import (
	"context"
	"sync/atomic"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure InternalRetriever implements the interface.
var _ driving.Retriever = (*InternalRetriever)(nil)

const (
	// DefaultMinScore is the score under which internal results are reported as weak.
	DefaultMinScore = 0.5

	// DefaultInternalUsageName is the usage counter key of the internal retriever.
	DefaultInternalUsageName = "PostgresRM"
)

// InternalRetriever adapts a SearchService to the batch Retriever contract
// used by the report generator: one search per query, results flattened in
// query order and tagged as internal.
type InternalRetriever struct {
	search    driving.SearchService
	topK      int
	minScore  float64
	usageName string
	base      domain.SearchOptions
	usage     atomic.Int64
}

// RetrieverOption configures an InternalRetriever.
type RetrieverOption func(*InternalRetriever)

// WithUsageName sets the key reported by UsageAndReset.
func WithUsageName(name string) RetrieverOption {
	return func(r *InternalRetriever) {
		if name != "" {
			r.usageName = name
		}
	}
}

// WithMinScore sets the weak-result threshold.
func WithMinScore(score float64) RetrieverOption {
	return func(r *InternalRetriever) {
		r.minScore = score
	}
}

// WithDefaultTopK sets the per-query result count used when Retrieve gets k <= 0.
func WithDefaultTopK(k int) RetrieverOption {
	return func(r *InternalRetriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithSearchOptions sets the options every search starts from. TopK is
// always overridden per call.
func WithSearchOptions(opts domain.SearchOptions) RetrieverOption {
	return func(r *InternalRetriever) {
		r.base = opts
	}
}

// NewInternalRetriever creates a retriever over search.
func NewInternalRetriever(search driving.SearchService, opts ...RetrieverOption) *InternalRetriever {
	r := &InternalRetriever{
		search:    search,
		topK:      domain.DefaultTopK,
		minScore:  DefaultMinScore,
		usageName: DefaultInternalUsageName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve searches every query and concatenates the results. A failing
// query is logged and contributes nothing; it never aborts the others.
// Results scoring under the minimum score are reported but kept.
func (r *InternalRetriever) Retrieve(
	ctx context.Context, queries []string, excludeURLs []string, k int,
) ([]domain.RankedFragment, error) {
	if k <= 0 {
		k = r.topK
	}
	r.usage.Add(int64(len(queries)))

	excluded := make(map[string]struct{}, len(excludeURLs))
	for _, u := range excludeURLs {
		excluded[u] = struct{}{}
	}

	opts := r.base
	opts.TopK = k

	var out []domain.RankedFragment
	for _, q := range queries {
		results, err := r.search.Search(ctx, q, opts)
		if err != nil {
			logger.Warn("Internal search failed for %q: %v", q, err)
			continue
		}

		weak := 0
		for _, res := range results {
			if _, skip := excluded[res.URL]; skip && res.URL != "" {
				continue
			}
			if res.Score < r.minScore {
				weak++
			}
			res.Source = domain.ProvenanceInternal
			res.Snippets = []string{res.Content}
			res.Description = res.Title
			out = append(out, res)
		}

		if weak > 0 {
			logger.Warn("%s: %d results below threshold (%.2f) for %q", r.usageName, weak, r.minScore, q)
		}
	}

	logger.Info("%s: found %d results for %d queries", r.usageName, len(out), len(queries))
	return out, nil
}

// UsageAndReset returns the number of queries served since the last call.
func (r *InternalRetriever) UsageAndReset() domain.Usage {
	return domain.Usage{r.usageName: int(r.usage.Swap(0))}
}

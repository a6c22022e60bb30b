package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure HybridRetriever implements the interface.
var _ driving.Retriever = (*HybridRetriever)(nil)

// Hybrid retriever defaults.
const (
	DefaultInternalK         = 3
	DefaultExternalK         = 7
	DefaultHybridConcurrency = 4

	hybridUsageName = "HybridRM"
)

// HybridRetriever merges internal fragment search with external web
// search in a fixed ratio. Queries fan out on a bounded worker pool;
// each side of each query fails independently.
type HybridRetriever struct {
	internal    driving.Retriever
	external    driven.WebSearch
	internalK   int
	externalK   int
	concurrency int

	pool  *ants.Pool
	usage atomic.Int64
}

// HybridOption configures a HybridRetriever.
type HybridOption func(*HybridRetriever)

// WithRatio sets how many internal and external results each query contributes.
func WithRatio(internalK, externalK int) HybridOption {
	return func(h *HybridRetriever) {
		h.internalK = internalK
		h.externalK = externalK
	}
}

// WithConcurrency sets how many queries run at once.
func WithConcurrency(n int) HybridOption {
	return func(h *HybridRetriever) {
		h.concurrency = n
	}
}

// NewHybridRetriever creates a hybrid retriever. Both sides are required.
func NewHybridRetriever(
	internal driving.Retriever, external driven.WebSearch, opts ...HybridOption,
) (*HybridRetriever, error) {
	if internal == nil || external == nil {
		return nil, fmt.Errorf("hybrid retriever: internal and external retrievers are required: %w",
			domain.ErrInvalidInput)
	}

	h := &HybridRetriever{
		internal:    internal,
		external:    external,
		internalK:   DefaultInternalK,
		externalK:   DefaultExternalK,
		concurrency: DefaultHybridConcurrency,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.internalK < 0 || h.externalK < 0 {
		return nil, domain.NewValidationError("ratio", "result counts must not be negative")
	}
	if h.concurrency <= 0 {
		h.concurrency = DefaultHybridConcurrency
	}

	pool, err := ants.NewPool(h.concurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	h.pool = pool

	logger.Info("Hybrid retriever initialised: internal(k=%d) + external(k=%d), concurrency %d",
		h.internalK, h.externalK, h.concurrency)
	return h, nil
}

// Retrieve runs every query against both sides and returns the merged
// results grouped in query order. k is ignored; the ratio governs.
func (h *HybridRetriever) Retrieve(
	ctx context.Context, queries []string, excludeURLs []string, _ int,
) ([]domain.RankedFragment, error) {
	logger.Section("Hybrid Retrieval")
	h.usage.Add(int64(len(queries)))

	perQuery := make([][]domain.RankedFragment, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			perQuery[i] = h.retrieveOne(ctx, q, excludeURLs)
		}
		if err := h.pool.Submit(task); err != nil {
			logger.Warn("Hybrid worker pool unavailable (%v), running query inline", err)
			task()
		}
	}
	wg.Wait()

	var out []domain.RankedFragment
	for _, results := range perQuery {
		out = append(out, results...)
	}
	return out, nil
}

// retrieveOne runs both sides of one query concurrently under a query
// scoped context and merges internal results first.
func (h *HybridRetriever) retrieveOne(
	ctx context.Context, query string, excludeURLs []string,
) []domain.RankedFragment {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Hybrid retrieval: processing %q", query)

	var internal, external []domain.RankedFragment
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		res, err := h.internal.Retrieve(ctx, []string{query}, excludeURLs, h.internalK)
		if err != nil {
			logger.Warn("Hybrid retrieval: internal search failed for %q: %v", query, err)
			return
		}
		internal = capResults(res, h.internalK, domain.ProvenanceInternal)
	}()

	go func() {
		defer wg.Done()
		res, err := h.external.Search(ctx, query, h.externalK, excludeURLs)
		if err != nil {
			logger.Warn("Hybrid retrieval: external search failed for %q: %v", query, err)
			return
		}
		external = capResults(res, h.externalK, domain.ProvenanceExternal)
	}()

	wg.Wait()
	return mergeByURL(internal, external)
}

// UsageAndReset returns the hybrid query count merged with both sides' usage.
func (h *HybridRetriever) UsageAndReset() domain.Usage {
	usage := domain.Usage{hybridUsageName: int(h.usage.Swap(0))}
	usage.Merge(h.internal.UsageAndReset())
	usage.Merge(h.external.UsageAndReset())
	return usage
}

// Close releases the worker pool and closes both sides.
func (h *HybridRetriever) Close() error {
	h.pool.Release()
	if c, ok := h.internal.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Hybrid retriever: close internal: %v", err)
		}
	}
	return h.external.Close()
}

// capResults truncates results to k and tags their provenance.
func capResults(results []domain.RankedFragment, k int, source domain.Provenance) []domain.RankedFragment {
	if len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Source = source
	}
	return results
}

// mergeByURL concatenates the lists, keeping the first copy of every
// non-empty URL. Results without a URL are always kept.
func mergeByURL(lists ...[]domain.RankedFragment) []domain.RankedFragment {
	seen := make(map[string]struct{})
	var merged []domain.RankedFragment
	for _, list := range lists {
		for _, r := range list {
			if r.URL != "" {
				if _, dup := seen[r.URL]; dup {
					continue
				}
				seen[r.URL] = struct{}{}
			}
			merged = append(merged, r)
		}
	}
	return merged
}

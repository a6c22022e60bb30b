package driving

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// SearchService provides single-source retrieval over the fragment store.
type SearchService interface {
	// Search returns ranked, provenance-tagged fragments for query.
	// An empty query or negative TopK fails with a domain.ValidationError.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RankedFragment, error)
}

// Retriever answers a batch of queries with a flat, ordered result list.
type Retriever interface {
	// Retrieve runs every query and concatenates the results in query order.
	// k caps results per query where the implementation allows it (0 = default).
	Retrieve(ctx context.Context, queries []string, excludeURLs []string, k int) ([]domain.RankedFragment, error)

	// UsageAndReset returns the queries served since the last call and zeroes the counters.
	UsageAndReset() domain.Usage
}

// CompanyService exposes the company roster and entity resolution.
type CompanyService interface {
	// List returns the canonical company names known to the store.
	List(ctx context.Context) ([]string, error)

	// Resolve maps a mention to a canonical name. The bool is false when
	// no confident match exists.
	Resolve(mention string, threshold float64) (string, bool)

	// Refresh reloads the resolver roster from the store and returns its size.
	Refresh(ctx context.Context) (int, error)
}

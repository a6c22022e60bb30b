package driven

import "context"

// Reranker scores (query, document) pairs with a cross-encoder.
// Models are loaded once when the adapter is constructed; a failure
// there is fatal and is never retried lazily.
type Reranker interface {
	// Score returns one relevance score per document, in input order.
	Score(ctx context.Context, query string, documents []string) ([]float64, error)

	// ModelName returns the name of the cross-encoder model.
	ModelName() string

	// Close releases resources.
	Close() error
}

// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The output dimension must match the vectors persisted in the FragmentStore.
// That is checked when fragments are loaded, not per query.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (bge-m3, nomic-embed-text)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request.
	// The returned slice is in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1024, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache stores query vectors keyed by model and text.
type EmbeddingCache interface {
	// Get returns the cached vector and true on a hit.
	Get(ctx context.Context, key string) ([]float32, bool)

	// Put stores a vector under key.
	Put(ctx context.Context, key string, vec []float32) error

	// Close releases resources.
	Close() error
}

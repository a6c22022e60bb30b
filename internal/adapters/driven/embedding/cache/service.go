package cache

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService serves embeddings from a cache and falls back to the
// wrapped service on a miss. Cache write failures are logged, not returned.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache driven.EmbeddingCache
}

// Wrap returns inner fronted by cache.
func Wrap(inner driven.EmbeddingService, cache driven.EmbeddingCache) *EmbeddingService {
	return &EmbeddingService{inner: inner, cache: cache}
}

// Embed returns the cached vector for text or computes and stores it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(s.inner.ModelName(), text)
	if vec, ok := s.cache.Get(ctx, key); ok {
		logger.Debug("Embedding cache hit")
		return vec, nil
	}

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, vec)
	return vec, nil
}

// EmbedBatch embeds only the texts that miss the cache, in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := s.inner.ModelName()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		keys[i] = Key(model, text)
		if vec, ok := s.cache.Get(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		i := missIdx[j]
		out[i] = vec
		s.put(ctx, keys[i], vec)
	}
	return out, nil
}

func (s *EmbeddingService) put(ctx context.Context, key string, vec []float32) {
	if err := s.cache.Put(ctx, key, vec); err != nil {
		logger.Warn("Embedding cache write failed: %v", err)
	}
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service and the cache.
func (s *EmbeddingService) Close() error {
	innerErr := s.inner.Close()
	if err := s.cache.Close(); err != nil {
		return err
	}
	return innerErr
}

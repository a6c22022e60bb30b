// Package ai builds the remote capabilities (embeddings, query analysis,
// reranking, web search) from settings and validates them before use.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ollamaanalyzer "github.com/leh60245/enterprise-storm/internal/adapters/driven/analyzer/ollama"
	openaianalyzer "github.com/leh60245/enterprise-storm/internal/adapters/driven/analyzer/openai"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/leh60245/enterprise-storm/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/leh60245/enterprise-storm/internal/adapters/driven/embedding/openai"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/rerank/cohere"
	"github.com/leh60245/enterprise-storm/internal/adapters/driven/websearch/serper"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// pingTimeout bounds every connectivity check.
const pingTimeout = 5 * time.Second

// InitResult holds the capabilities built by Initialise.
type InitResult struct {
	Embedding driven.EmbeddingService
	Analyzer  driven.QueryAnalyzer
	Reranker  driven.Reranker
	WebSearch driven.WebSearch

	// Warnings lists optional capabilities that were configured but failed.
	Warnings []string
}

// Close releases every capability that was built.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		_ = r.Embedding.Close()
	}
	if r.Analyzer != nil {
		_ = r.Analyzer.Close()
	}
	if r.Reranker != nil {
		_ = r.Reranker.Close()
	}
	if r.WebSearch != nil {
		_ = r.WebSearch.Close()
	}
}

// Initialise builds every configured capability. Embeddings and an enabled
// reranker are required once configured and fail the call; an analyzer
// that cannot be reached is dropped with a warning and search runs
// unfiltered.
func Initialise(settings *domain.Settings, prompts driven.PromptStore) (*InitResult, error) {
	result := &InitResult{}

	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedding != nil {
		embedding, err = WrapWithCache(embedding, settings.Cache)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}
	result.Embedding = embedding

	analyzer, err := CreateAndValidateQueryAnalyzer(&settings.Analyzer, prompts)
	if err != nil {
		logger.Warn("%v", err)
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.Analyzer = analyzer

	reranker, err := CreateAndValidateReranker(&settings.Reranker)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.Reranker = reranker

	web, err := CreateWebSearch(&settings.WebSearch)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.WebSearch = web

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
// Unconfigured settings yield (nil, nil).
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'storm settings' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'storm settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
// Unconfigured settings yield (nil, nil).
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// WrapWithCache fronts svc with the on-disk embedding cache when enabled.
// If the cache cannot be opened svc is returned unwrapped with the error.
func WrapWithCache(svc driven.EmbeddingService, settings domain.CacheSettings) (driven.EmbeddingService, error) {
	if !settings.Enabled {
		return svc, nil
	}

	dir := settings.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return svc, fmt.Errorf("embedding cache disabled: %w", err)
		}
		dir = filepath.Join(home, ".storm", "cache", "embeddings")
	}

	c, err := cache.Open(cache.Options{
		Dir: dir,
		TTL: time.Duration(settings.TTLHours) * time.Hour,
	})
	if err != nil {
		return svc, fmt.Errorf("embedding cache disabled: %w", err)
	}
	logger.Debug("Embedding cache at %s", dir)
	return cache.Wrap(svc, c), nil
}

// CreateAndValidateQueryAnalyzer creates a query analyzer and pings it.
// Unconfigured settings yield (nil, nil).
func CreateAndValidateQueryAnalyzer(settings *domain.AnalyzerSettings,
	prompts driven.PromptStore) (driven.QueryAnalyzer, error) {
	svc, err := CreateQueryAnalyzer(settings, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrAnalyzerUnavailable, err)
	}
	return svc, nil
}

// CreateQueryAnalyzer creates the analyzer named by settings and hands it
// the prompt store. Unconfigured settings yield (nil, nil).
func CreateQueryAnalyzer(settings *domain.AnalyzerSettings, prompts driven.PromptStore) (driven.QueryAnalyzer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.QueryAnalyzer
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamaanalyzer.NewQueryAnalyzer(ollamaanalyzer.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		a, err := openaianalyzer.NewQueryAnalyzer(openaianalyzer.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc = a
	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s", settings.Provider)
	}

	if aware, ok := svc.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}
	return svc, nil
}

// CreateAndValidateReranker creates the cross-encoder and scores one pair
// to confirm the model is served. Disabled settings yield (nil, nil).
func CreateAndValidateReranker(settings *domain.RerankerSettings) (driven.Reranker, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	r := cohere.NewReranker(cohere.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		APIKey:  settings.APIKey,
	})
	if err := ping(r.Ping); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankerUnavailable, err)
	}
	return r, nil
}

// CreateWebSearch creates the external search client. It is not pinged:
// every Serper call is billed. Unconfigured settings yield (nil, nil).
func CreateWebSearch(settings *domain.WebSearchSettings) (driven.WebSearch, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	client, err := serper.NewClient(serper.Config{
		APIKey:        settings.APIKey,
		RatePerSecond: settings.RatePerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrWebSearchUnavailable, err)
	}
	return client, nil
}

func ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	err := fn(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no answer within %s: %w", pingTimeout, err)
	}
	return err
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider(t *testing.T) {
	assert.True(t, AIProviderOllama.IsValid())
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.False(t, AIProvider("anthropic").IsValid())

	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())

	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestStoreSettings_IsConfigured(t *testing.T) {
	assert.True(t, StoreSettings{Driver: StoreDriverSQLite}.IsConfigured())
	assert.False(t, StoreSettings{Driver: StoreDriverPostgres}.IsConfigured())
	assert.True(t, StoreSettings{Driver: StoreDriverPostgres, DSN: "postgres://x"}.IsConfigured())
	assert.False(t, StoreSettings{Driver: "mysql"}.IsConfigured())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestAnalyzerSettings_IsConfigured(t *testing.T) {
	assert.False(t, AnalyzerSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, AnalyzerSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestRerankerAndWebSearchSettings_IsConfigured(t *testing.T) {
	assert.False(t, RerankerSettings{BaseURL: "http://x"}.IsConfigured())
	assert.True(t, RerankerSettings{Enabled: true, BaseURL: "http://x"}.IsConfigured())

	assert.False(t, WebSearchSettings{Provider: "serper"}.IsConfigured())
	assert.False(t, WebSearchSettings{Provider: "bing", APIKey: "k"}.IsConfigured())
	assert.True(t, WebSearchSettings{Provider: "serper", APIKey: "k"}.IsConfigured())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, StoreDriverSQLite, s.Store.Driver)
	assert.Equal(t, DefaultTopK, s.Search.TopK)
	assert.Equal(t, 3, s.Search.InternalK)
	assert.Equal(t, 7, s.Search.ExternalK)
	assert.Equal(t, 65.0, s.Search.FuzzyThreshold)
	assert.Equal(t, 0.5, s.Search.MinScore)
	assert.Equal(t, "BAAI/bge-reranker-v2-m3", s.Reranker.Model)
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.Analyzer.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 1024, dims["bge-m3"])
}

func TestAllAIProviders(t *testing.T) {
	providers := AllAIProviders()

	assert.Equal(t, []AIProvider{AIProviderOllama, AIProviderOpenAI}, providers)
	for _, p := range providers {
		assert.True(t, p.IsValid())
	}
}

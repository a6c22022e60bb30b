package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or query analysis.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// AllAIProviders returns every supported provider, local first.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StoreDriver selects the fragment store backend.
type StoreDriver string

// Available store drivers.
const (
	// StoreDriverPostgres is PostgreSQL with the pgvector extension.
	StoreDriverPostgres StoreDriver = "postgres"

	// StoreDriverSQLite is a local single-file store.
	StoreDriverSQLite StoreDriver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	return d == StoreDriverPostgres || d == StoreDriverSQLite
}

// StoreSettings holds fragment store configuration.
type StoreSettings struct {
	// Driver is postgres or sqlite.
	Driver StoreDriver

	// DSN is the PostgreSQL connection string.
	DSN string

	// DataDir is the directory for the sqlite database.
	DataDir string
}

// IsConfigured returns true if the store can be opened.
func (s StoreSettings) IsConfigured() bool {
	switch s.Driver {
	case StoreDriverPostgres:
		return s.DSN != ""
	case StoreDriverSQLite:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// AnalyzerSettings holds query analyzer configuration.
type AnalyzerSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the analyzer provider is set up.
func (a AnalyzerSettings) IsConfigured() bool {
	if !a.Provider.IsValid() {
		return false
	}
	if a.Provider.RequiresAPIKey() && a.APIKey == "" {
		return false
	}
	return true
}

// RerankerSettings holds cross-encoder configuration.
type RerankerSettings struct {
	// Enabled turns the reranker on.
	Enabled bool

	// BaseURL is the rerank API endpoint.
	BaseURL string

	// Model is the cross-encoder model name.
	Model string

	// APIKey is the bearer token, if the endpoint needs one.
	APIKey string
}

// IsConfigured returns true if the reranker is enabled and reachable by URL.
func (r RerankerSettings) IsConfigured() bool {
	return r.Enabled && r.BaseURL != ""
}

// WebSearchSettings holds external search configuration.
type WebSearchSettings struct {
	// Provider names the search API. Only "serper" is supported.
	Provider string

	// APIKey is the provider API key.
	APIKey string

	// RatePerSecond throttles outgoing requests.
	RatePerSecond float64
}

// IsConfigured returns true if external search can be used.
func (w WebSearchSettings) IsConfigured() bool {
	return w.Provider == "serper" && w.APIKey != ""
}

// SearchSettings holds retrieval behaviour configuration.
type SearchSettings struct {
	// TopK is the default result count.
	TopK int

	// MinScore is the score under which internal results are reported as weak.
	MinScore float64

	// InternalK and ExternalK set the hybrid merge ratio.
	InternalK int
	ExternalK int

	// FuzzyThreshold is the entity resolver cutoff on a 0-100 scale.
	FuzzyThreshold float64

	// SynonymsFile is an optional YAML file of abbreviation to canonical name.
	SynonymsFile string
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	// Enabled turns the on-disk embedding cache on.
	Enabled bool

	// Dir is the cache directory.
	Dir string

	// TTLHours is how long cached vectors live.
	TTLHours int
}

// Settings holds all application settings.
type Settings struct {
	Store     StoreSettings
	Embedding EmbeddingSettings
	Analyzer  AnalyzerSettings
	Reranker  RerankerSettings
	WebSearch WebSearchSettings
	Search    SearchSettings
	Cache     CacheSettings
}

// DefaultSettings returns settings with sensible defaults.
// Remote capabilities are left unconfigured until keys are provided.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{
			Driver: StoreDriverSQLite,
		},
		Embedding: EmbeddingSettings{},
		Analyzer:  AnalyzerSettings{},
		Reranker: RerankerSettings{
			Model: "BAAI/bge-reranker-v2-m3",
		},
		WebSearch: WebSearchSettings{
			Provider:      "serper",
			RatePerSecond: 5,
		},
		Search: SearchSettings{
			TopK:           DefaultTopK,
			MinScore:       0.5,
			InternalK:      3,
			ExternalK:      7,
			FuzzyThreshold: 65,
		},
		Cache: CacheSettings{
			Enabled:  false,
			TTLHours: 24,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "bge-m3",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultAnalyzerModels returns default models for each analyzer provider.
func DefaultAnalyzerModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"bge-m3":            1024,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

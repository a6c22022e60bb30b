// Package ollama provides a query analyzer backed by a local Ollama model.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leh60245/enterprise-storm/internal/adapters/driven/analyzer"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure QueryAnalyzer implements the interfaces.
var (
	_ driven.QueryAnalyzer    = (*QueryAnalyzer)(nil)
	_ driven.PromptStoreAware = (*QueryAnalyzer)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Ollama query analyzer.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// QueryAnalyzer runs the analysis prompt through /api/chat with JSON output.
type QueryAnalyzer struct {
	client      *http.Client
	baseURL     string
	model       string
	promptStore driven.PromptStore
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewQueryAnalyzer creates a new Ollama query analyzer.
func NewQueryAnalyzer(cfg Config) *QueryAnalyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &QueryAnalyzer{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Analyze returns the structured analysis of query.
func (a *QueryAnalyzer) Analyze(ctx context.Context, query string) (*domain.QueryAnalysis, error) {
	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzer.SystemPrompt(a.promptStore)},
			{Role: "user", Content: query},
		},
		Format:  "json",
		Options: chatOptions{Temperature: analyzer.Temperature, NumPredict: analyzer.MaxTokens},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}

	qa, err := analyzer.Decode(out.Message.Content)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	logger.Debug("Query analysis: intent=%s companies=%v competitor=%t",
		qa.Intent, qa.TargetCompanies, qa.IsCompetitorQuery)
	return qa, nil
}

// ModelName returns the chat model in use.
func (a *QueryAnalyzer) ModelName() string {
	return a.model
}

// SetPromptStore sets the store the system prompt is loaded from.
func (a *QueryAnalyzer) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Ping checks /api/tags.
func (a *QueryAnalyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (a *QueryAnalyzer) Close() error {
	return nil
}

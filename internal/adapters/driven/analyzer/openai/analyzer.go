// Package openai provides a query analyzer backed by an OpenAI chat model
// in JSON mode.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

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
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the OpenAI query analyzer.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model (default: gpt-4o-mini).
	Model string

	// Timeout bounds one analysis call (default: 30s).
	Timeout time.Duration
}

// QueryAnalyzer asks a chat model for a structured reading of a question.
type QueryAnalyzer struct {
	client      *goopenai.Client
	model       string
	promptStore driven.PromptStore
}

// NewQueryAnalyzer creates a new OpenAI query analyzer.
func NewQueryAnalyzer(cfg Config) (*QueryAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &QueryAnalyzer{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Analyze returns the structured analysis of query.
func (a *QueryAnalyzer) Analyze(ctx context.Context, query string) (*domain.QueryAnalysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: a.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: analyzer.SystemPrompt(a.promptStore)},
			{Role: goopenai.ChatMessageRoleUser, Content: query},
		},
		// A zero temperature would be dropped by omitempty.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   analyzer.MaxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: analyze query: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: no response choices returned")
	}

	qa, err := analyzer.Decode(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
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

// Ping lists models to validate the key without running inference.
func (a *QueryAnalyzer) Ping(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (a *QueryAnalyzer) Close() error {
	return nil
}

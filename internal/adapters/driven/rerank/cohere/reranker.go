// Package cohere provides a cross-encoder reranker over the Cohere-style
// /rerank API, as served by Cohere, Jina, infinity and TEI-compatible
// gateways.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leh60245/enterprise-storm/internal/adapters/driven/breaker"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:7997"
	DefaultModel   = "BAAI/bge-reranker-v2-m3"
	DefaultTimeout = 30 * time.Second

	// maxDocuments is the per-request document limit of the hosted APIs.
	maxDocuments = 1000
)

// Config holds configuration for the reranker.
type Config struct {
	// BaseURL is the API root; requests go to BaseURL + "/rerank".
	BaseURL string

	// Model is the cross-encoder model (default: BAAI/bge-reranker-v2-m3).
	Model string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Breaker tunes the circuit breaker. Zero fields use the defaults.
	Breaker breaker.Config
}

// Reranker scores documents against a query with a remote cross-encoder.
type Reranker struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	breaker *breaker.Breaker
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResult struct {
	Index          int      `json:"index"`
	RelevanceScore *float64 `json:"relevance_score"`
	Score          *float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// NewReranker creates a reranker. It does no I/O; call Ping to validate
// the endpoint and model before first use.
func NewReranker(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		breaker: breaker.New("reranker:"+cfg.Model, cfg.Breaker),
	}
}

// Score returns one relevance score per document, in input order.
// Documents past the API limit score zero.
func (r *Reranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	sent := documents
	if len(sent) > maxDocuments {
		sent = sent[:maxDocuments]
	}

	results, err := breaker.Do(r.breaker, func() ([]rerankResult, error) {
		return r.rerank(ctx, query, sent)
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	scores := make([]float64, len(documents))
	seen := make([]bool, len(sent))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(sent) {
			return nil, fmt.Errorf("rerank: result index %d out of range", res.Index)
		}
		switch {
		case res.RelevanceScore != nil:
			scores[res.Index] = *res.RelevanceScore
		case res.Score != nil:
			scores[res.Index] = *res.Score
		default:
			return nil, fmt.Errorf("rerank: result %d has no score", res.Index)
		}
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank: no score for document %d", i)
		}
	}
	return scores, nil
}

func (r *Reranker) rerank(ctx context.Context, query string, documents []string) ([]rerankResult, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}

// Ping scores a single pair, which fails if the endpoint is down or the
// model is unknown to it.
func (r *Reranker) Ping(ctx context.Context) error {
	if _, err := r.rerank(ctx, "ping", []string{"pong"}); err != nil {
		return fmt.Errorf("reranker %s: %w", r.model, err)
	}
	return nil
}

// ModelName returns the cross-encoder model.
func (r *Reranker) ModelName() string {
	return r.model
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}

// Package serper provides external web search through the Serper Google
// Search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/leh60245/enterprise-storm/internal/adapters/driven/breaker"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.WebSearch = (*Client)(nil)

// Default configuration values.
const (
	DefaultEndpoint      = "https://google.serper.dev/search"
	DefaultRatePerSecond = 5.0
	DefaultTimeout       = 15 * time.Second
	DefaultNum           = 10

	// UsageName is the key under which queries are counted.
	UsageName = "SerperRM"

	// defaultBackoff applies after a 429 without Retry-After.
	defaultBackoff = 30 * time.Second
)

// Config holds configuration for the Serper client.
type Config struct {
	// APIKey is the Serper API key (required).
	APIKey string

	// Endpoint is the search URL (default: https://google.serper.dev/search).
	Endpoint string

	// RatePerSecond caps outgoing requests (default: 5, burst 1).
	RatePerSecond float64

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration

	// Breaker tunes the circuit breaker. Zero fields use the defaults.
	Breaker breaker.Config
}

// Client runs web searches with rate limiting and a circuit breaker.
type Client struct {
	client   *http.Client
	endpoint string
	apiKey   string
	limiter  *rate.Limiter
	breaker  *breaker.Breaker

	mu      sync.Mutex
	retryAt time.Time
	usage   int
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

// NewClient creates a Serper client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("serper: API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		breaker:  breaker.New("serper", cfg.Breaker),
	}, nil
}

// Search returns up to k organic results for query. URLs in excludeURLs
// are dropped; a trailing slash does not affect the comparison.
func (c *Client) Search(ctx context.Context, query string, k int, excludeURLs []string) ([]domain.RankedFragment, error) {
	if k <= 0 {
		k = DefaultNum
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.usage++
	c.mu.Unlock()

	resp, err := breaker.Do(c.breaker, func() (*searchResponse, error) {
		return c.post(ctx, searchRequest{Q: query, Num: k})
	})
	if err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}

	excluded := make(map[string]struct{}, len(excludeURLs))
	for _, u := range excludeURLs {
		excluded[normalizeURL(u)] = struct{}{}
	}

	results := make([]domain.RankedFragment, 0, len(resp.Organic))
	for _, o := range resp.Organic {
		if o.Link == "" {
			continue
		}
		if _, skip := excluded[normalizeURL(o.Link)]; skip {
			continue
		}
		results = append(results, toFragment(o))
		if len(results) == k {
			break
		}
	}
	logger.Debug("serper: %d results for %q", len(results), query)
	return results, nil
}

// wait honours any 429 backoff, then the token bucket.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) post(ctx context.Context, body searchRequest) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.backoff(resp.Header.Get("Retry-After"))
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) backoff(retryAfter string) {
	d := defaultBackoff
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
		d = time.Duration(secs) * time.Second
	}
	c.mu.Lock()
	c.retryAt = time.Now().Add(d)
	c.mu.Unlock()
	logger.Warn("serper: rate limited, backing off %s", d)
}

// UsageAndReset returns the queries issued since the last call and zeroes the counter.
func (c *Client) UsageAndReset() domain.Usage {
	c.mu.Lock()
	n := c.usage
	c.usage = 0
	c.mu.Unlock()
	return domain.Usage{UsageName: n}
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}

func toFragment(o organicResult) domain.RankedFragment {
	snippets := []string{}
	if o.Snippet != "" {
		snippets = append(snippets, o.Snippet)
	}
	description := o.Snippet
	if o.Date != "" && description != "" {
		description = o.Date + " - " + description
	}
	return domain.RankedFragment{
		Content:     o.Snippet,
		Title:       o.Title,
		URL:         o.Link,
		Description: description,
		Snippets:    snippets,
		Source:      domain.ProvenanceExternal,
	}
}

func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

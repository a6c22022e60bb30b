package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAnalyzerUnavailable indicates the query analyzer is not configured.
	// Search still runs with a default, unfiltered analysis.
	ErrAnalyzerUnavailable = errors.New("query analyzer unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector search is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the cross-encoder reranker is not configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrWebSearchUnavailable indicates the external web search is not configured.
	ErrWebSearchUnavailable = errors.New("web search unavailable")

	// ErrStoreUnavailable indicates the fragment store could not be opened.
	ErrStoreUnavailable = errors.New("fragment store unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// RepositoryError wraps a fragment store failure with the operation
// and parameters that failed.
type RepositoryError struct {
	Op     string
	Params map[string]any
	Err    error
}

// NewRepositoryError creates a RepositoryError. A nil err yields nil.
func NewRepositoryError(op string, params map[string]any, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Params: params, Err: err}
}

func (e *RepositoryError) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}

	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Params[k])
	}
	return fmt.Sprintf("%s failed (%s): %v", e.Op, strings.Join(parts, ", "), e.Err)
}

// Unwrap returns the underlying cause.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	b := New("reranker", Config{})

	assert.Equal(t, "reranker", b.Name())
	assert.Equal(t, "closed", b.State())
}

func TestDo_PassesThrough(t *testing.T) {
	b := New("test", Config{})

	got, err := Do(b, func() ([]float64, error) { return []float64{0.9, 0.1}, nil })
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1}, got)

	boom := errors.New("boom")
	_, err = Do(b, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrOpen)
}

func TestDo_OpensAfterFailures(t *testing.T) {
	b := New("serper", Config{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, _ = Do(b, func() (string, error) { return "", boom })
	}
	assert.Equal(t, "open", b.State())

	called := false
	_, err := Do(b, func() (string, error) {
		called = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestDo_BelowMinRequestsStaysClosed(t *testing.T) {
	b := New("test", Config{MinRequests: 5})

	for i := 0; i < 4; i++ {
		_, _ = Do(b, func() (int, error) { return 0, errors.New("x") })
	}
	assert.Equal(t, "closed", b.State())
}

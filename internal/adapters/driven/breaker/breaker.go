// Package breaker builds the circuit breakers that guard remote adapters.
package breaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Config tunes a breaker. Zero fields take the defaults.
type Config struct {
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// MinRequests is the sample size before the breaker may trip.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultConfig returns the settings used by the remote adapters.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// ErrOpen is returned instead of calling a backend whose breaker is open.
var ErrOpen = errors.New("circuit breaker open")

// Breaker wraps gobreaker with typed calls.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker named after the backend it guards.
func New(name string, cfg Config) *Breaker {
	d := DefaultConfig()
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = d.MaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = d.Interval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = d.MinRequests
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = d.FailureRatio
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("circuit breaker %q opened (was %s)", name, from)
				return
			}
			logger.Info("circuit breaker %q: %s -> %s", name, from, to)
		},
	})}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// State returns the current state as text: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Do runs fn through the breaker. Open-state rejections are reported as ErrOpen.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, errors.Join(ErrOpen, err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

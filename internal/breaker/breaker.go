// Package breaker wraps sony/gobreaker with the service's error and metrics conventions.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
)

// Settings configures a breaker. MaxFailures == 0 disables it.
type Settings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// Breaker fails calls fast with domain.ErrServiceUnavailable while the wrapped service is unhealthy.
// A nil *Breaker passes every call through.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a named breaker. Returns nil when s.MaxFailures is zero.
func New(name string, s Settings, logger *zap.Logger) *Breaker {
	if s.MaxFailures == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	maxFailures := s.MaxFailures
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about the service
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChangesTotal.WithLabelValues(name, to.String()).Inc()
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})}
}

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	if b == nil {
		return fn()
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", b.cb.Name(), err, domain.ErrServiceUnavailable)
	}
	return err
}

// State reports the breaker state name ("closed", "half-open", "open"), or "disabled".
func (b *Breaker) State() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

// Package generation decorates the generative provider with usage accounting and a circuit breaker.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/breaker"
	"github.com/kailas-cloud/sanjeevani/internal/domain"
)

// InstrumentedGenerator attributes token usage to the calling request and logs failures.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with usage accounting and observability.
func NewInstrumentedGenerator(inner domain.Generator, provider, model string, logger *zap.Logger) *InstrumentedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedGenerator{inner: inner, provider: provider, model: model, logger: logger}
}

// Generate implements domain.Generator.
func (g *InstrumentedGenerator) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	start := time.Now()

	res, err := g.inner.Generate(ctx, req)

	duration := time.Since(start)

	if err != nil {
		g.logger.Warn("Generation request failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerateResult{}, fmt.Errorf("generate: %w", err)
	}

	domain.UsageFromContext(ctx).AddGenerationTokens(res.TotalTokens)

	g.logger.Debug("Generation request completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BreakerGenerator short-circuits generation calls while the provider keeps failing.
type BreakerGenerator struct {
	inner domain.Generator
	cb    *breaker.Breaker
}

// NewBreakerGenerator wraps inner with cb. A nil cb disables short-circuiting.
func NewBreakerGenerator(inner domain.Generator, cb *breaker.Breaker) *BreakerGenerator {
	return &BreakerGenerator{inner: inner, cb: cb}
}

// Generate implements domain.Generator.
func (b *BreakerGenerator) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	var res domain.GenerateResult
	err := b.cb.Do(func() error {
		var err error
		res, err = b.inner.Generate(ctx, req)
		return err
	})
	return res, err
}

// State exposes the breaker state for health reporting.
func (b *BreakerGenerator) State() string {
	return b.cb.State()
}

package health

import (
	"context"

	"github.com/kailas-cloud/sanjeevani/internal/usecase/index"
)

// CachePinger checks embedding cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an embedding or generation provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerReporter exposes a circuit breaker state.
type BreakerReporter interface {
	State() string
}

// StrategyReporter exposes the retrieval strategy the guideline index settled on.
type StrategyReporter interface {
	Strategy() index.Strategy
}

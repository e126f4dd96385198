package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a collaborator failure. The pipeline still answers through its fallbacks.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used in Report.Checks.
const (
	ComponentCache      = "cache"
	ComponentEmbedding  = "embedding"
	ComponentGeneration = "generation"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	Breakers   map[string]string
	Retrieval  string
	Guidelines int
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Service coordinates health checks. Only configured components are reported.
type Service struct {
	index      StrategyReporter
	guidelines int
	checks     []check
	breakers   map[string]BreakerReporter
}

// New creates a Service for an index over guidelines entries.
func New(index StrategyReporter, guidelines int) *Service {
	return &Service{index: index, guidelines: guidelines, breakers: make(map[string]BreakerReporter)}
}

// WithCache adds the embedding cache store check.
func (s *Service) WithCache(c CachePinger) *Service {
	s.checks = append(s.checks, check{name: ComponentCache, fn: c.Ping})
	return s
}

// WithProvider adds a provider check under name (ComponentEmbedding or ComponentGeneration).
func (s *Service) WithProvider(name string, p ProviderChecker) *Service {
	s.checks = append(s.checks, check{name: name, fn: p.HealthCheck})
	return s
}

// WithBreaker reports the state of a circuit breaker.
func (s *Service) WithBreaker(name string, b BreakerReporter) *Service {
	s.breakers[name] = b
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	for _, c := range s.checks {
		if err := c.fn(ctx); err != nil {
			checks[c.name] = CheckError
		} else {
			checks[c.name] = CheckOK
		}
	}

	breakers := make(map[string]string, len(s.breakers))
	for name, b := range s.breakers {
		breakers[name] = b.State()
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	for _, st := range breakers {
		if st == "open" {
			status = Degraded
		}
	}

	r := Report{Status: status, Checks: checks, Breakers: breakers, Guidelines: s.guidelines}
	if s.index != nil {
		r.Retrieval = string(s.index.Strategy())
	}
	return r
}

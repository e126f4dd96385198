package sanjeevani

import (
	"context"

	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
)

// HealthStatus represents the aggregated pipeline health.
type HealthStatus struct {
	Status     string            // "ok" or "degraded"
	Checks     map[string]string // component → "ok"/"error"
	Breakers   map[string]string // provider → breaker state
	Retrieval  string            // "service" or "bag_of_words"
	Guidelines int
}

// Health checks every configured component. A degraded pipeline still answers
// Analyze calls through its fallbacks.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:     string(report.Status),
		Checks:     checks,
		Breakers:   report.Breakers,
		Retrieval:  report.Retrieval,
		Guidelines: report.Guidelines,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

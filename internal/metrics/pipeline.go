package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline Prometheus metrics.
var (
	// StageFallbacksTotal counts stages that substituted their deterministic fallback.
	StageFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanjeevani",
			Name:      "stage_fallbacks_total",
			Help:      "Pipeline stages that degraded to their deterministic fallback",
		},
		[]string{"stage", "reason"},
	)

	// GuidelineModeTotal counts analyses per guideline confidence mode.
	GuidelineModeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanjeevani",
			Name:      "guideline_mode_total",
			Help:      "Analyses by guideline confidence mode",
		},
		[]string{"mode"},
	)

	// AnalysesTotal counts completed analyses by risk level and urgency.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanjeevani",
			Name:      "analyses_total",
			Help:      "Completed triage analyses",
		},
		[]string{"risk_level", "urgent"},
	)

	// RetrievalStrategyTotal counts retrieval calls per embedding space.
	RetrievalStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanjeevani",
			Name:      "retrieval_strategy_total",
			Help:      "Guideline retrievals by embedding strategy",
		},
		[]string{"strategy"},
	)

	// BreakerStateChangesTotal counts circuit breaker transitions.
	BreakerStateChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanjeevani",
			Name:      "breaker_state_changes_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)
)

var pipelineMetricsOnce sync.Once

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Safe to call more than once.
func RegisterPipelineMetrics() {
	pipelineMetricsOnce.Do(func() {
		prometheus.MustRegister(StageFallbacksTotal)
		prometheus.MustRegister(GuidelineModeTotal)
		prometheus.MustRegister(AnalysesTotal)
		prometheus.MustRegister(RetrievalStrategyTotal)
		prometheus.MustRegister(BreakerStateChangesTotal)
	})
}

package chi

import (
	"context"

	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
	triageuc "github.com/kailas-cloud/sanjeevani/internal/usecase/triage"
)

// Analyzer runs the triage pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domtriage.Record, error)
	AnalyzeBatch(ctx context.Context, texts []string) ([]triageuc.Outcome, error)
}

// GuidelineReader exposes the loaded guideline corpus.
type GuidelineReader interface {
	Entries() []guideline.Entry
	At(i int) (guideline.Entry, bool)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

package triage

import (
	"context"

	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/classify"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/extract"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/index"
)

// Extractor turns free text into symptom phrases.
type Extractor interface {
	Extract(ctx context.Context, input string) ([]string, extract.Source)
}

// Retriever returns guideline candidates scored against a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]index.Candidate, index.Strategy)
}

// Classifier assesses risk from symptoms and grounded contexts.
type Classifier interface {
	Classify(ctx context.Context, in classify.Input) (domtriage.Assessment, classify.Source)
}

// Augmenter looks up related risks for symptoms.
type Augmenter interface {
	Related(symptoms []string) []string
}

// Package triage runs the analysis pipeline: extraction, retrieval, rerank, knowledge-graph
// lookup, classification and the safety gate.
package triage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	"github.com/kailas-cloud/sanjeevani/internal/logger"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/classify"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/extract"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/rerank"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/safety"
)

const (
	// DefaultRetrieveK is how many candidates are over-fetched for the reranker.
	DefaultRetrieveK = 5
	// DefaultBatchConcurrency bounds parallel analyses in AnalyzeBatch.
	DefaultBatchConcurrency = 4
	// MaxBatchSize is the maximum number of texts per batch.
	MaxBatchSize = 50
)

// Outcome is the result of one analysis run asynchronously or in a batch.
type Outcome struct {
	Record domtriage.Record
	Err    error
}

// Service is the triage pipeline. It holds no per-request state and is safe for concurrent use.
type Service struct {
	extractor  Extractor
	retriever  Retriever
	classifier Classifier
	augmenter  Augmenter

	retrieveK        int
	batchConcurrency int
	maxBatchSize     int
}

// New creates a triage service.
func New(extractor Extractor, retriever Retriever, classifier Classifier, augmenter Augmenter) *Service {
	return &Service{
		extractor:        extractor,
		retriever:        retriever,
		classifier:       classifier,
		augmenter:        augmenter,
		retrieveK:        DefaultRetrieveK,
		batchConcurrency: DefaultBatchConcurrency,
		maxBatchSize:     MaxBatchSize,
	}
}

// WithRetrieveK configures the over-fetch size. Values below rerank.TopN are ignored.
func (s *Service) WithRetrieveK(k int) *Service {
	if k >= rerank.TopN {
		s.retrieveK = k
	}
	return s
}

// WithBatchConcurrency configures the number of analyses AnalyzeBatch runs at once.
func (s *Service) WithBatchConcurrency(n int) *Service {
	if n > 0 {
		s.batchConcurrency = n
	}
	return s
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Analyze runs the pipeline on text. Blank text is rejected with domain.ErrInvalidInput
// before any stage runs; every other failure degrades inside its stage, so a non-blank
// input always yields a complete record.
func (s *Service) Analyze(ctx context.Context, text string) (domtriage.Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domtriage.Record{}, fmt.Errorf("text is required: %w", domain.ErrInvalidInput)
	}
	log := logger.FromContext(ctx)

	symptoms, extractSrc := s.extractor.Extract(ctx, text)

	query := text
	if terms := extract.QueryTerms(symptoms); len(terms) > 0 {
		query += " " + strings.Join(terms, " ")
	}
	candidates, strategy := s.retriever.Retrieve(ctx, query, s.retrieveK)
	ranked := rerank.Rerank(candidates, symptoms)

	// Every selected guideline is reported, but only those sharing a term with the
	// symptoms reach the classifier.
	contexts := make([]guideline.Entry, 0, len(ranked.Top))
	summaries := make([]domtriage.ContextSummary, len(ranked.Top))
	for i, r := range ranked.Top {
		summaries[i] = domtriage.ContextSummary{Title: r.Entry.Title, Risk: r.Entry.Risk, Referral: r.Entry.Referral}
		if r.Lexical+r.Tag > 0 {
			contexts = append(contexts, r.Entry)
		}
	}

	related := s.augmenter.Related(symptoms)

	assessment, classifySrc := s.classifier.Classify(ctx, classify.Input{
		Symptoms:     symptoms,
		Contexts:     contexts,
		RelatedRisks: related,
		Mode:         ranked.Mode,
	})

	phrases := make([]string, 0, len(symptoms)+1)
	phrases = append(phrases, symptoms...)
	phrases = append(phrases, text)

	rec := domtriage.Record{
		Symptoms:           symptoms,
		RiskPattern:        assessment.RiskPattern,
		RiskLevel:          assessment.RiskLevel,
		RecommendedActions: safety.Sanitize(assessment.RecommendedActions),
		ReferralNeeded:     assessment.ReferralNeeded,
		UrgentAlert:        safety.UrgentAlert(assessment.RiskLevel, phrases),
		Mode:               ranked.Mode,
		RetrievedContexts:  summaries,
		GraphInsights:      related,
	}

	metrics.GuidelineModeTotal.WithLabelValues(string(rec.Mode)).Inc()
	metrics.AnalysesTotal.WithLabelValues(string(rec.RiskLevel), strconv.FormatBool(rec.UrgentAlert)).Inc()

	log.Info("Case analyzed",
		zap.Int("symptoms", len(symptoms)),
		zap.String("extraction", string(extractSrc)),
		zap.String("retrieval", string(strategy)),
		zap.String("guideline_mode", string(rec.Mode)),
		zap.Int("max_lexical", ranked.MaxLexical),
		zap.String("classification", string(classifySrc)),
		zap.String("risk_level", string(rec.RiskLevel)),
		zap.Bool("urgent_alert", rec.UrgentAlert),
	)
	if rec.UrgentAlert {
		log.Warn("Urgent alert raised",
			zap.Strings("red_flags", safety.RedFlags(phrases)),
			zap.String("risk_level", string(rec.RiskLevel)),
		)
	}

	return rec, nil
}

// AnalyzeAsync runs Analyze in its own goroutine. The channel receives exactly one Outcome
// and is then closed.
func (s *Service) AnalyzeAsync(ctx context.Context, text string) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		rec, err := s.Analyze(ctx, text)
		out <- Outcome{Record: rec, Err: err}
	}()
	return out
}

// AnalyzeBatch analyzes texts concurrently and returns one Outcome per text in input order.
// Per-text failures are reported in the Outcome; the returned error is set only when the
// batch is too large or ctx ends before every text was analyzed.
func (s *Service) AnalyzeBatch(ctx context.Context, texts []string) ([]Outcome, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts are required: %w", domain.ErrInvalidInput)
	}
	if len(texts) > s.maxBatchSize {
		return nil, fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidInput)
	}

	results := make([]Outcome, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.Analyze(gctx, text)
			results[i] = Outcome{Record: rec, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	return results, nil
}

package sanjeevani

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/db"
	dbMemory "github.com/kailas-cloud/sanjeevani/internal/db/memory"
	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	"github.com/kailas-cloud/sanjeevani/internal/repository/embcache"
	graphrepo "github.com/kailas-cloud/sanjeevani/internal/repository/graph"
	guidelinerepo "github.com/kailas-cloud/sanjeevani/internal/repository/guideline"
	classifyuc "github.com/kailas-cloud/sanjeevani/internal/usecase/classify"
	extractuc "github.com/kailas-cloud/sanjeevani/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
	indexuc "github.com/kailas-cloud/sanjeevani/internal/usecase/index"
	insightuc "github.com/kailas-cloud/sanjeevani/internal/usecase/insight"
	triageuc "github.com/kailas-cloud/sanjeevani/internal/usecase/triage"
)

// Internal interface for substitution in tests.
type triageUseCase interface {
	Analyze(ctx context.Context, text string) (domtriage.Record, error)
	AnalyzeBatch(ctx context.Context, texts []string) ([]triageuc.Outcome, error)
}

// Client is the sanjeevani SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	corpus    *guideline.Corpus
	triageSvc triageUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads the guidelines, builds the retrieval index and wires the pipeline.
// The provided context bounds the corpus embedding done at startup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	corpus, err := loadCorpus(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.embedder != nil && cfg.cacheSize > 0 {
		s, err := dbMemory.NewStore(cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("sanjeevani: create embedding cache: %w", err)
		}
		store = s
	}

	return wireClient(ctx, cfg, corpus, store, obs), nil
}

func loadCorpus(cfg *clientConfig) (*guideline.Corpus, error) {
	if cfg.guidelinesPath != "" {
		corpus, err := guidelinerepo.Load(cfg.guidelinesPath)
		if err != nil {
			return nil, fmt.Errorf("sanjeevani: %w", err)
		}
		return corpus, nil
	}
	if len(cfg.guidelines) == 0 {
		return nil, errors.New("sanjeevani: guidelines required (use WithGuidelinesFile or WithGuidelines)")
	}

	entries := make([]guideline.Entry, len(cfg.guidelines))
	for i, g := range cfg.guidelines {
		entries[i] = guidelineToDomain(g)
	}
	corpus, err := guideline.NewCorpus(entries)
	if err != nil {
		return nil, fmt.Errorf("sanjeevani: %w", err)
	}
	return corpus, nil
}

func wireClient(
	ctx context.Context,
	cfg *clientConfig,
	corpus *guideline.Corpus,
	store db.Store,
	obs *observer,
) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	graph := graphrepo.New(cfg.graph)
	if cfg.graphPath != "" {
		graph = graphrepo.Load(cfg.graphPath, logger)
	}

	// nil interfaces select the deterministic fallbacks
	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = adaptEmbedder(cfg.embedder)
		if store != nil {
			embedder = embcache.New(embedder, store, embcache.Options{Namespace: "sdk"}, nil, logger)
		}
	}
	var generator domain.Generator
	if cfg.generator != nil {
		generator = &generatorAdapter{inner: cfg.generator}
	}

	index := indexuc.New(corpus, embedder, logger)
	index.Build(ctx)

	triageSvc := triageuc.New(
		extractuc.New(generator),
		index,
		classifyuc.New(generator),
		insightuc.New(graph),
	)
	if cfg.batchConcurrency > 0 {
		triageSvc = triageSvc.WithBatchConcurrency(cfg.batchConcurrency)
	}
	if cfg.maxBatchSize > 0 {
		triageSvc = triageSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	healthSvc := healthuc.New(index, corpus.Len())
	if store != nil {
		healthSvc.WithCache(store)
	}
	if hc, ok := cfg.embedder.(HealthChecker); ok {
		healthSvc.WithProvider(healthuc.ComponentEmbedding, hc)
	}
	if hc, ok := cfg.generator.(HealthChecker); ok {
		healthSvc.WithProvider(healthuc.ComponentGeneration, hc)
	}

	return &Client{
		store:     store,
		corpus:    corpus,
		triageSvc: triageSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Analyze runs the triage pipeline on one free-text case.
// Only blank input fails; provider outages degrade to fallbacks.
func (c *Client) Analyze(ctx context.Context, text string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analyze", start, err) }()

	r, err := c.triageSvc.Analyze(ctx, text)
	if err != nil {
		return Record{}, fmt.Errorf("analyze: %w", err)
	}
	return recordFromDomain(&r), nil
}

// AnalyzeAsync runs Analyze in the background. The channel receives exactly one
// Result and is then closed.
func (c *Client) AnalyzeAsync(ctx context.Context, text string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		rec, err := c.Analyze(ctx, text)
		out <- Result{Record: rec, Err: err}
	}()
	return out
}

// AnalyzeBatch analyzes texts concurrently. Results keep input order; a failure of
// one case is reported in its Result and does not fail the batch.
func (c *Client) AnalyzeBatch(ctx context.Context, texts []string) (results []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analyze_batch", start, err) }()

	outcomes, err := c.triageSvc.AnalyzeBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}

	results = make([]Result, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			results[i] = Result{Err: o.Err}
			continue
		}
		results[i] = Result{Record: recordFromDomain(&o.Record)}
	}
	return results, nil
}

// Guidelines returns the loaded corpus in position order.
func (c *Client) Guidelines() []Guideline {
	entries := c.corpus.Entries()
	out := make([]Guideline, len(entries))
	for i, e := range entries {
		out[i] = guidelineFromDomain(e)
	}
	return out
}

// Guideline returns the entry at position.
func (c *Client) Guideline(position int) (Guideline, error) {
	e, ok := c.corpus.At(position)
	if !ok {
		return Guideline{}, fmt.Errorf("guideline %d: %w", position, ErrNotFound)
	}
	return guidelineFromDomain(e), nil
}

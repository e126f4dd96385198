package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/breaker"
	"github.com/kailas-cloud/sanjeevani/internal/config"
	"github.com/kailas-cloud/sanjeevani/internal/db"
	dbMemory "github.com/kailas-cloud/sanjeevani/internal/db/memory"
	dbValkey "github.com/kailas-cloud/sanjeevani/internal/db/valkey"
	"github.com/kailas-cloud/sanjeevani/internal/domain"
	logpkg "github.com/kailas-cloud/sanjeevani/internal/logger"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
	"github.com/kailas-cloud/sanjeevani/internal/repository/embcache"
	graphrepo "github.com/kailas-cloud/sanjeevani/internal/repository/graph"
	guidelinerepo "github.com/kailas-cloud/sanjeevani/internal/repository/guideline"
	chiTransport "github.com/kailas-cloud/sanjeevani/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/sanjeevani/internal/transport/openai"
	classifyuc "github.com/kailas-cloud/sanjeevani/internal/usecase/classify"
	embeddinguc "github.com/kailas-cloud/sanjeevani/internal/usecase/embedding"
	extractuc "github.com/kailas-cloud/sanjeevani/internal/usecase/extract"
	generationuc "github.com/kailas-cloud/sanjeevani/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
	indexuc "github.com/kailas-cloud/sanjeevani/internal/usecase/index"
	insightuc "github.com/kailas-cloud/sanjeevani/internal/usecase/insight"
	triageuc "github.com/kailas-cloud/sanjeevani/internal/usecase/triage"
	"github.com/kailas-cloud/sanjeevani/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("version", version.Version))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sanjeevani API server",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("guidelines", cfg.Guidelines.Path),
		zap.Bool("embedding_enabled", cfg.EmbeddingEnabled()),
		zap.Bool("generation_enabled", cfg.GenerationEnabled()),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterPipelineMetrics()

	corpus, err := guidelinerepo.Load(cfg.Guidelines.Path)
	if err != nil {
		logger.Fatal("Failed to load guidelines", zap.Error(err))
	}
	graph := graphrepo.Load(cfg.Guidelines.KnowledgeGraphPath, logger)
	logger.Info("Guidelines loaded",
		zap.Int("entries", corpus.Len()),
		zap.Int("graph_symptoms", len(graph)),
	)

	ctx := context.Background()

	store, err := buildCacheStore(ctx, &cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	breakerSettings := breaker.Settings{
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: time.Duration(cfg.Breaker.OpenTimeoutSec) * time.Second,
	}

	// Pass nil interfaces (not typed nil pointers!) when a provider is not configured:
	// every stage treats a nil collaborator as "use the deterministic fallback".
	var (
		embedder  domain.Embedder
		generator domain.Generator
		checks    []func(*healthuc.Service)
	)

	if cfg.EmbeddingEnabled() {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		cb := breaker.New("embedding", breakerSettings, logger)
		embedder = buildEmbedder(base, cb, store, &cfg, logger)
		checks = append(checks, func(h *healthuc.Service) {
			h.WithProvider(healthuc.ComponentEmbedding, base)
			if cb != nil {
				h.WithBreaker("embedding", cb)
			}
		})
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	if cfg.GenerationEnabled() {
		base := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			Config: openaiTransport.Config{
				APIKey:   cfg.Generation.APIKey,
				BaseURL:  cfg.Generation.BaseURL,
				Model:    cfg.Generation.Model,
				Provider: cfg.Generation.Provider,
				Timeout:  time.Duration(cfg.Generation.TimeoutSec) * time.Second,
				Logger:   logger,
			},
			Temperature:  cfg.Generation.Temperature,
			StrictSchema: cfg.Generation.StrictSchema,
		})
		cb := breaker.New("generation", breakerSettings, logger)
		generator = generationuc.NewInstrumentedGenerator(
			generationuc.NewBreakerGenerator(base, cb),
			cfg.Generation.Provider, cfg.Generation.Model, logger,
		)
		checks = append(checks, func(h *healthuc.Service) {
			h.WithProvider(healthuc.ComponentGeneration, base)
			if cb != nil {
				h.WithBreaker("generation", cb)
			}
		})
		logger.Info("Generator created",
			zap.String("provider", cfg.Generation.Provider),
			zap.String("model", cfg.Generation.Model),
			zap.Bool("strict_schema", cfg.Generation.StrictSchema),
		)
	}

	// Build the index up front so the first request does not pay for corpus embedding.
	index := indexuc.New(corpus, embedder, logger)
	buildCtx, cancelBuild := context.WithTimeout(ctx, time.Duration(cfg.Embedding.TimeoutSec)*2*time.Second)
	index.Build(logpkg.ContextWithLogger(buildCtx, logger))
	cancelBuild()

	triageSvc := triageuc.New(
		extractuc.New(generator),
		index,
		classifyuc.New(generator),
		insightuc.New(graph),
	).
		WithRetrieveK(cfg.Pipeline.RetrieveK).
		WithBatchConcurrency(cfg.Pipeline.BatchConcurrency).
		WithMaxBatchSize(cfg.Pipeline.MaxBatchSize)

	healthSvc := healthuc.New(index, corpus.Len())
	if store != nil {
		healthSvc.WithCache(store)
	}
	for _, add := range checks {
		add(healthSvc)
	}

	server := chiTransport.NewServer(triageSvc, corpus, healthSvc)
	handler := chiTransport.NewHandler(server, chiTransport.HandlerConfig{
		APIKeys: cfg.Auth.APIKeys,
		Limiter: chiTransport.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCacheStore creates the embedding cache backend. Returns nil for driver "none".
func buildCacheStore(ctx context.Context, cfg *config.CacheConfig) (db.Store, error) {
	var store db.Store
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		s, err := dbMemory.NewStore(cfg.Size)
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		store = s
	case config.CacheValkey:
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create valkey store: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Breaker -> Cached -> Instrumented.
// The cache sits outside the breaker so cached vectors keep serving while the provider is open.
func buildEmbedder(
	base *openaiTransport.Embedder,
	cb *breaker.Breaker,
	store db.Store,
	cfg *config.Config,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = embeddinguc.NewBreakerEmbedder(base, cb)

	if store != nil {
		embedder = embcache.New(embedder, store, embcache.Options{
			Namespace: fmt.Sprintf("%s/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions),
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
}

package sanjeevani

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	guidelinesPath string
	guidelines     []Guideline

	graphPath string
	graph     map[string][]string

	embedder  Embedder
	generator Generator

	cacheSize int

	batchConcurrency int
	maxBatchSize     int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithGuidelinesFile loads the guideline corpus from a JSON or YAML file.
func WithGuidelinesFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.guidelinesPath = path
	})
}

// WithGuidelines uses an in-memory guideline corpus.
// Ignored when WithGuidelinesFile is also given.
func WithGuidelines(entries []Guideline) Option {
	return optionFunc(func(c *clientConfig) {
		c.guidelines = entries
	})
}

// WithKnowledgeGraphFile loads the symptom to related-risk graph from a JSON file.
// A missing or malformed file yields an empty graph.
func WithKnowledgeGraphFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.graphPath = path
	})
}

// WithKnowledgeGraph uses an in-memory symptom to related-risk graph.
// Ignored when WithKnowledgeGraphFile is also given.
func WithKnowledgeGraph(graph map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.graph = graph
	})
}

// WithEmbedder sets the text embedding provider used for guideline retrieval.
// Without it retrieval uses the bag-of-words index.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the generative provider used for extraction and classification.
// Without it both stages use their deterministic fallbacks.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithEmbeddingCache keeps up to size query embeddings in an in-process LRU.
// Has no effect without WithEmbedder.
func WithEmbeddingCache(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithBatchConcurrency limits how many cases AnalyzeBatch runs at once. Default: 4.
func WithBatchConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchConcurrency = n
	})
}

// WithMaxBatchSize sets the maximum number of texts per AnalyzeBatch call. Default: 50.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations and pipeline stages.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

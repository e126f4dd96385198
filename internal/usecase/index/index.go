// Package index is the guideline embedding index. It keeps two vector spaces over the same
// corpus: the embedding service space (when the corpus embedded successfully) and a
// bag-of-words space that is always available. A query is scored in exactly one space.
package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/text"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
)

// Strategy names the vector space a retrieval was scored in.
type Strategy string

// Retrieval strategies.
const (
	StrategyService    Strategy = "service"
	StrategyBagOfWords Strategy = "bag_of_words"
)

// Candidate is a scored guideline returned by Retrieve.
type Candidate struct {
	Position int
	Entry    guideline.Entry
	Score    float64
}

// Index is built once and read-only afterwards; Retrieve is safe for concurrent use.
type Index struct {
	corpus   *guideline.Corpus
	embedder domain.Embedder
	logger   *zap.Logger

	once    sync.Once
	service [][]float32
	vocab   map[string]int
	bow     [][]float32
}

// New creates an index over corpus. embedder may be nil, in which case only the
// bag-of-words space is used.
func New(corpus *guideline.Corpus, embedder domain.Embedder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{corpus: corpus, embedder: embedder, logger: logger}
}

// Build prepares both vector spaces. Only the first call does work; later calls wait for it
// and return. Retrieve calls Build itself, so calling it up front only moves the cost to startup.
// Cancellation of ctx does not abort the build: the result is kept for the process lifetime.
func (ix *Index) Build(ctx context.Context) {
	ix.once.Do(func() { ix.build(context.WithoutCancel(ctx)) })
}

func (ix *Index) build(ctx context.Context) {
	texts := make([]string, ix.corpus.Len())
	for i, t := range ix.corpus.Texts() {
		texts[i] = text.Normalize(t)
	}

	ix.vocab, ix.bow = buildBagOfWords(texts)
	ix.service = ix.embedCorpus(ctx, texts)

	ix.logger.Info("Guideline index built",
		zap.Int("entries", len(texts)),
		zap.Int("vocabulary", len(ix.vocab)),
		zap.String("strategy", string(ix.strategy())),
	)
}

func (ix *Index) embedCorpus(ctx context.Context, texts []string) [][]float32 {
	if ix.embedder == nil || len(texts) == 0 {
		return nil
	}

	res, err := domain.EmbedAll(ctx, ix.embedder, texts)
	if err != nil {
		metrics.StageFallbacksTotal.WithLabelValues("index_build", "embed_error").Inc()
		ix.logger.Warn("Guideline embedding failed, using bag-of-words index", zap.Error(err))
		return nil
	}
	if len(res.Embeddings) != len(texts) {
		metrics.StageFallbacksTotal.WithLabelValues("index_build", "count_mismatch").Inc()
		ix.logger.Warn("Guideline embedding count mismatch, using bag-of-words index",
			zap.Int("expected", len(texts)), zap.Int("got", len(res.Embeddings)))
		return nil
	}

	dim := len(res.Embeddings[0])
	out := make([][]float32, len(res.Embeddings))
	for i, v := range res.Embeddings {
		if dim == 0 || len(v) != dim {
			metrics.StageFallbacksTotal.WithLabelValues("index_build", "dimension_mismatch").Inc()
			ix.logger.Warn("Guideline embeddings have inconsistent dimensions, using bag-of-words index",
				zap.Int("row", i), zap.Int("dim", len(v)), zap.Int("expected", dim))
			return nil
		}
		out[i] = normalize(append([]float32(nil), v...))
	}
	return out
}

// Retrieve returns the k entries most similar to query, best first, ties by position.
// k is clamped to [0, corpus size]. Embedding service failures are never returned: the
// query is scored in the bag-of-words space instead.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]Candidate, Strategy) {
	ix.Build(ctx)

	normalized := text.Normalize(query)
	matrix, qv, strategy := ix.bow, ix.bowVector(normalized), StrategyBagOfWords
	if v, ok := ix.serviceVector(ctx, normalized); ok {
		matrix, qv, strategy = ix.service, v, StrategyService
	}
	metrics.RetrievalStrategyTotal.WithLabelValues(string(strategy)).Inc()

	k = max(0, min(k, ix.corpus.Len()))
	if k == 0 {
		return nil, strategy
	}

	scored := make([]Candidate, len(matrix))
	for i, row := range matrix {
		scored[i] = Candidate{Position: i, Score: dot(row, qv)}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	out := scored[:k]
	for i := range out {
		out[i].Entry, _ = ix.corpus.At(out[i].Position)
	}
	return out, strategy
}

func (ix *Index) serviceVector(ctx context.Context, query string) ([]float32, bool) {
	if ix.service == nil || query == "" {
		return nil, false
	}
	res, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		metrics.StageFallbacksTotal.WithLabelValues("retrieval", "embed_error").Inc()
		ix.logger.Warn("Query embedding failed, using bag-of-words retrieval", zap.Error(err))
		return nil, false
	}
	return normalize(fitDimension(res.Embedding, len(ix.service[0]))), true
}

func (ix *Index) bowVector(query string) []float32 {
	v := make([]float32, len(ix.vocab))
	for _, w := range text.Words(query) {
		if j, ok := ix.vocab[w]; ok {
			v[j]++
		}
	}
	return normalize(v)
}

// Strategy reports the space queries are scored in while the embedding service is healthy.
// It builds the index first if nobody has.
func (ix *Index) Strategy() Strategy {
	ix.Build(context.Background())
	return ix.strategy()
}

func (ix *Index) strategy() Strategy {
	if ix.service != nil {
		return StrategyService
	}
	return StrategyBagOfWords
}

// Vectors returns copies of the service matrix (nil when unavailable) and the bag-of-words matrix.
func (ix *Index) Vectors() (service, bagOfWords [][]float32) {
	ix.Build(context.Background())
	return cloneMatrix(ix.service), cloneMatrix(ix.bow)
}

// Vocabulary returns the bag-of-words term positions in first-appearance order.
func (ix *Index) Vocabulary() []string {
	ix.Build(context.Background())
	out := make([]string, len(ix.vocab))
	for w, j := range ix.vocab {
		out[j] = w
	}
	return out
}

func buildBagOfWords(texts []string) (map[string]int, [][]float32) {
	vocab := make(map[string]int)
	for _, t := range texts {
		for _, w := range text.Words(t) {
			if _, ok := vocab[w]; !ok {
				vocab[w] = len(vocab)
			}
		}
	}

	matrix := make([][]float32, len(texts))
	for i, t := range texts {
		row := make([]float32, len(vocab))
		for _, w := range text.Words(t) {
			row[vocab[w]]++
		}
		matrix[i] = normalize(row)
	}
	return vocab, matrix
}

// fitDimension zero-pads or truncates v to dim.
func fitDimension(v []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// normalize scales v to unit L2 norm in place. Zero vectors stay zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func cloneMatrix(m [][]float32) [][]float32 {
	if m == nil {
		return nil
	}
	out := make([][]float32, len(m))
	for i, row := range m {
		out[i] = append([]float32(nil), row...)
	}
	return out
}

package index

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

// fakeEmbedder maps known texts to fixed vectors and fails on demand.
type fakeEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	dim        int
	queryDim   int
	batchErr   error
	embedErr   error
	honorCtx   bool
	batchCalls int
	embedCalls int
}

func (f *fakeEmbedder) vector(text string, dim int) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := make([]float32, dim)
	v[len(text)%dim] = 1
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.embedErr != nil {
		return domain.EmbeddingResult{}, f.embedErr
	}
	dim := f.dim
	if f.queryDim > 0 {
		dim = f.queryDim
	}
	return domain.EmbeddingResult{Embedding: f.vector(text, dim)}, nil
}

func (f *fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.honorCtx && ctx.Err() != nil {
		return domain.BatchEmbeddingResult{}, ctx.Err()
	}
	if f.batchErr != nil {
		return domain.BatchEmbeddingResult{}, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t, f.dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func testCorpus(t *testing.T) *guideline.Corpus {
	t.Helper()
	c, err := guideline.NewCorpus([]guideline.Entry{
		{Title: "Fever", Guideline: "High fever with chills and sweating.", Risk: risk.Medium},
		{Title: "Chest pain", Guideline: "Chest pain spreading to the arm.", Risk: risk.High, Referral: true},
		{Title: "Diarrhoea", Guideline: "Loose stools and dehydration in children.", Risk: risk.Medium},
		{Title: "Cough", Guideline: "Cough for more than two weeks with fever.", Risk: risk.Medium},
	})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return c
}

func assertUnitRows(t *testing.T, m [][]float32) {
	t.Helper()
	for i, row := range m {
		var sum float64
		for _, x := range row {
			sum += float64(x) * float64(x)
		}
		if sum == 0 {
			continue
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
			t.Errorf("row %d norm = %f, want 1", i, math.Sqrt(sum))
		}
	}
}

func TestBuild_BagOfWordsOnly(t *testing.T) {
	ix := New(testCorpus(t), nil, zap.NewNop())
	ix.Build(context.Background())

	service, bow := ix.Vectors()
	if service != nil {
		t.Fatal("expected no service matrix without embedder")
	}
	if len(bow) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(bow))
	}
	assertUnitRows(t, bow)
	if ix.Strategy() != StrategyBagOfWords {
		t.Errorf("Strategy = %s", ix.Strategy())
	}

	vocab := ix.Vocabulary()
	if vocab[0] != "high" || vocab[1] != "fever" {
		t.Errorf("vocabulary not in first-appearance order: %v", vocab[:3])
	}
	for _, row := range bow {
		if len(row) != len(vocab) {
			t.Fatalf("row dim %d != vocabulary size %d", len(row), len(vocab))
		}
	}
}

func TestBuild_ServiceSpace(t *testing.T) {
	emb := &fakeEmbedder{dim: 8}
	ix := New(testCorpus(t), emb, zap.NewNop())
	ix.Build(context.Background())
	ix.Build(context.Background())

	if emb.batchCalls != 1 {
		t.Errorf("corpus embedded %d times, want once", emb.batchCalls)
	}
	service, bow := ix.Vectors()
	if len(service) != 4 || len(service[0]) != 8 {
		t.Fatalf("unexpected service matrix shape")
	}
	assertUnitRows(t, service)
	if len(bow) != 4 {
		t.Errorf("bag-of-words matrix must always be built")
	}
	if ix.Strategy() != StrategyService {
		t.Errorf("Strategy = %s", ix.Strategy())
	}
}

func TestBuild_CanceledFirstCallerStillBuildsServiceSpace(t *testing.T) {
	emb := &fakeEmbedder{dim: 8, honorCtx: true}
	ix := New(testCorpus(t), emb, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ix.Retrieve(ctx, "chest pain", 1)

	if ix.Strategy() != StrategyService {
		t.Errorf("Strategy = %s, want service after a canceled first request", ix.Strategy())
	}
	if emb.batchCalls != 1 {
		t.Errorf("corpus embedded %d times, want once", emb.batchCalls)
	}
}

func TestStrategy_BuildsOnFirstUse(t *testing.T) {
	emb := &fakeEmbedder{dim: 8}
	ix := New(testCorpus(t), emb, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]Strategy, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = ix.Strategy()
		}()
	}
	wg.Wait()

	for i, s := range results {
		if s != StrategyService {
			t.Errorf("Strategy[%d] = %s, want service", i, s)
		}
	}
	if emb.batchCalls != 1 {
		t.Errorf("corpus embedded %d times, want once", emb.batchCalls)
	}
}

func TestBuild_EmbedFailureKeepsBagOfWords(t *testing.T) {
	emb := &fakeEmbedder{dim: 8, batchErr: domain.ErrEmbeddingProviderError}
	ix := New(testCorpus(t), emb, zap.NewNop())

	got, strategy := ix.Retrieve(context.Background(), "chest pain arm", 2)
	if strategy != StrategyBagOfWords {
		t.Fatalf("strategy = %s, want bag_of_words", strategy)
	}
	if emb.embedCalls != 0 {
		t.Errorf("query must not be embedded without a service matrix")
	}
	if got[0].Entry.Title != "Chest pain" {
		t.Errorf("top = %q, want Chest pain", got[0].Entry.Title)
	}
}

func TestRetrieve_ServiceQuery(t *testing.T) {
	target := "loose stools and dehydration in children"
	emb := &fakeEmbedder{dim: 4, vectors: map[string][]float32{
		"high fever with chills and sweating":      {1, 0, 0, 0},
		"chest pain spreading to the arm":          {0, 1, 0, 0},
		target:                                     {0, 0, 1, 0},
		"cough for more than two weeks with fever": {0, 0, 0, 1},
		"watery stools":                            {0, 0.1, 3, 0},
	}}
	ix := New(testCorpus(t), emb, zap.NewNop())

	got, strategy := ix.Retrieve(context.Background(), "Watery stools!", 1)
	if strategy != StrategyService {
		t.Fatalf("strategy = %s, want service", strategy)
	}
	if len(got) != 1 || got[0].Position != 2 {
		t.Fatalf("got %+v, want position 2", got)
	}
	if got[0].Score <= 0.9 {
		t.Errorf("score = %f, expected close to 1", got[0].Score)
	}
}

func TestRetrieve_QueryEmbedFailureFallsBack(t *testing.T) {
	emb := &fakeEmbedder{dim: 8}
	ix := New(testCorpus(t), emb, zap.NewNop())
	ix.Build(context.Background())

	emb.embedErr = errors.New("timeout")
	got, strategy := ix.Retrieve(context.Background(), "loose stools children", 3)
	if strategy != StrategyBagOfWords {
		t.Fatalf("strategy = %s, want bag_of_words", strategy)
	}
	if got[0].Entry.Title != "Diarrhoea" {
		t.Errorf("top = %q, want Diarrhoea", got[0].Entry.Title)
	}
}

func TestRetrieve_QueryDimensionMismatch(t *testing.T) {
	for _, qdim := range []int{3, 12} {
		emb := &fakeEmbedder{dim: 8, queryDim: qdim}
		ix := New(testCorpus(t), emb, zap.NewNop())

		got, strategy := ix.Retrieve(context.Background(), "fever", 4)
		if strategy != StrategyService {
			t.Fatalf("qdim %d: strategy = %s, want service", qdim, strategy)
		}
		if len(got) != 4 {
			t.Fatalf("qdim %d: got %d candidates", qdim, len(got))
		}
	}
}

func TestRetrieve_ClampAndOrder(t *testing.T) {
	ix := New(testCorpus(t), nil, zap.NewNop())
	ctx := context.Background()

	if got, _ := ix.Retrieve(ctx, "fever", -1); len(got) != 0 {
		t.Errorf("negative k returned %d", len(got))
	}
	if got, _ := ix.Retrieve(ctx, "fever", 0); len(got) != 0 {
		t.Errorf("zero k returned %d", len(got))
	}

	got, _ := ix.Retrieve(ctx, "fever", 100)
	if len(got) != 4 {
		t.Fatalf("k above corpus size returned %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Score < cur.Score || (prev.Score == cur.Score && prev.Position > cur.Position) {
			t.Errorf("candidates out of order at %d: %+v then %+v", i, prev, cur)
		}
	}
}

func TestRetrieve_UnknownWordsTieByPosition(t *testing.T) {
	ix := New(testCorpus(t), nil, zap.NewNop())

	got, _ := ix.Retrieve(context.Background(), "zzz qqq", 4)
	for i, c := range got {
		if c.Position != i || c.Score != 0 {
			t.Errorf("candidate %d = %+v, want position %d score 0", i, c, i)
		}
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	a, _ := New(testCorpus(t), nil, zap.NewNop()).Retrieve(context.Background(), "fever cough", 3)
	b, _ := New(testCorpus(t), nil, zap.NewNop()).Retrieve(context.Background(), "fever cough", 3)
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Score != b[i].Score {
			t.Fatalf("non-deterministic retrieval at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	c, _ := guideline.NewCorpus(nil)
	emb := &fakeEmbedder{dim: 4}
	ix := New(c, emb, zap.NewNop())

	got, _ := ix.Retrieve(context.Background(), "fever", 3)
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
	if emb.batchCalls != 0 {
		t.Errorf("empty corpus must not call the embedder")
	}
}

func TestNormalize_ZeroStaysZero(t *testing.T) {
	v := normalize([]float32{0, 0, 0})
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", v)
		}
	}
}

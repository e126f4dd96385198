package sanjeevani

import (
	"context"
	"errors"
	"strings"

	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
	triageuc "github.com/kailas-cloud/sanjeevani/internal/usecase/triage"
)

// --- triageUseCase mock ---

type mockTriageUC struct {
	analyzeFn func(ctx context.Context, text string) (domtriage.Record, error)
	batchFn   func(ctx context.Context, texts []string) ([]triageuc.Outcome, error)
}

func (m *mockTriageUC) Analyze(ctx context.Context, text string) (domtriage.Record, error) {
	return m.analyzeFn(ctx, text)
}

func (m *mockTriageUC) AnalyzeBatch(ctx context.Context, texts []string) ([]triageuc.Outcome, error) {
	return m.batchFn(ctx, texts)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- providers ---

// fakeEmbedder maps text to a small deterministic vector.
type fakeEmbedder struct {
	calls     int
	healthErr error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	f.calls++
	return EmbeddingResult{
		Embedding:   []float32{float32(len(text)), 1, float32(strings.Count(text, "e"))},
		TotalTokens: len(strings.Fields(text)),
	}, nil
}

func (f *fakeEmbedder) HealthCheck(_ context.Context) error {
	return f.healthErr
}

type fakeBatchEmbedder struct {
	fakeEmbedder
	batchCalls int
}

func (f *fakeBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	f.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, _ := f.Embed(ctx, t)
		out.Embeddings[i] = r.Embedding
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

type fakeGenerator struct {
	content string
	err     error
	got     []GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return GenerateResult{}, f.err
	}
	return GenerateResult{Content: f.content, TotalTokens: 7}, nil
}

var errProviderDown = errors.New("provider down")

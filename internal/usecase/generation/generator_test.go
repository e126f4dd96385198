package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/breaker"
	"github.com/kailas-cloud/sanjeevani/internal/domain"
)

type mockGenerator struct {
	res   domain.GenerateResult
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ domain.GenerateRequest) (domain.GenerateResult, error) {
	m.calls++
	return m.res, m.err
}

func TestInstrumentedGenerator_RecordsUsage(t *testing.T) {
	inner := &mockGenerator{res: domain.GenerateResult{Content: "{}", TotalTokens: 17}}
	g := NewInstrumentedGenerator(inner, "test", "chat", zap.NewNop())
	ctx, usage := domain.NewContextWithUsage(context.Background())

	res, err := g.Generate(ctx, domain.GenerateRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "{}" {
		t.Errorf("Content = %q", res.Content)
	}
	if usage.GenerationTokens() != 17 {
		t.Errorf("GenerationTokens = %d, want 17", usage.GenerationTokens())
	}
}

func TestInstrumentedGenerator_WrapsError(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrGenerationFailed}
	g := NewInstrumentedGenerator(inner, "test", "chat", nil)

	_, err := g.Generate(context.Background(), domain.GenerateRequest{})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestBreakerGenerator_FailsFastWhenOpen(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrGenerationFailed}
	cb := breaker.New("generator-test", breaker.Settings{MaxFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())
	g := NewBreakerGenerator(inner, cb)

	for i := 0; i < 2; i++ {
		if _, err := g.Generate(context.Background(), domain.GenerateRequest{}); !errors.Is(err, domain.ErrGenerationFailed) {
			t.Fatalf("call %d: expected ErrGenerationFailed, got %v", i, err)
		}
	}
	_, err := g.Generate(context.Background(), domain.GenerateRequest{})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if g.State() != "open" {
		t.Errorf("State = %q, want open", g.State())
	}
}

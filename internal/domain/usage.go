package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// Usage collects provider token usage for a single HTTP request.
// The handler puts it into the context before calling the pipeline; stages add to it;
// the handler reads it for response headers. Safe for concurrent stages.
type Usage struct {
	embeddingTokens  atomic.Int64
	generationTokens atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records embedding tokens. Nil-safe.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.embeddingTokens.Add(int64(n))
	}
}

// AddGenerationTokens records generation tokens. Nil-safe.
func (u *Usage) AddGenerationTokens(n int) {
	if u != nil {
		u.generationTokens.Add(int64(n))
	}
}

// EmbeddingTokens returns the recorded embedding tokens.
func (u *Usage) EmbeddingTokens() int64 {
	if u == nil {
		return 0
	}
	return u.embeddingTokens.Load()
}

// GenerationTokens returns the recorded generation tokens.
func (u *Usage) GenerationTokens() int64 {
	if u == nil {
		return 0
	}
	return u.generationTokens.Load()
}

package embedding

import (
	"context"

	"github.com/kailas-cloud/sanjeevani/internal/breaker"
	"github.com/kailas-cloud/sanjeevani/internal/domain"
)

// BreakerEmbedder short-circuits embedding calls while the provider keeps failing.
type BreakerEmbedder struct {
	inner domain.Embedder
	cb    *breaker.Breaker
}

// NewBreakerEmbedder wraps inner with cb. A nil cb disables short-circuiting.
func NewBreakerEmbedder(inner domain.Embedder, cb *breaker.Breaker) *BreakerEmbedder {
	return &BreakerEmbedder{inner: inner, cb: cb}
}

// Embed implements domain.Embedder.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var res domain.EmbeddingResult
	err := b.cb.Do(func() error {
		var err error
		res, err = b.inner.Embed(ctx, text)
		return err
	})
	return res, err
}

// BatchEmbed implements domain.BatchEmbedder. One batch counts as one breaker call.
func (b *BreakerEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var res domain.BatchEmbeddingResult
	err := b.cb.Do(func() error {
		var err error
		res, err = domain.EmbedAll(ctx, b.inner, texts)
		return err
	})
	return res, err
}

// State exposes the breaker state for health reporting.
func (b *BreakerEmbedder) State() string {
	return b.cb.State()
}

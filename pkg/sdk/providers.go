package sanjeevani

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
)

// Chat roles used in GenerateRequest messages.
const (
	RoleSystem = domain.RoleSystem
	RoleUser   = domain.RoleUser
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Optional: if the provided Embedder also implements BatchEmbedder,
// the guideline corpus is embedded in one call at startup.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces a chat completion.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// Message is a single chat turn.
type Message struct {
	Role    string
	Content string
}

// GenerateRequest is a completion request. SchemaName and Schema are set when the
// pipeline wants JSON output; providers without schema support may ignore them.
type GenerateRequest struct {
	Messages   []Message
	SchemaName string
	Schema     json.RawMessage
}

// GenerateResult carries the raw completion text and token usage.
type GenerateResult struct {
	Content     string
	TotalTokens int
}

// HealthChecker is implemented by providers that can report their availability.
// Providers that implement it are included in Client.Health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// batchEmbedderAdapter additionally exposes BatchEmbed when the public embedder has it.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func adaptEmbedder(e Embedder) domain.Embedder {
	base := embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: base, batch: be}
	}
	return &base
}

// generatorAdapter wraps public Generator to satisfy internal domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	pub := GenerateRequest{Messages: make([]Message, len(req.Messages))}
	for i, m := range req.Messages {
		pub.Messages[i] = Message{Role: m.Role, Content: m.Content}
	}
	if req.Schema != nil {
		schema, err := req.Schema.Schema.MarshalJSON()
		if err != nil {
			return domain.GenerateResult{}, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		pub.SchemaName = req.Schema.Name
		pub.Schema = schema
	}

	r, err := a.inner.Generate(ctx, pub)
	if err != nil {
		return domain.GenerateResult{}, fmt.Errorf("generate: %w: %w", domain.ErrGenerationFailed, err)
	}
	return domain.GenerateResult{Content: r.Content, TotalTokens: r.TotalTokens}, nil
}

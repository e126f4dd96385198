// Package extract turns free-text case descriptions into symptom phrases.
package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/text"
	"github.com/kailas-cloud/sanjeevani/internal/logger"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/llmjson"
)

// MaxFallbackSymptoms caps the deterministic split.
const MaxFallbackSymptoms = 10

var splitter = regexp.MustCompile(`[;,\n]|\band\b|\bwith\b`)

// Source tells which path produced the symptoms.
type Source string

// Extraction sources.
const (
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
)

// Extractor asks the generator for symptoms and falls back to a deterministic split.
type Extractor struct {
	gen domain.Generator
}

// New creates an extractor. A nil generator always uses the fallback split.
func New(gen domain.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract returns symptom phrases for text. It never fails: generator errors are logged
// and replaced by Fallback(text).
func (e *Extractor) Extract(ctx context.Context, input string) ([]string, Source) {
	if e.gen == nil {
		metrics.StageFallbacksTotal.WithLabelValues("extraction", "no_generator").Inc()
		return Fallback(input), SourceFallback
	}

	res, err := e.gen.Generate(ctx, domain.GenerateRequest{
		Messages: messages(input),
		Schema:   responseSchema,
	})
	if err != nil {
		metrics.StageFallbacksTotal.WithLabelValues("extraction", "generation_error").Inc()
		logger.FromContext(ctx).Warn("Symptom extraction failed, using text split", zap.Error(err))
		return Fallback(input), SourceFallback
	}

	obj, tier := llmjson.Decode(res.Content)
	if tier == llmjson.TierDefaults {
		metrics.StageFallbacksTotal.WithLabelValues("extraction", "unparsable").Inc()
		logger.FromContext(ctx).Warn("Symptom extraction output unparsable",
			zap.Int("content_len", len(res.Content)))
	}
	symptoms := obj.StringList("symptoms")
	if symptoms == nil {
		symptoms = []string{}
	}
	return symptoms, SourceGenerator
}

// Fallback splits lower-cased text on commas, semicolons, newlines and the words
// "and"/"with", trims the parts, drops empty ones and keeps at most MaxFallbackSymptoms.
func Fallback(input string) []string {
	parts := splitter.Split(strings.ToLower(input), -1)
	out := make([]string, 0, min(len(parts), MaxFallbackSymptoms))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == MaxFallbackSymptoms {
			break
		}
	}
	return out
}

// QueryTerms prepares symptoms for retrieval: punctuation dropped, case folded,
// empty phrases removed. Display phrases are left untouched.
func QueryTerms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if t := text.StripPunct(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

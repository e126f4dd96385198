// Package classify turns symptoms and retrieved guidelines into a validated risk assessment.
package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
	"github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	"github.com/kailas-cloud/sanjeevani/internal/logger"
	"github.com/kailas-cloud/sanjeevani/internal/metrics"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/llmjson"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/safety"
)

// MaxFallbackActions caps the aggregated actions of the deterministic path.
const MaxFallbackActions = 8

// Source tells which path produced the assessment.
type Source string

// Classification sources.
const (
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
)

// Input is everything the classifier sees for one case.
type Input struct {
	Symptoms     []string
	Contexts     []guideline.Entry
	RelatedRisks []string
	Mode         mode.Mode
}

// Classifier asks the generator for an assessment and falls back to aggregating the contexts.
type Classifier struct {
	gen domain.Generator
}

// New creates a classifier. A nil generator always uses the aggregation fallback.
func New(gen domain.Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Classify never fails. Generated output is coerced field by field; generator errors switch
// to Fallback. Actions are sanitized on both paths. In fallback mode the contexts did not
// overlap the input, so the deterministic path aggregates nothing and returns the safe default.
func (c *Classifier) Classify(ctx context.Context, in Input) (triage.Assessment, Source) {
	if c.gen == nil {
		metrics.StageFallbacksTotal.WithLabelValues("classification", "no_generator").Inc()
		return Fallback(in.groundedContexts()), SourceFallback
	}

	res, err := c.gen.Generate(ctx, domain.GenerateRequest{
		Messages: messages(&in),
		Schema:   responseSchema,
	})
	if err != nil {
		metrics.StageFallbacksTotal.WithLabelValues("classification", "generation_error").Inc()
		logger.FromContext(ctx).Warn("Risk classification failed, aggregating guidelines", zap.Error(err))
		return Fallback(in.groundedContexts()), SourceFallback
	}

	obj, tier := llmjson.Decode(res.Content)
	if tier == llmjson.TierDefaults {
		metrics.StageFallbacksTotal.WithLabelValues("classification", "unparsable").Inc()
		logger.FromContext(ctx).Warn("Risk classification output unparsable, using defaults",
			zap.Int("content_len", len(res.Content)))
	}
	return Coerce(obj), SourceGenerator
}

func (in *Input) groundedContexts() []guideline.Entry {
	if in.Mode != mode.Grounded {
		return nil
	}
	return in.Contexts
}

// Coerce maps a decoded generator object onto an Assessment: invalid or missing risk
// becomes Medium, non-list actions become empty, referral is true only for a JSON true.
func Coerce(obj llmjson.Object) triage.Assessment {
	return triage.Assessment{
		RiskPattern:        obj.String("possible_risk_pattern"),
		RiskLevel:          risk.Coerce(obj.String("risk_level")),
		RecommendedActions: safety.Sanitize(obj.StringList("recommended_actions")),
		ReferralNeeded:     obj.Bool("referral_needed"),
	}
}

// Fallback aggregates contexts deterministically: the first title as pattern, the highest
// risk, referral if any context refers, and the distinct sanitized safe actions in
// first-seen order capped at MaxFallbackActions. No contexts yields a Low assessment.
func Fallback(contexts []guideline.Entry) triage.Assessment {
	if len(contexts) == 0 {
		return triage.Assessment{RiskLevel: risk.Low, RecommendedActions: []string{}}
	}

	level := risk.Low
	referral := false
	seen := make(map[string]struct{})
	var actions []string
	for _, c := range contexts {
		level = risk.Max(level, c.Risk)
		referral = referral || c.Referral
		for _, a := range c.SafeActions {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			actions = append(actions, a)
		}
	}

	actions = safety.Sanitize(actions)
	if len(actions) > MaxFallbackActions {
		actions = actions[:MaxFallbackActions]
	}

	return triage.Assessment{
		RiskPattern:        contexts[0].Title,
		RiskLevel:          level,
		RecommendedActions: actions,
		ReferralNeeded:     referral,
	}
}

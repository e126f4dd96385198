package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
	"github.com/kailas-cloud/sanjeevani/internal/domain/triage"
)

const groundedSystemPrompt = "You assist triage based only on provided rural guideline context. " +
	"Identify possible risk pattern, classify risk level Low/Medium/High, suggest safe non-prescription actions, " +
	"and state whether referral is needed. If no guideline context fits the symptoms, set possible_risk_pattern to \"" +
	triage.NoMatchPattern + "\" and set risk_level to Medium. Do not diagnose. Do not prescribe medicine. " +
	"Output only JSON with keys: possible_risk_pattern, risk_level, recommended_actions, referral_needed."

const fallbackSystemPrompt = "You assist rural health triage. The available guidelines do not match this case, " +
	"so do not assume any guideline applies and do not name a guideline condition. " +
	"Apply general safe-triage judgement: classify risk level Low/Medium/High, suggest only general safe " +
	"non-prescription actions such as rest, fluids and monitoring, and recommend referral whenever the symptoms " +
	"could be serious or you are unsure. Do not diagnose. Do not prescribe medicine. " +
	"Output only JSON with keys: possible_risk_pattern, risk_level, recommended_actions, referral_needed."

const responseTemplate = `Return JSON: {"possible_risk_pattern":"","risk_level":"","recommended_actions":[],"referral_needed":false}`

var responseSchema = &domain.ResponseSchema{
	Name: "risk_classification",
	Schema: &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"possible_risk_pattern": {Type: jsonschema.String},
			"risk_level": {
				Type: jsonschema.String,
				Enum: []string{string(risk.Low), string(risk.Medium), string(risk.High)},
			},
			"recommended_actions": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
			"referral_needed": {Type: jsonschema.Boolean},
		},
		Required:             []string{"possible_risk_pattern", "risk_level", "recommended_actions", "referral_needed"},
		AdditionalProperties: false,
	},
}

func messages(in *Input) []domain.Message {
	system := groundedSystemPrompt
	if in.Mode == mode.Fallback {
		system = fallbackSystemPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Symptoms: %s\n", quoteList(in.Symptoms))
	if in.Mode != mode.Fallback {
		b.WriteString("Context:\n")
		b.WriteString(formatContexts(in.Contexts))
		b.WriteString("\n")
	}
	if len(in.RelatedRisks) > 0 {
		fmt.Fprintf(&b, "Related risks to consider: %s\n", strings.Join(in.RelatedRisks, ", "))
	}
	b.WriteString(responseTemplate)

	return []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: b.String()},
	}
}

func formatContexts(contexts []guideline.Entry) string {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("Title: %s\nGuideline: %s\nRisk:%s\nReferral:%t\nSafe:%s",
			c.Title, c.Guideline, c.Risk, c.Referral, strings.Join(c.SafeActions, ", "))
	}
	return strings.Join(blocks, "\n\n")
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

package extract

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
)

const systemPrompt = "You are an assistant for rural health triage. Extract symptoms from input. " +
	"Output only JSON with key 'symptoms' as an array of short phrases. " +
	"Do not diagnose. Do not include medications."

var responseSchema = &domain.ResponseSchema{
	Name: "symptom_extraction",
	Schema: &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"symptoms": {
				Type:        jsonschema.Array,
				Description: "Short symptom phrases as stated or clearly implied by the input",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required:             []string{"symptoms"},
		AdditionalProperties: false,
	},
}

func messages(text string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Input: %s\nReturn JSON: {\"symptoms\": []}", text)},
	}
}

package domain

import (
	"context"
	"encoding/json"
)

// Chat roles accepted by Generator.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat turn sent to the generative provider.
type Message struct {
	Role    string
	Content string
}

// ResponseSchema asks the provider to constrain output to a JSON schema.
// Providers without schema support ignore it and the caller parses leniently.
type ResponseSchema struct {
	Name   string
	Schema json.Marshaler
}

// GenerateRequest is a single completion request.
type GenerateRequest struct {
	Messages []Message
	Schema   *ResponseSchema
}

// GenerateResult carries the raw completion text and token usage.
type GenerateResult struct {
	Content     string
	TotalTokens int
}

// Generator is the contract for the generative text provider.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

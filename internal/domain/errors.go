package domain

import "errors"

var (
	// ErrInvalidInput signals a request the pipeline refuses to run (empty or blank text).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a generative provider failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrServiceUnavailable signals that an optional collaborator is not configured.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrInvalidGuideline signals a malformed guideline entry in the source data.
	ErrInvalidGuideline = errors.New("invalid guideline")
)

package sanjeevani

import "github.com/kailas-cloud/sanjeevani/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidGuideline       = domain.ErrInvalidGuideline
	ErrServiceUnavailable     = domain.ErrServiceUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
)

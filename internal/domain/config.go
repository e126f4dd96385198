package domain

// EmbeddingDefaults holds the vectorization settings used when config leaves them empty.
type EmbeddingDefaults struct {
	Model      string
	Dimensions int
}

// DefaultEmbeddingConfig returns defaults for text-embedding-3-large truncated to 1024 dims.
func DefaultEmbeddingConfig() EmbeddingDefaults {
	return EmbeddingDefaults{
		Model:      "text-embedding-3-large",
		Dimensions: 1024,
	}
}

// DefaultChatModel is the generative model used for extraction and classification.
const DefaultChatModel = "gpt-4o-mini"

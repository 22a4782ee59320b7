package driven

import "context"

// LLMService generates document summaries.
// This is an optional service - when nil, summaries are omitted.
type LLMService interface {
	// Summarise creates a summary of document content, bounded by
	// maxTokens.
	Summarise(ctx context.Context, content string, maxTokens int) (string, error)

	// Close releases resources.
	Close() error
}

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, vectors are omitted.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// Close releases resources.
	Close() error
}

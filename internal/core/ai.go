package core

import "context"

// EmbeddingProvider wraps the external embedding model. Document indexing and
// query embedding use different task modes on asymmetric-retrieval models, so
// the two calls must never be interchanged.
type EmbeddingProvider interface {
	// EmbedDocuments embeds chunk texts for indexing. One vector per input
	// text, same order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a user question at retrieval time.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider wraps the external generation model. A single call, no
// streaming, no multi-turn memory.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// TextExtractor converts raw file bytes into plain text. A failure here is
// fatal to the ingestion request.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

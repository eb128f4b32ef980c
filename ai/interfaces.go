package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion identifies the embedding model. Vectors produced by
	// different model versions are never comparable and must not share
	// an index partition.
	ModelVersion() string
}

// Extractor converts a source document into plain text.
// It is the boundary to the external content-extraction collaborator;
// implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract resolves a source descriptor (file path, URL, opaque
	// reference) to plain text. A malformed source fails with an error
	// wrapping ErrExtractionFailed, which callers must treat as
	// permanent. Any other error is transient and may be retried.
	Extract(ctx context.Context, source string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Extractor instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Extractor returns the content extraction service.
	// The returned Extractor is safe for concurrent use.
	Extractor() Extractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

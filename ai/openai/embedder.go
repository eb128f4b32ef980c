package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/lorekeep/ai"
)

// Embedder calls an OpenAI-compatible embeddings endpoint through
// langchaingo. The model name doubles as the stored model version.
type Embedder struct {
	client       embeddings.Embedder
	modelVersion string
	logger       *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	// Local OpenAI-compatible servers accept any token.
	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	client, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("embedding wrapper: %w", err)
	}

	return &Embedder{
		client:       client,
		modelVersion: config.EmbeddingModel,
		logger:       slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder builds an embedder from the configuration after
// validating it.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newEmbedder(config)
}

func (e *Embedder) ModelVersion() string {
	return e.modelVersion
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.client.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding backend returned no vector")
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding batch", "count", len(texts))
	return e.client.EmbedDocuments(ctx, texts)
}

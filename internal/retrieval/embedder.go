package retrieval

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder turns text into a vector. The scoring core never calls
// this; it runs strictly before candidate scoring.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder implements Embedder against any OpenAI-compatible
// embedding API (including local servers).
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
}

// NewOpenAIEmbedder creates an embedder for the given host and model.
// token may be empty for local services that skip authentication.
func NewOpenAIEmbedder(host, model, token string) (*OpenAIEmbedder, error) {
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return &OpenAIEmbedder{embedder: emb}, nil
}

func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vecs[0], nil
}

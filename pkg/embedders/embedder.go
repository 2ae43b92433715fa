// Package embedders turns text into vectors for the RAG pipeline.
package embedders

import (
	"context"
	"fmt"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector length.
	Dimension() int
}

// New builds an embedder from configuration. An empty provider follows
// the configured LLM providers: openai when OPENAI_API_KEY is set,
// ollama otherwise.
func New(cfg config.EmbedderConfig, openAIAPIKey string) (Embedder, error) {
	provider := cfg.Provider
	if provider == "" {
		if openAIAPIKey != "" {
			provider = "openai"
		} else {
			provider = "ollama"
		}
	}

	switch provider {
	case "openai":
		if openAIAPIKey == "" {
			return nil, fmt.Errorf("openai embedder requires OPENAI_API_KEY")
		}
		return NewOpenAIEmbedder(openAIAPIKey, cfg.Model, cfg.Dimension), nil
	case "ollama":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", provider)
	}
}

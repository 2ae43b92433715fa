// Package vector abstracts the vector databases behind one store
// interface: embedded chromem for zero-dependency deployments, Qdrant and
// Pinecone for external ones.
package vector

import (
	"context"
	"fmt"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
)

// Document is a chunk stored with its embedding.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Result is a retrieved document with its similarity score.
type Result struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]any
}

// Store is a vector database scoped to named collections.
type Store interface {
	// EnsureCollection makes the collection usable for vectors of the
	// given dimension.
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	Upsert(ctx context.Context, collection string, docs []Document) error

	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	// DeleteByFilter removes documents whose metadata matches the filter.
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error

	Close() error
}

// New builds a store from the RAG configuration.
func New(cfg config.RAGConfig) (Store, error) {
	switch cfg.Store {
	case "chromem":
		return NewChromemStore(cfg.PersistPath)
	case "qdrant":
		return NewQdrantStore(cfg.Qdrant)
	case "pinecone":
		return NewPineconeStore(cfg.Pinecone)
	default:
		return nil, fmt.Errorf("unsupported vector store %q", cfg.Store)
	}
}

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/embedders"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/vector"
)

// ingestConcurrency bounds parallel file ingestion.
const ingestConcurrency = 4

// Pipeline ties the docs folder, chunker, embedder, and vector store
// together. It implements tools.Searcher for the database_search tool.
type Pipeline struct {
	cfg      config.RAGConfig
	store    vector.Store
	embedder embedders.Embedder
	chunker  *Chunker
}

// NewPipeline builds a pipeline from the RAG configuration.
func NewPipeline(cfg config.RAGConfig, store vector.Store, embedder embedders.Embedder) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
	}
}

// Store exposes the underlying vector store.
func (p *Pipeline) Store() vector.Store { return p.store }

// IngestDirectory indexes every supported file under the docs folder.
func (p *Pipeline) IngestDirectory(ctx context.Context) error {
	if err := p.store.EnsureCollection(ctx, p.cfg.Collection, p.embedder.Dimension()); err != nil {
		return err
	}

	var files []string
	err := filepath.WalkDir(p.cfg.DocsFolder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking docs folder: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, path := range files {
		g.Go(func() error {
			return p.IngestFile(gctx, path)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("document ingestion complete", "files", len(files), "collection", p.cfg.Collection)
	return nil
}

// IngestFile re-indexes one file, replacing any chunks from a previous
// version.
func (p *Pipeline) IngestFile(ctx context.Context, path string) error {
	source := p.sourceName(path)

	text, err := Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", source, err)
	}
	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", source, err)
	}

	if err := p.store.DeleteByFilter(ctx, p.cfg.Collection, map[string]any{"source": source}); err != nil {
		slog.Warn("could not clear previous chunks", "source", source, "error", err)
	}

	docs := make([]vector.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, vector.Document{
			ID:      fmt.Sprintf("%s#%d", source, i),
			Content: chunk,
			Vector:  vectors[i],
			Metadata: map[string]any{
				"source": source,
				"chunk":  i,
			},
		})
	}
	if err := p.store.Upsert(ctx, p.cfg.Collection, docs); err != nil {
		return fmt.Errorf("storing %s: %w", source, err)
	}
	slog.Debug("indexed document", "source", source, "chunks", len(chunks))
	return nil
}

// RemoveFile drops all chunks belonging to a deleted file.
func (p *Pipeline) RemoveFile(ctx context.Context, path string) error {
	return p.store.DeleteByFilter(ctx, p.cfg.Collection, map[string]any{
		"source": p.sourceName(path),
	})
}

// sourceName is the path relative to the docs folder, used as the stable
// document identity across re-ingestion.
func (p *Pipeline) sourceName(path string) string {
	rel, err := filepath.Rel(p.cfg.DocsFolder, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// Search embeds the query and returns the top matching chunks.
func (p *Pipeline) Search(ctx context.Context, query string) ([]tools.SearchResult, error) {
	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := p.store.Search(ctx, p.cfg.Collection, queryVec, p.cfg.TopK)
	if err != nil {
		return nil, err
	}

	out := make([]tools.SearchResult, 0, len(results))
	for _, r := range results {
		source, _ := r.Metadata["source"].(string)
		out = append(out, tools.SearchResult{
			Content: r.Content,
			Source:  source,
			Score:   r.Score,
		})
	}
	return out, nil
}

var _ tools.Searcher = (*Pipeline)(nil)

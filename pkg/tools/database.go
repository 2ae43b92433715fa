package tools

import (
	"context"
	"fmt"
	"strings"
)

// SearchResult is a retrieved document snippet.
type SearchResult struct {
	Content string
	Source  string
	Score   float32
}

// Searcher retrieves document snippets for a query. The RAG layer
// implements this over its vector store.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// DatabaseSearch exposes a document store to the model.
type DatabaseSearch struct {
	searcher Searcher
}

func NewDatabaseSearch(s Searcher) *DatabaseSearch {
	return &DatabaseSearch{searcher: s}
}

func (d *DatabaseSearch) Name() string { return "database_search" }

func (d *DatabaseSearch) Description() string {
	return "Searches the document knowledge base and returns the most relevant passages."
}

func (d *DatabaseSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "What to look for in the documents",
			},
		},
		"required": []any{"query"},
	}
}

func (d *DatabaseSearch) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}

	results, err := d.searcher.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searching documents: %w", err)
	}
	if len(results) == 0 {
		return "No relevant documents found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if r.Source != "" {
			fmt.Fprintf(&b, "[%s] ", r.Source)
		}
		b.WriteString(r.Content)
	}
	return b.String(), nil
}

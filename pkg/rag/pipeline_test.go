package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/vector"
)

// bagEmbedder maps text to a fixed-size bag-of-letters vector so
// similarity is deterministic without a model.
type bagEmbedder struct{}

func (bagEmbedder) Dimension() int { return 26 }

func (bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

func (e bagEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func testPipeline(t *testing.T, docsFolder string) *Pipeline {
	t.Helper()
	store, err := vector.NewChromemStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.RAGConfig{
		Enabled:    true,
		DocsFolder: docsFolder,
		Store:      "chromem",
	}
	cfg.SetDefaults()
	return NewPipeline(cfg, store, bagEmbedder{})
}

func TestIngestDirectoryAndSearch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vacation.md"),
		[]byte("Employees receive twenty five vacation days per year."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.bin"),
		[]byte{0x00, 0x01}, 0o644))

	p := testPipeline(t, dir)
	require.NoError(t, p.IngestDirectory(context.Background()))

	results, err := p.Search(context.Background(), "vacation days")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "vacation.md", results[0].Source)
	assert.Contains(t, results[0].Content, "vacation")
}

func TestIngestFileReplacesPreviousChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content about parking"), 0o644))

	p := testPipeline(t, dir)
	ctx := context.Background()
	require.NoError(t, p.IngestFile(ctx, path))

	require.NoError(t, os.WriteFile(path, []byte("new content about remote work"), 0o644))
	require.NoError(t, p.IngestFile(ctx, path))

	results, err := p.Search(ctx, "content")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "new content")
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("some document text"), 0o644))

	p := testPipeline(t, dir)
	ctx := context.Background()
	require.NoError(t, p.IngestFile(ctx, path))
	require.NoError(t, p.RemoveFile(ctx, path))

	results, err := p.Search(ctx, "document")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	text, err := Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract(context.Background(), "file.exe")
	require.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/doc.PDF"))
	assert.True(t, Supported("notes.md"))
	assert.False(t, Supported("archive.zip"))
}

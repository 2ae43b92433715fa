package embedders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		// Return out of order to exercise index sorting.
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": [
			{"index": 1, "embedding": [0.3, 0.4]},
			{"index": 0, "embedding": [0.1, 0.2]}
		]}`)
	}))
	defer server.Close()

	e := NewOpenAIEmbedder("test-key", "text-embedding-3-small", 2,
		WithOpenAIEmbedderBaseURL(server.URL))

	vectors, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestOpenAIEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	e := NewOpenAIEmbedder("test-key", "", 0, WithOpenAIEmbedderBaseURL(server.URL))
	_, err := e.Embed(context.Background(), "text")
	require.Error(t, err)
}

func TestOpenAIEmbedderDefaults(t *testing.T) {
	e := NewOpenAIEmbedder("k", "", 0)
	assert.Equal(t, openAIDefaultModel, e.model)
	assert.Equal(t, openAIDefaultDimension, e.Dimension())
}

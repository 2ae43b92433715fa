package llms

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

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"message": {"role": "assistant", "content": "Hello from llama"},
			"done": true,
			"prompt_eval_count": 6,
			"eval_count": 4
		}`)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3.2", "llama3.2")
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello from llama", resp.Text)
	assert.Equal(t, 6, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)
}

func TestOllamaGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		lines := []string{
			`{"message":{"role":"assistant","content":"One "},"done":false}`,
			`{"message":{"role":"assistant","content":"two"},"done":false}`,
			`{"message":{"role":"assistant","content":""},"done":true,"prompt_eval_count":3,"eval_count":2}`,
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3.2", "llama3.2")
	ch, err := p.GenerateStream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "count"}},
	})
	require.NoError(t, err)

	var tokens []string
	var final *Response
	for chunk := range ch {
		switch chunk.Type {
		case ChunkText:
			tokens = append(tokens, chunk.Text)
		case ChunkDone:
			final = chunk.Response
		case ChunkError:
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
	}
	assert.Equal(t, []string{"One ", "two"}, tokens)
	require.NotNil(t, final)
	assert.Equal(t, "One two", final.Text)
	assert.Equal(t, 3, final.Usage.InputTokens)
}

func TestOllamaToolCallGetsStableID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{"function": {"name": "calculator", "arguments": {"expression": "1+1"}}}]
			},
			"done": true
		}`)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3.2", "llama3.2")
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "1+1"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.NotEmpty(t, resp.ToolCalls[0].ID)
	assert.Equal(t, "calculator", resp.ToolCalls[0].Name)
	assert.Equal(t, "1+1", resp.ToolCalls[0].Args["expression"])
}

package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"choices": [{"message": {"role": "assistant", "content": "Hello there"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3}
		}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o-mini", "gpt-4o-mini",
		WithOpenAIBaseURL(server.URL))

	resp, err := p.Generate(context.Background(), Request{
		Messages: WithSystem("You are helpful.", []Message{{Role: RoleUser, Content: "Hi"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
	assert.Empty(t, resp.ToolCalls)
}

func TestOpenAIGenerateToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"choices": [{"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "get_weather", "arguments": "{\"city\":\"Paris\"}"}
				}]
			}}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 8}
		}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o-mini", "gpt-4o-mini",
		WithOpenAIBaseURL(server.URL))

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Weather in Paris?"}},
		Tools: []ToolDefinition{{
			Name:        "get_weather",
			Description: "Current weather for a city",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"city": map[string]any{"type": "string"}},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", resp.ToolCalls[0].Name)
	assert.Equal(t, "Paris", resp.ToolCalls[0].Args["city"])
}

func TestOpenAIGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: {"choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2}}`,
			`data: [DONE]`,
		}
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
		}
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o-mini", "gpt-4o-mini",
		WithOpenAIBaseURL(server.URL))

	ch, err := p.GenerateStream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
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
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
	require.NotNil(t, final)
	assert.Equal(t, "Hello", final.Text)
	assert.Equal(t, 5, final.Usage.InputTokens)
}

func TestOpenAIStreamToolCallFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_9","function":{"name":"calculator","arguments":""}}]}}]}`,
			`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"expression\":"}}]}}]}`,
			`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"2+2\"}"}}]}}]}`,
			`data: [DONE]`,
		}
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
		}
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o-mini", "gpt-4o-mini",
		WithOpenAIBaseURL(server.URL))

	ch, err := p.GenerateStream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "2+2?"}},
	})
	require.NoError(t, err)

	final, err := Collect(ch)
	require.NoError(t, err)
	require.Len(t, final.ToolCalls, 1)
	assert.Equal(t, "call_9", final.ToolCalls[0].ID)
	assert.Equal(t, "calculator", final.ToolCalls[0].Name)
	assert.Equal(t, "2+2", final.ToolCalls[0].Args["expression"])
}

func TestOpenAIGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewOpenAIProvider("bad-key", "gpt-4o-mini", "gpt-4o-mini",
		WithOpenAIBaseURL(server.URL))

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}

func TestGroqProviderTargetsGroqHost(t *testing.T) {
	p := NewGroqProvider("gk", "groq-llama-3.1-8b", "llama-3.1-8b-instant")
	assert.Equal(t, groqBaseURL, p.baseURL)
	assert.Equal(t, "groq-llama-3.1-8b", p.ModelName())
}

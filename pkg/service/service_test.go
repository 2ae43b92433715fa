package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/agents"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/auth"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/memory"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

const fakeResponse = "This is a test response from the fake model."

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	ctx := context.Background()

	settings := &config.Settings{
		UseFakeModel: true,
		Database: config.DatabaseConfig{
			Type:       config.DatabaseSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "service.db"),
		},
	}
	settings.SetDefaults()
	require.NoError(t, settings.Validate())

	models, err := llms.NewRegistry(ctx, settings)
	require.NoError(t, err)
	t.Cleanup(models.Close)

	store, err := memory.Open(ctx, settings.Database)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry, err := agents.NewRegistry(ctx, settings, models, nil)
	require.NoError(t, err)
	t.Cleanup(func() { registry.Close() })

	return New(settings, registry, models, store, opts...)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestService(t).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInfo(t *testing.T) {
	router := newTestService(t).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var meta schema.ServiceMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "research-assistant", meta.DefaultAgent)
	assert.Equal(t, "fake", meta.DefaultModel)
	assert.Contains(t, meta.Models, "fake")

	keys := make([]string, len(meta.Agents))
	for i, a := range meta.Agents {
		keys[i] = a.Key
	}
	assert.Contains(t, keys, "chatbot")
	assert.Contains(t, keys, "research-assistant")
}

func TestInvoke(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/invoke", schema.UserInput{Message: "Hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var msg schema.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, schema.MessageTypeAI, msg.Type)
	assert.Equal(t, fakeResponse, msg.Content)
	assert.NotEmpty(t, msg.RunID)
}

func TestInvokeNamedAgent(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/chatbot/invoke", schema.UserInput{Message: "Hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestInvokeUnknownAgent(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/no-such-agent/invoke", schema.UserInput{Message: "Hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvokeUnknownModel(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/invoke", schema.UserInput{Message: "Hello", Model: "gpt-99"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestInvokeReservedConfigKey(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/invoke", schema.UserInput{
		Message:     "Hello",
		AgentConfig: map[string]any{"thread_id": "abc"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestInvokeInvalidJSON(t *testing.T) {
	router := newTestService(t).Router()

	req := httptest.NewRequest(http.MethodPost, "/invoke", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// parseSSE splits an SSE body into its data payloads.
func parseSSE(t *testing.T, body string) (events []schema.StreamEvent, sawDone bool) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			sawDone = true
			continue
		}
		var ev schema.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		events = append(events, ev)
	}
	return events, sawDone
}

func TestStream(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/stream", schema.StreamInput{
		UserInput: schema.UserInput{Message: "Hello"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events, sawDone := parseSSE(t, rec.Body.String())
	assert.True(t, sawDone)

	var tokens []string
	var messages int
	for _, ev := range events {
		switch ev.Type {
		case schema.StreamEventToken:
			tokens = append(tokens, ev.Content.(string))
		case schema.StreamEventMessage:
			messages++
		}
	}
	assert.Equal(t, fakeResponse, strings.Join(tokens, ""))
	assert.Equal(t, 1, messages)
}

func TestStreamTokensDisabled(t *testing.T) {
	router := newTestService(t).Router()

	off := false
	rec := postJSON(t, router, "/stream", schema.StreamInput{
		UserInput:    schema.UserInput{Message: "Hello"},
		StreamTokens: &off,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	events, sawDone := parseSSE(t, rec.Body.String())
	assert.True(t, sawDone)
	for _, ev := range events {
		assert.NotEqual(t, schema.StreamEventToken, ev.Type)
	}
}

func TestStreamUnknownAgentFailsBeforeSSE(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/no-such-agent/stream", schema.StreamInput{
		UserInput: schema.UserInput{Message: "Hello"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHistoryAfterInvoke(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/invoke", schema.UserInput{Message: "Hello", ThreadID: "thread-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/history", schema.ChatHistoryInput{ThreadID: "thread-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var history schema.ChatHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.MessageTypeHuman, history.Messages[0].Type)
	assert.Equal(t, "Hello", history.Messages[0].Content)
	assert.Equal(t, schema.MessageTypeAI, history.Messages[1].Type)
}

func TestHistoryRequiresThreadID(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/history", schema.ChatHistoryInput{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFeedback(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/feedback", schema.Feedback{
		RunID: "run-1",
		Key:   "human-feedback-stars",
		Score: 0.8,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
}

func TestFeedbackValidation(t *testing.T) {
	router := newTestService(t).Router()

	rec := postJSON(t, router, "/feedback", schema.Feedback{Key: "stars"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAuthProtectsRoutes(t *testing.T) {
	svc := newTestService(t, WithValidator(auth.NewSecretValidator("s3cret")))
	router := svc.Router()

	// No token.
	rec := postJSON(t, router, "/invoke", schema.UserInput{Message: "Hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Valid token.
	data, _ := json.Marshal(schema.UserInput{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/invoke", bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

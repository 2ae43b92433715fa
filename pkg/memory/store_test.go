package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.DatabaseConfig{
		Type:       config.DatabaseSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.AppendMessages(ctx, "thread-1", "run-1", []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "What is 2+2?"},
		{Type: schema.MessageTypeAI, Content: "4", RunID: "run-1"},
	})
	require.NoError(t, err)

	err = store.AppendMessages(ctx, "thread-1", "run-2", []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "And times 3?"},
		{Type: schema.MessageTypeAI, Content: "12", RunID: "run-2"},
	})
	require.NoError(t, err)

	history, err := store.History(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "What is 2+2?", history[0].Content)
	assert.Equal(t, schema.MessageTypeAI, history[1].Type)
	assert.Equal(t, "12", history[3].Content)
	assert.Equal(t, "run-2", history[3].RunID)
}

func TestHistoryUnknownThread(t *testing.T) {
	store := newTestStore(t)

	history, err := store.History(context.Background(), "no-such-thread")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryRequiresThreadID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.History(context.Background(), "")
	assert.Error(t, err)

	err = store.AppendMessages(context.Background(), "", "run-1", []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "hi"},
	})
	assert.Error(t, err)
}

func TestThreadsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendMessages(ctx, "thread-a", "run-a", []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "a"},
	}))
	require.NoError(t, store.AppendMessages(ctx, "thread-b", "run-b", []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "b"},
	}))

	history, err := store.History(ctx, "thread-a")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].Content)
}

func TestMessageRoundTripPreservesToolCalls(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := schema.ChatMessage{
		Type:    schema.MessageTypeAI,
		Content: "",
		ToolCalls: []schema.ToolCall{
			{ID: "call-1", Name: "calculator", Args: map[string]any{"expression": "2+2"}},
		},
	}
	require.NoError(t, store.AppendMessages(ctx, "thread-1", "run-1", []schema.ChatMessage{original}))

	history, err := store.History(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].ToolCalls, 1)
	assert.Equal(t, "calculator", history[0].ToolCalls[0].Name)
	assert.Equal(t, "2+2", history[0].ToolCalls[0].Args["expression"])
}

func TestRecordFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.RecordFeedback(ctx, schema.Feedback{
		RunID: "run-1",
		Key:   "human-feedback-stars",
		Score: 0.8,
		Metadata: map[string]any{
			"comment": "helpful",
		},
	})
	require.NoError(t, err)

	var count int
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE run_id = 'run-1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRebindPostgres(t *testing.T) {
	s := &Store{dialect: "postgres"}
	got := s.rebind(`INSERT INTO t (a, b) VALUES (?, ?)`)
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, got)

	sq := &Store{dialect: "sqlite"}
	assert.Equal(t, `SELECT ?`, sq.rebind(`SELECT ?`))
}

package llms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

func fakeSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := &config.Settings{UseFakeModel: true}
	s.SetDefaults()
	require.NoError(t, s.Validate())
	return s
}

func TestRegistryServesDefaultModel(t *testing.T) {
	r, err := NewRegistry(context.Background(), fakeSettings(t))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, schema.ModelFake, r.DefaultModel())

	p, err := r.Get("")
	require.NoError(t, err)
	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
}

func TestRegistryRejectsUnknownModel(t *testing.T) {
	r, err := NewRegistry(context.Background(), fakeSettings(t))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Get("gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestRegistryBuildsOpenAIModels(t *testing.T) {
	s := &config.Settings{OpenAIAPIKey: "sk-test"}
	s.SetDefaults()
	require.NoError(t, s.Validate())

	r, err := NewRegistry(context.Background(), s)
	require.NoError(t, err)
	defer r.Close()

	models := r.Models()
	assert.Contains(t, models, schema.ModelGPT4oMini)
	assert.Contains(t, models, schema.ModelGPT4o)
	assert.NotContains(t, models, schema.ModelClaudeHaiku)
}

func TestFakeProviderStreams(t *testing.T) {
	p := NewFakeProvider("one two three")
	ch, err := p.GenerateStream(context.Background(), Request{})
	require.NoError(t, err)

	var tokens int
	var final *Response
	for chunk := range ch {
		switch chunk.Type {
		case ChunkText:
			tokens++
		case ChunkDone:
			final = chunk.Response
		}
	}
	assert.Equal(t, 3, tokens)
	require.NotNil(t, final)
	assert.Equal(t, "one two three", final.Text)
}

func TestFakeProviderCyclesResponses(t *testing.T) {
	p := NewFakeProvider("a", "b")
	ctx := context.Background()

	r1, _ := p.Generate(ctx, Request{})
	r2, _ := p.Generate(ctx, Request{})
	r3, _ := p.Generate(ctx, Request{})
	assert.Equal(t, "a", r1.Text)
	assert.Equal(t, "b", r2.Text)
	assert.Equal(t, "a", r3.Text)
}

func TestFromChatMessagesSkipsCustom(t *testing.T) {
	history := []schema.ChatMessage{
		{Type: schema.MessageTypeHuman, Content: "hi"},
		{Type: schema.MessageTypeCustom, Content: "", CustomData: map[string]any{"k": "v"}},
		{Type: schema.MessageTypeAI, Content: "hello"},
	}
	msgs := FromChatMessages(history)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

// Package llms provides chat-completion providers behind a single
// interface. OpenAI, Groq, Anthropic, and Ollama speak their wire formats
// directly over the shared retrying HTTP client; Google goes through the
// official genai SDK. A registry maps public model keys to configured
// provider instances.
package llms

import (
	"context"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// Role identifies the author of a message sent to a model.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single turn in a model conversation.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []schema.ToolCall
	ToolCallID string
}

// ToolDefinition describes a callable tool in JSON Schema form.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is a chat-completion request.
type Request struct {
	Messages    []Message
	Tools       []ToolDefinition
	Temperature *float64
	MaxTokens   int
}

// Usage reports token consumption for a call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the combined token count.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// Response is a completed chat-completion result.
type Response struct {
	Text      string
	ToolCalls []schema.ToolCall
	Usage     Usage
}

// ChunkType identifies a streaming chunk.
type ChunkType string

const (
	// ChunkText carries a token delta.
	ChunkText ChunkType = "text"
	// ChunkDone carries the final accumulated response and closes the stream.
	ChunkDone ChunkType = "done"
	// ChunkError carries a mid-stream failure and closes the stream.
	ChunkError ChunkType = "error"
)

// StreamChunk is one element of a streaming response.
type StreamChunk struct {
	Type     ChunkType
	Text     string
	Response *Response
	Err      error
}

// Provider is a chat-completion backend bound to one model.
type Provider interface {
	// Generate performs a blocking chat completion.
	Generate(ctx context.Context, req Request) (*Response, error)

	// GenerateStream streams the completion. The channel is closed after a
	// ChunkDone or ChunkError element.
	GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error)

	// ModelName returns the public model key this provider serves.
	ModelName() string

	Close() error
}

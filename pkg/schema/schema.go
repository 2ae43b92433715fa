// Package schema defines the wire types shared by the agent service, the
// client library, and the agents themselves.
package schema

import "fmt"

// MessageType identifies the role of a chat message.
type MessageType string

const (
	MessageTypeHuman  MessageType = "human"
	MessageTypeAI     MessageType = "ai"
	MessageTypeTool   MessageType = "tool"
	MessageTypeCustom MessageType = "custom"
)

// ToolCall is a request from the model to invoke a tool.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	Type       MessageType    `json:"type"`
	Content    string         `json:"content"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	RunID      string         `json:"run_id,omitempty"`
	CustomData map[string]any `json:"custom_data,omitempty"`
}

// Validate checks structural invariants on a message.
func (m *ChatMessage) Validate() error {
	switch m.Type {
	case MessageTypeHuman, MessageTypeAI, MessageTypeTool, MessageTypeCustom:
	default:
		return fmt.Errorf("unsupported message type: %q", m.Type)
	}
	if m.Type == MessageTypeTool && m.ToolCallID == "" {
		return fmt.Errorf("tool message requires tool_call_id")
	}
	return nil
}

// UserInput is the request payload for /invoke.
type UserInput struct {
	// Message is the user's input to the agent.
	Message string `json:"message"`

	// Model selects the LLM; empty means the service default.
	Model string `json:"model,omitempty"`

	// ThreadID persists and continues a multi-turn conversation.
	ThreadID string `json:"thread_id,omitempty"`

	// AgentConfig carries additional per-agent settings. Keys that collide
	// with reserved configuration (thread_id, model) are rejected.
	AgentConfig map[string]any `json:"agent_config,omitempty"`
}

// ReservedConfigKeys are UserInput.AgentConfig keys the service owns.
var ReservedConfigKeys = []string{"thread_id", "model"}

// StreamInput is the request payload for /stream.
type StreamInput struct {
	UserInput

	// StreamTokens controls token-by-token streaming. Defaults to true.
	StreamTokens *bool `json:"stream_tokens,omitempty"`
}

// TokensEnabled reports whether token events should be emitted.
func (s *StreamInput) TokensEnabled() bool {
	return s.StreamTokens == nil || *s.StreamTokens
}

// ChatHistoryInput is the request payload for /history.
type ChatHistoryInput struct {
	ThreadID string `json:"thread_id"`
}

// ChatHistory is the response payload for /history.
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

// AgentInfo describes a single agent for service discovery.
type AgentInfo struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// ServiceMetadata is the response payload for /info.
type ServiceMetadata struct {
	Agents       []AgentInfo `json:"agents"`
	Models       []string    `json:"models"`
	DefaultAgent string      `json:"default_agent"`
	DefaultModel string      `json:"default_model"`
}

// Feedback records a score for a run.
type Feedback struct {
	RunID    string         `json:"run_id"`
	Key      string         `json:"key"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"kwargs,omitempty"`
}

// Validate checks that required feedback fields are present.
func (f *Feedback) Validate() error {
	if f.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if f.Key == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}

// FeedbackResponse acknowledges recorded feedback.
type FeedbackResponse struct {
	Status string `json:"status"`
}

// StreamEventType identifies an SSE payload on /stream.
type StreamEventType string

const (
	StreamEventMessage StreamEventType = "message"
	StreamEventToken   StreamEventType = "token"
	StreamEventError   StreamEventType = "error"
)

// StreamEvent is a single SSE data payload on /stream.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content any             `json:"content"`
}

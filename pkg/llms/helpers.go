package llms

import (
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// FromChatMessages converts stored chat history into provider messages.
// Custom messages carry task metadata rather than conversation content and
// are skipped.
func FromChatMessages(history []schema.ChatMessage) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		switch m.Type {
		case schema.MessageTypeHuman:
			out = append(out, Message{Role: RoleUser, Content: m.Content})
		case schema.MessageTypeAI:
			out = append(out, Message{
				Role:      RoleAssistant,
				Content:   m.Content,
				ToolCalls: m.ToolCalls,
			})
		case schema.MessageTypeTool:
			out = append(out, Message{
				Role:       RoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return out
}

// WithSystem prepends a system prompt to msgs when prompt is non-empty.
func WithSystem(prompt string, msgs []Message) []Message {
	if prompt == "" {
		return msgs
	}
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Message{Role: RoleSystem, Content: prompt})
	return append(out, msgs...)
}

// Collect drains a stream and returns the final response. Intended for
// callers that want blocking semantics over a streaming provider.
func Collect(ch <-chan StreamChunk) (*Response, error) {
	for chunk := range ch {
		switch chunk.Type {
		case ChunkDone:
			return chunk.Response, nil
		case ChunkError:
			return nil, chunk.Err
		}
	}
	return &Response{}, nil
}

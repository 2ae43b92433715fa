package agents

import (
	"context"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

const chatbotPrompt = "You are a helpful assistant. Answer the user's questions directly and concisely."

// Chatbot is the simplest agent: one model call, no tools.
type Chatbot struct{}

func NewChatbot() *Chatbot { return &Chatbot{} }

func (c *Chatbot) Info() schema.AgentInfo {
	return schema.AgentInfo{
		Key:         "chatbot",
		Description: "A simple chatbot.",
	}
}

func (c *Chatbot) Stream(ctx context.Context, inv Invocation) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)

		msgs := llms.WithSystem(chatbotPrompt, llms.FromChatMessages(inv.History))
		msgs = append(msgs, llms.Message{Role: llms.RoleUser, Content: inv.Message})

		resp, err := complete(ctx, out, inv, llms.Request{Messages: msgs})
		if err != nil {
			sendError(ctx, out, err)
			return
		}

		msg := schema.ChatMessage{
			Type:    schema.MessageTypeAI,
			Content: resp.Text,
			RunID:   inv.RunID,
		}
		if !sendMessage(ctx, out, msg) {
			return
		}
		send(ctx, out, Event{Type: EventDone})
	}()
	return out, nil
}

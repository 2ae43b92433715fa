package agents

import (
	"context"
	"fmt"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
)

// maxIterations bounds the tool-calling loop. A model that keeps asking
// for tools past this is stuck.
const maxIterations = 10

// complete runs one model call, forwarding token deltas when streaming is
// enabled, and returns the accumulated response.
func complete(ctx context.Context, out chan<- Event, inv Invocation, req llms.Request) (*llms.Response, error) {
	if !inv.StreamTokens {
		return inv.Provider.Generate(ctx, req)
	}

	ch, err := inv.Provider.GenerateStream(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *llms.Response
	for chunk := range ch {
		switch chunk.Type {
		case llms.ChunkText:
			if !send(ctx, out, Event{Type: EventToken, Token: chunk.Text}) {
				return nil, ctx.Err()
			}
		case llms.ChunkDone:
			resp = chunk.Response
		case llms.ChunkError:
			return nil, chunk.Err
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("stream ended without a response")
	}
	return resp, nil
}

// runToolLoop drives the model/tool cycle until the model answers without
// requesting tools. Every completed message is emitted as an event; the
// loop ends with EventDone or EventError.
func runToolLoop(ctx context.Context, out chan<- Event, inv Invocation, registry *tools.Registry, systemPrompt string) {
	if registry == nil {
		registry = tools.NewRegistry()
	}

	msgs := llms.WithSystem(systemPrompt, llms.FromChatMessages(inv.History))
	msgs = append(msgs, llms.Message{Role: llms.RoleUser, Content: inv.Message})

	defs := tools.Definitions(registry.List())

	for i := 0; i < maxIterations; i++ {
		resp, err := complete(ctx, out, inv, llms.Request{Messages: msgs, Tools: defs})
		if err != nil {
			sendError(ctx, out, err)
			return
		}

		aiMsg := schema.ChatMessage{
			Type:      schema.MessageTypeAI,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
			RunID:     inv.RunID,
		}
		if !sendMessage(ctx, out, aiMsg) {
			return
		}

		if len(resp.ToolCalls) == 0 {
			send(ctx, out, Event{Type: EventDone})
			return
		}

		msgs = append(msgs, llms.Message{
			Role:      llms.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result, err := registry.Execute(ctx, tc.Name, tc.Args)
			if err != nil {
				// Unknown tool. Feed the failure back so the model can recover.
				result = fmt.Sprintf("Error: %v", err)
			}
			toolMsg := schema.ChatMessage{
				Type:       schema.MessageTypeTool,
				Content:    result,
				ToolCallID: tc.ID,
				RunID:      inv.RunID,
			}
			if !sendMessage(ctx, out, toolMsg) {
				return
			}
			msgs = append(msgs, llms.Message{
				Role:       llms.RoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	sendError(ctx, out, fmt.Errorf("agent exceeded %d tool iterations", maxIterations))
}

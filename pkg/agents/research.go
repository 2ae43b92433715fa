package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
)

const researchPromptFmt = `You are a helpful research assistant with the ability to search the web and use other tools.
Today's date is %s.

NOTE: THE USER CAN'T SEE THE TOOL RESPONSE.

A few things to remember:
- Please include markdown-formatted links to any citations used in your response. Only include one
  or two citations per response unless more are needed.
- Use the calculator tool to answer math questions. It accepts arithmetic expressions built
  from numbers, + - * / %% ^ and parentheses, with no functions or constants.`

const unsafeResponseText = "This conversation was flagged for unsafe content. Flagged categories: %s"

// ResearchAssistant answers questions with a tool-calling loop over web
// search, a calculator and optionally weather, with Llama Guard
// moderation of both input and output when configured.
type ResearchAssistant struct {
	tools *tools.Registry
	guard *LlamaGuard
}

func NewResearchAssistant(registry *tools.Registry, guard *LlamaGuard) *ResearchAssistant {
	return &ResearchAssistant{tools: registry, guard: guard}
}

func (r *ResearchAssistant) Info() schema.AgentInfo {
	return schema.AgentInfo{
		Key:         "research-assistant",
		Description: "A research assistant with web search and calculator.",
	}
}

func (r *ResearchAssistant) Stream(ctx context.Context, inv Invocation) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)

		if r.guard != nil {
			input := []llms.Message{{Role: llms.RoleUser, Content: inv.Message}}
			assessment, err := r.guard.Check(ctx, "User", input)
			if err != nil {
				sendError(ctx, out, err)
				return
			}
			if !assessment.Safe {
				r.block(ctx, out, inv, assessment)
				return
			}
		}

		prompt := fmt.Sprintf(researchPromptFmt, time.Now().Format("January 2, 2006"))
		if r.guard == nil {
			runToolLoop(ctx, out, inv, r.tools, prompt)
			return
		}
		r.moderatedLoop(ctx, out, inv, prompt)
	}()
	return out, nil
}

// moderatedLoop runs the tool loop through an intermediate channel so the
// final answer can be checked before it reaches the client. Token deltas
// are withheld; only vetted messages go out.
func (r *ResearchAssistant) moderatedLoop(ctx context.Context, out chan<- Event, inv Invocation, prompt string) {
	inner := make(chan Event)
	loopInv := inv
	loopInv.StreamTokens = false
	go func() {
		defer close(inner)
		runToolLoop(ctx, inner, loopInv, r.tools, prompt)
	}()

	var pending []Event
	for ev := range inner {
		switch ev.Type {
		case EventDone:
			var last *schema.ChatMessage
			for i := len(pending) - 1; i >= 0; i-- {
				if pending[i].Message != nil && pending[i].Message.Type == schema.MessageTypeAI {
					last = pending[i].Message
					break
				}
			}
			if last != nil {
				conversation := []llms.Message{
					{Role: llms.RoleUser, Content: inv.Message},
					{Role: llms.RoleAssistant, Content: last.Content},
				}
				assessment, err := r.guard.Check(ctx, "Agent", conversation)
				if err != nil {
					sendError(ctx, out, err)
					return
				}
				if !assessment.Safe {
					r.block(ctx, out, inv, assessment)
					return
				}
			}
			for _, p := range pending {
				if !send(ctx, out, p) {
					return
				}
			}
			send(ctx, out, Event{Type: EventDone})
			return
		case EventError:
			send(ctx, out, ev)
			return
		default:
			pending = append(pending, ev)
		}
	}
}

func (r *ResearchAssistant) block(ctx context.Context, out chan<- Event, inv Invocation, assessment SafetyAssessment) {
	msg := schema.ChatMessage{
		Type:    schema.MessageTypeAI,
		Content: fmt.Sprintf(unsafeResponseText, assessment.Description()),
		RunID:   inv.RunID,
	}
	if !sendMessage(ctx, out, msg) {
		return
	}
	send(ctx, out, Event{Type: EventDone})
}

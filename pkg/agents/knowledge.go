package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
)

const knowledgePromptFmt = `You are an assistant that answers questions using the organization's document store.
Ground every answer in the retrieved context below. If the context does not
contain the answer, say so instead of guessing. Cite the source file of any
passage you rely on.

<CONTEXT>
%s
</CONTEXT>`

// KnowledgeBase answers from documents ingested into the vector store:
// retrieve, augment the system prompt, answer.
type KnowledgeBase struct {
	searcher tools.Searcher
}

func NewKnowledgeBase(searcher tools.Searcher) *KnowledgeBase {
	return &KnowledgeBase{searcher: searcher}
}

func (k *KnowledgeBase) Info() schema.AgentInfo {
	return schema.AgentInfo{
		Key:         "knowledge-base-agent",
		Description: "Answers questions from an ingested document knowledge base.",
	}
}

func (k *KnowledgeBase) Stream(ctx context.Context, inv Invocation) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)

		results, err := k.searcher.Search(ctx, inv.Message)
		if err != nil {
			sendError(ctx, out, fmt.Errorf("knowledge base search failed: %w", err))
			return
		}

		prompt := fmt.Sprintf(knowledgePromptFmt, formatContext(results))
		msgs := llms.WithSystem(prompt, llms.FromChatMessages(inv.History))
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

func formatContext(results []tools.SearchResult) string {
	if len(results) == 0 {
		return "No relevant documents were found."
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", r.Source, r.Content))
	}
	return strings.Join(blocks, "\n\n")
}

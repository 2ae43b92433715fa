package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

const bgTaskPrompt = "You are a helpful assistant. Briefly acknowledge the user's request; background tasks report their own progress."

// BackgroundTask demonstrates TaskData progress events: it starts a
// simulated background job, emits state transitions as custom messages,
// then answers normally.
type BackgroundTask struct {
	// stepDelay paces the simulated work. Tests set it to zero.
	stepDelay time.Duration
}

func NewBackgroundTask() *BackgroundTask {
	return &BackgroundTask{stepDelay: 2 * time.Second}
}

func (b *BackgroundTask) Info() schema.AgentInfo {
	return schema.AgentInfo{
		Key:         "bg-task-agent",
		Description: "A demo agent that runs a background task and streams its progress.",
	}
}

func (b *BackgroundTask) Stream(ctx context.Context, inv Invocation) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)

		task := schema.TaskData{
			Name:  "Data processing task",
			RunID: uuid.NewString(),
			State: schema.TaskStateNew,
		}
		if !b.emitTask(ctx, out, inv, task) {
			return
		}

		for step := 1; step <= 2; step++ {
			if !b.sleep(ctx) {
				return
			}
			task.State = schema.TaskStateRunning
			task.Data = map[string]any{"status": fmt.Sprintf("Step %d of 2 complete", step)}
			if !b.emitTask(ctx, out, inv, task) {
				return
			}
		}

		if !b.sleep(ctx) {
			return
		}
		task.State = schema.TaskStateComplete
		task.Result = schema.TaskResultSuccess
		task.Data = map[string]any{"status": "All steps complete"}
		if !b.emitTask(ctx, out, inv, task) {
			return
		}

		msgs := llms.WithSystem(bgTaskPrompt, llms.FromChatMessages(inv.History))
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

func (b *BackgroundTask) emitTask(ctx context.Context, out chan<- Event, inv Invocation, task schema.TaskData) bool {
	msg := task.ToMessage()
	msg.RunID = inv.RunID
	return sendMessage(ctx, out, msg)
}

func (b *BackgroundTask) sleep(ctx context.Context) bool {
	if b.stepDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(b.stepDelay):
		return true
	case <-ctx.Done():
		return false
	}
}

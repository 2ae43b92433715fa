// Package agents implements the agents served over /invoke and /stream.
//
// An agent turns one user message, plus the thread history, into a stream
// of events: token deltas, completed chat messages, and a terminal done or
// error. The service layer owns persistence and transport; agents only
// produce events.
package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// ErrNotFound reports an unknown agent key.
var ErrNotFound = errors.New("agent not found")

// ErrInvalidInput reports request input the agent cannot accept.
var ErrInvalidInput = errors.New("invalid input")

// EventType identifies an agent event.
type EventType string

const (
	// EventToken is a text delta from the model.
	EventToken EventType = "token"
	// EventMessage is a completed chat message.
	EventMessage EventType = "message"
	// EventError terminates the stream with a failure.
	EventError EventType = "error"
	// EventDone terminates the stream successfully.
	EventDone EventType = "done"
)

// Event is one element of an agent's output stream. The stream ends with
// exactly one EventDone or EventError, after which the channel closes.
type Event struct {
	Type    EventType
	Token   string
	Message *schema.ChatMessage
	Err     error
}

// Invocation carries one resolved request into an agent.
type Invocation struct {
	// Message is the user's input.
	Message string

	// ThreadID and RunID identify the conversation and this run.
	ThreadID string
	RunID    string

	// History holds the thread's prior messages, oldest first.
	History []schema.ChatMessage

	// Provider is the resolved model backend for this request.
	Provider llms.Provider

	// StreamTokens enables EventToken deltas.
	StreamTokens bool

	// Config holds per-agent kwargs from UserInput.AgentConfig, already
	// checked against the reserved keys.
	Config map[string]any
}

// Agent produces an event stream for an invocation.
type Agent interface {
	Info() schema.AgentInfo
	Stream(ctx context.Context, inv Invocation) (<-chan Event, error)
}

// ValidateConfig rejects agent_config keys that collide with reserved
// request fields.
func ValidateConfig(cfg map[string]any) error {
	for _, key := range schema.ReservedConfigKeys {
		if _, ok := cfg[key]; ok {
			return fmt.Errorf("%w: agent_config contains reserved key %q", ErrInvalidInput, key)
		}
	}
	return nil
}

// DecodeConfig maps agent_config kwargs onto an agent's options struct.
func DecodeConfig(cfg map[string]any, out any) error {
	if len(cfg) == 0 {
		return nil
	}
	if err := mapstructure.Decode(cfg, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// send delivers an event unless the context is done.
func send(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sendMessage(ctx context.Context, ch chan<- Event, msg schema.ChatMessage) bool {
	return send(ctx, ch, Event{Type: EventMessage, Message: &msg})
}

func sendError(ctx context.Context, ch chan<- Event, err error) {
	send(ctx, ch, Event{Type: EventError, Err: err})
}

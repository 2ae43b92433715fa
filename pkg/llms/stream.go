package llms

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// stableCallID derives a deterministic identifier for providers that omit
// tool-call IDs, so repeated fragments of the same call collapse to one.
func stableCallID(name string, args map[string]any) string {
	payload, _ := json.Marshal(map[string]any{"name": name, "args": args})
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("call-%x", sum[:12])
}

// emit sends a chunk unless the context is done. Returns false when the
// consumer has gone away and the producer should stop.
func emit(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func schemaToolCall(id, name string, args map[string]any) schema.ToolCall {
	return schema.ToolCall{ID: id, Name: name, Args: args}
}

func decodeOpenAIToolCall(id, name, rawArgs string) (schema.ToolCall, error) {
	call := schema.ToolCall{ID: id, Name: name, Args: map[string]any{}}
	if rawArgs == "" {
		return call, nil
	}
	if err := json.Unmarshal([]byte(rawArgs), &call.Args); err != nil {
		return schema.ToolCall{}, fmt.Errorf("decoding arguments for tool call %q: %w", name, err)
	}
	return call, nil
}

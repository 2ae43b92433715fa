// Package tools provides the callable tools agents expose to models:
// a few built-ins plus tools discovered from MCP servers.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
)

// Tool is a callable capability described to the model in JSON Schema form.
type Tool interface {
	Name() string
	Description() string

	// Parameters returns the JSON Schema for the tool's arguments.
	Parameters() map[string]any

	// Execute runs the tool. The returned string becomes the tool message
	// content fed back to the model.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Definitions converts tools into model-facing definitions.
func Definitions(ts []Tool) []llms.ToolDefinition {
	out := make([]llms.ToolDefinition, 0, len(ts))
	for _, t := range ts {
		out = append(out, llms.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}

// Registry holds a named set of tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute looks up and runs a tool. Execution failures come back as an
// error string so the model can react, not as a Go error; only unknown
// tools error out.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	out, err := t.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return out, nil
}

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
)

// DefaultAgent is served when a request does not name an agent.
const DefaultAgent = "research-assistant"

// Registry holds the service's agents.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]Agent
	defaultAgent string
	mcpSource    *tools.MCPSource
}

// NewRegistry builds the standard agent set from the service
// configuration. searcher is nil when RAG is not configured; the
// knowledge-base agent is only registered when it is present.
func NewRegistry(ctx context.Context, settings *config.Settings, models *llms.Registry, searcher tools.Searcher) (*Registry, error) {
	r := &Registry{
		agents:       make(map[string]Agent),
		defaultAgent: DefaultAgent,
	}

	var guard *LlamaGuard
	if settings.LlamaGuardEnabled {
		provider, err := models.Get(schema.ModelLlamaGuard)
		if err != nil {
			return nil, fmt.Errorf("llama guard: %w", err)
		}
		guard = NewLlamaGuard(provider)
	}

	research := tools.NewRegistry(tools.NewCalculator(), tools.NewWebSearch())
	if settings.OpenWeatherMapAPIKey != "" {
		research.Register(tools.NewWeather(settings.OpenWeatherMapAPIKey))
	}
	if searcher != nil {
		research.Register(tools.NewDatabaseSearch(searcher))
	}

	r.Register(NewChatbot())
	r.Register(NewResearchAssistant(research, guard))
	r.Register(NewBackgroundTask())
	r.Register(NewGitHubAssistant(r.connectGitHub(ctx, settings)))
	if searcher != nil {
		r.Register(NewKnowledgeBase(searcher))
	}

	return r, nil
}

// connectGitHub builds the GitHub tool registry from the MCP server.
// Missing PAT or a failed connection yields an empty registry; the agent
// still serves, with zero tools.
func (r *Registry) connectGitHub(ctx context.Context, settings *config.Settings) *tools.Registry {
	registry := tools.NewRegistry()
	if settings.GitHubPAT == "" {
		slog.Info("GITHUB_PAT not set, github agent will have no tools")
		return registry
	}

	source := tools.NewMCPSource("github", settings.MCPGitHubServerURL, settings.GitHubPAT)
	if err := source.Connect(ctx); err != nil {
		slog.Warn("failed to connect to GitHub MCP server", "error", err)
		return registry
	}
	r.mcpSource = source
	for _, t := range source.Tools() {
		registry.Register(t)
	}
	slog.Info("connected to GitHub MCP server", "tools", registry.Len())
	return registry
}

// Register adds an agent under its info key.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Info().Key] = a
}

// Get returns the named agent, or the default when key is empty.
func (r *Registry) Get(key string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key == "" {
		key = r.defaultAgent
	}
	a, ok := r.agents[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return a, nil
}

// Default returns the default agent key.
func (r *Registry) Default() string { return r.defaultAgent }

// List returns agent metadata sorted by key.
func (r *Registry) List() []schema.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]schema.AgentInfo, 0, len(r.agents))
	for _, a := range r.agents {
		infos = append(infos, a.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Close releases held connections.
func (r *Registry) Close() error {
	if r.mcpSource != nil {
		return r.mcpSource.Close()
	}
	return nil
}

package agents

import (
	"context"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
)

const githubPrompt = `You are an assistant for working with GitHub repositories, issues and pull requests.
Use the available GitHub tools to look up real data before answering. If no
tools are available, explain that the GitHub integration is not configured.`

// GitHubAssistant drives the GitHub MCP server's tools in a react loop.
// Without a configured PAT it serves with zero tools.
type GitHubAssistant struct {
	tools *tools.Registry
}

// NewGitHubAssistant wraps an already-connected tool registry. An empty
// registry is valid and produces tool-less answers.
func NewGitHubAssistant(registry *tools.Registry) *GitHubAssistant {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &GitHubAssistant{tools: registry}
}

func (g *GitHubAssistant) Info() schema.AgentInfo {
	return schema.AgentInfo{
		Key:         "github-mcp-agent",
		Description: "Works with GitHub repositories through the GitHub MCP server.",
	}
}

func (g *GitHubAssistant) Stream(ctx context.Context, inv Invocation) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		runToolLoop(ctx, out, inv, g.tools, githubPrompt)
	}()
	return out, nil
}

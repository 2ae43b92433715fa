package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/client"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// ChatCmd is an interactive REPL against a running service.
type ChatCmd struct {
	URL    string `help:"Agent service URL." default:"http://localhost:8080" env:"AGENT_SERVICE_URL"`
	Agent  string `help:"Agent to chat with (empty = service default)."`
	Model  string `help:"Model to use (empty = service default)."`
	Thread string `help:"Thread ID to continue a conversation."`
	Stream *bool  `default:"true" negatable:"" help:"Stream tokens as they arrive (use --no-stream to disable)."`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx := context.Background()

	var opts []client.Option
	if c.Agent != "" {
		opts = append(opts, client.WithAgent(c.Agent))
	}
	ac := client.New(c.URL, opts...)

	meta, err := ac.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach service at %s: %w", c.URL, err)
	}

	agentKey := c.Agent
	if agentKey == "" {
		agentKey = meta.DefaultAgent
	}
	threadID := c.Thread
	if threadID == "" {
		threadID = uuid.NewString()
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("Chatting with %s (thread %s). Type 'exit' to quit.\n", agentKey, threadID)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		input := schema.UserInput{Message: line, Model: c.Model, ThreadID: threadID}
		if c.Stream == nil || *c.Stream {
			if err := c.chatStream(ctx, ac, input); err != nil {
				return err
			}
		} else {
			msg, err := ac.Invoke(ctx, input)
			if err != nil {
				return err
			}
			fmt.Println(msg.Content)
		}
	}
	return scanner.Err()
}

func (c *ChatCmd) chatStream(ctx context.Context, ac *client.AgentClient, input schema.UserInput) error {
	events, err := ac.Stream(ctx, schema.StreamInput{UserInput: input})
	if err != nil {
		return err
	}

	sawTokens := false
	for ev := range events {
		switch ev.Type {
		case schema.StreamEventToken:
			if text, ok := ev.Content.(string); ok {
				fmt.Print(text)
				sawTokens = true
			}
		case schema.StreamEventError:
			fmt.Printf("\nError: %v\n", ev.Content)
			return nil
		}
	}
	if sawTokens {
		fmt.Println()
	}
	return nil
}

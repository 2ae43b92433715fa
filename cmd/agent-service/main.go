// Command agent-service runs AI agents behind an HTTP API.
//
// Usage:
//
//	agent-service serve
//	agent-service serve --config config.yaml --port 8080
//	agent-service chat --url http://localhost:8080
//	agent-service schema
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/JoshuaC215/agent-service-toolkit/internal/version"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the agent service."`
	Chat    ChatCmd    `cmd:"" help:"Chat with a running agent service."`
	Schema  SchemaCmd  `cmd:"" help:"Generate JSON Schema for the config file."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" env:"LOG_LEVEL"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("agent-service %s\n", version.Version)
	return nil
}

func initLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agent-service"),
		kong.Description("AI agent service with streaming, persistence and RAG."),
		kong.UsageOnError(),
	)

	if err := initLogging(cli.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

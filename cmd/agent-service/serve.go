package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/agents"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/auth"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/embedders"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/memory"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/observability"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/rag"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/service"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/tools"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/vector"
)

// ServeCmd starts the agent service.
type ServeCmd struct {
	Host   string `help:"Bind address." env:"HOST"`
	Port   int    `help:"Port to listen on." env:"PORT"`
	Config string `short:"c" help:"Path to YAML config file." type:"path" env:"CONFIG_FILE"`

	Observe       bool   `help:"Enable tracing (OTLP to --trace-endpoint, or stdout)."`
	TraceExporter string `name:"trace-exporter" help:"Trace exporter (stdout, otlp)." default:"stdout"`
	TraceEndpoint string `name:"trace-endpoint" help:"OTLP/gRPC collector endpoint." default:"localhost:4317"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	settings, err := config.Load()
	if err != nil {
		return err
	}
	if c.Host != "" {
		settings.Host = c.Host
	}
	if c.Port != 0 {
		settings.Port = c.Port
	}
	if c.Config != "" {
		file, err := config.LoadFile(c.Config)
		if err != nil {
			return err
		}
		settings.File = file
	}

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		Enabled:  c.Observe,
		Exporter: c.TraceExporter,
		Endpoint: c.TraceEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	metrics, err := observability.InitMetrics()
	if err != nil {
		return err
	}

	models, err := llms.NewRegistry(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to build model registry: %w", err)
	}
	defer models.Close()
	slog.Info("models configured", "models", models.Models(), "default", models.DefaultModel())

	store, err := memory.Open(ctx, settings.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	searcher, cleanup, err := setupRAG(ctx, settings)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	registry, err := agents.NewRegistry(ctx, settings, models, searcher)
	if err != nil {
		return fmt.Errorf("failed to build agent registry: %w", err)
	}
	defer registry.Close()

	validator, err := auth.NewValidator(settings.Auth)
	if err != nil {
		return err
	}

	opts := []service.Option{service.WithMetrics(metrics)}
	if validator != nil {
		opts = append(opts, service.WithValidator(validator))
	}
	svc := service.New(settings, registry, models, store, opts...)
	return svc.Run(ctx)
}

// setupRAG builds the retrieval pipeline when the config file enables it.
// Ingestion runs before the service accepts traffic so the knowledge base
// is complete from the first request.
func setupRAG(ctx context.Context, settings *config.Settings) (tools.Searcher, func(), error) {
	if settings.File == nil || !settings.File.RAG.Enabled {
		return nil, nil, nil
	}
	cfg := settings.File.RAG

	store, err := vector.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build vector store: %w", err)
	}

	embedder, err := embedders.New(cfg.Embedder, settings.OpenAIAPIKey)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to build embedder: %w", err)
	}

	pipeline := rag.NewPipeline(cfg, store, embedder)
	if err := pipeline.IngestDirectory(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to ingest documents: %w", err)
	}

	cleanup := func() { store.Close() }
	if cfg.Watch {
		watcher, err := rag.NewWatcher(pipeline)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to watch docs folder: %w", err)
		}
		go watcher.Run(ctx)
		cleanup = func() {
			watcher.Close()
			store.Close()
		}
	}
	return pipeline, cleanup, nil
}

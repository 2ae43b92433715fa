// Package service exposes the agents over HTTP: JSON endpoints for
// invoke, history and feedback, and an SSE endpoint for streaming.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/agents"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/auth"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/memory"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/observability"
)

// shutdownTimeout bounds graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Service ties the agent registry, model registry and store to HTTP.
type Service struct {
	settings  *config.Settings
	agents    *agents.Registry
	models    *llms.Registry
	store     *memory.Store
	metrics   *observability.Metrics
	validator auth.TokenValidator
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches request and LLM metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithValidator enables bearer auth on all routes except health and
// metrics.
func WithValidator(v auth.TokenValidator) Option {
	return func(s *Service) { s.validator = v }
}

func New(settings *config.Settings, agentReg *agents.Registry, models *llms.Registry, store *memory.Store, opts ...Option) *Service {
	s := &Service{
		settings: settings,
		agents:   agentReg,
		models:   models,
		store:    store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(corsMiddleware)
	r.Use(observability.HTTPMiddleware(s.metrics))
	if s.validator != nil {
		r.Use(auth.Middleware(s.validator, "/health", "/metrics"))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", observability.Handler().ServeHTTP)
	r.Get("/info", s.handleInfo)

	r.Post("/invoke", s.handleInvoke)
	r.Post("/{agent}/invoke", s.handleInvoke)
	r.Post("/stream", s.handleStream)
	r.Post("/{agent}/stream", s.handleStream)
	r.Post("/history", s.handleHistory)
	r.Post("/feedback", s.handleFeedback)

	return r
}

// Run serves until the context is canceled, then drains gracefully.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.settings.Address(),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

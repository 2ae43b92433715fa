package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the service's instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram

	llmCalls        metric.Int64Counter
	llmErrors       metric.Int64Counter
	llmInputTokens  metric.Int64Counter
	llmOutputTokens metric.Int64Counter
}

// InitMetrics builds the instruments over a Prometheus exporter. Scrape
// the result of Handler to collect them.
func InitMetrics() (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &Metrics{}
	if m.requestCount, err = meter.Int64Counter(
		"agent_service_requests_total",
		metric.WithDescription("Total HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram(
		"agent_service_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	if m.llmCalls, err = meter.Int64Counter(
		"agent_service_llm_calls_total",
		metric.WithDescription("Total LLM calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm call counter: %w", err)
	}
	if m.llmErrors, err = meter.Int64Counter(
		"agent_service_llm_errors_total",
		metric.WithDescription("Total LLM call failures"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm error counter: %w", err)
	}
	if m.llmInputTokens, err = meter.Int64Counter(
		"agent_service_llm_tokens_input_total",
		metric.WithDescription("Total input tokens sent to models"),
	); err != nil {
		return nil, fmt.Errorf("failed to create input token counter: %w", err)
	}
	if m.llmOutputTokens, err = meter.Int64Counter(
		"agent_service_llm_tokens_output_total",
		metric.WithDescription("Total output tokens from models"),
	); err != nil {
		return nil, fmt.Errorf("failed to create output token counter: %w", err)
	}
	return m, nil
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.requestCount.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordLLMCall records a model invocation and its token usage.
func (m *Metrics) RecordLLMCall(ctx context.Context, model string, inputTokens, outputTokens int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.llmCalls.Add(ctx, 1, attrs)
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
		return
	}
	m.llmInputTokens.Add(ctx, int64(inputTokens), attrs)
	m.llmOutputTokens.Add(ctx, int64(outputTokens), attrs)
}

// Package httpclient provides a retrying HTTP client shared by the LLM
// providers, embedders, and tools. Retries are rate-limit aware: when the
// upstream API reports a reset time or Retry-After, that wins over the
// exponential backoff schedule.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RateLimitInfo carries rate limit hints parsed from response headers.
type RateLimitInfo struct {
	RetryAfter        time.Duration
	ResetAt           time.Time
	RequestsRemaining int
	TokensRemaining   int
}

// HeaderParser extracts rate limit hints from provider-specific headers.
type HeaderParser func(http.Header) RateLimitInfo

// Client wraps http.Client with retry and backoff.
type Client struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	parser     HeaderParser
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithMaxRetries sets the retry budget for retryable status codes.
func WithMaxRetries(n int) Option {
	return func(cl *Client) { cl.maxRetries = n }
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Client) { cl.baseDelay = d }
}

// WithHeaderParser installs a provider-specific rate limit header parser.
func WithHeaderParser(p HeaderParser) Option {
	return func(cl *Client) { cl.parser = p }
}

// New creates a Client with sane defaults for LLM API traffic.
func New(opts ...Option) *Client {
	c := &Client{
		client:     &http.Client{Timeout: 60 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryable reports whether a status code is worth retrying.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do executes the request, retrying retryable failures with backoff.
// The request body must be replayable (req.GetBody set), which is the case
// for requests built with bytes.Reader bodies. On retry exhaustion the
// last response body is closed and only the error is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("recreating request body for retry: %w", err)
			}
			req.Body = body
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Transport errors are not retried: they include context
			// cancellation, which must propagate immediately.
			return nil, err
		}

		if resp.StatusCode < 400 || !retryable(resp.StatusCode) {
			return resp, nil
		}

		var info RateLimitInfo
		if c.parser != nil {
			info = c.parser(resp.Header)
		}
		lastErr = &RetryError{StatusCode: resp.StatusCode, Attempts: attempt + 1}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, lastErr
		}

		delay := c.delay(attempt, info)
		slog.Debug("retrying HTTP request",
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"delay", delay,
			"attempt", attempt+1,
		)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}
	}
}

// delay computes the wait before the next attempt. Server-provided hints
// take precedence over the exponential schedule.
func (c *Client) delay(attempt int, info RateLimitInfo) time.Duration {
	if info.RetryAfter > 0 {
		return info.RetryAfter
	}
	if !info.ResetAt.IsZero() {
		if d := time.Until(info.ResetAt); d > 0 {
			return d
		}
	}
	backoff := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
	return backoff + backoff/10
}

// Get issues a GET request with the given context.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

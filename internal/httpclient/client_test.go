package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(WithMaxRetries(5), WithBaseDelay(time.Millisecond))
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDoDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(WithMaxRetries(5), WithBaseDelay(time.Millisecond))
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithMaxRetries(2), WithBaseDelay(time.Millisecond))
	resp, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Get() error = nil, want RetryError")
	}
	if resp != nil {
		t.Error("resp != nil on retry exhaustion, body ownership is ambiguous")
	}

	retryErr, ok := err.(*RetryError)
	if !ok {
		t.Fatalf("error type = %T, want *RetryError", err)
	}
	if retryErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", retryErr.StatusCode)
	}
	if retryErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", retryErr.Attempts)
	}
}

type countingBody struct {
	closes *atomic.Int32
}

func (b *countingBody) Read(p []byte) (int, error) { return 0, io.EOF }
func (b *countingBody) Close() error               { b.closes.Add(1); return nil }

type throttledTransport struct {
	closes atomic.Int32
}

func (tr *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{},
		Body:       &countingBody{closes: &tr.closes},
		Request:    req,
	}, nil
}

func TestDoClosesEveryBodyOnExhaustion(t *testing.T) {
	tr := &throttledTransport{}
	c := New(
		WithHTTPClient(&http.Client{Transport: tr}),
		WithMaxRetries(2),
		WithBaseDelay(time.Millisecond),
	)

	_, err := c.Get(context.Background(), "http://upstream.invalid/v1")
	if err == nil {
		t.Fatal("Get() error = nil, want RetryError")
	}
	if got := tr.closes.Load(); got != 3 {
		t.Errorf("closed bodies = %d, want 3", got)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(WithMaxRetries(5), WithBaseDelay(time.Hour))
	_, err := c.Get(ctx, srv.URL)
	if err == nil {
		t.Fatal("Get() error = nil, want context error")
	}
}

func TestParseOpenAIHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	h.Set("x-ratelimit-remaining-requests", "42")

	info := ParseOpenAIHeaders(h)
	if info.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", info.RetryAfter)
	}
	if info.RequestsRemaining != 42 {
		t.Errorf("RequestsRemaining = %d, want 42", info.RequestsRemaining)
	}
}

func TestParseAnthropicHeaders(t *testing.T) {
	reset := time.Now().Add(time.Minute).UTC().Format(time.RFC3339)
	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-reset", reset)
	h.Set("anthropic-ratelimit-requests-remaining", "5")

	info := ParseAnthropicHeaders(h)
	if info.ResetAt.IsZero() {
		t.Error("ResetAt is zero, want parsed timestamp")
	}
	if info.RequestsRemaining != 5 {
		t.Errorf("RequestsRemaining = %d, want 5", info.RequestsRemaining)
	}
}

// Package client is a Go client for the agent service. It mirrors the
// HTTP surface: Invoke, Stream, History, Feedback and Info.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

const doneSentinel = "[DONE]"

// AgentClient talks to one agent service.
type AgentClient struct {
	baseURL    string
	agent      string
	authSecret string
	httpClient *http.Client
}

// Option configures an AgentClient.
type Option func(*AgentClient)

// WithAgent pins requests to a named agent instead of the service
// default.
func WithAgent(agent string) Option {
	return func(c *AgentClient) { c.agent = agent }
}

// WithAuthSecret overrides the AUTH_SECRET environment variable.
func WithAuthSecret(secret string) Option {
	return func(c *AgentClient) { c.authSecret = secret }
}

// WithTimeout bounds non-streaming requests.
func WithTimeout(d time.Duration) Option {
	return func(c *AgentClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *AgentClient) { c.httpClient = hc }
}

// New builds a client for the service at baseURL. The bearer secret is
// read from AUTH_SECRET unless overridden.
func New(baseURL string, opts ...Option) *AgentClient {
	c := &AgentClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authSecret: os.Getenv("AUTH_SECRET"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AgentClient) url(endpoint string) string {
	if c.agent != "" && (endpoint == "invoke" || endpoint == "stream") {
		return fmt.Sprintf("%s/%s/%s", c.baseURL, c.agent, endpoint)
	}
	return fmt.Sprintf("%s/%s", c.baseURL, endpoint)
}

func (c *AgentClient) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authSecret != "" {
		req.Header.Set("Authorization", "Bearer "+c.authSecret)
	}
	return req, nil
}

func (c *AgentClient) doJSON(ctx context.Context, method, url string, body, out any) error {
	req, err := c.newRequest(ctx, method, url, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Info fetches the service metadata.
func (c *AgentClient) Info(ctx context.Context) (*schema.ServiceMetadata, error) {
	var meta schema.ServiceMetadata
	if err := c.doJSON(ctx, http.MethodGet, c.url("info"), nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Invoke runs the agent to completion and returns its final message.
func (c *AgentClient) Invoke(ctx context.Context, input schema.UserInput) (*schema.ChatMessage, error) {
	var msg schema.ChatMessage
	if err := c.doJSON(ctx, http.MethodPost, c.url("invoke"), input, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// History fetches the messages of a thread.
func (c *AgentClient) History(ctx context.Context, threadID string) (*schema.ChatHistory, error) {
	var history schema.ChatHistory
	input := schema.ChatHistoryInput{ThreadID: threadID}
	if err := c.doJSON(ctx, http.MethodPost, c.url("history"), input, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// Feedback records a score for a run.
func (c *AgentClient) Feedback(ctx context.Context, fb schema.Feedback) error {
	return c.doJSON(ctx, http.MethodPost, c.url("feedback"), fb, nil)
}

// Stream invokes the agent and delivers events as they arrive. The
// returned channel closes when the server sends [DONE] or the stream
// fails; a trailing error event carries any failure.
func (c *AgentClient) Stream(ctx context.Context, input schema.StreamInput) (<-chan schema.StreamEvent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.url("stream"), input)
	if err != nil {
		return nil, err
	}

	// Streaming must not be cut off by the request timeout.
	hc := &http.Client{Transport: c.httpClient.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, newStatusError(resp)
	}

	events := make(chan schema.StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			payload := strings.TrimPrefix(line, "data: ")
			if payload == doneSentinel {
				return
			}

			var ev schema.StreamEvent
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				emit(ctx, events, schema.StreamEvent{
					Type:    schema.StreamEventError,
					Content: fmt.Sprintf("failed to parse stream event: %v", err),
				})
				return
			}
			if !emit(ctx, events, ev) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			emit(ctx, events, schema.StreamEvent{
				Type:    schema.StreamEventError,
				Content: fmt.Sprintf("stream read failed: %v", err),
			})
		}
	}()
	return events, nil
}

func emit(ctx context.Context, ch chan<- schema.StreamEvent, ev schema.StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

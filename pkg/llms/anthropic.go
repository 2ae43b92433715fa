package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/internal/httpclient"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
	anthropicMaxTokens      = 4096
)

// AnthropicProvider speaks the Anthropic messages API.
type AnthropicProvider struct {
	apiKey    string
	baseURL   string
	modelName string
	apiModel  string
	client    *httpclient.Client
}

// AnthropicOption configures an AnthropicProvider.
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicBaseURL overrides the API host.
func WithAnthropicBaseURL(u string) AnthropicOption {
	return func(p *AnthropicProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithAnthropicHTTPClient overrides the retrying HTTP client.
func WithAnthropicHTTPClient(c *httpclient.Client) AnthropicOption {
	return func(p *AnthropicProvider) { p.client = c }
}

// NewAnthropicProvider builds a provider for one model.
func NewAnthropicProvider(apiKey, modelName, apiModel string, opts ...AnthropicOption) *AnthropicProvider {
	p := &AnthropicProvider{
		apiKey:    apiKey,
		baseURL:   anthropicDefaultBaseURL,
		modelName: modelName,
		apiModel:  apiModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = httpclient.New(
			httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
		)
	}
	return p
}

func (p *AnthropicProvider) ModelName() string { return p.modelName }

func (p *AnthropicProvider) Close() error { return nil }

type anthropicContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

// buildRequest folds the provider-neutral request into Anthropic's shape:
// the system prompt moves to a top-level field and tool results become
// tool_result blocks inside user messages.
func (p *AnthropicProvider) buildRequest(req Request, stream bool) anthropicRequest {
	out := anthropicRequest{
		Model:       p.apiModel,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = anthropicMaxTokens
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			out.System = m.Content
		case RoleUser:
			out.Messages = append(out.Messages, anthropicMessage{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: m.Content}},
			})
		case RoleAssistant:
			msg := anthropicMessage{Role: "assistant"}
			if m.Content != "" {
				msg.Content = append(msg.Content, anthropicContentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				msg.Content = append(msg.Content, anthropicContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: tc.Args,
				})
			}
			out.Messages = append(out.Messages, msg)
		case RoleTool:
			out.Messages = append(out.Messages, anthropicMessage{
				Role: "user",
				Content: []anthropicContentBlock{{
					Type:      "tool_result",
					ToolUseID: m.ToolCallID,
					Content:   m.Content,
				}},
			})
		}
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	return out
}

func (p *AnthropicProvider) send(ctx context.Context, body anthropicRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("message request failed with status %d: %s", resp.StatusCode, msg)
	}
	return resp, nil
}

// Generate performs a blocking chat completion.
func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.send(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := &Response{
		Usage: Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := block.Input
			if args == nil {
				args = map[string]any{}
			}
			out.ToolCalls = append(out.ToolCalls, schemaToolCall(block.ID, block.Name, args))
		}
	}
	out.Text = text.String()
	return out, nil
}

// GenerateStream streams the completion over SSE.
func (p *AnthropicProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	resp, err := p.send(ctx, p.buildRequest(req, true))
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		p.readStream(ctx, resp.Body, ch)
	}()
	return ch, nil
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`

	Message struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`

	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`

	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`

	Usage anthropicUsage `json:"usage"`
}

func (p *AnthropicProvider) readStream(ctx context.Context, body io.Reader, ch chan<- StreamChunk) {
	var (
		text    strings.Builder
		usage   Usage
		pending = map[int]*toolCallAccumulator{}
		order   []int
	)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			slog.Warn("skipping malformed stream event", "error", err)
			continue
		}

		switch event.Type {
		case "message_start":
			usage.InputTokens = event.Message.Usage.InputTokens
		case "content_block_start":
			if event.ContentBlock.Type == "tool_use" {
				pending[event.Index] = &toolCallAccumulator{
					id:   event.ContentBlock.ID,
					name: event.ContentBlock.Name,
				}
				order = append(order, event.Index)
			}
		case "content_block_delta":
			switch event.Delta.Type {
			case "text_delta":
				text.WriteString(event.Delta.Text)
				if !emit(ctx, ch, StreamChunk{Type: ChunkText, Text: event.Delta.Text}) {
					return
				}
			case "input_json_delta":
				if acc, ok := pending[event.Index]; ok {
					acc.args.WriteString(event.Delta.PartialJSON)
				}
			}
		case "message_delta":
			if event.Usage.OutputTokens > 0 {
				usage.OutputTokens = event.Usage.OutputTokens
			}
		}
	}
	if err := scanner.Err(); err != nil {
		emit(ctx, ch, StreamChunk{Type: ChunkError, Err: fmt.Errorf("reading stream: %w", err)})
		return
	}

	final := &Response{Text: text.String(), Usage: usage}
	for _, idx := range order {
		acc := pending[idx]
		call, err := decodeOpenAIToolCall(acc.id, acc.name, acc.args.String())
		if err != nil {
			emit(ctx, ch, StreamChunk{Type: ChunkError, Err: err})
			return
		}
		final.ToolCalls = append(final.ToolCalls, call)
	}
	emit(ctx, ch, StreamChunk{Type: ChunkDone, Response: final})
}

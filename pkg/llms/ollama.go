package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/internal/httpclient"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// OllamaProvider speaks the Ollama chat API. Responses stream as
// newline-delimited JSON rather than SSE.
type OllamaProvider struct {
	baseURL   string
	modelName string
	apiModel  string
	client    *httpclient.Client
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithOllamaHTTPClient overrides the retrying HTTP client.
func WithOllamaHTTPClient(c *httpclient.Client) OllamaOption {
	return func(p *OllamaProvider) { p.client = c }
}

// NewOllamaProvider builds a provider for a locally served model.
func NewOllamaProvider(baseURL, modelName, apiModel string, opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		modelName: modelName,
		apiModel:  apiModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = httpclient.New()
	}
	return p
}

func (p *OllamaProvider) ModelName() string { return p.modelName }

func (p *OllamaProvider) Close() error { return nil }

type ollamaToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []openAITool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

func (p *OllamaProvider) buildRequest(req Request, stream bool) ollamaRequest {
	out := ollamaRequest{Model: p.apiModel, Stream: stream}
	opts := map[string]any{}
	if req.Temperature != nil {
		opts["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	if len(opts) > 0 {
		out.Options = opts
	}
	for _, m := range req.Messages {
		om := ollamaMessage{Role: string(m.Role), Content: m.Content}
		for _, tc := range m.ToolCalls {
			var otc ollamaToolCall
			otc.Function.Name = tc.Name
			otc.Function.Arguments = tc.Args
			om.ToolCalls = append(om.ToolCalls, otc)
		}
		out.Messages = append(out.Messages, om)
	}
	for _, t := range req.Tools {
		ot := openAITool{Type: "function"}
		ot.Function.Name = t.Name
		ot.Function.Description = t.Description
		ot.Function.Parameters = t.Parameters
		out.Tools = append(out.Tools, ot)
	}
	return out
}

func (p *OllamaProvider) send(ctx context.Context, body ollamaRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, msg)
	}
	return resp, nil
}

func ollamaToolCalls(calls []ollamaToolCall) []schema.ToolCall {
	out := make([]schema.ToolCall, 0, len(calls))
	for _, tc := range calls {
		args := tc.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		out = append(out, schema.ToolCall{
			ID:   stableCallID(tc.Function.Name, args),
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out
}

// Generate performs a blocking chat completion.
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.send(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &Response{
		Text:      parsed.Message.Content,
		ToolCalls: ollamaToolCalls(parsed.Message.ToolCalls),
		Usage: Usage{
			InputTokens:  parsed.PromptEvalCount,
			OutputTokens: parsed.EvalCount,
		},
	}, nil
}

// GenerateStream streams the completion over NDJSON.
func (p *OllamaProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	resp, err := p.send(ctx, p.buildRequest(req, true))
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		var (
			text  strings.Builder
			usage Usage
			calls []schema.ToolCall
		)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var chunk ollamaResponse
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				emit(ctx, ch, StreamChunk{Type: ChunkError, Err: fmt.Errorf("decoding stream line: %w", err)})
				return
			}
			if chunk.Message.Content != "" {
				text.WriteString(chunk.Message.Content)
				if !emit(ctx, ch, StreamChunk{Type: ChunkText, Text: chunk.Message.Content}) {
					return
				}
			}
			calls = append(calls, ollamaToolCalls(chunk.Message.ToolCalls)...)
			if chunk.Done {
				usage.InputTokens = chunk.PromptEvalCount
				usage.OutputTokens = chunk.EvalCount
			}
		}
		if err := scanner.Err(); err != nil {
			emit(ctx, ch, StreamChunk{Type: ChunkError, Err: fmt.Errorf("reading stream: %w", err)})
			return
		}
		emit(ctx, ch, StreamChunk{Type: ChunkDone, Response: &Response{
			Text:      text.String(),
			ToolCalls: calls,
			Usage:     usage,
		}})
	}()
	return ch, nil
}

package llms

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// GoogleConfig selects one of the two genai backends. An API key uses the
// Gemini developer API; a Vertex project uses application default
// credentials, which the SDK resolves from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleConfig struct {
	APIKey    string
	Project   string
	Location  string
	UseVertex bool
}

// GoogleProvider serves Gemini models through the official genai SDK.
type GoogleProvider struct {
	client    *genai.Client
	modelName string
	apiModel  string
}

// NewGoogleProvider builds a provider for one Gemini model.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, modelName, apiModel string) (*GoogleProvider, error) {
	cc := &genai.ClientConfig{}
	if cfg.UseVertex {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GoogleProvider{client: client, modelName: modelName, apiModel: apiModel}, nil
}

func (p *GoogleProvider) ModelName() string { return p.modelName }

func (p *GoogleProvider) Close() error { return nil }

func (p *GoogleProvider) buildRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			cfg.SystemInstruction = &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			}
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		case RoleAssistant:
			content := &genai.Content{Role: "model"}
			if m.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: tc.Args},
				})
			}
			contents = append(contents, content)
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Response: map[string]any{"result": m.Content},
					},
				}},
			})
		}
	}

	for _, t := range req.Tools {
		cfg.Tools = append(cfg.Tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenaiSchema(t.Parameters),
			}},
		})
	}
	return contents, cfg
}

// toGenaiSchema converts a JSON Schema map into the SDK's schema type.
// Gemini expects uppercase type names.
func toGenaiSchema(in map[string]any) *genai.Schema {
	if in == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := in["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := in["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := in["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if pm, ok := prop.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if required, ok := in["required"].([]any); ok {
		for _, r := range required {
			if rs, ok := r.(string); ok {
				s.Required = append(s.Required, rs)
			}
		}
	}
	if items, ok := in["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	if enum, ok := in["enum"].([]any); ok {
		for _, e := range enum {
			if es, ok := e.(string); ok {
				s.Enum = append(s.Enum, es)
			}
		}
	}
	return s
}

func googleUsage(md *genai.GenerateContentResponseUsageMetadata) Usage {
	if md == nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  int(md.PromptTokenCount),
		OutputTokens: int(md.CandidatesTokenCount),
	}
}

// Generate performs a blocking chat completion.
func (p *GoogleProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents, cfg := p.buildRequest(req)
	resp, err := p.client.Models.GenerateContent(ctx, p.apiModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("response contained no candidates")
	}

	out := &Response{Usage: googleUsage(resp.UsageMetadata)}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, functionCallToToolCall(part.FunctionCall))
		}
	}
	out.Text = text.String()
	return out, nil
}

// GenerateStream streams the completion via the SDK's iterator.
func (p *GoogleProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	contents, cfg := p.buildRequest(req)

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)

		var (
			text  strings.Builder
			usage Usage
			calls []schema.ToolCall
			seen  = map[string]bool{}
		)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.apiModel, contents, cfg) {
			if err != nil {
				emit(ctx, ch, StreamChunk{Type: ChunkError, Err: fmt.Errorf("streaming content: %w", err)})
				return
			}
			if resp.UsageMetadata != nil {
				usage = googleUsage(resp.UsageMetadata)
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
					if !emit(ctx, ch, StreamChunk{Type: ChunkText, Text: part.Text}) {
						return
					}
				}
				if part.FunctionCall != nil {
					call := functionCallToToolCall(part.FunctionCall)
					// Gemini may resend a call across chunks.
					if seen[call.ID] {
						continue
					}
					seen[call.ID] = true
					calls = append(calls, call)
				}
			}
		}
		emit(ctx, ch, StreamChunk{Type: ChunkDone, Response: &Response{
			Text:      text.String(),
			ToolCalls: calls,
			Usage:     usage,
		}})
	}()
	return ch, nil
}

// functionCallToToolCall normalizes a Gemini function call. Gemini can omit
// call IDs, so a stable one is derived from the name and arguments.
func functionCallToToolCall(fc *genai.FunctionCall) schema.ToolCall {
	id := fc.ID
	if id == "" {
		id = stableCallID(fc.Name, fc.Args)
	}
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	return schema.ToolCall{ID: id, Name: fc.Name, Args: args}
}

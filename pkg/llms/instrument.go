package llms

import "context"

// Recorder receives usage data for completed model calls.
type Recorder interface {
	RecordLLMCall(ctx context.Context, model string, inputTokens, outputTokens int, err error)
}

// Instrument wraps a provider so every call reports usage to rec.
func Instrument(p Provider, rec Recorder) Provider {
	if rec == nil {
		return p
	}
	return &instrumentedProvider{Provider: p, rec: rec}
}

type instrumentedProvider struct {
	Provider
	rec Recorder
}

func (p *instrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.Provider.Generate(ctx, req)
	if err != nil {
		p.rec.RecordLLMCall(ctx, p.ModelName(), 0, 0, err)
		return nil, err
	}
	p.rec.RecordLLMCall(ctx, p.ModelName(), resp.Usage.InputTokens, resp.Usage.OutputTokens, nil)
	return resp, nil
}

func (p *instrumentedProvider) GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	inner, err := p.Provider.GenerateStream(ctx, req)
	if err != nil {
		p.rec.RecordLLMCall(ctx, p.ModelName(), 0, 0, err)
		return nil, err
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for chunk := range inner {
			switch chunk.Type {
			case ChunkDone:
				p.rec.RecordLLMCall(ctx, p.ModelName(),
					chunk.Response.Usage.InputTokens, chunk.Response.Usage.OutputTokens, nil)
			case ChunkError:
				p.rec.RecordLLMCall(ctx, p.ModelName(), 0, 0, chunk.Err)
			}
			if !emit(ctx, out, chunk) {
				return
			}
		}
	}()
	return out, nil
}

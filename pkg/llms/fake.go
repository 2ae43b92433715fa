package llms

import (
	"context"
	"strings"
	"sync"
)

const fakeDefaultResponse = "This is a test response from the fake model."

// FakeProvider returns canned responses, cycling through them on repeated
// calls. It backs USE_FAKE_MODEL deployments and tests.
type FakeProvider struct {
	mu        sync.Mutex
	responses []string
	next      int
}

// NewFakeProvider builds a fake provider. With no responses given it
// always returns a fixed sentence.
func NewFakeProvider(responses ...string) *FakeProvider {
	if len(responses) == 0 {
		responses = []string{fakeDefaultResponse}
	}
	return &FakeProvider{responses: responses}
}

func (p *FakeProvider) ModelName() string { return "fake" }

func (p *FakeProvider) Close() error { return nil }

func (p *FakeProvider) take() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.responses[p.next%len(p.responses)]
	p.next++
	return out
}

// Generate returns the next canned response.
func (p *FakeProvider) Generate(_ context.Context, _ Request) (*Response, error) {
	return &Response{Text: p.take()}, nil
}

// GenerateStream emits the next canned response word by word.
func (p *FakeProvider) GenerateStream(ctx context.Context, _ Request) (<-chan StreamChunk, error) {
	text := p.take()
	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		words := strings.SplitAfter(text, " ")
		for _, w := range words {
			if !emit(ctx, ch, StreamChunk{Type: ChunkText, Text: w}) {
				return
			}
		}
		emit(ctx, ch, StreamChunk{Type: ChunkDone, Response: &Response{Text: text}})
	}()
	return ch, nil
}

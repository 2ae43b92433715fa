package llms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usageCall struct {
	model  string
	input  int
	output int
	err    error
}

type usageRecorder struct {
	mu    sync.Mutex
	calls []usageCall
}

func (r *usageRecorder) RecordLLMCall(_ context.Context, model string, inputTokens, outputTokens int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, usageCall{model: model, input: inputTokens, output: outputTokens, err: err})
}

func TestInstrumentRecordsGenerate(t *testing.T) {
	rec := &usageRecorder{}
	p := Instrument(NewFakeProvider(), rec)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "fake", rec.calls[0].model)
	assert.NoError(t, rec.calls[0].err)
}

func TestInstrumentNilRecorderIsPassthrough(t *testing.T) {
	fake := NewFakeProvider()
	assert.Same(t, Provider(fake), Instrument(fake, nil))
}

func TestInstrumentRecordsStreamUsage(t *testing.T) {
	rec := &usageRecorder{}
	p := Instrument(NewFakeProvider(), rec)

	ch, err := p.GenerateStream(context.Background(), Request{})
	require.NoError(t, err)
	for range ch {
	}

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "fake", rec.calls[0].model)
}

func TestInstrumentStreamStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := Instrument(NewFakeProvider(), &usageRecorder{})
	ch, err := p.GenerateStream(ctx, Request{})
	require.NoError(t, err)

	// Take one chunk, then walk away the way a disconnected client does.
	_, ok := <-ch
	require.True(t, ok)
	cancel()
	time.Sleep(50 * time.Millisecond)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "stream still sending after cancellation")
	case <-time.After(time.Second):
		t.Fatal("stream channel never closed after cancellation")
	}
}

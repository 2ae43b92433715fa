package rag

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits text into overlapping windows sized in tokens. Overlap
// preserves context at chunk boundaries, which matters for retrieval.
type Chunker struct {
	size    int
	overlap int
	enc     *tiktoken.Tiktoken
}

var (
	encOnce   sync.Once
	sharedEnc *tiktoken.Tiktoken
)

// NewChunker builds a chunker. Token counting uses the cl100k_base
// encoding; if it cannot be loaded, chunking falls back to word counts.
func NewChunker(size, overlap int) *Chunker {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tokenizer unavailable, chunking by words", "error", err)
			return
		}
		sharedEnc = enc
	})
	return &Chunker{size: size, overlap: overlap, enc: sharedEnc}
}

// Chunk splits text into windows of at most size tokens, stepping by
// size minus overlap.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if c.enc != nil {
		return c.chunkTokens(text)
	}
	return c.chunkWords(text)
}

func (c *Chunker) chunkTokens(text string) []string {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= c.size {
		return []string{text}
	}

	step := c.size - c.overlap
	var out []string
	for start := 0; start < len(tokens); start += step {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.TrimSpace(c.enc.Decode(tokens[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(tokens) {
			break
		}
	}
	return out
}

func (c *Chunker) chunkWords(text string) []string {
	words := strings.Fields(text)
	if len(words) <= c.size {
		return []string{strings.Join(words, " ")}
	}

	step := c.size - c.overlap
	var out []string
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

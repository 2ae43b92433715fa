package httpclient

import (
	"net/http"
	"strconv"
	"time"
)

// ParseOpenAIHeaders extracts rate limit hints from OpenAI-compatible APIs
// (OpenAI, Groq). Reset headers use duration strings like "1s" or "6m0s".
func ParseOpenAIHeaders(h http.Header) RateLimitInfo {
	info := RateLimitInfo{}

	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			info.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	for _, name := range []string{"x-ratelimit-reset-requests", "x-ratelimit-reset-tokens"} {
		if v := h.Get(name); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				info.ResetAt = time.Now().Add(d)
				break
			}
		}
	}
	if v := h.Get("x-ratelimit-remaining-requests"); v != "" {
		info.RequestsRemaining, _ = strconv.Atoi(v)
	}
	if v := h.Get("x-ratelimit-remaining-tokens"); v != "" {
		info.TokensRemaining, _ = strconv.Atoi(v)
	}
	return info
}

// ParseAnthropicHeaders extracts rate limit hints from Anthropic API headers.
// Reset headers carry RFC3339 timestamps.
func ParseAnthropicHeaders(h http.Header) RateLimitInfo {
	info := RateLimitInfo{}

	if v := h.Get("retry-after"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			info.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	for _, name := range []string{
		"anthropic-ratelimit-requests-reset",
		"anthropic-ratelimit-input-tokens-reset",
		"anthropic-ratelimit-output-tokens-reset",
	} {
		if v := h.Get(name); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				info.ResetAt = t
				break
			}
		}
	}
	if v := h.Get("anthropic-ratelimit-requests-remaining"); v != "" {
		info.RequestsRemaining, _ = strconv.Atoi(v)
	}
	if v := h.Get("anthropic-ratelimit-input-tokens-remaining"); v != "" {
		info.TokensRemaining, _ = strconv.Atoi(v)
	}
	return info
}

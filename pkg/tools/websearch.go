package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/internal/httpclient"
)

const duckDuckGoBaseURL = "https://api.duckduckgo.com"

// WebSearch queries the DuckDuckGo instant-answer API. No API key needed.
type WebSearch struct {
	baseURL    string
	maxResults int
	client     *httpclient.Client
}

// WebSearchOption configures a WebSearch.
type WebSearchOption func(*WebSearch)

// WithWebSearchBaseURL overrides the API host.
func WithWebSearchBaseURL(u string) WebSearchOption {
	return func(w *WebSearch) { w.baseURL = strings.TrimRight(u, "/") }
}

// WithWebSearchHTTPClient overrides the retrying HTTP client.
func WithWebSearchHTTPClient(c *httpclient.Client) WebSearchOption {
	return func(w *WebSearch) { w.client = c }
}

func NewWebSearch(opts ...WebSearchOption) *WebSearch {
	w := &WebSearch{baseURL: duckDuckGoBaseURL, maxResults: 5}
	for _, opt := range opts {
		opt(w)
	}
	if w.client == nil {
		w.client = httpclient.New()
	}
	return w
}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Description() string {
	return "Searches the web and returns short summaries of the top results."
}

func (w *WebSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []any{"query"},
	}
}

type duckDuckGoResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (w *WebSearch) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}

	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		w.baseURL, url.QueryEscape(query))
	resp, err := w.client.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("searching: %w", err)
	}
	defer resp.Body.Close()

	var parsed duckDuckGoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding search results: %w", err)
	}

	var lines []string
	if parsed.Answer != "" {
		lines = append(lines, parsed.Answer)
	}
	if parsed.AbstractText != "" {
		line := parsed.AbstractText
		if parsed.AbstractURL != "" {
			line += " (" + parsed.AbstractURL + ")"
		}
		lines = append(lines, line)
	}
	for _, topic := range parsed.RelatedTopics {
		if len(lines) >= w.maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		line := topic.Text
		if topic.FirstURL != "" {
			line += " (" + topic.FirstURL + ")"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "No results found.", nil
	}
	return strings.Join(lines, "\n"), nil
}

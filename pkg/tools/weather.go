package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/internal/httpclient"
)

const openWeatherMapBaseURL = "https://api.openweathermap.org/data/2.5"

// Weather reports current conditions via OpenWeatherMap. Registered only
// when an API key is configured.
type Weather struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

// WeatherOption configures a Weather tool.
type WeatherOption func(*Weather)

// WithWeatherBaseURL overrides the API host.
func WithWeatherBaseURL(u string) WeatherOption {
	return func(w *Weather) { w.baseURL = strings.TrimRight(u, "/") }
}

// WithWeatherHTTPClient overrides the retrying HTTP client.
func WithWeatherHTTPClient(c *httpclient.Client) WeatherOption {
	return func(w *Weather) { w.client = c }
}

func NewWeather(apiKey string, opts ...WeatherOption) *Weather {
	w := &Weather{apiKey: apiKey, baseURL: openWeatherMapBaseURL}
	for _, opt := range opts {
		opt(w)
	}
	if w.client == nil {
		w.client = httpclient.New()
	}
	return w
}

func (w *Weather) Name() string { return "weather" }

func (w *Weather) Description() string {
	return "Returns the current weather for a location."
}

func (w *Weather) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City name, optionally with country code, e.g. London,UK",
			},
		},
		"required": []any{"location"},
	}
}

type openWeatherMapResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (w *Weather) Execute(ctx context.Context, args map[string]any) (string, error) {
	location, ok := args["location"].(string)
	if !ok || strings.TrimSpace(location) == "" {
		return "", fmt.Errorf("location is required")
	}

	u := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		w.baseURL, url.QueryEscape(location), url.QueryEscape(w.apiKey))
	resp, err := w.client.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	var parsed openWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding weather response: %w", err)
	}

	desc := "unknown conditions"
	if len(parsed.Weather) > 0 {
		desc = parsed.Weather[0].Description
	}
	return fmt.Sprintf("Current weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%, wind %.1f m/s",
		parsed.Name, desc, parsed.Main.Temp, parsed.Main.FeelsLike,
		parsed.Main.Humidity, parsed.Wind.Speed), nil
}

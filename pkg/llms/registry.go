package llms

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// Registry holds one configured provider per available model key. Providers
// are constructed eagerly at startup so a bad credential surfaces before
// the service accepts traffic.
type Registry struct {
	mu           sync.RWMutex
	providers    map[string]Provider
	defaultModel string
}

// NewRegistry builds providers for every model whose provider the settings
// enable.
func NewRegistry(ctx context.Context, settings *config.Settings) (*Registry, error) {
	r := &Registry{
		providers:    make(map[string]Provider),
		defaultModel: settings.DefaultModel,
	}
	for _, name := range settings.AvailableModels() {
		provider, err := buildProvider(ctx, settings, name)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("configuring model %q: %w", name, err)
		}
		r.providers[name] = provider
	}
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no models available")
	}
	return r, nil
}

func buildProvider(ctx context.Context, settings *config.Settings, name string) (Provider, error) {
	spec, ok := schema.ModelCatalog[name]
	if !ok {
		// Ollama models are registered under the user-supplied name.
		if settings.OllamaModel == name {
			spec = schema.ModelSpec{Provider: schema.ProviderOllama, APIModel: name}
		} else {
			return nil, fmt.Errorf("unknown model")
		}
	}

	switch spec.Provider {
	case schema.ProviderOpenAI:
		return NewOpenAIProvider(settings.OpenAIAPIKey, name, spec.APIModel), nil
	case schema.ProviderAnthropic:
		return NewAnthropicProvider(settings.AnthropicAPIKey, name, spec.APIModel), nil
	case schema.ProviderGoogle:
		return NewGoogleProvider(ctx, GoogleConfig{
			APIKey:    settings.GoogleAPIKey,
			Project:   settings.GoogleCloudProject,
			Location:  settings.GoogleCloudLocation,
			UseVertex: settings.GoogleAPIKey == "" && settings.GoogleCredentialsFile != "",
		}, name, spec.APIModel)
	case schema.ProviderGroq:
		return NewGroqProvider(settings.GroqAPIKey, name, spec.APIModel), nil
	case schema.ProviderOllama:
		return NewOllamaProvider(settings.OllamaBaseURL, name, spec.APIModel), nil
	case schema.ProviderFake:
		return NewFakeProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", spec.Provider)
	}
}

// Get returns the provider for name. An empty name selects the default
// model.
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		name = r.defaultModel
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("model %q is not available", name)
	}
	return provider, nil
}

// Register adds or replaces a provider under the given model key.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Models returns the available model keys in sorted order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultModel returns the model key used when a request names none.
func (r *Registry) DefaultModel() string { return r.defaultModel }

// Close releases all providers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		_ = p.Close()
	}
}

// Package config loads service configuration from the environment and an
// optional YAML file. Environment variables are the primary interface:
// provider API keys toggle model availability, and optional integrations
// degrade silently when their credentials are absent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// Settings is the resolved service configuration.
type Settings struct {
	Host string
	Port int

	Auth     AuthConfig
	Database DatabaseConfig

	// Provider credentials. Presence of a key enables that provider.
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
	// GoogleCredentialsFile is the path to a service-account JSON key
	// (GOOGLE_APPLICATION_CREDENTIALS). When set, Gemini is served through
	// Vertex AI instead of the hosted generative-language API. The file is
	// read by the SDK, never by this package.
	GoogleCredentialsFile string
	GoogleCloudProject    string
	GoogleCloudLocation   string
	GroqAPIKey            string
	OllamaModel           string
	OllamaBaseURL         string
	UseFakeModel          bool

	// DefaultModel is the model key used when a request does not name one.
	DefaultModel string

	// GitHub MCP integration. An empty PAT means the github agent exposes
	// zero tools rather than failing.
	GitHubPAT          string
	MCPGitHubServerURL string

	// OpenWeatherMapAPIKey enables the weather tool when set.
	OpenWeatherMapAPIKey string

	// LlamaGuardEnabled turns on input/output moderation. Requires the
	// Groq provider.
	LlamaGuardEnabled bool

	// ConfigFile is an optional YAML file with server and RAG settings.
	ConfigFile string
	File       *FileConfig
}

const defaultMCPGitHubServerURL = "https://api.githubcopilot.com/mcp/"

// providerOrder is the precedence used to pick a default model when
// DEFAULT_MODEL is unset: the first configured provider wins.
var providerOrder = []schema.ModelProvider{
	schema.ProviderOpenAI,
	schema.ProviderAnthropic,
	schema.ProviderGoogle,
	schema.ProviderGroq,
	schema.ProviderOllama,
	schema.ProviderFake,
}

// Load reads settings from the environment. .env files are loaded first
// (missing files are fine), then values resolve with SetDefaults and
// Validate in the usual pipeline.
func Load() (*Settings, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	s := &Settings{
		Host: os.Getenv("HOST"),
		Port: envInt("PORT", 0),

		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GoogleCloudProject:    os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleCloudLocation:   os.Getenv("GOOGLE_CLOUD_LOCATION"),
		GroqAPIKey:            os.Getenv("GROQ_API_KEY"),
		OllamaModel:           os.Getenv("OLLAMA_MODEL"),
		OllamaBaseURL:         os.Getenv("OLLAMA_BASE_URL"),
		UseFakeModel:          envBool("USE_FAKE_MODEL"),

		DefaultModel: os.Getenv("DEFAULT_MODEL"),

		GitHubPAT:          os.Getenv("GITHUB_PAT"),
		MCPGitHubServerURL: os.Getenv("MCP_GITHUB_SERVER_URL"),

		OpenWeatherMapAPIKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
		LlamaGuardEnabled:    envBool("LLAMA_GUARD_ENABLED"),
	}

	s.Auth = AuthConfigFromEnv()
	s.Database = DatabaseConfigFromEnv()

	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetDefaults applies default values.
func (s *Settings) SetDefaults() {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.MCPGitHubServerURL == "" {
		s.MCPGitHubServerURL = defaultMCPGitHubServerURL
	}
	if s.OllamaModel != "" && s.OllamaBaseURL == "" {
		s.OllamaBaseURL = "http://localhost:11434"
	}

	s.Auth.SetDefaults()
	s.Database.SetDefaults()

	if s.DefaultModel == "" {
		for _, p := range providerOrder {
			if !s.ProviderEnabled(p) {
				continue
			}
			if p == schema.ProviderOllama {
				s.DefaultModel = s.OllamaModel
			} else {
				s.DefaultModel = schema.DefaultModelFor(p)
			}
			break
		}
	}
}

// Validate checks the configuration.
func (s *Settings) Validate() error {
	var enabled []schema.ModelProvider
	for _, p := range providerOrder {
		if s.ProviderEnabled(p) {
			enabled = append(enabled, p)
		}
	}
	if len(enabled) == 0 {
		return fmt.Errorf("no model provider configured: set at least one of " +
			"OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, GROQ_API_KEY, " +
			"OLLAMA_MODEL, or USE_FAKE_MODEL")
	}

	if s.DefaultModel != "" && s.DefaultModel != s.OllamaModel {
		spec, ok := schema.ModelCatalog[s.DefaultModel]
		if !ok {
			return fmt.Errorf("unknown DEFAULT_MODEL %q", s.DefaultModel)
		}
		if !s.ProviderEnabled(spec.Provider) {
			return fmt.Errorf("DEFAULT_MODEL %q requires provider %q, which is not configured",
				s.DefaultModel, spec.Provider)
		}
	}

	if s.LlamaGuardEnabled && s.GroqAPIKey == "" {
		return fmt.Errorf("LLAMA_GUARD_ENABLED requires GROQ_API_KEY")
	}

	if err := s.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := s.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if s.File != nil {
		if err := s.File.Validate(); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}
	return nil
}

// ProviderEnabled reports whether a provider has credentials configured.
func (s *Settings) ProviderEnabled(p schema.ModelProvider) bool {
	switch p {
	case schema.ProviderOpenAI:
		return s.OpenAIAPIKey != ""
	case schema.ProviderAnthropic:
		return s.AnthropicAPIKey != ""
	case schema.ProviderGoogle:
		return s.GoogleAPIKey != "" || s.GoogleCredentialsFile != ""
	case schema.ProviderGroq:
		return s.GroqAPIKey != ""
	case schema.ProviderOllama:
		return s.OllamaModel != ""
	case schema.ProviderFake:
		return s.UseFakeModel
	}
	return false
}

// AvailableModels returns the model keys served by the configured
// providers. Order is unspecified; the service sorts for /info.
func (s *Settings) AvailableModels() []string {
	var models []string
	for key, spec := range schema.ModelCatalog {
		if s.ProviderEnabled(spec.Provider) {
			models = append(models, key)
		}
	}
	if s.OllamaModel != "" {
		models = append(models, s.OllamaModel)
	}
	return models
}

// Address returns the host:port bind address.
func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

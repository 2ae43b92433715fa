package schema

// ModelProvider identifies which backend serves a model.
type ModelProvider string

const (
	ProviderOpenAI    ModelProvider = "openai"
	ProviderAnthropic ModelProvider = "anthropic"
	ProviderGoogle    ModelProvider = "google"
	ProviderGroq      ModelProvider = "groq"
	ProviderOllama    ModelProvider = "ollama"
	ProviderFake      ModelProvider = "fake"
)

// Public model keys. These are the names clients pass in UserInput.Model;
// the catalog maps them to provider API model identifiers.
const (
	ModelGPT4oMini = "gpt-4o-mini"
	ModelGPT4o     = "gpt-4o"

	ModelClaudeHaiku  = "claude-3-5-haiku"
	ModelClaudeSonnet = "claude-3-5-sonnet"

	ModelGeminiFlash = "gemini-2.0-flash"
	ModelGeminiPro   = "gemini-1.5-pro"

	ModelGroqLlama8B  = "groq-llama-3.1-8b"
	ModelGroqLlama70B = "groq-llama-3.3-70b"
	ModelLlamaGuard   = "groq-llama-guard-4"

	ModelFake = "fake"
)

// ModelSpec ties a public model key to its provider and API identifier.
type ModelSpec struct {
	Provider ModelProvider
	APIModel string
}

// ModelCatalog maps public model keys to provider API model names.
// Ollama models are registered at startup from OLLAMA_MODEL and are not
// listed here.
var ModelCatalog = map[string]ModelSpec{
	ModelGPT4oMini: {ProviderOpenAI, "gpt-4o-mini"},
	ModelGPT4o:     {ProviderOpenAI, "gpt-4o"},

	ModelClaudeHaiku:  {ProviderAnthropic, "claude-3-5-haiku-latest"},
	ModelClaudeSonnet: {ProviderAnthropic, "claude-3-5-sonnet-latest"},

	ModelGeminiFlash: {ProviderGoogle, "gemini-2.0-flash"},
	ModelGeminiPro:   {ProviderGoogle, "gemini-1.5-pro"},

	ModelGroqLlama8B:  {ProviderGroq, "llama-3.1-8b-instant"},
	ModelGroqLlama70B: {ProviderGroq, "llama-3.3-70b-versatile"},
	ModelLlamaGuard:   {ProviderGroq, "meta-llama/llama-guard-4-12b"},

	ModelFake: {ProviderFake, "fake"},
}

// DefaultModelFor returns the default model key for a provider.
func DefaultModelFor(p ModelProvider) string {
	switch p {
	case ProviderOpenAI:
		return ModelGPT4oMini
	case ProviderAnthropic:
		return ModelClaudeHaiku
	case ProviderGoogle:
		return ModelGeminiFlash
	case ProviderGroq:
		return ModelGroqLlama8B
	case ProviderFake:
		return ModelFake
	}
	return ""
}

package llms

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider builds a provider for a Groq-hosted model. Groq serves
// the OpenAI chat-completions wire format, so the implementation is the
// OpenAI provider pointed at Groq's host.
func NewGroqProvider(apiKey, modelName, apiModel string, opts ...OpenAIOption) *OpenAIProvider {
	base := []OpenAIOption{WithOpenAIBaseURL(groqBaseURL)}
	return NewOpenAIProvider(apiKey, modelName, apiModel, append(base, opts...)...)
}

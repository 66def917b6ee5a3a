package llm

import "strings"

// CustomProvider targets any OpenAI-compatible server, such as a local
// LM Studio or vLLM instance.
type CustomProvider struct {
	*OpenAIProvider
}

func NewCustomProvider(baseURL, apiKey, model string) *CustomProvider {
	return &CustomProvider{
		OpenAIProvider: newOpenAICompatible("custom", strings.TrimRight(baseURL, "/"), apiKey, model),
	}
}

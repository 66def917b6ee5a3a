package llm

type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(apiKey, model string) *OpenRouterProvider {
	if model == "" {
		model = "meta-llama/llama-3.1-70b-instruct"
	}
	p := newOpenAICompatible("openrouter", "https://openrouter.ai/api/v1", apiKey, model)
	p.headers = map[string]string{
		"HTTP-Referer": "https://github.com/sant0-9/promptcraft",
		"X-Title":      "PromptCraft",
	}
	return &OpenRouterProvider{OpenAIProvider: p}
}

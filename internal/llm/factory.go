package llm

import (
	"fmt"

	"github.com/sant0-9/promptcraft/internal/config"
)

// NewProvider creates a provider from config. A provider that needs an API
// key and has none returns an error matching ErrMissingCredential.
func NewProvider(cfg *config.Config) (Provider, error) {
	if info := config.GetProvider(cfg.Provider); info != nil && info.NeedsAPIKey && cfg.APIKey == "" {
		return nil, missingCredential(cfg.Provider)
	}

	switch cfg.Provider {
	case "gemini":
		p := NewGeminiProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.baseURL = cfg.BaseURL
		}
		return p, nil

	case "ollama":
		host := "http://localhost:11434"
		if cfg.BaseURL != "" {
			host = cfg.BaseURL
		}
		return NewOllamaProvider(host, cfg.Model), nil

	case "groq":
		return NewGroqProvider(cfg.APIKey, cfg.Model), nil

	case "openai":
		p := NewOpenAIProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.baseURL = cfg.BaseURL
		}
		return p, nil

	case "anthropic":
		p := NewAnthropicProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.baseURL = cfg.BaseURL
		}
		return p, nil

	case "openrouter":
		return NewOpenRouterProvider(cfg.APIKey, cfg.Model), nil

	case "custom":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires base_url")
		}
		return NewCustomProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

package llm

import (
	"fmt"
	"net/http"
)

// BackendConfig selects and configures the LLM collaborator backend.
type BackendConfig struct {
	Provider  string // "anthropic" | "openai"
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
}

// Build constructs a Provider for the configured backend.
func Build(cfg BackendConfig, httpClient *http.Client) (Provider, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return NewAnthropic(cfg.Anthropic, httpClient), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

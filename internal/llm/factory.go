package llm

import (
	"fmt"
	"strings"

	"github.com/agusespa/promptgauge/internal/config"
)

// NewProvider selects the concrete backend for a resolved config. Callers
// remain polymorphic over the Provider interface.
func NewProvider(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "compatible":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	case "custom":
		return NewCustomProvider(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			config.ErrUnknownProvider, cfg.Provider, strings.Join(SupportedProviders, ", "))
	}
}

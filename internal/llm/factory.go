package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderNone      = "none"
)

// NewBackend builds the backend for cfg.Provider. An empty or "none" provider yields
// a disabled backend. A provider that is configured but cannot run (missing API
// key, unreachable Ollama) yields a backend whose IsAvailable is false; only an
// unknown provider name is an error.
func NewBackend(cfg Config, logger *slog.Logger) (*Classifier, error) {
	cfg.defaults()
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		client Client
		err    error
	)
	switch provider {
	case "", ProviderNone:
		return newDisabled(ProviderNone, "ai classification disabled", cfg, logger), nil
	case ProviderOpenAI:
		client, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		client, err = newAnthropicClient(cfg)
	case ProviderOllama:
		client, err = newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return newDisabled(provider, err.Error(), cfg, logger), nil
	}
	return NewClassifier(provider, client, cfg, logger), nil
}

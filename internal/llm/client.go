package llm

import (
	"context"
	"time"

	"github.com/Veraticus/docintake/internal/model"
)

// Backend is the capability the classification cascade depends on.
type Backend interface {
	// ClassifyDocument classifies document text. A nil result with a nil error
	// means the provider had no answer.
	ClassifyDocument(ctx context.Context, text string) (*model.ClassificationResult, error)
	IsAvailable() bool
	ProviderName() string
	Status() Status
}

// Client is a raw completion client for one provider.
type Client interface {
	// Complete sends a system and user prompt and returns the raw response text.
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Status describes a backend for diagnostics.
type Status struct {
	Provider  string        `json:"provider"`
	Model     string        `json:"model,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Timeout   time.Duration `json:"timeout"`
	CacheSize int           `json:"cache_size"`
	RateLimit int           `json:"rate_limit"`
	Available bool          `json:"available"`
}

// Config holds configuration for the AI classifier.
type Config struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	Model       string        `mapstructure:"model" yaml:"model"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	RateLimit   int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// MaxInputRunes bounds the document text sent to the provider.
	MaxInputRunes int `mapstructure:"max_input_runes" yaml:"max_input_runes"`
}

// DefaultConfig returns the defaults applied to unset fields, with AI disabled.
func DefaultConfig() Config {
	cfg := Config{Provider: ProviderNone}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 15 * time.Minute
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 60
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 512
	}
	if c.MaxInputRunes <= 0 {
		c.MaxInputRunes = 8000
	}
}

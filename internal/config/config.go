package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/extract"
	"github.com/Veraticus/docintake/internal/llm"
	"github.com/Veraticus/docintake/internal/ocr"
	"github.com/Veraticus/docintake/internal/validation"
	"github.com/Veraticus/docintake/internal/watch"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DOCINTAKE_LLM_PROVIDER.
const EnvPrefix = "DOCINTAKE"

// DefaultDatabasePath is where results are stored unless configured otherwise.
const DefaultDatabasePath = "~/.local/share/docintake/docintake.db"

// Config is the complete application configuration.
type Config struct {
	LLM        llm.Config       `mapstructure:"llm" yaml:"llm"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Extract    extract.Config   `mapstructure:"extract" yaml:"extract"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
	OCR        ocr.Config       `mapstructure:"ocr" yaml:"ocr"`
	Intake     IntakeConfig     `mapstructure:"intake" yaml:"intake"`
}

// StorageConfig locates the results database.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// IntakeConfig controls the intake pipeline.
type IntakeConfig struct {
	Workers  int  `mapstructure:"workers" yaml:"workers"`
	UseOCR   bool `mapstructure:"use_ocr" yaml:"use_ocr"`
	PreferAI bool `mapstructure:"prefer_ai" yaml:"prefer_ai"`
}

// WatchConfig controls the inbox watcher.
type WatchConfig struct {
	Extensions []string      `mapstructure:"extensions" yaml:"extensions"`
	Settle     time.Duration `mapstructure:"settle" yaml:"settle"`
}

// ValidationConfig tunes the rule engine.
type ValidationConfig struct {
	// Requirements adds required document types per product type.
	Requirements    map[string][]string `mapstructure:"requirements" yaml:"requirements"`
	WeightTolerance float64             `mapstructure:"weight_tolerance" yaml:"weight_tolerance"`
}

// RequirementTable returns the default requirements extended by the configured ones.
func (c ValidationConfig) RequirementTable() (validation.RequirementTable, error) {
	return validation.DefaultRequirements().WithExtra(c.Requirements)
}

// Registry builds the rule registry for this configuration.
func (c ValidationConfig) Registry() (*validation.Registry, error) {
	table, err := c.RequirementTable()
	if err != nil {
		return nil, err
	}
	return validation.RegistryFor(table, c.WeightTolerance), nil
}

// SetDefaults registers a default for every key, which also lets AutomaticEnv
// overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	defOCR := ocr.DefaultConfig()
	v.SetDefault("ocr.language", defOCR.Language)
	v.SetDefault("ocr.dpi", defOCR.DPI)
	v.SetDefault("ocr.page_timeout", defOCR.PageTimeout)
	v.SetDefault("ocr.pdftoppm_path", defOCR.PDFToPPMPath)
	v.SetDefault("ocr.workers", defOCR.Workers)

	v.SetDefault("extract.min_text_chars", extract.DefaultMinTextChars)
	v.SetDefault("extract.temp_dir", "")

	defLLM := llm.DefaultConfig()
	v.SetDefault("llm.provider", defLLM.Provider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", defLLM.Timeout)
	v.SetDefault("llm.cache_ttl", defLLM.CacheTTL)
	v.SetDefault("llm.rate_limit", defLLM.RateLimit)
	v.SetDefault("llm.temperature", defLLM.Temperature)
	v.SetDefault("llm.max_tokens", defLLM.MaxTokens)
	v.SetDefault("llm.max_input_runes", defLLM.MaxInputRunes)

	v.SetDefault("storage.path", DefaultDatabasePath)

	// zero workers means one per CPU
	v.SetDefault("intake.workers", 0)
	v.SetDefault("intake.use_ocr", true)
	v.SetDefault("intake.prefer_ai", true)

	v.SetDefault("watch.extensions", []string{".pdf"})
	v.SetDefault("watch.settle", watch.DefaultSettle)

	v.SetDefault("validation.weight_tolerance", validation.DefaultWeightTolerance)
}

// Load reads the configuration from v. Precedence is:
// 1. Viper (flags, config file or DOCINTAKE_ env vars)
// 2. Provider environment variables for API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY)
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case llm.ProviderOpenAI:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderAnthropic:
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Extract.TempDir = ExpandPath(cfg.Extract.TempDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "", llm.ProviderNone, llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderOllama:
	default:
		return fmt.Errorf("%w: unknown llm provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.OCR.DPI < 0 {
		return fmt.Errorf("%w: ocr.dpi must not be negative", common.ErrInvalidConfig)
	}
	if t := c.Validation.WeightTolerance; t < 0 || t >= 1 {
		return fmt.Errorf("%w: validation.weight_tolerance must be in [0, 1)", common.ErrInvalidConfig)
	}
	if _, err := c.Validation.RequirementTable(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("%w: storage.path", common.ErrMissingConfig)
	}
	return nil
}

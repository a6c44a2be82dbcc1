package ocr

import (
	"context"
	"runtime"
	"time"
)

// Config controls rendering and recognition. It is fixed at construction.
type Config struct {
	// Language is the Tesseract language code (default: eng).
	Language string `mapstructure:"language" yaml:"language"`
	// PDFToPPMPath is the pdftoppm binary used for rendering (default: pdftoppm).
	PDFToPPMPath string `mapstructure:"pdftoppm_path" yaml:"pdftoppm_path"`
	// DPI is the render resolution (default: 300).
	DPI int `mapstructure:"dpi" yaml:"dpi"`
	// PageTimeout bounds render plus recognition of one page (default: 30s).
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	// Workers is the number of pages processed concurrently (default: NumCPU).
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DefaultConfig returns the default OCR configuration.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.PDFToPPMPath == "" {
		c.PDFToPPMPath = "pdftoppm"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 30 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Renderer turns PDF pages into encoded images.
type Renderer interface {
	Name() string
	// Check reports why the renderer cannot run, or nil when it can.
	Check() error
	PageCount(path string) (int, error)
	// RenderPage renders a 1-indexed page to PNG bytes.
	RenderPage(ctx context.Context, path string, page, dpi int) ([]byte, error)
}

// Recognizer reads text from an encoded image.
type Recognizer interface {
	Name() string
	// SelfTest reports why recognition cannot run, or nil when it can.
	SelfTest(language string) (version string, err error)
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

// Availability is the result of the startup self-test.
type Availability struct {
	Reason    string `json:"reason,omitempty"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
}

// Status describes the engine for diagnostics.
type Status struct {
	Availability
	Renderer    string        `json:"renderer"`
	Recognizer  string        `json:"recognizer"`
	Language    string        `json:"language"`
	DPI         int           `json:"dpi"`
	PageTimeout time.Duration `json:"page_timeout"`
	Workers     int           `json:"workers"`
}

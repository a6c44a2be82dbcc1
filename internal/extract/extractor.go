// Package extract turns PDF bytes into per-page text, falling back to OCR when the
// embedded text layer is missing or too thin.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/ledongthuc/pdf"
)

// DefaultMinTextChars is the embedded-text total below which OCR is attempted.
const DefaultMinTextChars = 100

// OCR is the part of the OCR engine the extractor needs.
type OCR interface {
	IsAvailable() bool
	Extract(ctx context.Context, path string) ([]model.PageText, error)
}

// Config controls extraction.
type Config struct {
	// TempDir receives spooled PDFs for OCR (default: os.TempDir()).
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
	// MinTextChars is the OCR threshold (default: 100).
	MinTextChars int `mapstructure:"min_text_chars" yaml:"min_text_chars"`
}

// Extractor extracts page text from PDFs.
type Extractor struct {
	ocr    OCR
	logger *slog.Logger
	cfg    Config
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithLogger sets the extractor logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an extractor. ocr may be nil, in which case no fallback is attempted.
func New(cfg Config, ocr OCR, opts ...Option) *Extractor {
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = DefaultMinTextChars
	}
	e := &Extractor{cfg: cfg, ocr: ocr}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = common.OrDefault(e.logger)
	return e
}

// Extract returns the text of every page of the PDF in data. Unparsable input
// yields an empty slice.
func (e *Extractor) Extract(ctx context.Context, data []byte, useOCRFallback bool) []model.PageText {
	pages := e.embedded(data)
	if !e.wantOCR(pages, useOCRFallback) {
		return e.finish(pages, "embedded")
	}

	path, cleanup, err := e.spool(data)
	if err != nil {
		e.logger.Warn("cannot spool pdf for ocr", "error", err)
		return e.finish(pages, "embedded")
	}
	defer cleanup()

	return e.fallback(ctx, path, pages)
}

// ExtractFile reads the PDF at path and extracts it like Extract. Only a failure to
// read the file is returned as an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string, useOCRFallback bool) ([]model.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pages := e.embedded(data)
	if !e.wantOCR(pages, useOCRFallback) {
		return e.finish(pages, "embedded"), nil
	}
	return e.fallback(ctx, path, pages), nil
}

func (e *Extractor) wantOCR(pages []model.PageText, enabled bool) bool {
	if !enabled || e.ocr == nil {
		return false
	}
	if model.TotalChars(pages) >= e.cfg.MinTextChars {
		return false
	}
	if !e.ocr.IsAvailable() {
		e.logger.Debug("embedded text below threshold but ocr is unavailable",
			"chars", model.TotalChars(pages),
			"threshold", e.cfg.MinTextChars)
		return false
	}
	return true
}

// fallback runs OCR and keeps whichever result holds strictly more text.
func (e *Extractor) fallback(ctx context.Context, path string, embedded []model.PageText) []model.PageText {
	ocrPages, err := e.ocr.Extract(ctx, path)
	if err != nil {
		e.logger.Warn("ocr fallback failed", "path", path, "error", err)
		return e.finish(embedded, "embedded")
	}

	embeddedChars := model.TotalChars(embedded)
	ocrChars := model.TotalChars(ocrPages)
	if ocrChars > embeddedChars {
		e.logger.Debug("using ocr text", "embedded_chars", embeddedChars, "ocr_chars", ocrChars)
		return e.finish(ocrPages, "ocr")
	}
	return e.finish(embedded, "embedded")
}

func (e *Extractor) finish(pages []model.PageText, source string) []model.PageText {
	if pages == nil {
		pages = []model.PageText{}
	}
	q := MeasureQuality(pages)
	e.logger.Debug("extracted pdf text",
		"source", source,
		"pages", q.PageCount,
		"chars", q.TotalChars,
		"chars_per_page", q.CharsPerPage,
		"printable_ratio", q.PrintableRatio)
	return pages
}

func (e *Extractor) spool(data []byte) (string, func(), error) {
	f, err := os.CreateTemp(e.cfg.TempDir, "docintake-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return name, cleanup, nil
}

// embedded reads the text layer. The parser panics on some malformed input, so
// panics are turned into an empty result.
func (e *Extractor) embedded(data []byte) (pages []model.PageText) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf parser panicked", "panic", r)
			pages = nil
		}
	}()

	if len(data) == 0 {
		return nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("unparsable pdf", "error", common.Malformed("pdf", err))
		return nil
	}

	count := reader.NumPage()
	pages = make([]model.PageText, 0, count)
	for i := 1; i <= count; i++ {
		pages = append(pages, model.NewPageText(i, e.pageText(reader, i)))
	}
	return pages
}

func (e *Extractor) pageText(reader *pdf.Reader, n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("pdf page parser panicked", "page", n, "panic", r)
			text = ""
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		e.logger.Debug("pdf page text failed", "page", n, "error", err)
		return ""
	}
	return text
}

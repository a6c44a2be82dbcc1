package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"golang.org/x/sync/errgroup"
)

// Engine renders and recognizes every page of a PDF.
type Engine struct {
	renderer     Renderer
	recognizer   Recognizer
	logger       *slog.Logger
	availability Availability
	cfg          Config
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRenderer replaces the default pdftoppm renderer.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithRecognizer replaces the default Tesseract recognizer.
func WithRecognizer(r Recognizer) Option {
	return func(e *Engine) { e.recognizer = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine and runs its availability self-test once.
func New(cfg Config, opts ...Option) *Engine {
	cfg.defaults()
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = NewPopplerRenderer(cfg.PDFToPPMPath)
	}
	if e.recognizer == nil {
		e.recognizer = NewTesseractRecognizer()
	}
	e.logger = common.OrDefault(e.logger)
	e.availability = e.selfTest()

	if e.availability.Available {
		e.logger.Debug("ocr engine available",
			"renderer", e.renderer.Name(),
			"recognizer", e.recognizer.Name(),
			"version", e.availability.Version)
	} else {
		e.logger.Info("ocr engine unavailable", "reason", e.availability.Reason)
	}
	return e
}

func (e *Engine) selfTest() Availability {
	if err := e.renderer.Check(); err != nil {
		return Availability{Reason: fmt.Sprintf("renderer %s: %v", e.renderer.Name(), err)}
	}
	version, err := e.recognizer.SelfTest(e.cfg.Language)
	if err != nil {
		return Availability{Reason: fmt.Sprintf("recognizer %s: %v", e.recognizer.Name(), err)}
	}
	return Availability{Available: true, Version: version}
}

// IsAvailable reports the outcome of the startup self-test.
func (e *Engine) IsAvailable() bool {
	return e.availability.Available
}

// Status describes the engine configuration and availability.
func (e *Engine) Status() Status {
	return Status{
		Availability: e.availability,
		Renderer:     e.renderer.Name(),
		Recognizer:   e.recognizer.Name(),
		Language:     e.cfg.Language,
		DPI:          e.cfg.DPI,
		PageTimeout:  e.cfg.PageTimeout,
		Workers:      e.cfg.Workers,
	}
}

// Extract recognizes every page of the PDF at path. A page that fails to render
// or recognize yields empty text; only an unreadable document or cancellation
// returns an error.
func (e *Engine) Extract(ctx context.Context, path string) ([]model.PageText, error) {
	if !e.availability.Available {
		return nil, common.Unavailable("ocr", e.availability.Reason)
	}

	count, err := e.renderer.PageCount(path)
	if err != nil {
		return nil, common.Malformed("pdf page count", err)
	}

	texts := make([]string, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := 0; i < count; i++ {
		page := i + 1
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			text, err := e.extractPage(gctx, path, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Warn("ocr page failed",
					"path", path,
					"page", page,
					"error", err)
				return nil
			}
			texts[page-1] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pages := make([]model.PageText, count)
	for i, text := range texts {
		pages[i] = model.NewPageText(i+1, text)
	}

	e.logger.Debug("ocr extraction complete",
		"path", path,
		"pages", count,
		"chars", model.TotalChars(pages))

	return pages, nil
}

func (e *Engine) extractPage(ctx context.Context, path string, page int) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
	defer cancel()

	img, err := e.renderer.RenderPage(pageCtx, path, page, e.cfg.DPI)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	text, err := e.recognizer.Recognize(pageCtx, img, e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

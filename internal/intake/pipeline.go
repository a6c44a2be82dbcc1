// Package intake turns uploaded PDFs into classified document segments.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/extract"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/Veraticus/docintake/internal/segment"
	"golang.org/x/sync/errgroup"
)

// Detected field keys written by the pipeline.
const (
	FieldHeadingType = "heading_type"
	FieldPageCount   = "page_count"
)

// Extractor produces page texts from PDF input.
type Extractor interface {
	Extract(ctx context.Context, data []byte, useOCRFallback bool) []model.PageText
	ExtractFile(ctx context.Context, path string, useOCRFallback bool) ([]model.PageText, error)
}

// BoundaryDetector splits pages into spans and recognizes document headings.
type BoundaryDetector interface {
	DetectBoundaries(pages []model.PageText) []segment.Span
	HeadingType(text string) (model.DocumentType, bool)
}

// Classifier classifies text and enhances segments.
type Classifier interface {
	Classify(ctx context.Context, text string, preferAI bool) model.ClassificationResult
	ClassifySegment(ctx context.Context, seg model.DocumentSegment, text string) model.DocumentSegment
	AIAvailable() bool
}

// Result is the outcome of processing one PDF.
type Result struct {
	Source   string                  `json:"source,omitempty"`
	Pages    []model.PageText        `json:"pages"`
	Segments []model.DocumentSegment `json:"segments"`
	Quality  extract.Quality         `json:"quality"`
}

// Pipeline wires extraction, boundary detection and classification.
type Pipeline struct {
	extractor  Extractor
	detector   BoundaryDetector
	classifier Classifier
	logger     *slog.Logger
	useOCR     bool
	preferAI   bool
	workers    int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithOCR enables or disables the OCR fallback (default: enabled).
func WithOCR(enabled bool) Option {
	return func(p *Pipeline) { p.useOCR = enabled }
}

// WithPreferAI controls whether segments are enhanced by the AI backend
// (default: enabled; ignored when the backend is unavailable).
func WithPreferAI(enabled bool) Option {
	return func(p *Pipeline) { p.preferAI = enabled }
}

// WithWorkers bounds how many segments are classified concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a pipeline.
func New(extractor Extractor, detector BoundaryDetector, classifier Classifier, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		detector:   detector,
		classifier: classifier,
		logger:     common.OrDefault(logger),
		useOCR:     true,
		preferAI:   true,
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile reads and processes the PDF at path.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	pages, err := p.extractor.ExtractFile(ctx, path, p.useOCR)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	res, err := p.process(ctx, pages)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Process splits and classifies PDF bytes. Unreadable input yields a result with
// no pages; the only error is cancellation.
func (p *Pipeline) Process(ctx context.Context, data []byte) (*Result, error) {
	return p.process(ctx, p.extractor.Extract(ctx, data, p.useOCR))
}

// ClassifyText classifies a single document's text, as done at upload time.
func (p *Pipeline) ClassifyText(ctx context.Context, text string) model.ClassificationResult {
	return p.classifier.Classify(ctx, text, p.preferAI)
}

func (p *Pipeline) process(ctx context.Context, pages []model.PageText) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spans := p.detector.DetectBoundaries(pages)
	segments := make([]model.DocumentSegment, len(spans))
	enhance := p.preferAI && p.classifier.AIAvailable()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, span := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			segments[i] = p.classifySpan(gctx, pages, span, enhance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Pages:    pages,
		Segments: segments,
		Quality:  extract.MeasureQuality(pages),
	}
	p.logger.Info("processed pdf",
		"pages", len(pages),
		"segments", len(segments),
		"ai", enhance,
		"duration", time.Since(start))
	return res, nil
}

// classifySpan builds the keyword-classified segment for span and, when enhance
// is set, lets the AI backend improve it.
func (p *Pipeline) classifySpan(ctx context.Context, pages []model.PageText, span segment.Span, enhance bool) model.DocumentSegment {
	text := spanText(pages, span)
	res := p.classifier.Classify(ctx, text, false)

	fields := make(map[string]any, len(res.KeyFields)+2)
	for k, v := range res.KeyFields {
		fields[k] = v
	}
	fields[FieldPageCount] = span.PageCount()
	if heading, ok := p.detector.HeadingType(pages[span.Start-1].Text); ok {
		fields[FieldHeadingType] = string(heading)
	}

	seg := model.DocumentSegment{
		DocumentType:    model.DocumentTypePtr(res.DocumentType),
		PageStart:       span.Start,
		PageEnd:         span.End,
		TextPreview:     model.Preview(text),
		ReferenceNumber: res.ReferenceNumber,
		Confidence:      res.Confidence,
		DetectionMethod: model.DetectionKeyword,
		DetectedFields:  fields,
	}

	if enhance {
		seg = p.classifier.ClassifySegment(ctx, seg, text)
	}

	p.logger.Debug("classified segment",
		"span", span.String(),
		"type", *seg.DocumentType,
		"confidence", seg.Confidence,
		"method", seg.DetectionMethod)
	return seg
}

func spanText(pages []model.PageText, span segment.Span) string {
	return model.JoinPages(pages[span.Start-1 : span.End])
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/docintake/internal/classification"
	"github.com/Veraticus/docintake/internal/engine"
	"github.com/Veraticus/docintake/internal/extract"
	"github.com/Veraticus/docintake/internal/intake"
	"github.com/Veraticus/docintake/internal/llm"
	"github.com/Veraticus/docintake/internal/ocr"
	"github.com/Veraticus/docintake/internal/segment"
	"github.com/Veraticus/docintake/internal/storage"
	"github.com/Veraticus/docintake/internal/validation"
)

// components holds everything a command may need, built from the loaded config.
type components struct {
	ocr       *ocr.Engine
	backend   *llm.Classifier
	extractor *extract.Extractor
	cascade   *engine.Cascade
	pipeline  *intake.Pipeline
}

// Close releases background resources held by the AI backend.
func (c *components) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// newComponents builds the OCR engine, extractor, classification cascade and
// intake pipeline.
func newComponents() (*components, error) {
	logger := slog.Default()

	ocrEngine := ocr.New(cfg.OCR, ocr.WithLogger(logger))
	extractor := extract.New(cfg.Extract, ocrEngine, extract.WithLogger(logger))

	detector, err := segment.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to create boundary detector: %w", err)
	}

	backend, err := llm.NewBackend(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI backend: %w", err)
	}

	cascade := engine.NewCascade(
		classification.NewDefaultKeywordClassifier(),
		classification.NewReferenceExtractor(),
		backend,
		logger,
	)

	pipeline := intake.New(extractor, detector, cascade, logger,
		intake.WithOCR(cfg.Intake.UseOCR),
		intake.WithPreferAI(cfg.Intake.PreferAI),
		intake.WithWorkers(cfg.Intake.Workers),
	)

	return &components{
		ocr:       ocrEngine,
		backend:   backend,
		extractor: extractor,
		cascade:   cascade,
		pipeline:  pipeline,
	}, nil
}

// initStorage opens the results database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.Path, slog.Default())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newRunner builds a validation runner from the configured requirements.
func newRunner() (*validation.Runner, error) {
	registry, err := cfg.Validation.Registry()
	if err != nil {
		return nil, err
	}
	return validation.NewRunner(registry, slog.Default()), nil
}

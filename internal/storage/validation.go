// Package storage persists intake results and validation reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidSegment = errors.New("invalid segment")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSegments checks page ranges and confidences before anything is written.
func validateSegments(segments []model.DocumentSegment) error {
	for i, seg := range segments {
		if seg.PageStart < 1 || seg.PageEnd < seg.PageStart {
			return fmt.Errorf("%w: segment %d has page range %d-%d", ErrInvalidSegment, i, seg.PageStart, seg.PageEnd)
		}
		if seg.Confidence < 0 || seg.Confidence > 1 {
			return fmt.Errorf("%w: segment %d has confidence %v", ErrInvalidSegment, i, seg.Confidence)
		}
		if seg.DocumentType != nil && !seg.DocumentType.Valid() {
			return fmt.Errorf("%w: segment %d has unknown type %q", ErrInvalidSegment, i, *seg.DocumentType)
		}
	}
	return nil
}

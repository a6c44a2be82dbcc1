package model

import (
	"fmt"
	"sort"
)

// ClassificationMethod records which stage of the cascade produced a result.
type ClassificationMethod string

// Classification method constants.
const (
	MethodAI      ClassificationMethod = "ai"
	MethodKeyword ClassificationMethod = "keyword"
)

// Alternative is a runner-up document type with its confidence.
type Alternative struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
}

// Alternatives is a slice of Alternative that supports sorting.
type Alternatives []Alternative

// Len implements sort.Interface.
func (a Alternatives) Len() int {
	return len(a)
}

// Less implements sort.Interface - higher confidence first.
func (a Alternatives) Less(i, j int) bool {
	return a[i].Confidence > a[j].Confidence
}

// Swap implements sort.Interface.
func (a Alternatives) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

// Sort orders alternatives by confidence, descending. Ties keep their input order.
func (a Alternatives) Sort() {
	sort.Stable(a)
}

// Without returns the alternatives excluding t.
func (a Alternatives) Without(t DocumentType) Alternatives {
	out := make(Alternatives, 0, len(a))
	for _, alt := range a {
		if alt.DocumentType != t {
			out = append(out, alt)
		}
	}
	return out
}

// ClassificationResult is the outcome of classifying one document's text.
type ClassificationResult struct {
	ReferenceNumber *string              `json:"reference_number,omitempty"`
	KeyFields       map[string]any       `json:"key_fields,omitempty"`
	DocumentType    DocumentType         `json:"document_type"`
	Method          ClassificationMethod `json:"method"`
	Provider        string               `json:"provider"`
	Reasoning       string               `json:"reasoning,omitempty"`
	Alternatives    Alternatives         `json:"alternatives,omitempty"`
	Confidence      float64              `json:"confidence"`
}

// Validate ensures the result has a known type, a confidence in [0,1] and
// confidence-descending alternatives that do not repeat the top pick.
func (r ClassificationResult) Validate() error {
	if !r.DocumentType.Valid() {
		return fmt.Errorf("unknown document type %q", r.DocumentType)
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", r.Confidence)
	}
	for i, alt := range r.Alternatives {
		if alt.DocumentType == r.DocumentType {
			return fmt.Errorf("alternative %d repeats the top pick %q", i, alt.DocumentType)
		}
		if i > 0 && alt.Confidence > r.Alternatives[i-1].Confidence {
			return fmt.Errorf("alternatives are not sorted by confidence at index %d", i)
		}
	}
	return nil
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

package engine

import (
	"github.com/Veraticus/docintake/internal/classification"
	"github.com/Veraticus/docintake/internal/model"
)

// KeywordScorer scores text against keyword lexicons, best first.
type KeywordScorer interface {
	Score(text string) []classification.Score
}

// ReferenceFinder extracts a document's own reference number.
type ReferenceFinder interface {
	Extract(text string, docType model.DocumentType) *string
}

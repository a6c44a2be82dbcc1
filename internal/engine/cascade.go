// Package engine orchestrates document classification: keyword scoring, an
// optional AI backend, and confidence-based merging of their results.
package engine

import (
	"context"
	"log/slog"

	"github.com/Veraticus/docintake/internal/classification"
	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/llm"
	"github.com/Veraticus/docintake/internal/model"
)

// keywordProvider is the provider name reported for keyword results.
const keywordProvider = "keyword"

// Cascade classifies text with the AI backend when asked and able, and with
// keywords otherwise. It holds no mutable state and is safe for concurrent use.
type Cascade struct {
	keyword KeywordScorer
	refs    ReferenceFinder
	backend llm.Backend
	logger  *slog.Logger
}

// NewCascade creates a cascade. backend may be nil.
func NewCascade(keyword KeywordScorer, refs ReferenceFinder, backend llm.Backend, logger *slog.Logger) *Cascade {
	return &Cascade{
		keyword: keyword,
		refs:    refs,
		backend: backend,
		logger:  common.OrDefault(logger),
	}
}

// AIAvailable reports whether the AI backend can be used.
func (c *Cascade) AIAvailable() bool {
	return c.backend != nil && c.backend.IsAvailable()
}

// Classify always returns a typed result. The AI backend is tried only when
// preferAI is set and it is available; an error, a nil result or an unknown type
// falls back to keywords. AI results are completed from keyword scores.
func (c *Cascade) Classify(ctx context.Context, text string, preferAI bool) model.ClassificationResult {
	scores := c.keyword.Score(text)

	if preferAI && c.AIAvailable() {
		if res, ok := c.ai(ctx, text); ok {
			return c.complete(res, text, scores)
		}
	}

	return c.keywordResult(text, scores)
}

// ClassifySegment returns a copy of seg enhanced by the AI backend. The AI result
// replaces type, confidence and method only when strictly more confident. Its
// reference is adopted only when seg has none, and its key fields are added
// without replacing existing ones. Without a usable AI answer the copy is
// returned unchanged.
func (c *Cascade) ClassifySegment(ctx context.Context, seg model.DocumentSegment, text string) model.DocumentSegment {
	out := seg.Clone()
	if !c.AIAvailable() {
		return out
	}

	res, ok := c.ai(ctx, text)
	if !ok {
		return out
	}

	if res.Confidence > out.Confidence {
		out.DocumentType = model.DocumentTypePtr(res.DocumentType)
		out.Confidence = res.Confidence
		out.DetectionMethod = model.DetectionAI
	}

	if out.ReferenceNumber == nil {
		switch {
		case res.ReferenceNumber != nil:
			out.ReferenceNumber = model.StringPtr(*res.ReferenceNumber)
		case out.DocumentType != nil:
			out.ReferenceNumber = c.refs.Extract(text, *out.DocumentType)
		}
	}

	for k, v := range res.KeyFields {
		if _, exists := out.DetectedFields[k]; !exists {
			out.DetectedFields[k] = v
		}
	}

	return out
}

// ai calls the backend and reports whether it produced a usable result.
func (c *Cascade) ai(ctx context.Context, text string) (model.ClassificationResult, bool) {
	provider := c.backend.ProviderName()

	res, err := c.backend.ClassifyDocument(ctx, text)
	switch {
	case err != nil:
		c.logger.Warn("ai classification failed, using keywords",
			"provider", provider,
			"error", err)
		return model.ClassificationResult{}, false
	case res == nil:
		c.logger.Debug("ai classification returned no result, using keywords", "provider", provider)
		return model.ClassificationResult{}, false
	case !res.DocumentType.Valid():
		c.logger.Warn("ai classification returned unknown type, using keywords",
			"provider", provider,
			"type", res.DocumentType)
		return model.ClassificationResult{}, false
	}

	out := *res
	out.Confidence = model.ClampConfidence(out.Confidence)
	out.Method = model.MethodAI
	if out.Provider == "" {
		out.Provider = provider
	}
	return out, true
}

// complete fills an AI result's missing reference and alternatives.
func (c *Cascade) complete(res model.ClassificationResult, text string, scores []classification.Score) model.ClassificationResult {
	if res.ReferenceNumber == nil {
		res.ReferenceNumber = c.refs.Extract(text, res.DocumentType)
	}

	alts := res.Alternatives.Without(res.DocumentType)
	if len(alts) == 0 {
		alts = classification.Alternatives(scores).Without(res.DocumentType)
	}
	alts.Sort()
	res.Alternatives = alts

	return res
}

func (c *Cascade) keywordResult(text string, scores []classification.Score) model.ClassificationResult {
	res := model.ClassificationResult{
		DocumentType: model.DocOther,
		Method:       model.MethodKeyword,
		Provider:     keywordProvider,
		Alternatives: model.Alternatives{},
	}
	if len(scores) > 0 {
		res.DocumentType = scores[0].Type
		res.Confidence = scores[0].Confidence
		res.Alternatives = classification.Alternatives(scores[1:])
		res.KeyFields = map[string]any{"matched_keywords": scores[0].Matched}
	}
	res.ReferenceNumber = c.refs.Extract(text, res.DocumentType)
	return res
}

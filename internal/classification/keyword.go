// Package classification scores document text against keyword lexicons and pulls
// reference numbers out of it.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

// Confidence adjustments.
const (
	// multiMatchBonus is added when at least multiMatchThreshold keywords match.
	multiMatchBonus     = 0.2
	multiMatchThreshold = 3
)

// Lexicon is the keyword set for one document type.
type Lexicon struct {
	Type     model.DocumentType
	Keywords []string
	// Priority breaks confidence ties; higher wins.
	Priority int
}

// Score is a document type with its keyword confidence.
type Score struct {
	Type       model.DocumentType `json:"document_type"`
	Matched    []string           `json:"matched,omitempty"`
	Confidence float64            `json:"confidence"`
	priority   int
}

type compiledLexicon struct {
	keywords []*regexp.Regexp
	Lexicon
}

// KeywordClassifier scores text against lexicons. It is immutable after
// construction and safe for concurrent use.
type KeywordClassifier struct {
	lexicons []compiledLexicon
}

// NewKeywordClassifier compiles the lexicons. Keywords match case-insensitively on
// word boundaries, with any run of whitespace standing in for a space.
func NewKeywordClassifier(lexicons []Lexicon) (*KeywordClassifier, error) {
	compiled := make([]compiledLexicon, 0, len(lexicons))
	for _, lex := range lexicons {
		if len(lex.Keywords) == 0 {
			return nil, fmt.Errorf("lexicon %s has no keywords", lex.Type)
		}
		c := compiledLexicon{Lexicon: lex}
		for _, kw := range lex.Keywords {
			re, err := compileKeyword(kw)
			if err != nil {
				return nil, fmt.Errorf("failed to compile keyword %q for %s: %w", kw, lex.Type, err)
			}
			c.keywords = append(c.keywords, re)
		}
		compiled = append(compiled, c)
	}
	return &KeywordClassifier{lexicons: compiled}, nil
}

// NewDefaultKeywordClassifier builds a classifier over DefaultLexicons.
func NewDefaultKeywordClassifier() *KeywordClassifier {
	kc, err := NewKeywordClassifier(DefaultLexicons())
	if err != nil {
		panic(err)
	}
	return kc
}

func compileKeyword(kw string) (*regexp.Regexp, error) {
	parts := strings.Fields(kw)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

// Score returns every type with at least one keyword match, confidence descending.
// Ties go to the higher lexicon priority, then to lexicon order.
func (kc *KeywordClassifier) Score(text string) []Score {
	scores := make([]Score, 0, len(kc.lexicons))
	for _, lex := range kc.lexicons {
		var matched []string
		for i, re := range lex.keywords {
			if re.MatchString(text) {
				matched = append(matched, lex.Keywords[i])
			}
		}
		if len(matched) == 0 {
			continue
		}

		confidence := min(float64(len(matched))/float64(len(lex.keywords)), 1.0)
		if len(matched) >= multiMatchThreshold {
			confidence = min(confidence+multiMatchBonus, 1.0)
		}
		scores = append(scores, Score{
			Type:       lex.Type,
			Confidence: confidence,
			Matched:    matched,
			priority:   lex.Priority,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].priority > scores[j].priority
	})
	return scores
}

// Classify returns the best score, or DocOther at zero confidence when nothing
// matches.
func (kc *KeywordClassifier) Classify(text string) Score {
	scores := kc.Score(text)
	if len(scores) == 0 {
		return Score{Type: model.DocOther}
	}
	return scores[0]
}

// Alternatives converts scores into classification alternatives, preserving order.
func Alternatives(scores []Score) model.Alternatives {
	out := make(model.Alternatives, 0, len(scores))
	for _, s := range scores {
		out = append(out, model.Alternative{DocumentType: s.Type, Confidence: s.Confidence})
	}
	return out
}

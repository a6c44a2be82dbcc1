package classification

import (
	"regexp"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

// Shared pieces of the reference patterns.
const (
	numberLabel = `\s*(?:no\b\.?|nr\b\.?|number\b|num\b\.?|#)\s*[:.]?\s*`
	// refValue may continue past single spaces, but only into groups that hold
	// a digit, so "CO 2024 001" is kept whole and trailing words are not.
	refValue = `([A-Z0-9][A-Z0-9\-/.]*[A-Z0-9](?: [A-Z0-9]*[0-9](?:[A-Z0-9\-/.]*[A-Z0-9])?)*)`
)

// ReferencePattern extracts a reference number for a document type.
type ReferencePattern struct {
	Name  string
	Regex string
}

// DefaultReferencePatterns returns the type-specific patterns in the order they
// are tried.
func DefaultReferencePatterns() map[model.DocumentType][]ReferencePattern {
	certificate := ReferencePattern{Name: "certificate number", Regex: `\bcert(?:ificate)?` + numberLabel + refValue}
	return map[model.DocumentType][]ReferencePattern{
		model.DocBillOfLading: {
			{Name: "b/l number", Regex: `\b(?:B/L|BL|bill\s+of\s+lading)` + numberLabel + refValue},
			{Name: "waybill number", Regex: `\b(?:sea\s+)?waybill` + numberLabel + refValue},
			{Name: "booking number", Regex: `\bbooking` + numberLabel + refValue},
		},
		model.DocCommercialInvoice: {
			{Name: "invoice number", Regex: `\b(?:commercial\s+)?invoice` + numberLabel + refValue},
			{Name: "inv number", Regex: `\binv` + numberLabel + refValue},
		},
		model.DocPackingList: {
			{Name: "packing list number", Regex: `\bpacking\s+list` + numberLabel + refValue},
			{Name: "p/l number", Regex: `\bP/L` + numberLabel + refValue},
		},
		model.DocCertificateOfOrigin: {
			certificate,
			{Name: "origin reference", Regex: `\b(?:CO|COO)` + numberLabel + refValue},
		},
		model.DocPhytosanitaryCert: {
			{Name: "phyto number", Regex: `\bphyto(?:sanitary)?(?:\s+cert(?:ificate)?)?` + numberLabel + refValue},
			certificate,
		},
		model.DocFumigationCert: {
			{Name: "fumigation number", Regex: `\bfumigation(?:\s+cert(?:ificate)?)?` + numberLabel + refValue},
			certificate,
		},
		model.DocVeterinaryHealthCert: {
			{Name: "veterinary number", Regex: `\b(?:veterinary|health)(?:\s+cert(?:ificate)?)?` + numberLabel + refValue},
			certificate,
		},
		model.DocInsuranceCert: {
			{Name: "policy number", Regex: `\bpolicy` + numberLabel + refValue},
			certificate,
		},
		model.DocQualityCert: {
			{Name: "report number", Regex: `\b(?:report|analysis)` + numberLabel + refValue},
			certificate,
		},
		model.DocExportDeclaration: {
			{Name: "mrn", Regex: `\bMRN\s*[:.]?\s*([A-Z0-9]{8,})`},
			{Name: "declaration number", Regex: `\b(?:declaration|entry)` + numberLabel + refValue},
		},
		model.DocHalalCert: {
			certificate,
		},
	}
}

// GenericReferencePatterns are tried for every type after the type-specific ones.
func GenericReferencePatterns() []ReferencePattern {
	return []ReferencePattern{
		{Name: "reference number", Regex: `\bref(?:erence)?` + numberLabel + refValue},
		{Name: "document number", Regex: `\bdocument` + numberLabel + refValue},
		{Name: "bare number label", Regex: `\bNo\.\s*:?\s*` + refValue},
	}
}

// ReferenceExtractor finds a document's own reference number.
type ReferenceExtractor struct {
	byType  map[model.DocumentType][]*regexp.Regexp
	generic []*regexp.Regexp
}

// NewReferenceExtractor compiles the default patterns.
func NewReferenceExtractor() *ReferenceExtractor {
	re := &ReferenceExtractor{byType: make(map[model.DocumentType][]*regexp.Regexp)}
	for t, patterns := range DefaultReferencePatterns() {
		re.byType[t] = compileAll(patterns)
	}
	re.generic = compileAll(GenericReferencePatterns())
	return re
}

func compileAll(patterns []ReferencePattern) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p.Regex))
	}
	return out
}

// Extract returns the first reference found for docType, trying the type's own
// patterns before the generic ones. It returns nil when nothing matches.
func (r *ReferenceExtractor) Extract(text string, docType model.DocumentType) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, re := range r.byType[docType] {
		if ref := firstMatch(re, text); ref != "" {
			return &ref
		}
	}
	for _, re := range r.generic {
		if ref := firstMatch(re, text); ref != "" {
			return &ref
		}
	}
	return nil
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

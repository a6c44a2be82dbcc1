package model

// DetectionMethod records how a segment's type was decided.
type DetectionMethod string

// Detection method constants.
const (
	DetectionKeyword DetectionMethod = "keyword"
	DetectionAI      DetectionMethod = "ai"
	DetectionManual  DetectionMethod = "manual"
)

// MaxPreviewRunes bounds DocumentSegment.TextPreview.
const MaxPreviewRunes = 500

// DocumentSegment is a contiguous page range of a PDF judged to be one logical document.
// Segments are values: enhancing one produces a new segment.
type DocumentSegment struct {
	DocumentType    *DocumentType   `json:"document_type,omitempty"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	DetectedFields  map[string]any  `json:"detected_fields,omitempty"`
	TextPreview     string          `json:"text_preview"`
	DetectionMethod DetectionMethod `json:"detection_method"`
	PageStart       int             `json:"page_start"`
	PageEnd         int             `json:"page_end"`
	Confidence      float64         `json:"confidence"`
}

// PageCount returns the number of pages covered by the segment.
func (s DocumentSegment) PageCount() int {
	return s.PageEnd - s.PageStart + 1
}

// Clone returns a copy that shares no mutable state with s.
func (s DocumentSegment) Clone() DocumentSegment {
	out := s
	if s.DocumentType != nil {
		out.DocumentType = DocumentTypePtr(*s.DocumentType)
	}
	if s.ReferenceNumber != nil {
		ref := *s.ReferenceNumber
		out.ReferenceNumber = &ref
	}
	out.DetectedFields = make(map[string]any, len(s.DetectedFields))
	for k, v := range s.DetectedFields {
		out.DetectedFields[k] = v
	}
	return out
}

// Reclassify returns a copy of s assigned to t by a person, at full confidence.
func (s DocumentSegment) Reclassify(t DocumentType) DocumentSegment {
	out := s.Clone()
	out.DocumentType = DocumentTypePtr(t)
	out.DetectionMethod = DetectionManual
	out.Confidence = 1.0
	return out
}

// Preview truncates text to MaxPreviewRunes runes.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxPreviewRunes {
		return text
	}
	return string(runes[:MaxPreviewRunes])
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

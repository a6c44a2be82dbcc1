// Package segment splits the pages of a bundled PDF into logical documents.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

// Window sizes, in runes.
const (
	DefaultHeadWindow    = 800
	DefaultHeadingWindow = 300
)

// Span is an inclusive, 1-indexed page range.
type Span struct {
	Start int `json:"page_start"`
	End   int `json:"page_end"`
}

// PageCount returns the number of pages in the span.
func (s Span) PageCount() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("p%d", s.Start)
	}
	return fmt.Sprintf("p%d-%d", s.Start, s.End)
}

// Heading is a document-start heading pattern.
type Heading struct {
	Name  string
	Type  model.DocumentType
	Regex string
}

// DefaultHeadings returns the built-in heading patterns. More specific phrases come
// first so that HeadingType reports the narrowest match.
func DefaultHeadings() []Heading {
	return []Heading{
		{Name: "veterinary health certificate", Type: model.DocVeterinaryHealthCert, Regex: `veterinary\s+(health\s+)?certificate`},
		{Name: "phytosanitary certificate", Type: model.DocPhytosanitaryCert, Regex: `phyto-?sanitary\s+certificate`},
		{Name: "fumigation certificate", Type: model.DocFumigationCert, Regex: `(certificate\s+of\s+fumigation|fumigation\s+certificate)`},
		{Name: "halal certificate", Type: model.DocHalalCert, Regex: `halal\s+certificate`},
		{Name: "certificate of origin", Type: model.DocCertificateOfOrigin, Regex: `certificate\s+of\s+origin`},
		{Name: "certificate of analysis", Type: model.DocQualityCert, Regex: `certificate\s+of\s+(analysis|quality)|quality\s+certificate`},
		{Name: "insurance certificate", Type: model.DocInsuranceCert, Regex: `insurance\s+(certificate|policy)|certificate\s+of\s+insurance`},
		{Name: "health certificate", Type: model.DocVeterinaryHealthCert, Regex: `health\s+certificate`},
		{Name: "bill of lading", Type: model.DocBillOfLading, Regex: `bill\s+of\s+lading`},
		{Name: "sea waybill", Type: model.DocBillOfLading, Regex: `sea\s+waybill`},
		{Name: "commercial invoice", Type: model.DocCommercialInvoice, Regex: `commercial\s+invoice`},
		{Name: "packing list", Type: model.DocPackingList, Regex: `packing\s+list`},
		{Name: "export declaration", Type: model.DocExportDeclaration, Regex: `export\s+declaration`},
	}
}

type compiledHeading struct {
	re *regexp.Regexp
	Heading
}

var pageOneMarker = regexp.MustCompile(`(?i)^\s*page\s+1(\s*(of|/)\s*\d+)?\b`)

// Detector finds document boundaries from near-top headings. It is safe for
// concurrent use.
type Detector struct {
	headings      []compiledHeading
	headWindow    int
	headingWindow int
}

// Option customizes a Detector.
type Option func(*Detector) error

// WithHeadings replaces the heading patterns. Patterns are matched
// case-insensitively.
func WithHeadings(headings []Heading) Option {
	return func(d *Detector) error {
		compiled := make([]compiledHeading, 0, len(headings))
		for _, h := range headings {
			re, err := regexp.Compile("(?i)" + h.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile heading %s: %w", h.Name, err)
			}
			compiled = append(compiled, compiledHeading{Heading: h, re: re})
		}
		d.headings = compiled
		return nil
	}
}

// WithWindows sets the head and heading window sizes in runes.
func WithWindows(head, heading int) Option {
	return func(d *Detector) error {
		if head <= 0 || heading <= 0 {
			return fmt.Errorf("windows must be positive, got head=%d heading=%d", head, heading)
		}
		d.headWindow = head
		d.headingWindow = heading
		return nil
	}
}

// NewDetector creates a detector with the default headings unless overridden.
func NewDetector(opts ...Option) (*Detector, error) {
	d := &Detector{
		headWindow:    DefaultHeadWindow,
		headingWindow: DefaultHeadingWindow,
	}
	if err := WithHeadings(DefaultHeadings())(d); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.headingWindow > d.headWindow {
		d.headingWindow = d.headWindow
	}
	return d, nil
}

// MustNewDetector is NewDetector for static options. It panics on error.
func MustNewDetector(opts ...Option) *Detector {
	d, err := NewDetector(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// DetectBoundaries splits pages into spans. The spans cover pages 1..len(pages)
// exactly once in ascending order. The first page always opens a span; each later
// page opens a new one when it starts a document.
func (d *Detector) DetectBoundaries(pages []model.PageText) []Span {
	if len(pages) == 0 {
		return nil
	}

	var spans []Span
	start := 1
	for i := 1; i < len(pages); i++ {
		if d.StartsDocument(pages[i].Text) {
			spans = append(spans, Span{Start: start, End: i})
			start = i + 1
		}
	}
	return append(spans, Span{Start: start, End: len(pages)})
}

// StartsDocument reports whether a page opens a new document: a heading near the
// top of the page, or an explicit "page 1" marker at its start.
func (d *Detector) StartsDocument(text string) bool {
	head := d.head(text)
	if pageOneMarker.MatchString(head) {
		return true
	}
	_, ok := d.match(head)
	return ok
}

// HeadingType returns the document type of the first heading found near the top of
// text. The second return is false when no heading matches.
func (d *Detector) HeadingType(text string) (model.DocumentType, bool) {
	h, ok := d.match(d.head(text))
	if !ok {
		return "", false
	}
	return h.Type, true
}

func (d *Detector) match(head string) (Heading, bool) {
	window := truncateRunes(head, d.headingWindow)
	for _, h := range d.headings {
		if h.re.MatchString(window) {
			return h.Heading, true
		}
	}
	return Heading{}, false
}

func (d *Detector) head(text string) string {
	return truncateRunes(strings.TrimLeft(text, " \t\r\n\f"), d.headWindow)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

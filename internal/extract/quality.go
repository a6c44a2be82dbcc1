package extract

import (
	"strings"
	"unicode"

	"github.com/Veraticus/docintake/internal/model"
)

// Quality captures metrics about a page-text extraction.
type Quality struct {
	PageCount      int     `json:"page_count"`
	EmptyPages     int     `json:"empty_pages"`
	TotalChars     int     `json:"total_chars"`
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
}

// LooksScanned reports whether the text is too sparse or too garbled to trust,
// which usually means the PDF is a scan without a text layer.
func (q Quality) LooksScanned() bool {
	return q.CharsPerPage < 50 || q.PrintableRatio < 0.85
}

// MeasureQuality scores the extracted pages.
func MeasureQuality(pages []model.PageText) Quality {
	q := Quality{PageCount: len(pages), PrintableRatio: 1.0}
	if len(pages) == 0 {
		return q
	}

	var sb strings.Builder
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			q.EmptyPages++
		}
		q.TotalChars += p.CharCount
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	text := sb.String()

	q.CharsPerPage = float64(q.TotalChars) / float64(len(pages))
	q.PrintableRatio = printableRatio(text)
	q.WordlikeRatio = wordlikeRatio(text)
	return q
}

// printableRatio excludes private-use runes, U+FFFD and control characters other
// than whitespace.
func printableRatio(text string) float64 {
	total := 0
	printable := 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == unicode.ReplacementChar:
		return true
	case r < 0x0020 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// wordlikeRatio is the share of whitespace-separated tokens between 2 and 15 runes.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := len([]rune(f))
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

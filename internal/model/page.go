package model

import (
	"strings"
	"unicode/utf8"
)

// PageText is the text of one PDF page produced by a single extraction pass.
type PageText struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	CharCount  int    `json:"char_count"`
}

// NewPageText builds a PageText, counting characters as runes.
func NewPageText(pageNumber int, text string) PageText {
	return PageText{
		PageNumber: pageNumber,
		Text:       text,
		CharCount:  utf8.RuneCountInString(text),
	}
}

// TotalChars sums CharCount over pages.
func TotalChars(pages []PageText) int {
	total := 0
	for _, p := range pages {
		total += p.CharCount
	}
	return total
}

// JoinPages concatenates page texts separated by blank lines.
func JoinPages(pages []PageText) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

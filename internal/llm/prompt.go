package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

const systemPrompt = "You are a trade document classifier for import and export shipments. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."

// buildPrompt asks for the document type, reference number and key fields of text.
func buildPrompt(text string, maxRunes int) string {
	var sb strings.Builder

	sb.WriteString("Classify the following shipping document.\n\n")
	sb.WriteString("Allowed document types:\n")
	for _, t := range model.AllDocumentTypes() {
		fmt.Fprintf(&sb, "- %s (%s)\n", t, t.Label())
	}

	sb.WriteString(`
Respond with JSON in exactly this shape:
{
  "document_type": "<one of the allowed types>",
  "confidence": <number between 0 and 1>,
  "reference_number": "<the document's own number, or null>",
  "key_fields": {"container_numbers": [], "issue_date": "YYYY-MM-DD", "issuer": ""},
  "reasoning": "<one sentence>",
  "alternatives": [{"document_type": "<type>", "confidence": <number>}]
}

Document text:
---
`)
	sb.WriteString(truncate(text, maxRunes))
	sb.WriteString("\n---\n")

	return sb.String()
}

func truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "\n[truncated]"
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
)

// aiResponse is the JSON shape requested by buildPrompt.
type aiResponse struct {
	KeyFields       map[string]any `json:"key_fields"`
	ReferenceNumber *string        `json:"reference_number"`
	DocumentType    string         `json:"document_type"`
	Reasoning       string         `json:"reasoning"`
	Alternatives    []struct {
		DocumentType string  `json:"document_type"`
		Confidence   float64 `json:"confidence"`
	} `json:"alternatives"`
	Confidence float64 `json:"confidence"`
}

// parseClassification turns a provider response into a result. Markdown fences and
// surrounding prose are stripped, type names are normalized and confidences are
// clamped to [0,1]. Percentages (e.g. 85) are read as fractions.
func parseClassification(content string) (*model.ClassificationResult, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return nil, common.Malformed("ai response", fmt.Errorf("empty response"))
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, common.Malformed("ai response", err)
	}

	if resp.DocumentType == "" {
		return nil, common.Malformed("ai response", fmt.Errorf("no document_type in response"))
	}
	docType, ok := model.ParseDocumentType(resp.DocumentType)
	if !ok {
		return nil, common.Malformed("ai response", fmt.Errorf("unknown document type %q", resp.DocumentType))
	}

	result := &model.ClassificationResult{
		DocumentType: docType,
		Confidence:   normalizeConfidence(resp.Confidence),
		Method:       model.MethodAI,
		KeyFields:    resp.KeyFields,
		Reasoning:    strings.TrimSpace(resp.Reasoning),
		Alternatives: model.Alternatives{},
	}
	if resp.ReferenceNumber != nil {
		result.ReferenceNumber = model.StringPtr(strings.TrimSpace(*resp.ReferenceNumber))
	}

	seen := map[model.DocumentType]bool{docType: true}
	for _, alt := range resp.Alternatives {
		t, ok := model.ParseDocumentType(alt.DocumentType)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		result.Alternatives = append(result.Alternatives, model.Alternative{
			DocumentType: t,
			Confidence:   normalizeConfidence(alt.Confidence),
		})
	}
	result.Alternatives.Sort()

	return result, nil
}

func normalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	return model.ClampConfidence(c)
}

// cleanMarkdownWrapper strips ```json fences and any prose around the outermost
// JSON object.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IsoDate is the layout used for document dates.
const IsoDate = "2006-01-02"

// Shipment carries the shipment facts the rule engine needs.
type Shipment struct {
	ETD         *time.Time `json:"etd,omitempty"`
	ID          string     `json:"id"`
	Reference   string     `json:"reference,omitempty"`
	ProductType string     `json:"product_type"`
}

// Document is one stored document attached to a shipment, with the structured
// fields extracted for it upstream.
type Document struct {
	BOLParsedData   *BOLParsedData `json:"bol_parsed_data,omitempty"`
	CanonicalData   CanonicalData  `json:"canonical_data"`
	ID              string         `json:"id"`
	DocumentType    DocumentType   `json:"document_type"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
}

// BOLParsedData is the structured content of a parsed bill of lading.
type BOLParsedData struct {
	ShippedOnBoardDate string      `json:"shipped_on_board_date,omitempty"`
	Containers         []string    `json:"containers,omitempty"`
	Cargo              []CargoLine `json:"cargo,omitempty"`
}

// CargoLine is one cargo row of a bill of lading.
type CargoLine struct {
	HSCode        string  `json:"hs_code,omitempty"`
	GrossWeightKg float64 `json:"gross_weight_kg,omitempty"`
}

// TotalGrossWeightKg sums the cargo lines. The second return is false when no line
// carries a weight.
func (b *BOLParsedData) TotalGrossWeightKg() (float64, bool) {
	if b == nil {
		return 0, false
	}
	var total float64
	found := false
	for _, c := range b.Cargo {
		if c.GrossWeightKg > 0 {
			total += c.GrossWeightKg
			found = true
		}
	}
	return total, found
}

// HSCodes returns the non-empty cargo HS codes.
func (b *BOLParsedData) HSCodes() []string {
	if b == nil {
		return nil
	}
	var codes []string
	for _, c := range b.Cargo {
		if strings.TrimSpace(c.HSCode) != "" {
			codes = append(codes, c.HSCode)
		}
	}
	return codes
}

// CanonicalData holds the free-form fields extracted for a document.
type CanonicalData struct {
	Fields map[string]any `json:"fields,omitempty"`
}

// ContainerNumbers returns the container_numbers field as strings.
func (c CanonicalData) ContainerNumbers() []string {
	return stringList(c.Fields["container_numbers"])
}

// HSCodes returns the hs_codes field as strings.
func (c CanonicalData) HSCodes() []string {
	return stringList(c.Fields["hs_codes"])
}

// GrossWeightKg returns weight.gross_kg. The nested form {"weight":{"gross_kg":..}}
// and the flat key "weight.gross_kg" are both accepted.
func (c CanonicalData) GrossWeightKg() (float64, bool) {
	if w, ok := c.Fields["weight"].(map[string]any); ok {
		if v, ok := toFloat(w["gross_kg"]); ok {
			return v, true
		}
	}
	return toFloat(c.Fields["weight.gross_kg"])
}

// IssueDate parses the issue_date field as an ISO date.
func (c CanonicalData) IssueDate() (time.Time, bool) {
	return ParseDate(c.String("issue_date"))
}

// Signer returns the first non-empty of authorized_signer, signer_name, issuer
// and issued_by.
func (c CanonicalData) Signer() string {
	for _, key := range []string{"authorized_signer", "signer_name", "issuer", "issued_by"} {
		if v := c.String(key); v != "" {
			return v
		}
	}
	return ""
}

// String returns a field rendered as a trimmed string, or "" when absent.
func (c CanonicalData) String(key string) string {
	v, ok := c.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		// signer objects sometimes arrive as {"name": ...}
		if name, ok := t["name"].(string); ok {
			return strings.TrimSpace(name)
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// ParseDate parses an ISO date, also accepting a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(IsoDate, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	if len(s) >= len(IsoDate) {
		if t, err := time.Parse(IsoDate, s[:len(IsoDate)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		clean := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		clean = strings.TrimSuffix(strings.TrimSuffix(clean, "kg"), "KG")
		f, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Package validation checks the documents of a shipment against each other and
// against the product type's requirements.
package validation

import (
	"slices"

	"github.com/Veraticus/docintake/internal/model"
)

// RuleMeta identifies a rule and scopes where it applies.
type RuleMeta struct {
	ID          string         `json:"rule_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Severity    model.Severity `json:"severity"`
	Category    model.Category `json:"category"`
	// AppliesTo lists product types; empty means every product type.
	AppliesTo []string `json:"applies_to,omitempty"`
}

// Applies reports whether the rule runs for productType. Both sides are
// compared in normalized form.
func (m RuleMeta) Applies(productType string) bool {
	if len(m.AppliesTo) == 0 {
		return true
	}
	want := NormalizeProductType(productType)
	return slices.ContainsFunc(m.AppliesTo, func(p string) bool {
		return NormalizeProductType(p) == want
	})
}

func (m RuleMeta) normalized() RuleMeta {
	if len(m.AppliesTo) == 0 {
		return m
	}
	out := m
	out.AppliesTo = make([]string, len(m.AppliesTo))
	for i, p := range m.AppliesTo {
		out.AppliesTo[i] = NormalizeProductType(p)
	}
	return out
}

// Rule is a pure check over a validation context. Evaluate may return several
// results, one per comparison.
type Rule interface {
	Meta() RuleMeta
	Evaluate(vc *Context) []model.RuleResult
}

// Context is the read-only input of a rule evaluation.
type Context struct {
	byType    map[model.DocumentType][]model.Document
	Shipment  model.Shipment
	Documents []model.Document
}

// NewContext groups documents by type, keeping their input order.
func NewContext(shipment model.Shipment, documents []model.Document) *Context {
	vc := &Context{
		Shipment:  shipment,
		Documents: documents,
		byType:    make(map[model.DocumentType][]model.Document),
	}
	for _, d := range documents {
		vc.byType[d.DocumentType] = append(vc.byType[d.DocumentType], d)
	}
	return vc
}

// OfType returns the documents of type t.
func (vc *Context) OfType(t model.DocumentType) []model.Document {
	return vc.byType[t]
}

// First returns the first document of type t.
func (vc *Context) First(t model.DocumentType) (model.Document, bool) {
	docs := vc.byType[t]
	if len(docs) == 0 {
		return model.Document{}, false
	}
	return docs[0], true
}

// Count returns the number of documents of type t.
func (vc *Context) Count(t model.DocumentType) int {
	return len(vc.byType[t])
}

// ProductType returns the normalized product type of the shipment.
func (vc *Context) ProductType() string {
	return NormalizeProductType(vc.Shipment.ProductType)
}

func (m RuleMeta) result(passed bool, severity model.Severity, message string, details map[string]any) model.RuleResult {
	return model.RuleResult{
		RuleID:   m.ID,
		RuleName: m.Name,
		Passed:   passed,
		Severity: severity,
		Message:  message,
		Category: m.Category,
		Details:  details,
	}
}

func (m RuleMeta) pass(message string, details map[string]any) model.RuleResult {
	return m.result(true, m.Severity, message, details)
}

func (m RuleMeta) fail(severity model.Severity, message string, details map[string]any) model.RuleResult {
	return m.result(false, severity, message, details)
}

// notApplicable is a passed info result for checks whose source data is absent.
func (m RuleMeta) notApplicable(reason string) model.RuleResult {
	return m.result(true, model.SeverityInfo, "Not applicable: "+reason, map[string]any{
		"applicable": false,
		"reason":     reason,
	})
}

func forDocument(r model.RuleResult, d model.Document) model.RuleResult {
	r.DocumentType = model.DocumentTypePtr(d.DocumentType)
	if d.ID != "" {
		id := d.ID
		r.DocumentID = &id
	}
	return r
}

package model

import "time"

// Severity determines a failed result's effect on overall validity.
type Severity string

// Severity constants, most severe first.
const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Blocking reports whether a failed result of this severity invalidates a report.
func (s Severity) Blocking() bool {
	switch s {
	case SeverityCritical, SeverityError:
		return true
	case SeverityWarning, SeverityInfo:
		return false
	}
	return false
}

// IsWarning reports whether a failed result of this severity counts as a warning.
func (s Severity) IsWarning() bool {
	switch s {
	case SeverityWarning:
		return true
	case SeverityCritical, SeverityError, SeverityInfo:
		return false
	}
	return false
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Category groups rules by the kind of check they perform.
type Category string

// Rule category constants.
const (
	CategoryPresence   Category = "presence"
	CategoryUniqueness Category = "uniqueness"
	CategoryRelevance  Category = "relevance"
	CategoryCrossField Category = "cross_field"
	CategoryContent    Category = "content"
	CategoryDate       Category = "date"
)

// DocumentScoped reports whether rules of this category can be evaluated against a
// single document in isolation.
func (c Category) DocumentScoped() bool {
	switch c {
	case CategoryRelevance, CategoryContent:
		return true
	case CategoryPresence, CategoryUniqueness, CategoryCrossField, CategoryDate:
		return false
	}
	return false
}

// RuleResult is one finding emitted by a validation rule.
type RuleResult struct {
	Details      map[string]any `json:"details,omitempty"`
	DocumentType *DocumentType  `json:"document_type,omitempty"`
	DocumentID   *string        `json:"document_id,omitempty"`
	RuleID       string         `json:"rule_id"`
	RuleName     string         `json:"rule_name"`
	Severity     Severity       `json:"severity"`
	Message      string         `json:"message"`
	Category     Category       `json:"category"`
	Passed       bool           `json:"passed"`
}

// Override records an external decision to treat a report as valid.
type Override struct {
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
	By     string    `json:"by"`
}

// ValidationReport aggregates the results of validating a shipment.
type ValidationReport struct {
	Override *Override    `json:"override"`
	Results  []RuleResult `json:"results"`
	Failed   int          `json:"failed"`
	Warnings int          `json:"warnings"`
	IsValid  bool         `json:"is_valid"`
}

// NewValidationReport counts failures and warnings over results. Failed counts
// non-passed results with a blocking severity, Warnings non-passed warnings.
// Failed info results never affect validity.
func NewValidationReport(results []RuleResult) ValidationReport {
	report := ValidationReport{Results: results}
	if report.Results == nil {
		report.Results = []RuleResult{}
	}
	for _, r := range results {
		if r.Passed {
			continue
		}
		switch {
		case r.Severity.Blocking():
			report.Failed++
		case r.Severity.IsWarning():
			report.Warnings++
		}
	}
	report.IsValid = report.Failed == 0
	return report
}

// WithOverride returns a copy of the report carrying o. Results and counts are
// left as produced.
func (r ValidationReport) WithOverride(o Override) ValidationReport {
	out := r
	out.Override = &o
	return out
}

// DisplayValid is the validity shown to users: true when the report is valid or
// has been overridden.
func (r ValidationReport) DisplayValid() bool {
	return r.IsValid || r.Override != nil
}

// FailedResults returns the non-passed results in order.
func (r ValidationReport) FailedResults() []RuleResult {
	var out []RuleResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

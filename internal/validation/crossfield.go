package validation

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/Veraticus/docintake/internal/model"
)

// DefaultWeightTolerance is the relative gross weight difference tolerated between documents.
const DefaultWeightTolerance = 0.05

// NormalizeContainer uppercases a container number and strips spaces and hyphens.
func NormalizeContainer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if n := NormalizeContainer(v); n != "" {
			set[n] = true
		}
	}
	return set
}

// missingFrom returns the members of a absent from b, sorted.
func missingFrom(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func bolContainers(d model.Document) []string {
	if d.BOLParsedData != nil && len(d.BOLParsedData.Containers) > 0 {
		return d.BOLParsedData.Containers
	}
	return d.CanonicalData.ContainerNumbers()
}

// ContainerNumbersRule compares container numbers on the bill of lading with the
// packing list and fumigation certificates.
type ContainerNumbersRule struct{}

// Meta implements Rule.
func (ContainerNumbersRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "cross_field.container_numbers",
		Name:        "Container numbers consistent",
		Description: "Packing list containers match the bill of lading; fumigated containers are on the bill of lading",
		Severity:    model.SeverityError,
		Category:    model.CategoryCrossField,
	}
}

// Evaluate implements Rule.
func (r ContainerNumbersRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	bol, ok := vc.First(model.DocBillOfLading)
	if !ok {
		return []model.RuleResult{meta.notApplicable("no bill of lading")}
	}
	bolSet := containerSet(bolContainers(bol))
	if len(bolSet) == 0 {
		return []model.RuleResult{meta.notApplicable("bill of lading lists no containers")}
	}

	var results []model.RuleResult

	if pl, ok := vc.First(model.DocPackingList); ok {
		plSet := containerSet(pl.CanonicalData.ContainerNumbers())
		if len(plSet) > 0 {
			onlyBOL := missingFrom(bolSet, plSet)
			onlyPL := missingFrom(plSet, bolSet)
			if len(onlyBOL) == 0 && len(onlyPL) == 0 {
				results = append(results, forDocument(meta.pass(
					fmt.Sprintf("Packing list containers match bill of lading (%d)", len(bolSet)), nil), pl))
			} else {
				results = append(results, forDocument(meta.fail(model.SeverityError,
					"Packing list containers differ from bill of lading",
					map[string]any{
						"missing_from_packing_list": onlyBOL,
						"missing_from_bol":          onlyPL,
					}), pl))
			}
		}
	}

	for _, fum := range vc.OfType(model.DocFumigationCert) {
		fumSet := containerSet(fum.CanonicalData.ContainerNumbers())
		if len(fumSet) == 0 {
			continue
		}
		extra := missingFrom(fumSet, bolSet)
		if len(extra) == 0 {
			results = append(results, forDocument(meta.pass(
				"Fumigated containers are all on the bill of lading", nil), fum))
			continue
		}
		results = append(results, forDocument(meta.fail(model.SeverityWarning,
			fmt.Sprintf("Fumigation certificate lists containers not on the bill of lading: %s", strings.Join(extra, ", ")),
			map[string]any{"not_on_bol": extra}), fum))
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.notApplicable("no container numbers to compare")}
	}
	return results
}

type weightSource struct {
	doc    model.Document
	weight float64
}

func documentWeight(d model.Document) (float64, bool) {
	if d.DocumentType == model.DocBillOfLading {
		if w, ok := d.BOLParsedData.TotalGrossWeightKg(); ok {
			return w, true
		}
	}
	return d.CanonicalData.GrossWeightKg()
}

// GrossWeightRule compares gross weights pairwise between the bill of lading,
// packing list and commercial invoice.
type GrossWeightRule struct {
	// Tolerance is the allowed relative difference.
	Tolerance float64
}

// NewGrossWeightRule creates the rule with DefaultWeightTolerance.
func NewGrossWeightRule() *GrossWeightRule {
	return &GrossWeightRule{Tolerance: DefaultWeightTolerance}
}

// Meta implements Rule.
func (r *GrossWeightRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "cross_field.gross_weight",
		Name:        "Gross weight consistent",
		Description: fmt.Sprintf("Gross weights agree within %.0f%% across bill of lading, packing list and invoice", r.Tolerance*100),
		Severity:    model.SeverityWarning,
		Category:    model.CategoryCrossField,
	}
}

// Evaluate implements Rule.
func (r *GrossWeightRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	var sources []weightSource
	for _, dt := range []model.DocumentType{model.DocBillOfLading, model.DocPackingList, model.DocCommercialInvoice} {
		d, ok := vc.First(dt)
		if !ok {
			continue
		}
		if w, ok := documentWeight(d); ok {
			sources = append(sources, weightSource{doc: d, weight: w})
		}
	}
	if len(sources) < 2 {
		return []model.RuleResult{meta.notApplicable("fewer than two documents state a gross weight")}
	}

	var results []model.RuleResult
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			results = append(results, r.compare(meta, sources[i], sources[j]))
		}
	}
	return results
}

func (r *GrossWeightRule) compare(meta RuleMeta, a, b weightSource) model.RuleResult {
	diff := RelativeDifference(a.weight, b.weight)
	details := map[string]any{
		string(a.doc.DocumentType): a.weight,
		string(b.doc.DocumentType): b.weight,
		"difference":               diff,
		"tolerance":                r.Tolerance,
	}
	pair := fmt.Sprintf("%s vs %s", a.doc.DocumentType.Label(), b.doc.DocumentType.Label())
	if diff > r.Tolerance {
		return forDocument(meta.fail(meta.Severity,
			fmt.Sprintf("Gross weight mismatch %s: %.2f kg vs %.2f kg (%.1f%%)", pair, a.weight, b.weight, diff*100),
			details), b.doc)
	}
	return forDocument(meta.pass(
		fmt.Sprintf("Gross weight consistent %s (%.1f%%)", pair, diff*100), details), b.doc)
}

// RelativeDifference returns |a-b| / max(a,b), or 0 when both are zero.
func RelativeDifference(a, b float64) float64 {
	den := math.Max(math.Abs(a), math.Abs(b))
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}

// HSPrefix returns the 4-digit heading of an HS code, or "" when the code has fewer
// than four digits.
func HSPrefix(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 4 {
				return b.String()
			}
		}
	}
	return ""
}

func hsPrefixes(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if p := HSPrefix(c); p != "" {
			set[p] = true
		}
	}
	return set
}

// HSCodesRule requires the bill of lading and certificate of origin to share at
// least one HS heading.
type HSCodesRule struct{}

// Meta implements Rule.
func (HSCodesRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "cross_field.hs_codes",
		Name:        "HS codes consistent",
		Description: "Bill of lading and certificate of origin share an HS heading",
		Severity:    model.SeverityError,
		Category:    model.CategoryCrossField,
	}
}

// Evaluate implements Rule.
func (r HSCodesRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	bol, okBOL := vc.First(model.DocBillOfLading)
	coo, okCoO := vc.First(model.DocCertificateOfOrigin)
	if !okBOL || !okCoO {
		return []model.RuleResult{meta.notApplicable("bill of lading or certificate of origin absent")}
	}

	bolCodes := bol.BOLParsedData.HSCodes()
	if len(bolCodes) == 0 {
		bolCodes = bol.CanonicalData.HSCodes()
	}
	bolSet := hsPrefixes(bolCodes)
	cooSet := hsPrefixes(coo.CanonicalData.HSCodes())
	if len(bolSet) == 0 || len(cooSet) == 0 {
		return []model.RuleResult{meta.notApplicable("HS codes not stated on both documents")}
	}

	var shared []string
	for p := range bolSet {
		if cooSet[p] {
			shared = append(shared, p)
		}
	}
	if len(shared) > 0 {
		return []model.RuleResult{forDocument(meta.pass(
			fmt.Sprintf("HS headings shared: %s", joinSorted(shared)),
			map[string]any{"shared": shared}), coo)}
	}

	bolList := make([]string, 0, len(bolSet))
	for p := range bolSet {
		bolList = append(bolList, p)
	}
	cooList := make([]string, 0, len(cooSet))
	for p := range cooSet {
		cooList = append(cooList, p)
	}
	return []model.RuleResult{forDocument(meta.fail(meta.Severity,
		fmt.Sprintf("No common HS heading: bill of lading %s, certificate of origin %s", joinSorted(bolList), joinSorted(cooList)),
		map[string]any{"bol": bolList, "certificate_of_origin": cooList}), coo)}
}

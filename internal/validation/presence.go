package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/docintake/internal/model"
)

// RequiredDocumentsRule reports every required document type that is missing.
type RequiredDocumentsRule struct {
	table RequirementTable
}

// NewRequiredDocumentsRule creates the presence rule for table.
func NewRequiredDocumentsRule(table RequirementTable) *RequiredDocumentsRule {
	return &RequiredDocumentsRule{table: table}
}

// Meta implements Rule.
func (r *RequiredDocumentsRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "presence.required_documents",
		Name:        "Required documents present",
		Description: "Every document type required for the product type is attached",
		Severity:    model.SeverityError,
		Category:    model.CategoryPresence,
	}
}

// Evaluate implements Rule.
func (r *RequiredDocumentsRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()
	required := r.table.Required(vc.ProductType())

	var results []model.RuleResult
	for _, dt := range required {
		if vc.Count(dt) > 0 {
			continue
		}
		severity := model.SeverityError
		if dt == model.DocBillOfLading {
			severity = model.SeverityCritical
		}
		res := meta.fail(severity, fmt.Sprintf("Missing required document: %s", dt.Label()), map[string]any{
			"missing_type": string(dt),
		})
		res.DocumentType = model.DocumentTypePtr(dt)
		results = append(results, res)
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.pass(
			fmt.Sprintf("All %d required documents present", len(required)),
			map[string]any{"required": typeNames(required)},
		)}
	}
	return results
}

// SingleInstanceRule flags non-repeatable document types attached more than once.
type SingleInstanceRule struct {
	table RequirementTable
}

// NewSingleInstanceRule creates the uniqueness rule for table.
func NewSingleInstanceRule(table RequirementTable) *SingleInstanceRule {
	return &SingleInstanceRule{table: table}
}

// Meta implements Rule.
func (r *SingleInstanceRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "uniqueness.single_instance",
		Name:        "Single instance documents",
		Description: "Non-repeatable document types appear at most once",
		Severity:    model.SeverityError,
		Category:    model.CategoryUniqueness,
	}
}

// Evaluate implements Rule.
func (r *SingleInstanceRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	var results []model.RuleResult
	for _, dt := range model.AllDocumentTypes() {
		docs := vc.OfType(dt)
		if len(docs) < 2 || r.table.IsRepeatable(dt) {
			continue
		}
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		res := meta.fail(meta.Severity, fmt.Sprintf("%d documents of type %s; only one is allowed", len(docs), dt.Label()), map[string]any{
			"count":        len(docs),
			"document_ids": ids,
		})
		res.DocumentType = model.DocumentTypePtr(dt)
		results = append(results, res)
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.pass("No duplicate single-instance documents", nil)}
	}
	return results
}

// productFit lists the product types each certificate type is meant for.
var productFit = map[model.DocumentType][]string{
	model.DocVeterinaryHealthCert: AnimalProducts,
	model.DocPhytosanitaryCert:    {ProductHorticulture, ProductFreshProduce, ProductGrains, ProductTimber},
	model.DocFumigationCert:       {ProductTimber, ProductGrains, ProductHorticulture, ProductFreshProduce},
	model.DocHalalCert:            {ProductMeat, ProductDairy, ProductSeafood, ProductHalalFood},
}

// specificProducts are the product types relevance can be judged against.
var specificProducts = []string{
	ProductMeat, ProductDairy, ProductLiveAnimals, ProductSeafood,
	ProductHorticulture, ProductFreshProduce, ProductGrains, ProductTimber,
	ProductHalalFood,
}

// ProductFitRule warns about certificates that do not belong to the shipment's product.
type ProductFitRule struct{}

// Meta implements Rule.
func (ProductFitRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "relevance.document_product_fit",
		Name:        "Certificate fits product",
		Description: "Certificates attached to the shipment are relevant to its product type",
		Severity:    model.SeverityWarning,
		Category:    model.CategoryRelevance,
	}
}

// Evaluate implements Rule.
func (r ProductFitRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()
	product := vc.ProductType()
	if !slices.Contains(specificProducts, product) {
		return []model.RuleResult{meta.notApplicable("product type has no certificate constraints")}
	}

	var results []model.RuleResult
	for _, d := range vc.Documents {
		fits, constrained := productFit[d.DocumentType]
		if !constrained {
			continue
		}
		if slices.Contains(fits, product) {
			results = append(results, forDocument(meta.pass(
				fmt.Sprintf("%s fits %s shipment", d.DocumentType.Label(), product), nil), d))
			continue
		}
		results = append(results, forDocument(meta.fail(meta.Severity,
			fmt.Sprintf("%s is not expected for a %s shipment", d.DocumentType.Label(), product),
			map[string]any{"product_type": product, "expected_for": fits}), d))
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.notApplicable("no product-specific certificates")}
	}
	return results
}

func typeNames(types []model.DocumentType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func joinSorted(values []string) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(sorted, ", ")
}

package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
)

// Product type tags used for rule applicability and requirements.
const (
	ProductGeneral      = "general"
	ProductMeat         = "meat"
	ProductDairy        = "dairy"
	ProductLiveAnimals  = "live_animals"
	ProductSeafood      = "seafood"
	ProductHorticulture = "horticulture"
	ProductFreshProduce = "fresh_produce"
	ProductGrains       = "grains"
	ProductTimber       = "timber"
	ProductHalalFood    = "halal_food"
)

// AnimalProducts are the product types that need veterinary certification.
var AnimalProducts = []string{ProductMeat, ProductDairy, ProductLiveAnimals, ProductSeafood}

// NormalizeProductType lowercases t and turns spaces and hyphens into underscores.
func NormalizeProductType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(t)
}

// RequirementTable says which document types a shipment must carry.
type RequirementTable struct {
	// ByProduct adds types required for specific product types.
	ByProduct map[string][]model.DocumentType `mapstructure:"by_product" yaml:"by_product"`
	// Repeatable lists types that may legitimately appear more than once.
	Repeatable map[model.DocumentType]bool `mapstructure:"repeatable" yaml:"repeatable"`
	// Base is required for every shipment.
	Base []model.DocumentType `mapstructure:"base" yaml:"base"`
}

// DefaultRequirements returns the built-in requirement table.
func DefaultRequirements() RequirementTable {
	vet := []model.DocumentType{model.DocVeterinaryHealthCert}
	phyto := []model.DocumentType{model.DocPhytosanitaryCert}
	return RequirementTable{
		Base: []model.DocumentType{
			model.DocBillOfLading,
			model.DocCommercialInvoice,
			model.DocPackingList,
			model.DocCertificateOfOrigin,
		},
		ByProduct: map[string][]model.DocumentType{
			ProductMeat:         vet,
			ProductDairy:        vet,
			ProductLiveAnimals:  vet,
			ProductSeafood:      vet,
			ProductHorticulture: phyto,
			ProductFreshProduce: phyto,
			ProductGrains:       phyto,
			ProductTimber:       {model.DocFumigationCert},
			ProductHalalFood:    {model.DocHalalCert},
		},
		Repeatable: map[model.DocumentType]bool{
			model.DocPhytosanitaryCert:    true,
			model.DocFumigationCert:       true,
			model.DocVeterinaryHealthCert: true,
			model.DocInsuranceCert:        true,
			model.DocQualityCert:          true,
			model.DocExportDeclaration:    true,
			model.DocHalalCert:            true,
			model.DocOther:                true,
		},
	}
}

// Required returns the types required for productType: the base types followed by
// the product-specific ones, without duplicates.
func (t RequirementTable) Required(productType string) []model.DocumentType {
	extra := t.ByProduct[NormalizeProductType(productType)]
	out := make([]model.DocumentType, 0, len(t.Base)+len(extra))
	seen := make(map[model.DocumentType]bool, cap(out))
	for _, dt := range append(append([]model.DocumentType{}, t.Base...), extra...) {
		if !seen[dt] {
			seen[dt] = true
			out = append(out, dt)
		}
	}
	return out
}

// IsRepeatable reports whether more than one document of type dt is allowed.
func (t RequirementTable) IsRepeatable(dt model.DocumentType) bool {
	return t.Repeatable[dt]
}

// WithExtra returns a copy of t with additional product-specific requirements.
// Product types are normalized and unknown document types are rejected.
func (t RequirementTable) WithExtra(extra map[string][]string) (RequirementTable, error) {
	out := RequirementTable{
		Base:       slices.Clone(t.Base),
		ByProduct:  make(map[string][]model.DocumentType, len(t.ByProduct)+len(extra)),
		Repeatable: maps.Clone(t.Repeatable),
	}
	for product, types := range t.ByProduct {
		out.ByProduct[product] = slices.Clone(types)
	}
	for product, names := range extra {
		key := NormalizeProductType(product)
		for _, name := range names {
			dt, ok := model.ParseDocumentType(name)
			if !ok {
				return RequirementTable{}, fmt.Errorf("%w: unknown document type %q for product %q", common.ErrInvalidConfig, name, product)
			}
			if !slices.Contains(out.ByProduct[key], dt) {
				out.ByProduct[key] = append(out.ByProduct[key], dt)
			}
		}
	}
	return out, nil
}

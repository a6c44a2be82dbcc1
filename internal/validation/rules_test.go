package validation

import (
	"testing"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(id string, t model.DocumentType, fields map[string]any) model.Document {
	return model.Document{ID: id, DocumentType: t, CanonicalData: model.CanonicalData{Fields: fields}}
}

func date(s string) *time.Time {
	t, err := time.Parse(model.IsoDate, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func failed(results []model.RuleResult) []model.RuleResult {
	var out []model.RuleResult
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func isNotApplicable(r model.RuleResult) bool {
	applicable, ok := r.Details["applicable"].(bool)
	return ok && !applicable && r.Passed && r.Severity == model.SeverityInfo
}

func TestRequiredDocumentsRule(t *testing.T) {
	rule := NewRequiredDocumentsRule(DefaultRequirements())

	t.Run("all present", func(t *testing.T) {
		vc := NewContext(model.Shipment{ProductType: "general"}, []model.Document{
			doc("1", model.DocBillOfLading, nil),
			doc("2", model.DocCommercialInvoice, nil),
			doc("3", model.DocPackingList, nil),
			doc("4", model.DocCertificateOfOrigin, nil),
		})
		results := rule.Evaluate(vc)
		require.Len(t, results, 1)
		assert.True(t, results[0].Passed)
	})

	t.Run("missing bill of lading is critical", func(t *testing.T) {
		vc := NewContext(model.Shipment{ProductType: "general"}, []model.Document{
			doc("2", model.DocCommercialInvoice, nil),
			doc("3", model.DocPackingList, nil),
			doc("4", model.DocCertificateOfOrigin, nil),
		})
		results := rule.Evaluate(vc)
		require.Len(t, results, 1)
		assert.False(t, results[0].Passed)
		assert.Equal(t, model.SeverityCritical, results[0].Severity)
		require.NotNil(t, results[0].DocumentType)
		assert.Equal(t, model.DocBillOfLading, *results[0].DocumentType)
	})

	t.Run("product specific requirement", func(t *testing.T) {
		vc := NewContext(model.Shipment{ProductType: "Meat"}, []model.Document{
			doc("1", model.DocBillOfLading, nil),
			doc("2", model.DocCommercialInvoice, nil),
			doc("3", model.DocPackingList, nil),
			doc("4", model.DocCertificateOfOrigin, nil),
		})
		results := failed(rule.Evaluate(vc))
		require.Len(t, results, 1)
		assert.Equal(t, model.SeverityError, results[0].Severity)
		assert.Equal(t, "veterinary_health_certificate", results[0].Details["missing_type"])
	})
}

func TestRequirementTable_Required(t *testing.T) {
	table := DefaultRequirements()

	assert.Len(t, table.Required("general"), 4)
	assert.Contains(t, table.Required("fresh produce"), model.DocPhytosanitaryCert)
	assert.Contains(t, table.Required("timber"), model.DocFumigationCert)
	assert.Contains(t, table.Required("live-animals"), model.DocVeterinaryHealthCert)

	assert.False(t, table.IsRepeatable(model.DocBillOfLading))
	assert.True(t, table.IsRepeatable(model.DocPhytosanitaryCert))
}

func TestSingleInstanceRule(t *testing.T) {
	rule := NewSingleInstanceRule(DefaultRequirements())

	vc := NewContext(model.Shipment{}, []model.Document{
		doc("a", model.DocCommercialInvoice, nil),
		doc("b", model.DocCommercialInvoice, nil),
		doc("c", model.DocPhytosanitaryCert, nil),
		doc("d", model.DocPhytosanitaryCert, nil),
	})
	results := rule.Evaluate(vc)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Equal(t, model.SeverityError, results[0].Severity)
	assert.Equal(t, 2, results[0].Details["count"])
	assert.Equal(t, []string{"a", "b"}, results[0].Details["document_ids"])

	ok := rule.Evaluate(NewContext(model.Shipment{}, []model.Document{doc("a", model.DocCommercialInvoice, nil)}))
	require.Len(t, ok, 1)
	assert.True(t, ok[0].Passed)
}

func TestContainerNumbersRule(t *testing.T) {
	bol := model.Document{
		ID:            "bol",
		DocumentType:  model.DocBillOfLading,
		BOLParsedData: &model.BOLParsedData{Containers: []string{"MSKU 123-4567", "TGHU7654321"}},
	}

	tests := []struct {
		name       string
		docs       []model.Document
		wantFailed []model.Severity
		wantNA     bool
	}{
		{
			name: "case and separator variants match",
			docs: []model.Document{
				bol,
				doc("pl", model.DocPackingList, map[string]any{
					"container_numbers": []any{"msku1234567", "tghu-765 4321"},
				}),
			},
		},
		{
			name: "packing list differs",
			docs: []model.Document{
				bol,
				doc("pl", model.DocPackingList, map[string]any{"container_numbers": "MSKU1234567"}),
			},
			wantFailed: []model.Severity{model.SeverityError},
		},
		{
			name: "fumigation subset passes",
			docs: []model.Document{
				bol,
				doc("fum", model.DocFumigationCert, map[string]any{"container_numbers": []string{"TGHU 7654321"}}),
			},
		},
		{
			name: "fumigation extra container warns",
			docs: []model.Document{
				bol,
				doc("fum", model.DocFumigationCert, map[string]any{"container_numbers": []string{"ABCU0000001"}}),
			},
			wantFailed: []model.Severity{model.SeverityWarning},
		},
		{
			name:   "no bill of lading",
			docs:   []model.Document{doc("pl", model.DocPackingList, map[string]any{"container_numbers": "X"})},
			wantNA: true,
		},
		{
			name:   "nothing to compare",
			docs:   []model.Document{bol, doc("pl", model.DocPackingList, nil)},
			wantNA: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ContainerNumbersRule{}.Evaluate(NewContext(model.Shipment{}, tt.docs))
			require.NotEmpty(t, results)
			if tt.wantNA {
				require.Len(t, results, 1)
				assert.True(t, isNotApplicable(results[0]))
				return
			}
			var got []model.Severity
			for _, r := range failed(results) {
				got = append(got, r.Severity)
			}
			assert.Equal(t, tt.wantFailed, got)
		})
	}
}

func TestNormalizeContainer(t *testing.T) {
	assert.Equal(t, "MSKU1234567", NormalizeContainer(" msku 123-4567 "))
	assert.Equal(t, NormalizeContainer("TGHU-7654321"), NormalizeContainer("tghu 7654321"))
}

func TestGrossWeightRule(t *testing.T) {
	weight := func(kg any) map[string]any {
		return map[string]any{"weight": map[string]any{"gross_kg": kg}}
	}

	tests := []struct {
		name        string
		docs        []model.Document
		wantResults int
		wantFailed  int
		wantNA      bool
	}{
		{
			name: "within tolerance",
			docs: []model.Document{
				doc("bol", model.DocBillOfLading, weight(100.0)),
				doc("pl", model.DocPackingList, weight(104.0)),
			},
			wantResults: 1,
		},
		{
			name: "outside tolerance warns",
			docs: []model.Document{
				doc("bol", model.DocBillOfLading, weight(100.0)),
				doc("pl", model.DocPackingList, weight(110.0)),
			},
			wantResults: 1,
			wantFailed:  1,
		},
		{
			name: "one result per pair",
			docs: []model.Document{
				{
					ID:           "bol",
					DocumentType: model.DocBillOfLading,
					BOLParsedData: &model.BOLParsedData{Cargo: []model.CargoLine{
						{GrossWeightKg: 600}, {GrossWeightKg: 400},
					}},
				},
				doc("pl", model.DocPackingList, map[string]any{"weight.gross_kg": "1,000 kg"}),
				doc("inv", model.DocCommercialInvoice, weight(1200)),
			},
			wantResults: 3,
			wantFailed:  2,
		},
		{
			name: "single weight is not applicable",
			docs: []model.Document{
				doc("bol", model.DocBillOfLading, weight(100.0)),
				doc("pl", model.DocPackingList, nil),
			},
			wantNA: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := NewGrossWeightRule().Evaluate(NewContext(model.Shipment{}, tt.docs))
			if tt.wantNA {
				require.Len(t, results, 1)
				assert.True(t, isNotApplicable(results[0]))
				return
			}
			assert.Len(t, results, tt.wantResults)
			bad := failed(results)
			assert.Len(t, bad, tt.wantFailed)
			for _, r := range bad {
				assert.Equal(t, model.SeverityWarning, r.Severity)
			}
		})
	}
}

func TestRelativeDifference(t *testing.T) {
	assert.InDelta(t, 4.0/104.0, RelativeDifference(100, 104), 1e-9)
	assert.InDelta(t, RelativeDifference(104, 100), RelativeDifference(100, 104), 1e-9)
	assert.Zero(t, RelativeDifference(0, 0))
}

func TestHSCodesRule(t *testing.T) {
	tests := []struct {
		name     string
		bolCodes any
		cooCodes any
		wantPass bool
		wantNA   bool
	}{
		{name: "shared heading", bolCodes: []any{"0201.30.00"}, cooCodes: "020130", wantPass: true},
		{name: "different headings", bolCodes: []any{"0201.30"}, cooCodes: []any{"0804.50"}},
		{name: "missing on origin certificate", bolCodes: []any{"0201"}, cooCodes: nil, wantNA: true},
		{name: "too short to compare", bolCodes: "02", cooCodes: "02", wantNA: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := []model.Document{
				doc("bol", model.DocBillOfLading, map[string]any{"hs_codes": tt.bolCodes}),
				doc("coo", model.DocCertificateOfOrigin, map[string]any{"hs_codes": tt.cooCodes}),
			}
			results := HSCodesRule{}.Evaluate(NewContext(model.Shipment{}, docs))
			require.Len(t, results, 1)
			if tt.wantNA {
				assert.True(t, isNotApplicable(results[0]))
				return
			}
			assert.Equal(t, tt.wantPass, results[0].Passed)
			if !tt.wantPass {
				assert.Equal(t, model.SeverityError, results[0].Severity)
			}
		})
	}

	assert.Equal(t, "0201", HSPrefix("0201.30.00"))
	assert.Empty(t, HSPrefix("02"))
}

func TestVetCertBeforeShipmentRule(t *testing.T) {
	tests := []struct {
		name     string
		shipment model.Shipment
		docs     []model.Document
		wantPass bool
		wantNA   bool
	}{
		{
			name:     "issued before ETD",
			shipment: model.Shipment{ProductType: ProductMeat, ETD: date("2024-01-15")},
			docs:     []model.Document{doc("vet", model.DocVeterinaryHealthCert, map[string]any{"issue_date": "2024-01-10"})},
			wantPass: true,
		},
		{
			name:     "issued on shipment day",
			shipment: model.Shipment{ProductType: ProductMeat, ETD: date("2024-01-15")},
			docs:     []model.Document{doc("vet", model.DocVeterinaryHealthCert, map[string]any{"issue_date": "2024-01-15"})},
			wantPass: true,
		},
		{
			name:     "issued after ETD",
			shipment: model.Shipment{ProductType: ProductMeat, ETD: date("2024-01-15")},
			docs:     []model.Document{doc("vet", model.DocVeterinaryHealthCert, map[string]any{"issue_date": "2024-01-20"})},
		},
		{
			name:     "bill of lading date wins over ETD",
			shipment: model.Shipment{ProductType: ProductMeat, ETD: date("2024-01-30")},
			docs: []model.Document{
				doc("vet", model.DocVeterinaryHealthCert, map[string]any{"issue_date": "2024-01-20"}),
				{
					ID:            "bol",
					DocumentType:  model.DocBillOfLading,
					BOLParsedData: &model.BOLParsedData{ShippedOnBoardDate: "2024-01-18"},
				},
			},
		},
		{
			name:     "missing issue date",
			shipment: model.Shipment{ProductType: ProductMeat, ETD: date("2024-01-15")},
			docs:     []model.Document{doc("vet", model.DocVeterinaryHealthCert, nil)},
			wantNA:   true,
		},
		{
			name:     "missing shipment date",
			shipment: model.Shipment{ProductType: ProductMeat},
			docs:     []model.Document{doc("vet", model.DocVeterinaryHealthCert, map[string]any{"issue_date": "2024-01-10"})},
			wantNA:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := VetCertBeforeShipmentRule{}.Evaluate(NewContext(tt.shipment, tt.docs))
			require.Len(t, results, 1)
			if tt.wantNA {
				assert.True(t, isNotApplicable(results[0]))
				return
			}
			assert.Equal(t, tt.wantPass, results[0].Passed)
			if !tt.wantPass {
				assert.Equal(t, model.SeverityError, results[0].Severity)
				require.NotNil(t, results[0].DocumentID)
				assert.Equal(t, "vet", *results[0].DocumentID)
			}
		})
	}
}

func TestAuthorizedSignerRule(t *testing.T) {
	docs := []model.Document{
		doc("vet", model.DocVeterinaryHealthCert, map[string]any{"authorized_signer": map[string]any{"name": "Dr. Ames"}}),
		doc("fum", model.DocFumigationCert, map[string]any{"issuer": "FumiCo"}),
		doc("coo", model.DocCertificateOfOrigin, nil),
		doc("inv", model.DocCommercialInvoice, nil),
	}
	results := AuthorizedSignerRule{}.Evaluate(NewContext(model.Shipment{}, docs))
	require.Len(t, results, 3)

	bad := failed(results)
	require.Len(t, bad, 1)
	assert.Equal(t, model.SeverityWarning, bad[0].Severity)
	assert.Equal(t, "coo", *bad[0].DocumentID)

	na := AuthorizedSignerRule{}.Evaluate(NewContext(model.Shipment{}, docs[3:]))
	require.Len(t, na, 1)
	assert.True(t, isNotApplicable(na[0]))
}

func TestProductFitRule(t *testing.T) {
	docs := []model.Document{
		doc("vet", model.DocVeterinaryHealthCert, nil),
		doc("phyto", model.DocPhytosanitaryCert, nil),
		doc("inv", model.DocCommercialInvoice, nil),
	}

	results := ProductFitRule{}.Evaluate(NewContext(model.Shipment{ProductType: ProductHorticulture}, docs))
	require.Len(t, results, 2)
	bad := failed(results)
	require.Len(t, bad, 1)
	assert.Equal(t, "vet", *bad[0].DocumentID)
	assert.Equal(t, model.SeverityWarning, bad[0].Severity)

	general := ProductFitRule{}.Evaluate(NewContext(model.Shipment{ProductType: ProductGeneral}, docs))
	require.Len(t, general, 1)
	assert.True(t, isNotApplicable(general[0]))
}

func TestReferenceNumberRule(t *testing.T) {
	docs := []model.Document{
		{ID: "bol", DocumentType: model.DocBillOfLading, ReferenceNumber: "MAEU1"},
		{ID: "inv", DocumentType: model.DocCommercialInvoice},
		{ID: "other", DocumentType: model.DocOther},
	}
	results := ReferenceNumberRule{}.Evaluate(NewContext(model.Shipment{}, docs))
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Equal(t, model.SeverityInfo, results[0].Severity)
	assert.Equal(t, "inv", *results[0].DocumentID)

	report := model.NewValidationReport(results)
	assert.True(t, report.IsValid)
}

func TestRequirementTable_WithExtra(t *testing.T) {
	base := DefaultRequirements()

	extended, err := base.WithExtra(map[string][]string{
		"Fresh Produce": {"insurance", "phytosanitary_certificate"},
		"cut-flowers":   {"phyto"},
	})
	require.NoError(t, err)

	assert.Equal(t, []model.DocumentType{model.DocPhytosanitaryCert, model.DocInsuranceCert}, extended.ByProduct[ProductFreshProduce])
	assert.Contains(t, extended.Required("cut flowers"), model.DocPhytosanitaryCert)
	// the original table is untouched
	assert.Equal(t, []model.DocumentType{model.DocPhytosanitaryCert}, base.ByProduct[ProductFreshProduce])

	_, err = base.WithExtra(map[string][]string{"meat": {"receipt"}})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRegistryFor_WeightTolerance(t *testing.T) {
	rule, ok := RegistryFor(DefaultRequirements(), 0.15).GetRule("cross_field.gross_weight")
	require.True(t, ok)

	vc := NewContext(model.Shipment{}, []model.Document{
		doc("bol", model.DocBillOfLading, map[string]any{"weight.gross_kg": 100}),
		doc("pl", model.DocPackingList, map[string]any{"weight.gross_kg": 110}),
	})
	results := rule.Evaluate(vc)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed)
}

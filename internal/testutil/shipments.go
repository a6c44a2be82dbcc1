package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/docintake/internal/model"
)

// ShipmentBuilder assembles a shipment and its documents for tests.
//
// Example:
//
//	shipment, docs := testutil.NewShipmentBuilder(t).
//		WithCompliantMeatDocuments().
//		Without(model.DocVeterinaryHealthCert).
//		Build()
type ShipmentBuilder struct {
	t         *testing.T
	shipment  model.Shipment
	documents []model.Document
}

// NewShipmentBuilder starts a general-cargo shipment with id SHP-TEST.
func NewShipmentBuilder(t *testing.T) *ShipmentBuilder {
	t.Helper()
	return &ShipmentBuilder{
		t:        t,
		shipment: model.Shipment{ID: "SHP-TEST", ProductType: "general"},
	}
}

// WithID sets the shipment id.
func (b *ShipmentBuilder) WithID(id string) *ShipmentBuilder {
	b.shipment.ID = id
	return b
}

// WithProductType sets the shipment product type.
func (b *ShipmentBuilder) WithProductType(productType string) *ShipmentBuilder {
	b.shipment.ProductType = productType
	return b
}

// WithETD sets the estimated departure date, formatted as YYYY-MM-DD.
func (b *ShipmentBuilder) WithETD(date string) *ShipmentBuilder {
	b.t.Helper()
	etd, err := time.Parse(model.IsoDate, date)
	if err != nil {
		b.t.Fatalf("invalid ETD %q: %v", date, err)
	}
	b.shipment.ETD = &etd
	return b
}

// WithDocument adds a document with canonical fields. The id defaults to the
// document type.
func (b *ShipmentBuilder) WithDocument(docType model.DocumentType, reference string, fields map[string]any) *ShipmentBuilder {
	b.documents = append(b.documents, model.Document{
		ID:              string(docType),
		DocumentType:    docType,
		ReferenceNumber: reference,
		CanonicalData:   model.CanonicalData{Fields: fields},
	})
	return b
}

// WithBillOfLading adds a bill of lading carrying parsed data.
func (b *ShipmentBuilder) WithBillOfLading(reference string, parsed model.BOLParsedData) *ShipmentBuilder {
	b.documents = append(b.documents, model.Document{
		ID:              string(model.DocBillOfLading),
		DocumentType:    model.DocBillOfLading,
		ReferenceNumber: reference,
		BOLParsedData:   &parsed,
	})
	return b
}

// WithCompliantMeatDocuments makes the shipment a frozen beef consignment whose
// documents agree on containers, weights, HS codes and dates.
func (b *ShipmentBuilder) WithCompliantMeatDocuments() *ShipmentBuilder {
	b.shipment.ProductType = "meat"
	return b.
		WithBillOfLading("MAEU123", model.BOLParsedData{
			ShippedOnBoardDate: "2024-01-15",
			Containers:         []string{"MSKU1234567"},
			Cargo:              []model.CargoLine{{HSCode: "0201.30", GrossWeightKg: 20000}},
		}).
		WithDocument(model.DocCommercialInvoice, "INV-1", map[string]any{
			"weight": map[string]any{"gross_kg": 20400.0},
		}).
		WithDocument(model.DocPackingList, "PL-1", map[string]any{
			"container_numbers": []any{"MSKU 123 4567"},
			"weight.gross_kg":   19800,
		}).
		WithDocument(model.DocCertificateOfOrigin, "CO-1", map[string]any{
			"hs_codes":  []any{"020130"},
			"issued_by": "Chamber",
		}).
		WithDocument(model.DocVeterinaryHealthCert, "VET-1", map[string]any{
			"issue_date":  "2024-01-10",
			"signer_name": "Dr. Ames",
		})
}

// Without removes every document of the given type.
func (b *ShipmentBuilder) Without(docType model.DocumentType) *ShipmentBuilder {
	kept := b.documents[:0]
	for _, d := range b.documents {
		if d.DocumentType != docType {
			kept = append(kept, d)
		}
	}
	b.documents = kept
	return b
}

// Build returns the shipment and a copy of its documents.
func (b *ShipmentBuilder) Build() (model.Shipment, []model.Document) {
	docs := make([]model.Document, len(b.documents))
	copy(docs, b.documents)
	return b.shipment, docs
}

package classification

import (
	"testing"

	"github.com/Veraticus/docintake/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestReferenceExtractor_Extract(t *testing.T) {
	re := NewReferenceExtractor()

	tests := []struct {
		name    string
		text    string
		docType model.DocumentType
		want    string
	}{
		{
			name:    "b/l number",
			text:    "BILL OF LADING\nB/L No.: MAEU123456789\nShipper: Acme",
			docType: model.DocBillOfLading,
			want:    "MAEU123456789",
		},
		{
			name:    "bill of lading number spelled out",
			text:    "Bill of Lading Number: HLCU-SAN-4471",
			docType: model.DocBillOfLading,
			want:    "HLCU-SAN-4471",
		},
		{
			name:    "invoice number",
			text:    "COMMERCIAL INVOICE\nInvoice No: INV/2024/0042.\nDate: 2024-01-10",
			docType: model.DocCommercialInvoice,
			want:    "INV/2024/0042",
		},
		{
			name:    "short invoice number",
			text:    "Invoice # 42",
			docType: model.DocCommercialInvoice,
			want:    "42",
		},
		{
			name:    "label must be a whole word",
			text:    "Invoice notify party",
			docType: model.DocCommercialInvoice,
		},
		{
			name:    "phytosanitary",
			text:    "Phytosanitary Certificate No. KE-PC-99812",
			docType: model.DocPhytosanitaryCert,
			want:    "KE-PC-99812",
		},
		{
			name:    "certificate number for origin",
			text:    "CERTIFICATE OF ORIGIN\nCertificate No: CO-2024-118 issued",
			docType: model.DocCertificateOfOrigin,
			want:    "CO-2024-118",
		},
		{
			name:    "space separated certificate number",
			text:    "Certificate No. CO 2024 001\nExporter: Acme",
			docType: model.DocCertificateOfOrigin,
			want:    "CO 2024 001",
		},
		{
			name:    "space separated groups stop at words",
			text:    "Invoice No: INV 2024 77 dated 2024-01-10",
			docType: model.DocCommercialInvoice,
			want:    "INV 2024 77",
		},
		{
			name:    "export declaration mrn",
			text:    "Export declaration MRN: 24BR0001234567890",
			docType: model.DocExportDeclaration,
			want:    "24BR0001234567890",
		},
		{
			name:    "generic fallback",
			text:    "Packing details\nRef No. PL-7781",
			docType: model.DocPackingList,
			want:    "PL-7781",
		},
		{
			name:    "type patterns come before generic ones",
			text:    "Reference: XYZ-1\nPolicy No. POL-55501",
			docType: model.DocInsuranceCert,
			want:    "POL-55501",
		},
		{
			name:    "unknown type uses generic patterns",
			text:    "Document No: D-1001",
			docType: model.DocOther,
			want:    "D-1001",
		},
		{
			name:    "no match",
			text:    "no reference here at all",
			docType: model.DocBillOfLading,
		},
		{
			name:    "empty text",
			text:    "   ",
			docType: model.DocBillOfLading,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := re.Extract(tt.text, tt.docType)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want, *got)
			}
		})
	}
}

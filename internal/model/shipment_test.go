package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		in     string
		want   DocumentType
		wantOK bool
	}{
		{"bill_of_lading", DocBillOfLading, true},
		{"Bill of Lading", DocBillOfLading, true},
		{"B/L", DocBillOfLading, true},
		{"certificate-of-origin", DocCertificateOfOrigin, true},
		{"COO", DocCertificateOfOrigin, true},
		{"invoice", DocCommercialInvoice, true},
		{"vet_cert", DocVeterinaryHealthCert, true},
		{"", "", false},
		{"menu", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDocumentType(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalData_Accessors(t *testing.T) {
	raw := `{
		"fields": {
			"container_numbers": ["MSKU1234567", " TGHU7654321 "],
			"weight": {"gross_kg": 1250.5},
			"hs_codes": ["0201.30", "020230"],
			"issue_date": "2024-01-10",
			"signer_name": "Dr. A. Vet"
		}
	}`
	var data CanonicalData
	require.NoError(t, json.Unmarshal([]byte(raw), &data))

	assert.Equal(t, []string{"MSKU1234567", "TGHU7654321"}, data.ContainerNumbers())
	assert.Equal(t, []string{"0201.30", "020230"}, data.HSCodes())

	w, ok := data.GrossWeightKg()
	require.True(t, ok)
	assert.InDelta(t, 1250.5, w, 0.0001)

	d, ok := data.IssueDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d)

	assert.Equal(t, "Dr. A. Vet", data.Signer())
}

func TestCanonicalData_MissingFields(t *testing.T) {
	var data CanonicalData

	assert.Empty(t, data.ContainerNumbers())
	_, ok := data.GrossWeightKg()
	assert.False(t, ok)
	_, ok = data.IssueDate()
	assert.False(t, ok)
	assert.Empty(t, data.Signer())
}

func TestCanonicalData_FlatWeightAndStringList(t *testing.T) {
	data := CanonicalData{Fields: map[string]any{
		"weight.gross_kg":   "1,200 kg",
		"container_numbers": "MSKU1234567, TGHU7654321",
	}}

	w, ok := data.GrossWeightKg()
	require.True(t, ok)
	assert.InDelta(t, 1200.0, w, 0.0001)
	assert.Len(t, data.ContainerNumbers(), 2)
}

func TestBOLParsedData_Totals(t *testing.T) {
	bol := &BOLParsedData{Cargo: []CargoLine{
		{HSCode: "0201.30", GrossWeightKg: 600},
		{HSCode: "", GrossWeightKg: 400},
	}}

	total, ok := bol.TotalGrossWeightKg()
	require.True(t, ok)
	assert.InDelta(t, 1000.0, total, 0.0001)
	assert.Equal(t, []string{"0201.30"}, bol.HSCodes())

	var empty *BOLParsedData
	_, ok = empty.TotalGrossWeightKg()
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	long := make([]rune, MaxPreviewRunes+50)
	for i := range long {
		long[i] = 'é'
	}
	assert.Len(t, []rune(Preview(string(long))), MaxPreviewRunes)
	assert.Equal(t, "short", Preview("short"))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSegment_Reclassify(t *testing.T) {
	orig := DocumentSegment{
		DocumentType:    DocumentTypePtr(DocCommercialInvoice),
		ReferenceNumber: StringPtr("INV-9"),
		DetectedFields:  map[string]any{"heading_type": "commercial_invoice"},
		DetectionMethod: DetectionKeyword,
		PageStart:       2,
		PageEnd:         3,
		Confidence:      0.55,
	}

	got := orig.Reclassify(DocPackingList)

	require.NotNil(t, got.DocumentType)
	assert.Equal(t, DocPackingList, *got.DocumentType)
	assert.Equal(t, DetectionManual, got.DetectionMethod)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, 2, got.PageStart)
	assert.Equal(t, 2, got.PageCount())
	assert.Equal(t, "INV-9", *got.ReferenceNumber)

	// the original is untouched
	assert.Equal(t, DocCommercialInvoice, *orig.DocumentType)
	assert.Equal(t, DetectionKeyword, orig.DetectionMethod)
	got.DetectedFields["heading_type"] = "packing_list"
	assert.Equal(t, "commercial_invoice", orig.DetectedFields["heading_type"])
}

package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/docintake/internal/classification"
	"github.com/Veraticus/docintake/internal/engine"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/Veraticus/docintake/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	err    error
	pages  []model.PageText
	useOCR []bool
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, useOCR bool) []model.PageText {
	f.useOCR = append(f.useOCR, useOCR)
	return f.pages
}

func (f *fakeExtractor) ExtractFile(_ context.Context, _ string, useOCR bool) ([]model.PageText, error) {
	f.useOCR = append(f.useOCR, useOCR)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func bundle(texts ...string) []model.PageText {
	pages := make([]model.PageText, len(texts))
	for i, text := range texts {
		pages[i] = model.NewPageText(i+1, text)
	}
	return pages
}

var shipmentBundle = bundle(
	"BILL OF LADING\nShipper: Acme Foods\nConsignee: Harbor Imports\nPort of loading: Santos\nVessel: MSC Aurora\nB/L No: MAEU1234567",
	"Container MSKU1234567 freight prepaid",
	"COMMERCIAL INVOICE\nInvoice No: INV-2024-77\nSeller: Acme Foods\nBuyer: Harbor Imports\nTotal amount: USD 10,000",
	"CERTIFICATE OF ORIGIN\nCertificate No: CO-2024-118\nCountry of origin: Brazil\nExporter: Acme Foods\nChamber of Commerce of Santos",
)

func newPipeline(t *testing.T, pages []model.PageText, backend *engine.MockBackend, opts ...Option) (*Pipeline, *fakeExtractor) {
	t.Helper()
	keyword := classification.NewDefaultKeywordClassifier()

	var cascade *engine.Cascade
	if backend != nil {
		cascade = engine.NewCascade(keyword, classification.NewReferenceExtractor(), backend, nil)
	} else {
		cascade = engine.NewCascade(keyword, classification.NewReferenceExtractor(), nil, nil)
	}

	extractor := &fakeExtractor{pages: pages}
	return New(extractor, segment.MustNewDetector(), cascade, nil, opts...), extractor
}

func TestPipeline_SplitsAndClassifies(t *testing.T) {
	p, extractor := newPipeline(t, shipmentBundle, nil)

	res, err := p.Process(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, res.Segments, 3)
	assert.Equal(t, []bool{true}, extractor.useOCR)

	tests := []struct {
		docType   model.DocumentType
		reference string
		start     int
		end       int
	}{
		{docType: model.DocBillOfLading, reference: "MAEU1234567", start: 1, end: 2},
		{docType: model.DocCommercialInvoice, reference: "INV-2024-77", start: 3, end: 3},
		{docType: model.DocCertificateOfOrigin, reference: "CO-2024-118", start: 4, end: 4},
	}
	for i, tt := range tests {
		seg := res.Segments[i]
		require.NotNil(t, seg.DocumentType)
		assert.Equal(t, tt.docType, *seg.DocumentType)
		assert.Equal(t, tt.start, seg.PageStart)
		assert.Equal(t, tt.end, seg.PageEnd)
		require.NotNil(t, seg.ReferenceNumber)
		assert.Equal(t, tt.reference, *seg.ReferenceNumber)
		assert.Equal(t, model.DetectionKeyword, seg.DetectionMethod)
		assert.Equal(t, string(tt.docType), seg.DetectedFields[FieldHeadingType])
		assert.Equal(t, tt.end-tt.start+1, seg.DetectedFields[FieldPageCount])
		assert.Greater(t, seg.Confidence, 0.0)
	}

	assert.Contains(t, res.Segments[0].TextPreview, "freight prepaid")
	assert.Equal(t, 4, res.Quality.PageCount)
}

func TestPipeline_AIEnhancement(t *testing.T) {
	keywordOnly, _ := newPipeline(t, shipmentBundle, nil)
	backend := engine.NewMockBackend()
	withAI, _ := newPipeline(t, shipmentBundle, backend)

	base, err := keywordOnly.Process(context.Background(), nil)
	require.NoError(t, err)
	enhanced, err := withAI.Process(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, enhanced.Segments, len(base.Segments))
	assert.Len(t, backend.Calls(), len(base.Segments))

	for i := range base.Segments {
		before, after := base.Segments[i], enhanced.Segments[i]
		assert.GreaterOrEqual(t, after.Confidence, before.Confidence)
		assert.Equal(t, before.ReferenceNumber, after.ReferenceNumber)
		assert.Equal(t, model.DetectionAI, after.DetectionMethod)
		assert.Equal(t, before.DetectedFields[FieldHeadingType], after.DetectedFields[FieldHeadingType])
		assert.Equal(t, "mock", after.DetectedFields["source"])
	}
}

func TestPipeline_PreferAIDisabled(t *testing.T) {
	backend := engine.NewMockBackend()
	p, _ := newPipeline(t, shipmentBundle, backend, WithPreferAI(false), WithOCR(false), WithWorkers(1))

	res, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, backend.Calls())
	for _, seg := range res.Segments {
		assert.Equal(t, model.DetectionKeyword, seg.DetectionMethod)
	}

	got := p.ClassifyText(context.Background(), "PACKING LIST gross weight cartons")
	assert.Equal(t, model.DocPackingList, got.DocumentType)
	assert.Equal(t, model.MethodKeyword, got.Method)
}

func TestPipeline_ClassifyTextUsesAI(t *testing.T) {
	p, _ := newPipeline(t, nil, engine.NewMockBackend())

	got := p.ClassifyText(context.Background(), "Phytosanitary certificate for export")
	assert.Equal(t, model.DocPhytosanitaryCert, got.DocumentType)
	assert.Equal(t, model.MethodAI, got.Method)
}

func TestPipeline_EmptyInput(t *testing.T) {
	p, _ := newPipeline(t, []model.PageText{}, nil)

	res, err := p.Process(context.Background(), []byte("not a pdf"))
	require.NoError(t, err)
	assert.Empty(t, res.Segments)
	assert.Empty(t, res.Pages)
}

func TestPipeline_PreviewIsBounded(t *testing.T) {
	long := "PACKING LIST\n" + strings.Repeat("cartons gross weight ", 200)
	p, _ := newPipeline(t, bundle(long, long), nil)

	res, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Segments, 2)
	for _, seg := range res.Segments {
		assert.LessOrEqual(t, len([]rune(seg.TextPreview)), model.MaxPreviewRunes)
	}
}

func TestPipeline_ProcessFile(t *testing.T) {
	p, extractor := newPipeline(t, shipmentBundle, nil)

	res, err := p.ProcessFile(context.Background(), "/inbox/bundle.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/inbox/bundle.pdf", res.Source)
	assert.Len(t, res.Segments, 3)

	extractor.err = errors.New("permission denied")
	_, err = p.ProcessFile(context.Background(), "/inbox/locked.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked.pdf")
}

func TestPipeline_Canceled(t *testing.T) {
	p, _ := newPipeline(t, shipmentBundle, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

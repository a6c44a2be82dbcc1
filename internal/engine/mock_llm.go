package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/Veraticus/docintake/internal/llm"
	"github.com/Veraticus/docintake/internal/model"
)

// MockBackend is a deterministic llm.Backend for tests. It classifies by phrase
// lookup and records every call.
type MockBackend struct {
	// Err, when set, is returned by every ClassifyDocument call.
	Err error
	// Results overrides the phrase lookup for exact input texts.
	Results map[string]*model.ClassificationResult
	calls   []MockLLMCall
	mu      sync.Mutex
	// Unavailable makes IsAvailable report false.
	Unavailable bool
}

// MockLLMCall records details of a classification request.
type MockLLMCall struct {
	Error  error
	Result *model.ClassificationResult
	Text   string
}

// NewMockBackend creates a new mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		calls:   make([]MockLLMCall, 0),
		Results: make(map[string]*model.ClassificationResult),
	}
}

var mockPhrases = []struct {
	phrase     string
	docType    model.DocumentType
	reference  string
	confidence float64
}{
	{phrase: "veterinary", docType: model.DocVeterinaryHealthCert, confidence: 0.96, reference: "VET-0001"},
	{phrase: "phytosanitary", docType: model.DocPhytosanitaryCert, confidence: 0.95, reference: "PHY-0001"},
	{phrase: "fumigation", docType: model.DocFumigationCert, confidence: 0.94},
	{phrase: "certificate of origin", docType: model.DocCertificateOfOrigin, confidence: 0.93, reference: "CO-0001"},
	{phrase: "bill of lading", docType: model.DocBillOfLading, confidence: 0.92, reference: "BL-0001"},
	{phrase: "packing list", docType: model.DocPackingList, confidence: 0.90},
	{phrase: "invoice", docType: model.DocCommercialInvoice, confidence: 0.88, reference: "INV-0001"},
}

// ClassifyDocument implements llm.Backend.
func (m *MockBackend) ClassifyDocument(_ context.Context, text string) (*model.ClassificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := MockLLMCall{Text: text, Error: m.Err}
	defer func() { m.calls = append(m.calls, call) }()

	if m.Err != nil {
		return nil, m.Err
	}
	if res, ok := m.Results[text]; ok {
		call.Result = res
		return res, nil
	}

	lower := strings.ToLower(text)
	res := &model.ClassificationResult{
		DocumentType: model.DocOther,
		Confidence:   0.5,
		Method:       model.MethodAI,
		Provider:     "mock",
		Reasoning:    "no known phrase",
		KeyFields:    map[string]any{"source": "mock"},
	}
	for _, p := range mockPhrases {
		if strings.Contains(lower, p.phrase) {
			res.DocumentType = p.docType
			res.Confidence = p.confidence
			res.ReferenceNumber = model.StringPtr(p.reference)
			res.Reasoning = "found " + p.phrase
			break
		}
	}
	call.Result = res
	return res, nil
}

// IsAvailable implements llm.Backend.
func (m *MockBackend) IsAvailable() bool {
	return !m.Unavailable
}

// ProviderName implements llm.Backend.
func (m *MockBackend) ProviderName() string {
	return "mock"
}

// Status implements llm.Backend.
func (m *MockBackend) Status() llm.Status {
	st := llm.Status{Provider: "mock", Model: "mock", Available: m.IsAvailable()}
	if m.Unavailable {
		st.Reason = "mock marked unavailable"
	}
	return st
}

// Calls returns a copy of the recorded calls.
func (m *MockBackend) Calls() []MockLLMCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockLLMCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the recorded calls.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = m.calls[:0]
}

var _ llm.Backend = (*MockBackend)(nil)

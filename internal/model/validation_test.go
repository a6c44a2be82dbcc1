package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationReport(t *testing.T) {
	tests := []struct {
		name         string
		results      []RuleResult
		wantFailed   int
		wantWarnings int
		wantValid    bool
	}{
		{
			name:      "no results",
			wantValid: true,
		},
		{
			name: "all passed",
			results: []RuleResult{
				{RuleID: "a", Passed: true, Severity: SeverityError},
				{RuleID: "b", Passed: true, Severity: SeverityCritical},
			},
			wantValid: true,
		},
		{
			name: "critical and error failures count",
			results: []RuleResult{
				{RuleID: "a", Passed: false, Severity: SeverityCritical},
				{RuleID: "b", Passed: false, Severity: SeverityError},
				{RuleID: "c", Passed: false, Severity: SeverityWarning},
			},
			wantFailed:   2,
			wantWarnings: 1,
			wantValid:    false,
		},
		{
			name: "failed info never affects validity",
			results: []RuleResult{
				{RuleID: "a", Passed: false, Severity: SeverityInfo},
				{RuleID: "b", Passed: false, Severity: SeverityWarning},
			},
			wantWarnings: 1,
			wantValid:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewValidationReport(tt.results)
			assert.Equal(t, tt.wantFailed, report.Failed)
			assert.Equal(t, tt.wantWarnings, report.Warnings)
			assert.Equal(t, tt.wantValid, report.IsValid)
			assert.NotNil(t, report.Results)
		})
	}
}

func TestValidationReport_WithOverride(t *testing.T) {
	report := NewValidationReport([]RuleResult{
		{RuleID: "presence", Passed: false, Severity: SeverityError},
	})
	require.False(t, report.DisplayValid())

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	overridden := report.WithOverride(Override{Reason: "cleared by broker", By: "ops", At: at})

	assert.True(t, overridden.DisplayValid())
	assert.False(t, overridden.IsValid, "stored validity must not change")
	assert.Equal(t, 1, overridden.Failed)
	assert.Equal(t, report.Results, overridden.Results)
	assert.Nil(t, report.Override, "original report must not be modified")
	require.NotNil(t, overridden.Override)
	assert.Equal(t, "ops", overridden.Override.By)
}

func TestSeverity_Blocking(t *testing.T) {
	assert.True(t, SeverityCritical.Blocking())
	assert.True(t, SeverityError.Blocking())
	assert.False(t, SeverityWarning.Blocking())
	assert.False(t, SeverityInfo.Blocking())
	assert.False(t, Severity("bogus").Blocking())

	assert.True(t, SeverityWarning.IsWarning())
	assert.False(t, SeverityError.IsWarning())
	assert.False(t, SeverityInfo.IsWarning())
}

func TestCategory_DocumentScoped(t *testing.T) {
	assert.True(t, CategoryRelevance.DocumentScoped())
	assert.True(t, CategoryContent.DocumentScoped())
	assert.False(t, CategoryPresence.DocumentScoped())
	assert.False(t, CategoryCrossField.DocumentScoped())
}

package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestEvaluateWeight(t *testing.T) {
	tests := []struct {
		name     string
		required float64
		observed *float64
		margin   float64
		passed   bool
		skipped  bool
		contains string
	}{
		{
			name:     "comfortably enough",
			required: 80, observed: fptr(200), margin: 5,
			passed: true, contains: "Weight Check PASSED",
		},
		{
			name:     "exactly required plus margin",
			required: 80, observed: fptr(85), margin: 5,
			passed: true, contains: "need 80.0g (+5.0g margin)",
		},
		{
			name:     "within margin fails",
			required: 80, observed: fptr(82), margin: 5,
			passed: false, contains: "SHORT BY 3.0g!",
		},
		{
			name:     "zero margin boundary",
			required: 80, observed: fptr(80), margin: 0,
			passed: true,
		},
		{
			name:     "empty spool",
			required: 80, observed: fptr(0), margin: 5,
			passed: false, contains: "SHORT BY 85.0g!",
		},
		{
			name:     "no weight data skips",
			required: 80, observed: nil, margin: 5,
			passed: true, skipped: true, contains: "skipping weight check",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluateWeight(0, "Spool 7 (Orange PLA)", tt.required, tt.observed, tt.margin)
			assert.Equal(t, tt.passed, r.Passed)
			assert.Equal(t, tt.skipped, r.Skipped)
			if tt.contains != "" {
				assert.Contains(t, r.Message, tt.contains)
			}
			if !tt.passed {
				assert.Equal(t, SeverityError, r.Severity, "weight violations always block")
				assert.True(t, r.Blocking())
			}
		})
	}
}

func TestEvaluateWeightDeficitOneDecimal(t *testing.T) {
	r := evaluateWeight(0, "Spool 7 (Orange PLA)", 80, fptr(81.7), 5.0)
	require.False(t, r.Passed)
	assert.Contains(t, r.Message, "SHORT BY 3.3g!")
}

func TestEvaluateMatch(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		required string
		observed string
		severity Severity
		passed   bool
		skipped  bool
		blocking bool
		contains string
	}{
		{
			name: "exact match",
			rule: RuleMaterial, required: "PLA", observed: "PLA",
			severity: SeverityError, passed: true,
			contains: "Material Check PASSED",
		},
		{
			name: "case-insensitive match",
			rule: RuleMaterial, required: "pla", observed: "PLA",
			severity: SeverityError, passed: true,
		},
		{
			name: "whitespace trimmed",
			rule: RuleName, required: "  Orange PLA ", observed: "Orange PLA",
			severity: SeverityError, passed: true,
		},
		{
			name: "mismatch at error severity blocks",
			rule: RuleMaterial, required: "PLA", observed: "PETG",
			severity: SeverityError, blocking: true,
			contains: "Material Check FAILED",
		},
		{
			name: "mismatch at warning severity does not block",
			rule: RuleMaterial, required: "PLA", observed: "PETG",
			severity: SeverityWarning,
		},
		{
			name: "missing required skips",
			rule: RuleName, required: "", observed: "Orange PLA",
			severity: SeverityError, passed: true, skipped: true,
			contains: "No filament name data in file metadata",
		},
		{
			name: "missing observed skips",
			rule: RuleName, required: "Orange PLA", observed: "",
			severity: SeverityError, passed: true, skipped: true,
			contains: "skipping filament name check",
		},
		{
			name: "unicode spellings compare equal",
			rule: RuleName, required: "Café PLA", observed: "Café PLA",
			severity: SeverityError, passed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := "material"
			if tt.rule == RuleName {
				field = "filament name"
			}
			r := evaluateMatch(tt.rule, 0, "Spool 7 (Orange PLA)", field, tt.required, tt.observed, tt.severity)
			assert.Equal(t, tt.passed, r.Passed)
			assert.Equal(t, tt.skipped, r.Skipped)
			assert.Equal(t, tt.blocking, r.Blocking())
			if tt.contains != "" {
				assert.Contains(t, r.Message, tt.contains)
			}
		})
	}
}

func TestRequiredAt(t *testing.T) {
	weights := []float64{80, 12.5}

	v, ok := requiredAt(weights, 0)
	require.True(t, ok)
	assert.Equal(t, 80.0, v)

	v, ok = requiredAt(weights, 1)
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	// A missing trailing entry skips the rule for that tool.
	_, ok = requiredAt(weights, 2)
	assert.False(t, ok)

	_, ok = requiredAt[float64](nil, 0)
	assert.False(t, ok)
}

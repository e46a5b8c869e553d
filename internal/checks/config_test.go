package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5.0, cfg.WeightMarginGrams)
	assert.True(t, cfg.EnableWeightCheck)
	assert.True(t, cfg.EnableMaterialCheck)
	assert.False(t, cfg.EnableNameCheck)
	assert.Equal(t, SeverityWarning, cfg.MaterialMismatchSeverity)
	assert.Equal(t, SeverityInfo, cfg.NameMismatchSeverity)
	assert.Equal(t, GroupMaterialSkip, cfg.GroupMaterialPolicy)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.WeightMarginGrams = -0.5 },
			wantErr: "weight_margin_grams",
		},
		{
			name:    "bad material severity",
			mutate:  func(c *Config) { c.MaterialMismatchSeverity = "fatal" },
			wantErr: "material_mismatch_severity",
		},
		{
			name:    "bad name severity",
			mutate:  func(c *Config) { c.NameMismatchSeverity = "loud" },
			wantErr: "filament_name_mismatch_severity",
		},
		{
			name:    "bad group material policy",
			mutate:  func(c *Config) { c.GroupMaterialPolicy = "guess" },
			wantErr: "group_material_policy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigYAMLRoundsOut(t *testing.T) {
	raw := `
weight_margin_grams: 12.5
enable_weight_check: true
enable_material_check: false
enable_filament_name_check: true
material_mismatch_severity: error
filament_name_mismatch_severity: warning
group_material_policy: compliant
parallel_fetch: true
`
	cfg := DefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12.5, cfg.WeightMarginGrams)
	assert.False(t, cfg.EnableMaterialCheck)
	assert.True(t, cfg.EnableNameCheck)
	assert.Equal(t, SeverityError, cfg.MaterialMismatchSeverity)
	assert.Equal(t, GroupMaterialCompliant, cfg.GroupMaterialPolicy)
	assert.True(t, cfg.ParallelFetch)
}

func TestConfigRuleActivity(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.anyRuleActive())
	assert.True(t, cfg.anyMandatoryRule(), "weight check is always mandatory when enabled")

	cfg.EnableWeightCheck = false
	assert.True(t, cfg.anyRuleActive(), "material still active")
	assert.False(t, cfg.anyMandatoryRule(), "warning-level material is advisory")

	cfg.MaterialMismatchSeverity = SeverityError
	assert.True(t, cfg.anyMandatoryRule())

	cfg.MaterialMismatchSeverity = SeverityIgnore
	assert.False(t, cfg.materialActive(), "ignore disables the rule outright")
	assert.False(t, cfg.anyRuleActive())
}

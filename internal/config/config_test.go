package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolguard/spoolguard/internal/checks"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spoolguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
moonraker:
  url: http://printer.local:7125
  api_key: secret
spoolman:
  url: http://printer.local:7912
  timeout_seconds: 3
database: /var/lib/spoolguard/spoolguard.db
checks:
  weight_margin_grams: 10
  material_mismatch_severity: error
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://printer.local:7125", cfg.Moonraker.URL)
	assert.Equal(t, "secret", cfg.Moonraker.APIKey)
	assert.Equal(t, "http://printer.local:7912", cfg.Spoolman.URL)
	assert.Equal(t, 3*time.Second, cfg.SpoolmanTimeout())
	assert.Equal(t, 10*time.Second, cfg.MoonrakerTimeout(), "unset timeout keeps its default")
	assert.Equal(t, 10.0, cfg.Checks.WeightMarginGrams)
	assert.Equal(t, checks.SeverityError, cfg.Checks.MaterialMismatchSeverity)
	assert.True(t, cfg.Checks.EnableWeightCheck, "unset flags keep their defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
moonraker:
  host: printer.local
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "negative margin",
			body: "checks:\n  weight_margin_grams: -2\n",
		},
		{
			name: "bad severity",
			body: "checks:\n  material_mismatch_severity: fatal\n",
		},
		{
			name: "zero timeout",
			body: "spoolman:\n  timeout_seconds: 0\n",
		},
		{
			name: "empty moonraker url",
			body: "moonraker:\n  url: \"\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// Package config loads the spoolguard configuration file.
//
// The file is YAML. After decoding, the result is unified with an embedded
// CUE schema so type and range errors surface at startup with a schema
// position, not later as a misbehaving check.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/spoolguard/spoolguard/internal/checks"
)

//go:embed schema.cue
var schemaSource string

// Moonraker is the print server connection.
type Moonraker struct {
	URL            string  `yaml:"url" json:"url"`
	APIKey         string  `yaml:"api_key" json:"api_key"`
	TimeoutSeconds float64 `yaml:"timeout_seconds" json:"timeout_seconds"`
	// ErrorMacro is the gcode macro used for blocking failure dialogs.
	ErrorMacro string `yaml:"error_macro" json:"error_macro"`
	// MMULog routes console messages through MMU_LOG when true.
	MMULog bool `yaml:"mmu_log" json:"mmu_log"`
}

// Spoolman is the inventory service connection. An empty URL disables the
// inventory; every session is then skipped.
type Spoolman struct {
	URL            string  `yaml:"url" json:"url"`
	TimeoutSeconds float64 `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the full file layout.
type Config struct {
	Moonraker Moonraker     `yaml:"moonraker" json:"moonraker"`
	Spoolman  Spoolman      `yaml:"spoolman" json:"spoolman"`
	Database  string        `yaml:"database" json:"database"`
	GCodeRoot string        `yaml:"gcode_root" json:"gcode_root"`
	Checks    checks.Config `yaml:"checks" json:"checks"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Moonraker: Moonraker{
			URL:            "http://localhost:7125",
			TimeoutSeconds: 10,
		},
		Spoolman: Spoolman{
			TimeoutSeconds: 10,
		},
		Database: "spoolguard.db",
		Checks:   checks.DefaultConfig(),
	}
}

// MoonrakerTimeout returns the Moonraker request timeout as a duration.
func (c Config) MoonrakerTimeout() time.Duration {
	return time.Duration(c.Moonraker.TimeoutSeconds * float64(time.Second))
}

// SpoolmanTimeout returns the Spoolman request timeout as a duration.
func (c Config) SpoolmanTimeout() time.Duration {
	return time.Duration(c.Spoolman.TimeoutSeconds * float64(time.Second))
}

// Load reads and validates a config file. Settings absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag.
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate unifies the configuration with the embedded schema and runs the
// engine-level checks on the check policy.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("config schema has no #Config definition")
	}

	unified := def.Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	return cfg.Checks.Validate()
}

package cli

import (
	"context"

	"github.com/spoolguard/spoolguard/internal/checks"
	"github.com/spoolguard/spoolguard/internal/config"
	"github.com/spoolguard/spoolguard/internal/inventory"
	"github.com/spoolguard/spoolguard/internal/metadata"
	"github.com/spoolguard/spoolguard/internal/mmu"
	"github.com/spoolguard/spoolguard/internal/moonraker"
	"github.com/spoolguard/spoolguard/internal/settings"
)

// loadConfig loads the configured file, or the defaults when no --config
// flag was given.
func loadConfig(opts *RootOptions) (config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(opts.ConfigPath)
}

// env is the wired set of collaborators a command works with. Close
// releases the settings store.
type env struct {
	cfg     config.Config
	store   *settings.Store
	moon    *moonraker.Client
	inv     *inventory.Client
	checker *checks.Checker
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// consoleReporter adapts the Moonraker console to the checker's reporter.
type consoleReporter struct {
	console *moonraker.Console
}

func (r consoleReporter) Report(ctx context.Context, message string, severity checks.Severity) {
	reason := ""
	if severity == checks.SeverityError {
		reason = "Pre-Print Check Failed"
	}
	r.console.Say(ctx, message, string(severity), reason)
}

// buildEnv wires the collaborators the check command needs. A missing
// Spoolman URL leaves the inventory nil; the checker then skips sessions,
// which is the configured-off behavior rather than an error.
func buildEnv(opts *RootOptions) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	store, err := settings.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open settings store", err)
	}

	moonOpts := []moonraker.Option{moonraker.WithTimeout(cfg.MoonrakerTimeout())}
	if cfg.Moonraker.APIKey != "" {
		moonOpts = append(moonOpts, moonraker.WithAPIKey(cfg.Moonraker.APIKey))
	}
	moon := moonraker.NewClient(cfg.Moonraker.URL, moonOpts...)

	var inv *inventory.Client
	if cfg.Spoolman.URL != "" {
		inv = inventory.NewClient(cfg.Spoolman.URL, inventory.WithTimeout(cfg.SpoolmanTimeout()))
	}

	var source metadata.Source = moonraker.NewMetadataSource(moon)
	if cfg.GCodeRoot != "" {
		source = metadata.NewFileSource(cfg.GCodeRoot)
	}

	consoleOpts := []moonraker.ConsoleOption{moonraker.WithMMULog(cfg.Moonraker.MMULog)}
	if cfg.Moonraker.ErrorMacro != "" {
		consoleOpts = append(consoleOpts, moonraker.WithErrorMacro(cfg.Moonraker.ErrorMacro))
	}
	console := moonraker.NewConsole(moon, consoleOpts...)

	deps := checks.Deps{
		Settings: store,
		Jobs:     moon,
		Metadata: source,
		Reporter: consoleReporter{console: console},
		Pauser:   moon,
		Backend:  mmu.NewMoonrakerBackend(moon),
	}
	if inv != nil {
		deps.Inventory = inv
	}

	checker, err := checks.New(cfg.Checks, deps)
	if err != nil {
		store.Close()
		return nil, WrapExitError(ExitCommandError, "build checker", err)
	}

	return &env{cfg: cfg, store: store, moon: moon, inv: inv, checker: checker}, nil
}

package checks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spoolguard/spoolguard/internal/metadata"
	"github.com/spoolguard/spoolguard/internal/mmu"
	"github.com/spoolguard/spoolguard/internal/spool"
)

// Inventory resolves spool records by id.
// Satisfied by inventory.Client.
type Inventory interface {
	Spool(ctx context.Context, id int) (*spool.Spool, error)
}

// SettingsSource supplies the persistently configured active spool.
// The boolean return distinguishes "no active spool set" from id zero.
// Satisfied by settings.Store.
type SettingsSource interface {
	ActiveSpoolID(ctx context.Context) (int, bool, error)
}

// JobSource answers which job file is about to print. An empty filename
// with a nil error means no job is loaded.
// Satisfied by moonraker.Client.
type JobSource interface {
	CurrentFilename(ctx context.Context) (string, error)
}

// Reporter delivers check messages to the operator console.
// Implementations must not fail the session; delivery errors are theirs to
// log and swallow.
type Reporter interface {
	Report(ctx context.Context, message string, severity Severity)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, message string, severity Severity)

func (f ReporterFunc) Report(ctx context.Context, message string, severity Severity) {
	f(ctx, message, severity)
}

// Pauser halts the job when the verdict blocks it.
// Satisfied by moonraker.Client.
type Pauser interface {
	PausePrint(ctx context.Context) error
}

// Deps are the checker's external collaborators. Inventory may be nil, in
// which case every session is skipped; Reporter and Pauser may be nil for
// headless use; a nil Backend means no multi-material unit.
type Deps struct {
	Inventory Inventory
	Settings  SettingsSource
	Jobs      JobSource
	Metadata  metadata.Source
	Reporter  Reporter
	Pauser    Pauser
	Backend   mmu.Backend
}

// Checker runs pre-print verification sessions. Construct with New; safe
// for concurrent sessions since all per-run state lives in the session.
type Checker struct {
	cfg    Config
	deps   Deps
	tokens TokenGenerator
	log    *slog.Logger
}

// Option customizes a Checker.
type Option func(*Checker)

// WithTokenGenerator substitutes the session token source, for
// deterministic tests.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(c *Checker) { c.tokens = g }
}

// WithLogger substitutes the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Checker) { c.log = log }
}

// New validates the config and builds a Checker.
func New(cfg Config, deps Deps, opts ...Option) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("check config: %w", err)
	}
	if deps.Jobs == nil {
		return nil, fmt.Errorf("check deps: job source is required")
	}
	if deps.Metadata == nil {
		return nil, fmt.Errorf("check deps: metadata source is required")
	}
	if deps.Backend == nil {
		deps.Backend = mmu.NullBackend{}
	}
	c := &Checker{
		cfg:    cfg,
		deps:   deps,
		tokens: UUIDv7Generator{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run executes one verification session. An explicit tool mapping forces
// multi-tool mode; pass nil to let the session resolve its own mode.
//
// Run never returns an error: every failure is folded into the Outcome so
// the caller always gets a verdict.
func (c *Checker) Run(ctx context.Context, explicit *spool.ToolSlotMap) Outcome {
	sess := newSession(c.tokens.Generate())
	sess.clear() // discard anything a prior session could have left behind
	defer sess.clear()
	return c.run(ctx, sess, explicit)
}

func (c *Checker) run(ctx context.Context, sess *session, explicit *spool.ToolSlotMap) Outcome {
	log := c.log.With("session", sess.token)
	outcome := Outcome{Token: sess.token}

	log.Info("starting pre-print checks")

	if c.deps.Inventory == nil {
		log.Warn("spool inventory not available, skipping checks")
		c.report(ctx, "Pre-print checks skipped: Spoolman not available", SeverityWarning)
		outcome.Status = StatusSkipped
		outcome.Reason = "inventory not available"
		return outcome
	}

	filename, err := c.deps.Jobs.CurrentFilename(ctx)
	if err != nil {
		log.Warn("current filename lookup failed", "error", err)
		filename = ""
	}
	if filename == "" {
		log.Warn("no current filename available, skipping checks")
		c.report(ctx, "Pre-print checks skipped: No filename available", SeverityWarning)
		outcome.Status = StatusSkipped
		outcome.Reason = "no current job filename"
		return outcome
	}
	outcome.Filename = filename

	// Mode is resolved once and cached on the session; the backend probe
	// may cost a network round trip.
	mode, slotMap, err := c.resolveMode(ctx, explicit)
	if err != nil {
		log.Warn("tool mapping unavailable, skipping checks", "error", err)
		c.report(ctx, "Pre-print checks skipped: Tool mapping unavailable", SeverityWarning)
		outcome.Status = StatusSkipped
		outcome.Reason = "tool mapping unavailable"
		return outcome
	}
	sess.mode = mode
	sess.slotMap = slotMap
	outcome.Mode = mode

	if !c.cfg.anyRuleActive() {
		log.Info("no checks enabled, nothing to do")
		outcome.Status = StatusSkipped
		outcome.Reason = "no checks enabled"
		return outcome
	}

	log.Info("running checks", "mode", mode, "filename", filename)
	c.report(ctx, fmt.Sprintf("Running %s checks for: %s", mode.label(), filename), SeverityInfo)

	md, ok, err := c.deps.Metadata.Metadata(ctx, filename)
	if err != nil || !ok {
		cerr := &CheckError{Code: CodeFetchFailed, Message: fmt.Sprintf("Metadata not available for %s", filename), Err: err}
		log.Error("metadata lookup failed", "error", cerr)
		outcome.Results = append(outcome.Results, Result{
			Rule: RuleConfig, Severity: SeverityError, Code: CodeFetchFailed,
			Message: cerr.Message,
		})
		return c.finish(ctx, sess, log, outcome)
	}

	// The tool mapping and the metadata describe the same set of tools; a
	// length disagreement means one of them is stale or misconfigured and
	// no per-tool verdict would be trustworthy.
	if mode == ModeMultiTool && md.Weights != nil && len(slotMap.ToolToSlot) != len(md.Weights) {
		cerr := &CheckError{
			Code: CodeConfigMismatch,
			Message: fmt.Sprintf("Tool mapping has %d tools but file metadata lists %d weights",
				len(slotMap.ToolToSlot), len(md.Weights)),
		}
		log.Error("configuration mismatch", "error", cerr)
		outcome.Results = append(outcome.Results, Result{
			Rule: RuleConfig, Severity: SeverityError, Code: CodeConfigMismatch,
			Message: cerr.Message,
		})
		return c.finish(ctx, sess, log, outcome)
	}

	tools := c.relevantTools(sess, md)
	perTool := make([][]Result, len(tools))
	if c.cfg.ParallelFetch && len(tools) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, tool := range tools {
			g.Go(func() error {
				perTool[i] = c.evaluateTool(gctx, sess, log, md, tool)
				return nil
			})
		}
		// Evaluators never return errors; failures become Results.
		_ = g.Wait()
	} else {
		for i, tool := range tools {
			perTool[i] = c.evaluateTool(ctx, sess, log, md, tool)
		}
	}
	for _, results := range perTool {
		outcome.Results = append(outcome.Results, results...)
	}
	return c.finish(ctx, sess, log, outcome)
}

// resolveMode picks single-spool or multi-tool for this session. An
// explicit mapping wins; otherwise an enabled multi-material backend
// supplies its live map; otherwise single-spool.
func (c *Checker) resolveMode(ctx context.Context, explicit *spool.ToolSlotMap) (Mode, spool.ToolSlotMap, error) {
	if explicit != nil {
		return ModeMultiTool, *explicit, nil
	}
	if c.deps.Backend.Enabled(ctx) {
		m, err := c.deps.Backend.SlotMap(ctx)
		if err != nil {
			return ModeMultiTool, spool.ToolSlotMap{}, fmt.Errorf("multi-material slot map: %w", err)
		}
		return ModeMultiTool, m, nil
	}
	return ModeSingle, spool.ToolSlotMap{}, nil
}

// relevantTools lists the tool indices this session evaluates: tool 0 in
// single-spool mode, the job's referenced tools in multi-tool mode, or the
// whole mapping when the job does not say which tools it uses.
func (c *Checker) relevantTools(sess *session, md *metadata.JobMetadata) []int {
	if sess.mode == ModeSingle {
		return []int{0}
	}
	if len(md.ReferencedTools) > 0 {
		return append([]int(nil), md.ReferencedTools...)
	}
	return sess.slotMap.Tools()
}

// evaluateTool resolves one tool's spool (or pooled group) and runs every
// enabled rule against it. It never fails the session directly; everything
// it finds comes back as Results.
func (c *Checker) evaluateTool(ctx context.Context, sess *session, log *slog.Logger, md *metadata.JobMetadata, tool int) []Result {
	fetch := func(ctx context.Context, id int) (*spool.Spool, error) {
		return sess.fetchSpool(ctx, c.deps.Inventory, id)
	}

	var agg groupAggregate
	if sess.mode == ModeSingle {
		id, ok, err := c.activeSpoolID(ctx)
		if err != nil {
			return []Result{c.resolveFailure(log, tool, "Cannot read active spool setting", err)}
		}
		if !ok {
			return []Result{c.resolveFailure(log, tool, "No active spool set in Spoolman", nil)}
		}
		record, err := fetch(ctx, id)
		if err != nil {
			return []Result{c.resolveFailure(log, tool,
				fmt.Sprintf("Cannot fetch spool info for spool ID %d", id), err)}
		}
		agg = singleAggregate(record)
	} else {
		slot, mapped := sess.slotMap.ToolToSlot[tool]
		if !mapped {
			return []Result{{
				Rule: RuleResolve, Tool: tool, Passed: true, Skipped: true,
				Severity: SeverityWarning, Code: CodeMissingData,
				Message:  fmt.Sprintf("No slot mapped for tool T%d, skipping checks", tool),
			}}
		}
		agg = aggregateGroup(ctx, fetch, sess.slotMap, slot, log)
		if len(agg.Spools) == 0 {
			if agg.FetchFailures > 0 {
				return []Result{c.resolveFailure(log, tool,
					fmt.Sprintf("Cannot fetch spool info for tool T%d", tool), nil)}
			}
			return []Result{{
				Rule: RuleResolve, Tool: tool, Passed: true, Skipped: true,
				Severity: SeverityWarning, Code: CodeMissingData,
				Message:  fmt.Sprintf("No spool assigned for tool T%d, skipping checks", tool),
			}}
		}
	}

	subject := agg.subject()
	grouped := len(agg.Slots) > 1
	var results []Result

	if c.cfg.EnableWeightCheck {
		if required, present := requiredAt(md.Weights, tool); present {
			results = append(results,
				evaluateWeight(tool, subject, required, agg.Weight, c.cfg.WeightMarginGrams))
		} else {
			results = append(results, Result{
				Rule: RuleWeight, Tool: tool, Passed: true, Skipped: true,
				Severity: SeverityWarning, Code: CodeMissingData,
				Message:  fmt.Sprintf("No filament weight in file metadata for tool T%d, skipping weight check", tool),
			})
		}
	}
	if c.cfg.materialActive() {
		results = append(results, c.evaluateConsensus(RuleMaterial, tool, subject, "material",
			md.Materials, agg.Materials, c.cfg.MaterialMismatchSeverity, grouped))
	}
	if c.cfg.nameActive() {
		results = append(results, c.evaluateConsensus(RuleName, tool, subject, "filament name",
			md.Names, agg.Names, c.cfg.NameMismatchSeverity, grouped))
	}
	return results
}

// evaluateConsensus folds a group's distinct observed values into one and
// hands the comparison to evaluateMatch. Several distinct values make the
// group ambiguous and skip the rule; zero values in a real group fall to
// the configured policy for the material rule.
func (c *Checker) evaluateConsensus(rule Rule, tool int, subject, field string, requiredValues, observedValues []string, severity Severity, grouped bool) Result {
	required, _ := requiredAt(requiredValues, tool)

	observed, outcome := consensus(observedValues)
	switch outcome {
	case consensusAmbiguous:
		return Result{
			Rule: rule, Tool: tool, Passed: true, Skipped: true,
			Severity: SeverityInfo, Code: CodeMissingData,
			Message: fmt.Sprintf("%s is ambiguous across %s (%s), skipping %s check",
				titleFor(rule), subject, strings.Join(observedValues, ", "), field),
		}
	case consensusUndetermined:
		if grouped && rule == RuleMaterial && c.cfg.GroupMaterialPolicy == GroupMaterialCompliant {
			return Result{
				Rule: rule, Tool: tool, Passed: true, Severity: SeverityInfo,
				Message: fmt.Sprintf("%s carries no material data, treated as compliant by policy", subject),
			}
		}
		return evaluateMatch(rule, tool, subject, field, required, "", severity)
	}
	return evaluateMatch(rule, tool, subject, field, required, observed, severity)
}

// resolveFailure converts a failure to resolve a tool's record into a
// Result. When any enabled rule is mandatory the session cannot vouch for
// the job and the failure blocks; otherwise it degrades to a skip.
func (c *Checker) resolveFailure(log *slog.Logger, tool int, msg string, err error) Result {
	cerr := &CheckError{Code: CodeFetchFailed, Message: msg, Tool: tool, Err: err}
	if c.cfg.anyMandatoryRule() {
		log.Error("spool resolution failed", "tool", tool, "error", cerr)
		return Result{
			Rule: RuleResolve, Tool: tool, Severity: SeverityError,
			Code: CodeFetchFailed, Message: msg,
		}
	}
	log.Warn("spool resolution failed, skipping advisory checks", "tool", tool, "error", cerr)
	return Result{
		Rule: RuleResolve, Tool: tool, Passed: true, Skipped: true,
		Severity: SeverityWarning, Code: CodeFetchFailed,
		Message:  msg + ", skipping checks",
	}
}

func (c *Checker) activeSpoolID(ctx context.Context) (int, bool, error) {
	if c.deps.Settings == nil {
		return 0, false, nil
	}
	return c.deps.Settings.ActiveSpoolID(ctx)
}

// finish aggregates results into the verdict, reports it, and pauses the
// job on failure. Pause failures are logged, never propagated; the session
// still completes.
func (c *Checker) finish(ctx context.Context, sess *session, log *slog.Logger, outcome Outcome) Outcome {
	for _, r := range outcome.Results {
		log.Log(ctx, r.Severity.LogLevel(), r.Message,
			"rule", r.Rule, "tool", r.Tool, "passed", r.Passed, "skipped", r.Skipped)
		if r.Blocking() {
			sess.appendError(r.Message)
		}
	}
	outcome.Errors = sess.errors()

	if len(outcome.Errors) == 0 {
		outcome.Status = StatusPassed
		log.Info("all pre-print checks passed", "results", len(outcome.Results))
		c.report(ctx, "✓ All pre-print checks PASSED", SeverityInfo)
		if c.cfg.EnableWeightCheck {
			c.report(ctx, "   ✓ sufficient filament available", SeverityInfo)
		}
		if c.cfg.EnableMaterialCheck {
			c.report(ctx, "   ✓ material compliance check passed", SeverityInfo)
		}
		if c.cfg.EnableNameCheck {
			c.report(ctx, "   ✓ filament name compliance check passed", SeverityInfo)
		}
		return outcome
	}

	outcome.Status = StatusFailed
	log.Warn("pre-print checks failed", "errors", len(outcome.Errors))
	if c.deps.Pauser != nil {
		if err := c.deps.Pauser.PausePrint(ctx); err != nil {
			log.Error("failed to pause print", "error", err)
		} else {
			outcome.Paused = true
		}
	}
	c.report(ctx, strings.Join(outcome.Errors, ". "), SeverityError)
	return outcome
}

func (c *Checker) report(ctx context.Context, message string, severity Severity) {
	if c.deps.Reporter == nil {
		return
	}
	c.deps.Reporter.Report(ctx, message, severity)
}

// singleAggregate wraps a single-spool session's record in the group view
// so the rule plumbing has one shape in both modes.
func singleAggregate(record *spool.Spool) groupAggregate {
	agg := groupAggregate{
		Slots:  []int{0},
		Spools: []*spool.Spool{record},
		Weight: record.RemainingWeight,
	}
	if mat := record.Material(); mat != "" {
		agg.Materials = []string{strings.ToLower(mat)}
	}
	if name := record.Name(); name != "" {
		agg.Names = []string{name}
	}
	return agg
}

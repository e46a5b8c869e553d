package checks

// Rule identifies which evaluator produced a result.
type Rule string

const (
	RuleWeight   Rule = "weight"
	RuleMaterial Rule = "material"
	RuleName     Rule = "name"
	// RuleResolve covers failures to resolve a tool's inventory record at
	// all (no active spool, unassigned slot, fetch failure).
	RuleResolve Rule = "resolve"
	// RuleConfig covers session-fatal configuration mismatches.
	RuleConfig Rule = "config"
)

// Result is the outcome of one rule evaluation for one tool.
// Results are consumed immediately by the orchestrator; they are never
// persisted.
type Result struct {
	Rule     Rule        `json:"rule"`
	Tool     int         `json:"tool"`
	Passed   bool        `json:"passed"`
	Skipped  bool        `json:"skipped,omitempty"`
	Severity Severity    `json:"severity"`
	Code     FailureCode `json:"code,omitempty"`
	Message  string      `json:"message"`
}

// Blocking reports whether this result contributes to a failed verdict.
// Skipped results never block; neither do violations below error severity.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Skipped && r.Severity.Blocks()
}

// Status is the session verdict.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the aggregate of one check session.
type Outcome struct {
	Token    string   `json:"token"`
	Filename string   `json:"filename,omitempty"`
	Mode     Mode     `json:"mode,omitempty"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Results  []Result `json:"results,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Paused   bool     `json:"paused,omitempty"`
}

// Failed reports whether the session verdict blocks the job.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

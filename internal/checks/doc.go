// Package checks implements the pre-print compliance verification engine.
//
// One call to Checker.Run is one session: the checker resolves whether the
// job runs in single-spool or multi-tool mode, fetches the relevant inventory
// records through a per-session cache, evaluates the enabled weight, material
// and name rules against the job's metadata, aggregates the per-tool results
// into a verdict, reports it to the console sink and pauses the print on a
// blocking failure.
//
// Sessions own all mutable state. The Checker itself is immutable after
// construction, so overlapping sessions cannot corrupt each other.
//
// Failure policy: missing or optional data fails open (the rule is skipped
// with a warning), while explicit rule violations under error severity and
// unreachable inventory records for a mandatory rule fail closed. This keeps
// transient gaps from pausing prints while still blocking on real
// non-compliance.
package checks

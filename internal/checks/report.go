package checks

import (
	"fmt"
	"strings"
)

// Render formats an Outcome as the human-readable check report shown by the
// CLI. JSON output marshals the Outcome directly instead.
func Render(o Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", o.Token)
	if o.Filename != "" {
		fmt.Fprintf(&b, "File:    %s\n", o.Filename)
	}
	if o.Mode != "" {
		fmt.Fprintf(&b, "Mode:    %s\n", o.Mode)
	}
	fmt.Fprintf(&b, "Status:  %s\n", statusLine(o))

	if len(o.Results) > 0 {
		b.WriteString("\nChecks:\n")
		for _, r := range o.Results {
			fmt.Fprintf(&b, "  %-6s %s\n", marker(r), r.Message)
		}
	}

	if len(o.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, msg := range o.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}

	return b.String()
}

func statusLine(o Outcome) string {
	switch o.Status {
	case StatusPassed:
		return "PASSED"
	case StatusFailed:
		if o.Paused {
			return "FAILED (print paused)"
		}
		return "FAILED"
	default:
		if o.Reason != "" {
			return fmt.Sprintf("SKIPPED (%s)", o.Reason)
		}
		return "SKIPPED"
	}
}

func marker(r Result) string {
	switch {
	case r.Skipped:
		return "[skip]"
	case r.Passed:
		return "[pass]"
	case r.Blocking():
		return "[FAIL]"
	default:
		// A non-blocking violation: logged at its severity, job continues.
		return fmt.Sprintf("[%s]", r.Severity)
	}
}

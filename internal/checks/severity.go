package checks

import (
	"fmt"
	"log/slog"
)

// Severity is the policy level attached to a rule outcome. It is a closed
// enumeration; the only ordering that exists is the Blocks predicate.
type Severity string

const (
	// SeverityError blocks the job on violation.
	SeverityError Severity = "error"
	// SeverityWarning reports the violation without blocking.
	SeverityWarning Severity = "warning"
	// SeverityInfo notes the violation at info level.
	SeverityInfo Severity = "info"
	// SeverityIgnore disables the rule entirely; an ignored rule is never
	// evaluated and never requires a fetch.
	SeverityIgnore Severity = "ignore"
)

// ParseSeverity validates a configured severity string.
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(raw); s {
	case SeverityError, SeverityWarning, SeverityInfo, SeverityIgnore:
		return s, nil
	default:
		return "", fmt.Errorf("invalid severity %q (want error, warning, info or ignore)", raw)
	}
}

// Blocks reports whether a violation at this severity blocks the job.
// Only error blocks; warning and info are advisory, ignore never evaluates.
func (s Severity) Blocks() bool {
	return s == SeverityError
}

// LogLevel maps the severity onto an slog level for console/log mirroring.
func (s Severity) LogLevel() slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

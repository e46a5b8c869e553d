package checks

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// The evaluators are pure: given a required value from the job metadata and
// an observed value from the resolved inventory record (or group aggregate),
// each returns a Result and nothing else. Absent values skip the rule; a
// skip is a pass with a logged notice, never a failure.

// evaluateWeight checks that the observed remaining weight covers the
// required weight plus the configured margin. Violations always carry error
// severity; running out of filament mid-print is never advisory.
func evaluateWeight(tool int, subject string, required float64, observed *float64, margin float64) Result {
	if observed == nil {
		return Result{
			Rule: RuleWeight, Tool: tool, Passed: true, Skipped: true,
			Severity: SeverityWarning, Code: CodeMissingData,
			Message: fmt.Sprintf("%s has no remaining weight data, skipping weight check", subject),
		}
	}

	requiredWithMargin := required + margin
	if *observed >= requiredWithMargin {
		return Result{
			Rule: RuleWeight, Tool: tool, Passed: true, Severity: SeverityInfo,
			Message: fmt.Sprintf("Weight Check PASSED: %s has %.1fg, need %.1fg (+%.1fg margin)",
				subject, *observed, required, margin),
		}
	}

	deficit := requiredWithMargin - *observed
	return Result{
		Rule: RuleWeight, Tool: tool, Severity: SeverityError, Code: CodeRuleViolation,
		Message: fmt.Sprintf("Weight Check FAILED: %s has only %.1fg, need %.1fg (+%.1fg margin). SHORT BY %.1fg!",
			subject, *observed, required, margin, deficit),
	}
}

// evaluateMatch checks a string field (material or name) for case-insensitive
// equality. The configured severity decides whether a mismatch blocks.
func evaluateMatch(rule Rule, tool int, subject, field, required, observed string, severity Severity) Result {
	required = strings.TrimSpace(required)
	observed = strings.TrimSpace(observed)

	if required == "" {
		return Result{
			Rule: rule, Tool: tool, Passed: true, Skipped: true,
			Severity: SeverityInfo, Code: CodeMissingData,
			Message: fmt.Sprintf("No %s data in file metadata, skipping %s check", field, field),
		}
	}
	if observed == "" {
		return Result{
			Rule: rule, Tool: tool, Passed: true, Skipped: true,
			Severity: SeverityInfo, Code: CodeMissingData,
			Message: fmt.Sprintf("%s has no %s data, skipping %s check", subject, field, field),
		}
	}

	if foldEqual(required, observed) {
		return Result{
			Rule: rule, Tool: tool, Passed: true, Severity: SeverityInfo,
			Message: fmt.Sprintf("%s Check PASSED: %s %s '%s' matches", titleFor(rule), subject, field, observed),
		}
	}

	return Result{
		Rule: rule, Tool: tool, Severity: severity, Code: CodeRuleViolation,
		Message: fmt.Sprintf("%s Check FAILED: %s has %s `%s` but gcode expects `%s`",
			titleFor(rule), subject, field, observed, required),
	}
}

func titleFor(rule Rule) string {
	if rule == RuleName {
		return "Filament Name"
	}
	return "Material"
}

// foldEqual compares two strings case-insensitively after NFC normalization,
// so composed and decomposed spellings of the same name compare equal.
func foldEqual(a, b string) bool {
	return strings.EqualFold(norm.NFC.String(a), norm.NFC.String(b))
}

// requiredAt returns the metadata entry for a tool. The boolean return is
// false when the sequence is absent or has no entry for the tool, which
// skips the rule for that tool rather than failing it.
func requiredAt[T any](values []T, tool int) (T, bool) {
	var zero T
	if tool < 0 || tool >= len(values) {
		return zero, false
	}
	return values[tool], true
}

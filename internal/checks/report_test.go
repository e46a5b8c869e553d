package checks

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestRenderReport(t *testing.T) {
	g := goldie.New(t)

	t.Run("passed", func(t *testing.T) {
		outcome := Outcome{
			Token:    "0192e9c0-0000-7000-8000-000000000001",
			Filename: "benchy.gcode",
			Mode:     ModeSingle,
			Status:   StatusPassed,
			Results: []Result{
				{
					Rule: RuleWeight, Tool: 0, Passed: true, Severity: SeverityInfo,
					Message: "Weight Check PASSED: Spool 7 (Orange PLA) has 500.0g, need 80.0g (+5.0g margin)",
				},
				{
					Rule: RuleMaterial, Tool: 0, Passed: true, Severity: SeverityInfo,
					Message: "Material Check PASSED: Spool 7 (Orange PLA) material 'PLA' matches",
				},
			},
		}
		g.Assert(t, "report_passed", []byte(Render(outcome)))
	})

	t.Run("failed", func(t *testing.T) {
		outcome := Outcome{
			Token:    "0192e9c0-0000-7000-8000-000000000002",
			Filename: "two_color_cube.gcode",
			Mode:     ModeMultiTool,
			Status:   StatusFailed,
			Paused:   true,
			Results: []Result{
				{
					Rule: RuleWeight, Tool: 0, Severity: SeverityError, Code: CodeRuleViolation,
					Message: "Weight Check FAILED: Spool 10 (Black PETG) has only 5.0g, need 80.0g (+5.0g margin). SHORT BY 80.0g!",
				},
				{
					Rule: RuleMaterial, Tool: 0, Severity: SeverityWarning, Code: CodeRuleViolation,
					Message: "Material Check FAILED: Spool 10 (Black PETG) has material `PETG` but gcode expects `PLA`",
				},
				{
					Rule: RuleResolve, Tool: 1, Passed: true, Skipped: true,
					Severity: SeverityWarning, Code: CodeMissingData,
					Message:  "No spool assigned for tool T1, skipping checks",
				},
			},
			Errors: []string{
				"Weight Check FAILED: Spool 10 (Black PETG) has only 5.0g, need 80.0g (+5.0g margin). SHORT BY 80.0g!",
			},
		}
		g.Assert(t, "report_failed", []byte(Render(outcome)))
	})

	t.Run("skipped", func(t *testing.T) {
		outcome := Outcome{
			Token:  "0192e9c0-0000-7000-8000-000000000003",
			Status: StatusSkipped,
			Reason: "no current job filename",
		}
		g.Assert(t, "report_skipped", []byte(Render(outcome)))
	})
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spoolguard/spoolguard/internal/checks"
	"github.com/spoolguard/spoolguard/internal/settings"
	"github.com/spoolguard/spoolguard/internal/spool"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var spoolFlags []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the pre-print checks for the current job",
		Long: `Run the pre-print checks against the job currently loaded on the printer.

Without --spool the mode is resolved automatically: an enabled multi-material
unit selects multi-tool mode with its live gate map, otherwise the single
active Spoolman spool is checked. Each --spool TOOL=ID assignment forces
multi-tool mode with an explicit mapping.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, spoolFlags, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&spoolFlags, "spool", nil, "explicit TOOL=SPOOL_ID assignment (repeatable)")

	return cmd
}

func runCheck(opts *RootOptions, spoolFlags []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	explicit, err := parseSpoolFlags(spoolFlags)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --spool", err)
	}

	e, err := buildEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	outcome := e.checker.Run(ctx, explicit)

	// The session log is best effort; a full disk must not change the
	// verdict.
	if err := e.store.RecordSession(ctx, settings.SessionRecord{
		Token:    outcome.Token,
		Filename: outcome.Filename,
		Mode:     string(outcome.Mode),
		Status:   string(outcome.Status),
		Message:  strings.Join(outcome.Errors, ". "),
	}); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: record session: %v\n", err)
	}

	if err := formatter.Success(outcome, func(w io.Writer) {
		fmt.Fprint(w, checks.Render(outcome))
	}); err != nil {
		return err
	}

	if outcome.Failed() {
		return &ExitError{Code: ExitCheckFailed, Message: "pre-print checks failed"}
	}
	return nil
}

// parseSpoolFlags turns TOOL=SPOOL_ID assignments into an explicit mapping.
// Tool n is placed in slot n; grouping only exists on real multi-material
// maps.
func parseSpoolFlags(assignments []string) (*spool.ToolSlotMap, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	m := spool.ToolSlotMap{
		ToolToSlot:  make(map[int]int, len(assignments)),
		SlotToSpool: make(map[int]int, len(assignments)),
	}
	for _, a := range assignments {
		tool, id, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("assignment %q: want TOOL=SPOOL_ID", a)
		}
		toolNum, err := strconv.Atoi(strings.TrimSpace(tool))
		if err != nil || toolNum < 0 {
			return nil, fmt.Errorf("assignment %q: bad tool index", a)
		}
		spoolID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("assignment %q: bad spool id", a)
		}
		if _, dup := m.ToolToSlot[toolNum]; dup {
			return nil, fmt.Errorf("tool %d assigned twice", toolNum)
		}
		m.ToolToSlot[toolNum] = toolNum
		m.SlotToSpool[toolNum] = spoolID
	}
	return &m, nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recent check sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			e, err := buildEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := e.store.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "list sessions", err)
			}

			return formatter.Success(records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "No sessions recorded")
					return
				}
				for _, rec := range records {
					fmt.Fprintf(w, "%s  %-7s  %-12s  %s\n",
						rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Status, rec.Mode, rec.Filename)
					if rec.Message != "" {
						fmt.Fprintf(w, "    %s\n", rec.Message)
					}
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of sessions to list")

	return cmd
}

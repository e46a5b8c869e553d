package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spoolguard/spoolguard/internal/inventory"
	"github.com/spoolguard/spoolguard/internal/spool"
)

// NewSpoolCommand creates the spool command group.
func NewSpoolCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Show or set the active spool",
	}
	cmd.AddCommand(newSpoolShowCommand(rootOpts))
	cmd.AddCommand(newSpoolSetCommand(rootOpts))
	cmd.AddCommand(newSpoolClearCommand(rootOpts))
	return cmd
}

type activeSpool struct {
	ID     int          `json:"id"`
	Record *spool.Spool `json:"record,omitempty"`
}

func newSpoolShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the active spool and its inventory record",
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

			ctx := cmd.Context()
			id, set, err := e.store.ActiveSpoolID(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "read active spool", err)
			}
			if !set {
				return formatter.Success(nil, func(w io.Writer) {
					fmt.Fprintln(w, "No active spool set")
				})
			}

			active := activeSpool{ID: id}
			if e.inv != nil {
				record, err := e.inv.Spool(ctx, id)
				switch {
				case errors.Is(err, inventory.ErrNotFound):
					// Stale setting; still show the id.
				case err != nil:
					return WrapExitError(ExitCommandError, "fetch spool", err)
				default:
					active.Record = record
				}
			}

			return formatter.Success(active, func(w io.Writer) {
				fmt.Fprintf(w, "Active spool: %d\n", active.ID)
				if active.Record == nil {
					fmt.Fprintln(w, "  (no inventory record)")
					return
				}
				fmt.Fprintf(w, "  Name:     %s\n", orDash(active.Record.Name()))
				fmt.Fprintf(w, "  Material: %s\n", orDash(active.Record.Material()))
				if active.Record.RemainingWeight != nil {
					fmt.Fprintf(w, "  Remaining: %.1fg\n", *active.Record.RemainingWeight)
				}
			})
		},
	}
}

func newSpoolSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "set <spool-id>",
		Short:         "Set the active spool",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			id, err := strconv.Atoi(args[0])
			if err != nil || id < 0 {
				return WrapExitError(ExitCommandError, "set spool", fmt.Errorf("bad spool id %q", args[0]))
			}

			e, err := buildEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.SetActiveSpoolID(cmd.Context(), id); err != nil {
				return WrapExitError(ExitCommandError, "set spool", err)
			}
			return formatter.Success(activeSpool{ID: id}, func(w io.Writer) {
				fmt.Fprintf(w, "Active spool set to %d\n", id)
			})
		},
	}
}

func newSpoolClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Clear the active spool",
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

			if err := e.store.ClearActiveSpoolID(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "clear spool", err)
			}
			return formatter.Success(nil, func(w io.Writer) {
				fmt.Fprintln(w, "Active spool cleared")
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spoolguard/spoolguard/internal/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Validate the configuration file against the schema without touching the
printer or the inventory service.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.ConfigPath == "" {
		return WrapExitError(ExitCommandError, "validate", fmt.Errorf("no config file given, use --config"))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(err.Error())
		return &ExitError{Code: ExitCheckFailed, Message: "config invalid", Err: err}
	}

	return formatter.Success(cfg, func(w io.Writer) {
		fmt.Fprintf(w, "%s: config valid\n", opts.ConfigPath)
	})
}

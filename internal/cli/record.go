package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gustavo-meilus/flowgate/internal/archive"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RunOptions
	Keep bool // keep previously recorded traffic in the session
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RunOptions: &RunOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "record [cases-dir]",
		Short: "Run suites against live traffic and record it into the archive",
		Long: `Execute the suites exactly like run, forced into record mode: every
network exchange the pages make is captured into the archive session,
so later runs can replay it without touching the live application.

The session is purged before recording so stale traffic cannot shadow
fresh captures; pass --keep to append instead.

Exit codes:
  0 - All cases passed and traffic was recorded
  1 - One or more cases failed (their traffic is still recorded)
  2 - Command error (bad config, archive failure)

Examples:
  flowgate record --archive exchanges.db --session baseline
  flowgate record ./testdata/cases --session login-happy --keep`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRecord(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Flow, "flow", "", "record only suites for this flow")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "application root URL")
	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "exchange archive path")
	cmd.Flags().StringVar(&opts.Session, "session", "", "archive session id")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "number of cases running concurrently")
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "append to previously recorded traffic")

	return cmd
}

func executeRecord(opts *RecordOptions, args []string, cmd *cobra.Command) error {
	// The whole point of the command is the forced mode; a conflicting
	// config value is silently overridden rather than rejected.
	opts.Mode = string(archive.ModeRecord)

	cfg, err := resolveConfig(opts.RunOptions, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if !opts.Keep {
		arch, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open archive", err)
		}
		purgeErr := arch.PurgeSession(context.Background(), cfg.Session)
		if closeErr := arch.Close(); purgeErr == nil {
			purgeErr = closeErr
		}
		if purgeErr != nil {
			return WrapExitError(ExitCommandError, "failed to purge session", purgeErr)
		}
	}

	return executeSuites(opts.RunOptions, cfg, cmd)
}

package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gustavo-meilus/flowgate/internal/archive"
	"github.com/gustavo-meilus/flowgate/internal/chrome"
	"github.com/gustavo-meilus/flowgate/internal/config"
	"github.com/gustavo-meilus/flowgate/internal/flows"
	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/report"
	"github.com/gustavo-meilus/flowgate/internal/runner"
	"github.com/gustavo-meilus/flowgate/internal/testcase"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Flow        string // run only suites for this flow
	Mode        string // override configured traffic mode
	BaseURL     string // override configured base URL
	ArchivePath string // override configured archive path
	Session     string // override configured archive session
	Workers     int    // override configured worker count

	// Browser allows overriding the page source (for testing).
	// If nil, a Chrome browser is started from the configuration.
	Browser page.Browser

	// Identities allows overriding the fresh-identity generator (for
	// testing). If nil, defaults to flows.UniqueIdentity.
	Identities flows.IdentityGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [cases-dir]",
		Short: "Execute flow test suites against the application",
		Long: `Execute every test case suite under the cases directory.

Each case opens an isolated page, walks its flow's interaction steps
(navigate, fill, submit, verify), and is judged against the terminal
state the suite declares. Traffic is live unless the configured mode
records into or replays from an exchange archive.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (bad config, unreadable suites, browser failure)

Examples:
  flowgate run
  flowgate run ./testdata/cases --flow login
  flowgate run --mode replay --session baseline --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Flow, "flow", "", "run only suites for this flow")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "traffic mode (live, record, or replay)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "application root URL")
	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "exchange archive path")
	cmd.Flags().StringVar(&opts.Session, "session", "", "archive session id")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "number of cases running concurrently")

	return cmd
}

// resolveConfig loads configuration and applies flag overrides on top.
// Flag values beat file and environment values; empty flags leave the
// configured value alone.
func resolveConfig(opts *RunOptions, args []string) (*config.Config, error) {
	loader := config.NewLoader()

	var cfg *config.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = loader.LoadFromFile(opts.ConfigFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.CasesDir = args[0]
	}
	if opts.Mode != "" {
		cfg.Mode = opts.Mode
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.ArchivePath != "" {
		cfg.ArchivePath = opts.ArchivePath
	}
	if opts.Session != "" {
		cfg.Session = opts.Session
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func executeRun(opts *RunOptions, args []string, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return executeSuites(opts, cfg, cmd)
}

// executeSuites carries a fully resolved configuration through loading,
// browser setup, execution, and reporting. The record command reuses it
// with the mode forced.
func executeSuites(opts *RunOptions, cfg *config.Config, cmd *cobra.Command) error {
	log := newLogger(opts.Verbose, cmd.ErrOrStderr())
	mode, err := archive.ParseMode(cfg.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	suites, err := testcase.LoadDir(cfg.CasesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suites", err)
	}
	if opts.Flow != "" {
		filtered := suites[:0]
		for _, s := range suites {
			if s.Flow == opts.Flow {
				filtered = append(filtered, s)
			}
		}
		suites = filtered
	}
	if len(suites) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no suites found in %s", cfg.CasesDir))
	}

	// Interrupts cancel in-flight cases; already collected outcomes are
	// still reported.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var arch *archive.Archive
	if mode != archive.ModeLive {
		arch, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open archive", err)
		}
		defer arch.Close()

		if mode == archive.ModeRecord {
			err := arch.BeginSession(ctx, archive.Session{ID: cfg.Session, BaseURL: cfg.BaseURL})
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to begin session", err)
			}
		} else {
			n, err := arch.CountExchanges(ctx, cfg.Session)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read archive", err)
			}
			log.Info("replaying session", "session", cfg.Session, "exchanges", n)
		}
	}

	browser := opts.Browser
	if browser == nil {
		cb, err := chrome.NewBrowser(chrome.Options{
			Headless:   cfg.Headless,
			Navigation: cfg.Timeouts.Navigation,
			Action:     cfg.Timeouts.Action,
			Mode:       mode,
			Archive:    arch,
			Session:    cfg.Session,
			Log:        log,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to configure browser", err)
		}
		defer cb.Close()
		browser = cb
	}

	env := flows.Env{BaseURL: cfg.BaseURL, Waits: cfg.Waits(), Log: log}
	composer := flows.NewComposer(env, opts.Identities)
	run := runner.New(browser, composer, runner.Options{
		Workers:     cfg.Workers,
		CaseTimeout: cfg.Timeouts.Case,
		Log:         log,
	})

	started := time.Now()
	outcomes, err := run.Run(ctx, suites)
	if err != nil {
		return WrapExitError(ExitCommandError, "run aborted", err)
	}

	rep := report.New(mode, cfg.BaseURL, started, outcomes)

	if opts.Format == "json" {
		if err := rep.WriteJSON(cmd.OutOrStdout()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	} else {
		if err := rep.WriteText(cmd.OutOrStdout()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	}

	if !rep.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d cases failed", rep.Failed, rep.Total))
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string // explicit config file, "" discovers flowgate.yaml
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flowgate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flowgate",
		Short: "flowgate - browser flow conformance harness",
		Long: `flowgate validates login and registration flows of a web application
by executing guard/action/verify interaction steps against a live,
recorded, or replayed browser page, judged against per-flow state
machines.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text or json)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default flowgate.yaml in the working directory)")

	cmd.AddCommand(
		NewRunCommand(opts),
		NewRecordCommand(opts),
		NewValidateCommand(opts),
		NewExportCommand(opts),
	)

	return cmd
}

// isValidFormat checks if the format is valid.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the run logger. Verbose runs emit debug-level step
// diagnostics to w; quiet runs log nothing, keeping text and JSON
// report output clean.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

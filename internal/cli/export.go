package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gustavo-meilus/flowgate/internal/flows"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Notation string // "dot" | "mermaid"
	Out      string // output file, "" writes to stdout
}

// ValidNotations defines the allowed export notations.
var ValidNotations = []string{"dot", "mermaid"}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <flow>",
		Short: "Export a flow's state machine as a diagram",
		Long: `Render the named flow's state machine in Graphviz DOT or Mermaid
notation. The machine is the specification of the flow's legal states
and submission events; exporting it documents exactly which outcomes
the suites can declare.

Examples:
  flowgate export login
  flowgate export register --notation mermaid --out register.mmd`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Notation, "notation", "dot", "diagram notation (dot or mermaid)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, flowName string, cmd *cobra.Command) error {
	fl, err := flows.ByName(flowName)
	if err != nil {
		return WrapExitError(ExitCommandError, "unknown flow", err)
	}

	machine := fl.Machine()

	var data []byte
	switch opts.Notation {
	case "dot":
		data = machine.DOT()
	case "mermaid":
		data = machine.Mermaid()
	default:
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid notation %q: must be one of %v", opts.Notation, ValidNotations))
	}

	if opts.Out == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return WrapExitError(ExitCommandError, "failed to write diagram", err)
		}
		return nil
	}

	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write diagram file", err)
	}
	if opts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s diagram for %s to %s\n", opts.Notation, fl.Name, opts.Out)
	}
	return nil
}

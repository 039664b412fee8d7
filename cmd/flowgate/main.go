// Command flowgate runs browser-driven conformance suites for login
// and registration flows. See `flowgate --help` for the command
// surface.
package main

import (
	"fmt"
	"os"

	"github.com/gustavo-meilus/flowgate/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

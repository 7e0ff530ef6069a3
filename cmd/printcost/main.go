// Command printcost prices a 3D print described in a YAML job file without a
// database or a running server.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printshop/internal/logging"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"))

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "printcost",
		Short:        "3D print cost and pricing calculator",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(newCalcCmd())
	root.AddCommand(newParseTimeCmd())
	return root
}

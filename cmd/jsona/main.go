// Package main implements jsona, a thin command-line front end over the
// jsona and jsona/schema packages: parse, format, and validate JSONA
// documents from a file or stdin.
package main

import (
	"io"
	"os"

	"charm.land/log/v2"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "jsona",
		Short:         "Inspect, format, and validate JSONA documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newParseCmd(), newFormatCmd(), newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error("jsona failed", "err", err)
		os.Exit(1)
	}
}

// readInput reads args[0] as a file path, or stdin if no argument was
// given or the argument is "-".
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

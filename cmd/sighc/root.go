// Package sighc wires the cobra CLI for analyzing and running Sigh programs.
package sighc

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cdelzotti/sigh/internal/slogx"
)

// RootCmd is the sighc entry point: analyze or run a JSON-encoded program.
var RootCmd = &cobra.Command{
	Use:          "sighc [subcommand]",
	Short:        "sighc — Sigh semantic analyzer and interpreter",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var verbose *bool

func init() {
	verbose = RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log analysis/interp debug chatter")
	RootCmd.AddCommand(AnalyzeCmd)
	RootCmd.AddCommand(RunCmd)
}

func enableVerbose() {
	if verbose != nil && *verbose {
		slogx.EnableSection("analysis")
		slogx.EnableSection("interp")
	}
}

// Execute runs the root command; called from main.
func Execute() error {
	return RootCmd.Execute()
}

// readInput reads the target program: args[0], or stdin if args is empty or
// args[0] is "-".
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

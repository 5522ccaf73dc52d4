package sighc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdelzotti/sigh/analysis"
	"github.com/cdelzotti/sigh/interp"
)

// RunCmd analyzes a JSON-encoded program and, if it is error-free, runs it.
var RunCmd = &cobra.Command{
	Use:          "run [file.json|-]",
	Short:        "Analyze and run a JSON-encoded program",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	enableVerbose()
	data, err := readInput(args)
	if err != nil {
		return fmt.Errorf("could not read program: %w", err)
	}
	root, err := DecodeRoot(data)
	if err != nil {
		return fmt.Errorf("could not decode program: %w", err)
	}

	r, errs := analysis.Analyze(root)
	if errs.HasError() {
		cmd.Println(formatErrors(errs))
		return fmt.Errorf("analysis found %d error(s), not running", len(errs.Errors()))
	}

	_, err = interp.Interpret(r, root, interp.Options{
		Stdout:  cmd.OutOrStdout(),
		Context: cmd.Context(),
	})
	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

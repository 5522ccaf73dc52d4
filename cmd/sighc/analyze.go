package sighc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdelzotti/sigh/analysis"
	"github.com/cdelzotti/sigh/sigherr"
)

// AnalyzeCmd runs the semantic analyzer alone and reports the collected
// errors.
var AnalyzeCmd = &cobra.Command{
	Use:          "analyze [file.json|-]",
	Short:        "Run semantic analysis over a JSON-encoded program and report errors",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	enableVerbose()
	data, err := readInput(args)
	if err != nil {
		return fmt.Errorf("could not read program: %w", err)
	}
	root, err := DecodeRoot(data)
	if err != nil {
		return fmt.Errorf("could not decode program: %w", err)
	}

	_, errs := analysis.Analyze(root)
	if errs.HasError() {
		cmd.Println(formatErrors(errs))
		return fmt.Errorf("analysis found %d error(s)", len(errs.Errors()))
	}
	cmd.Println("no errors")
	return nil
}

func formatErrors(errs *sigherr.List) string {
	out := ""
	for _, e := range errs.Errors() {
		out += sigherr.FormatWithCode(e) + "\n"
	}
	return out
}

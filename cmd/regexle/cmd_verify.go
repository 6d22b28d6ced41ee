package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/report"
	"github.com/regexle/regexle/internal/verify"
)

var verifyFormat string

var verifyCmd = &cobra.Command{
	Use:   "verify [fixture...]",
	Short: "Run fixtures against their declared test patterns",
	Long: `Each fixture declares its own patterns in a header comment:

  // Test patterns: /fn\s+(\w+)/g, /struct\s+(\w+)/g, /enum\s+(\w+)/g

verify applies those patterns to the fixture and compares the captured
names against the recorded expectations in <fixture>.expect.yaml.
Exits non-zero on any mismatch. Fixtures without a sidecar just print
what was observed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "text", "output format: text, json, yaml, markdown")
}

func runVerify(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(verifyFormat)
	if err != nil {
		return err
	}

	failed := 0
	for _, fixture := range args {
		rep, err := verify.Fixture(fixture)
		if err != nil {
			return err
		}

		out, err := report.RenderVerify(rep, format)
		if err != nil {
			return err
		}
		fmt.Print(out)

		if !rep.Passed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed verification", failed, len(args))
	}
	return nil
}

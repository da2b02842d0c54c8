// ABOUTME: CLI command to detect circular reasoning
// ABOUTME: Reads "X because Y" statements and reports whether they form a cycle
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCircularCmd creates circular command
func NewCircularCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circular <statement>...",
		Short: "Detect circular reasoning in a chain of statements",
		Long: `Detect circular reasoning in a chain of statements.

Statements of the form "X because Y" link premise Y to conclusion X.
A premise also supports every statement whose subject it names, so
"A is true because B" followed by "B is true because A" is circular.

Examples:
  amb circular "A is true because B" "B is true because C" "C is true because A"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCircular,
	}

	return cmd
}

func runCircular(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	circular := p.handler.Checker().DetectCircularLogic(args)

	if jsonOutput() {
		return writeJSON(cmd, map[string]any{
			"circular":   circular,
			"statements": len(args),
		})
	}

	if circular {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ Circular reasoning detected across %d statement(s)\n", len(args))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ No circular reasoning in %d statement(s)\n", len(args))
	}
	return nil
}

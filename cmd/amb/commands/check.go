// ABOUTME: CLI command to check statements for logical consistency
// ABOUTME: Statements are checked in order against each other and known facts
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/amb/internal/models"
	"github.com/harper/amb/internal/util"
)

var (
	checkFacts map[string]string
)

// StatementCheck is the outcome for one statement
type StatementCheck struct {
	Statement      string   `json:"statement"`
	Consistent     bool     `json:"consistent"`
	Contradictions []string `json:"contradictions"`
}

// CheckReport is the printable outcome of a check run
type CheckReport struct {
	Statements []StatementCheck      `json:"statements"`
	Context    models.ContextSummary `json:"context"`
}

// NewCheckCmd creates check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <statement>...",
		Short: "Check statements for contradictions",
		Long: `Check statements for contradictions.

Each statement is compared with the statements accepted before it, with
the facts given via --fact, and with itself (yes/no, true/false and
similar pairs). Only consistent statements join the context window.

Examples:
  amb check "The sky is blue today" "The sky is not blue today"
  amb check --fact capital=Paris "The capital is not Paris"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().StringToStringVar(&checkFacts, "fact", nil, "Known facts as key=value (repeatable)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	checker := p.handler.Checker()
	for key, value := range checkFacts {
		checker.RegisterFact(key, value)
	}

	report := CheckReport{Statements: make([]StatementCheck, 0, len(args))}
	inconsistent := 0
	for _, statement := range args {
		consistent, contradictions := checker.CheckStatementConsistency(statement, nil)
		if contradictions == nil {
			contradictions = []string{}
		}
		if !consistent {
			inconsistent++
		}
		report.Statements = append(report.Statements, StatementCheck{
			Statement:      statement,
			Consistent:     consistent,
			Contradictions: contradictions,
		})
	}
	report.Context = checker.ContextSummary()

	if jsonOutput() {
		return writeJSON(cmd, report)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STATUS\tSTATEMENT\tCONTRADICTIONS\n")
	fmt.Fprintf(w, "------\t---------\t--------------\n")
	for _, check := range report.Statements {
		status := "ok"
		if !check.Consistent {
			status = "CONFLICT"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", status, util.Truncate(check.Statement, 50), len(check.Contradictions))
	}
	_ = w.Flush()

	for _, check := range report.Statements {
		for _, c := range check.Contradictions {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", c)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d statement(s), %d inconsistent, %d in context, %d fact(s)\n",
			len(report.Statements), inconsistent, report.Context.ContextSize, report.Context.FactsRegistered)
	}
	return nil
}

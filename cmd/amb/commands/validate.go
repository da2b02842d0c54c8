// ABOUTME: CLI command to validate a single data point
// ABOUTME: Scores confidence against a source and optionally checks bounds and format
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	validateSource    string
	validateReference string
	validateMin       float64
	validateMax       float64
	validatePattern   string
)

// ValidationOutcome is the printable outcome of a validate run
type ValidationOutcome struct {
	Valid        bool    `json:"valid"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason,omitempty"`
	WithinBounds *bool   `json:"within_bounds,omitempty"`
	PatternMatch *bool   `json:"pattern_match,omitempty"`
}

// NewValidateCmd creates validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <data>",
		Short: "Validate a data point against its source",
		Long: `Validate a data point against its source reference.

Confidence starts at 1.0 and is reduced for a missing source, for
suspicious patterns and for drift from registered reference content.
Optional numeric bounds and format patterns are checked separately and
make the data point invalid when they fail.

Examples:
  amb validate --source census "Population grew 4% in 2020"
  amb validate --source census --reference "Population grew 4%" "Population grew 40%"
  amb validate --source sensors --min 0 --max 100 42.5
  amb validate --source ids --pattern "[A-Z]{3}-\d+" ABC-123`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().StringVar(&validateSource, "source", "", "Source reference for the data point")
	cmd.Flags().StringVar(&validateReference, "reference", "", "Register reference content for the source before validating")
	cmd.Flags().Float64Var(&validateMin, "min", 0, "Lower numeric bound (requires --max)")
	cmd.Flags().Float64Var(&validateMax, "max", 0, "Upper numeric bound (requires --min)")
	cmd.Flags().StringVar(&validatePattern, "pattern", "", "Regular expression the data must match from the start")
	cmd.MarkFlagsRequiredTogether("min", "max")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	validator := p.handler.Validator()
	data := args[0]

	if validateReference != "" {
		validator.RegisterSourceData(validateSource, validateReference)
	}

	var outcome ValidationOutcome
	outcome.Valid, outcome.Confidence, outcome.Reason = validator.ValidateDataPoint(data, validateSource)

	if cmd.Flags().Changed("min") {
		within := validator.CheckNumericBounds(data, validateMin, validateMax)
		outcome.WithinBounds = &within
		if !within {
			outcome.Valid = false
			outcome.Reason = fmt.Sprintf("Value outside bounds [%g, %g]", validateMin, validateMax)
		}
	}

	if validatePattern != "" {
		match := validator.DetectPatternAnomaly(data, validatePattern)
		outcome.PatternMatch = &match
		if !match {
			outcome.Valid = false
			outcome.Reason = fmt.Sprintf("Value does not match pattern %q", validatePattern)
		}
	}

	if jsonOutput() {
		return writeJSON(cmd, outcome)
	}

	if outcome.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Valid (confidence %.2f)\n", outcome.Confidence)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ Invalid (confidence %.2f): %s\n", outcome.Confidence, outcome.Reason)
	}
	return nil
}

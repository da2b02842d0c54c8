// ABOUTME: CLI command to scan text for hallucinations
// ABOUTME: Runs the validation, logic and pattern detectors in order
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	detectSource string
	detectStrict bool
)

// DetectionResult is the printable outcome of a detect run
type DetectionResult struct {
	Detected   bool    `json:"hallucination_detected"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// NewDetectCmd creates detect command
func NewDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [content]",
		Short: "Check text for hallucinations",
		Long: `Check text for hallucinations.

Detectors run in order and the first positive result wins: data
validation against the source reference, logical consistency, then the
hallucination pattern table (self-reference, access limitations,
placeholders, speculation). Reads from stdin when no content is given.

Examples:
  amb detect --source docs "The API returns JSON"
  amb detect --strict --source docs < answer.txt
  amb --audit detect --source docs "As an AI language model I think..."`,
		Args: cobra.ArbitraryArgs,
		RunE: runDetect,
	}

	cmd.Flags().StringVar(&detectSource, "source", "", "Source reference the content claims to come from")
	cmd.Flags().BoolVar(&detectStrict, "strict", false, "Exit with an error when a hallucination is detected")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	content, err := textArg(cmd, args)
	if err != nil {
		return err
	}

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	var detectCtx map[string]any
	if detectSource != "" {
		detectCtx = map[string]any{"source": detectSource}
	}

	var result DetectionResult
	result.Detected, result.Confidence, result.Reason = p.handler.DetectHallucination(content, detectCtx)

	if jsonOutput() {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else if result.Detected {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ Hallucination detected (confidence %.2f): %s\n", result.Confidence, result.Reason)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ No hallucination detected (confidence %.2f)\n", result.Confidence)
	}

	if detectStrict && result.Detected {
		return fmt.Errorf("hallucination detected: %s", result.Reason)
	}
	return nil
}

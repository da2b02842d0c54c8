// ABOUTME: CLI command to benchmark a batch of requests and report pipeline metrics
// ABOUTME: Prints success and prevention rates alongside generator and validator stats
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/amb/internal/models"
)

var (
	metricsFile string
)

// MetricsReport combines the handler, generator and validator counters
type MetricsReport struct {
	Performance models.PerformanceReport `json:"performance"`
	Generation  models.GenerationStats   `json:"generation"`
	Validation  models.ValidationStats   `json:"validation"`
}

// NewMetricsCmd creates metrics command
func NewMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Run a request batch and report pipeline metrics",
		Long: `Run a batch of requests and report pipeline metrics.

Requests are read one JSON object per line and processed in order. Only
the aggregate counters are printed: success rate, hallucination
prevention rate, average response time and the most recent detections.

Examples:
  amb metrics --file requests.jsonl
  cat requests.jsonl | amb metrics --file - --format json`,
		RunE: runMetrics,
	}

	cmd.Flags().StringVar(&metricsFile, "file", "", "JSONL file of requests (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runMetrics(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, metricsFile)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	requests, err := readRequests(in)
	if err != nil {
		return err
	}

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	p.handler.BatchProcess(requests)

	report := MetricsReport{
		Performance: p.handler.PerformanceMetrics(),
		Generation:  p.handler.Generator().GenerationStats(),
		Validation:  p.handler.Validator().ValidationStats(),
	}

	if jsonOutput() {
		return writeJSON(cmd, report)
	}

	perf := report.Performance
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "METRIC\tVALUE\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Requests\t%d\n", perf.TotalRequests)
	fmt.Fprintf(w, "Successful\t%d\n", perf.SuccessfulRequests)
	fmt.Fprintf(w, "Failed\t%d\n", perf.FailedRequests)
	fmt.Fprintf(w, "Hallucinations prevented\t%d\n", perf.HallucinationsPrevented)
	fmt.Fprintf(w, "Success rate\t%.1f%%\n", perf.SuccessRate*100)
	fmt.Fprintf(w, "Prevention rate\t%.1f%%\n", perf.HallucinationPreventionRate*100)
	fmt.Fprintf(w, "Avg response time\t%.2fms\n", perf.AverageResponseTimeMs)
	fmt.Fprintf(w, "Drafts rejected\t%d\n", report.Generation.Rejected)
	fmt.Fprintf(w, "Validations\t%d (avg confidence %.2f)\n", report.Validation.TotalValidations, report.Validation.AverageConfidence)
	_ = w.Flush()

	if len(perf.RecentHallucinations) > 0 && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nRecent detections:\n")
		for _, entry := range perf.RecentHallucinations {
			fmt.Fprintf(cmd.OutOrStdout(), "  • [%s] %s (%s)\n", entry.DetectionType, entry.Reason, formatTime(entry.Timestamp))
		}
	}
	return nil
}

// ABOUTME: Benchmark runner - executes detection scenarios against fresh pipelines
// ABOUTME: Scores probes and generation requests, then exports JSON results

package detection

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/core"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/util"
	"go.uber.org/zap"
)

// BenchmarkRunner executes benchmark scenarios
type BenchmarkRunner struct {
	cfg      *config.Config
	provider llm.Provider
	logger   *zap.Logger
	out      io.Writer
	verbose  bool
}

// NewBenchmarkRunner creates a runner. A nil provider uses the placeholder,
// a nil out discards progress output.
func NewBenchmarkRunner(cfg *config.Config, provider llm.Provider, logger *zap.Logger, out io.Writer, verbose bool) (*BenchmarkRunner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		cfg:      cfg,
		provider: provider,
		logger:   logging.OrNop(logger),
		out:      out,
		verbose:  verbose,
	}, nil
}

func (r *BenchmarkRunner) newHandler() (*core.ModelHandler, error) {
	opts := []core.HandlerOption{core.WithLogger(r.logger)}
	if r.provider != nil {
		opts = append(opts, core.WithProvider(r.provider))
	}
	return core.NewModelHandler(r.cfg, opts...)
}

// RunScenario executes a single scenario against a fresh handler
func (r *BenchmarkRunner) RunScenario(scenario Scenario) (ScenarioResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	handler, err := r.newHandler()
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("setup failed: %w", err)
	}

	for key, value := range scenario.Setup.Facts {
		handler.RegisterFact(key, value)
	}
	for source, content := range scenario.Setup.Sources {
		handler.Validator().RegisterSourceData(source, content)
	}

	result := ScenarioResult{
		ScenarioID:   scenario.ID,
		ScenarioName: scenario.Name,
		Failures:     []string{},
	}

	var confusion Confusion
	misses := 0
	for i, probe := range scenario.Probes {
		detected, detectionType, reason := r.runProbe(handler, probe)
		confusion.Add(probe.ExpectDetected, detected)

		ok := detected == probe.ExpectDetected &&
			(!detected || probe.ExpectType == "" || probe.ExpectType == detectionType)
		if !ok {
			misses++
			result.Failures = append(result.Failures, fmt.Sprintf(
				"probe %d %q: detected=%v type=%q reason=%q, want detected=%v type=%q",
				i+1, util.Snippet(probe.Content, 40), detected, detectionType, reason, probe.ExpectDetected, probe.ExpectType))
		}
		if r.verbose {
			fmt.Fprintf(r.out, "  probe %d: detected=%v %s\n", i+1, detected, reason)
		}
	}

	faithfulness := 1.0
	if len(scenario.Requests) > 0 {
		total := 0.0
		for i, probe := range scenario.Requests {
			score, detail := r.runRequest(handler, probe)
			total += score
			if score < 1.0 {
				result.Failures = append(result.Failures, fmt.Sprintf("request %d: %s", i+1, detail))
			}
			if r.verbose {
				fmt.Fprintf(r.out, "  request %d: %.2f %s\n", i+1, score, detail)
			}
		}
		faithfulness = total / float64(len(scenario.Requests))
	}

	// a detection with the wrong type counts as a miss
	accuracy := 1.0
	if len(scenario.Probes) > 0 {
		accuracy = float64(len(scenario.Probes)-misses) / float64(len(scenario.Probes))
	}

	result.Accuracy = accuracy
	result.Precision = confusion.Precision()
	result.Recall = confusion.Recall()
	result.Faithfulness = faithfulness
	result.Status = "FAIL"
	if passed(accuracy, faithfulness) {
		result.Status = "PASS"
	}

	report := handler.PerformanceMetrics()
	result.Details = map[string]any{
		"confusion":                confusion,
		"detection_accuracy":       confusion.Accuracy(),
		"hallucinations_logged":    len(handler.HallucinationLog()),
		"hallucinations_prevented": report.HallucinationsPrevented,
		"requests_total":           report.TotalRequests,
		"requests_failed":          report.FailedRequests,
	}
	return result, nil
}

func (r *BenchmarkRunner) runProbe(handler *core.ModelHandler, probe Probe) (detected bool, detectionType, reason string) {
	var ctx map[string]any
	if probe.Source != "" {
		ctx = map[string]any{"source": probe.Source}
	}

	before := len(handler.HallucinationLog())
	detected, _, reason = handler.DetectHallucination(probe.Content, ctx)
	if log := handler.HallucinationLog(); detected && len(log) > before {
		detectionType = log[len(log)-1].DetectionType
	}
	return detected, detectionType, reason
}

func (r *BenchmarkRunner) runRequest(handler *core.ModelHandler, probe GenerationProbe) (float64, string) {
	resp := handler.ProcessRequest(probe.Request)

	if !probe.ExpectSuccess {
		if resp.Success {
			return 0.0, "request should have been refused"
		}
		return 1.0, fmt.Sprintf("refused as expected: %s", resp.Error)
	}

	if !resp.Success {
		return 0.0, fmt.Sprintf("request failed: %s %v", resp.Error, resp.ErrorDetails)
	}
	return CalculateFaithfulness(resp.Content, probe.ExpectedInResponse, probe.ForbiddenInResponse)
}

// RunAllScenarios executes every scenario in order
func (r *BenchmarkRunner) RunAllScenarios() ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(AllScenarios()))
	for _, scenario := range AllScenarios() {
		result, err := r.RunScenario(scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ExportResults exports scenario results to JSON
func (r *BenchmarkRunner) ExportResults(results []ScenarioResult, outputPath string) error {
	passedCount := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passedCount++
		}
	}

	summary := map[string]any{
		"timestamp":       time.Now().Format(time.RFC3339),
		"total_scenarios": len(results),
		"passed":          passedCount,
		"failed":          len(results) - passedCount,
		"results":         results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}

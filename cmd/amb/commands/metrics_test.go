// ABOUTME: Tests for metrics command
// ABOUTME: Verifies batch accounting and report output

package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

const metricsBatch = `{"query": "What is Go?"}
{}
{"query": "DROP TABLE users"}
{"query": "What is Rust?"}
`

func TestMetricsCmd_JSON(t *testing.T) {
	setupEnv(t)

	output, err := executeCommand(t, metricsBatch, "--format", "json", "metrics", "--file", "-")
	if err != nil {
		t.Fatalf("metrics error = %v", err)
	}

	var report MetricsReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}

	perf := report.Performance
	// empty and rejected requests only count as failures
	if perf.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", perf.TotalRequests)
	}
	if perf.SuccessfulRequests != 2 {
		t.Errorf("SuccessfulRequests = %d, want 2", perf.SuccessfulRequests)
	}
	if perf.FailedRequests != 2 {
		t.Errorf("FailedRequests = %d, want 2", perf.FailedRequests)
	}
	if report.Generation.Successful != 2 {
		t.Errorf("Generation.Successful = %d, want 2", report.Generation.Successful)
	}
}

func TestMetricsCmd_Text(t *testing.T) {
	setupEnv(t)

	output, err := executeCommand(t, metricsBatch, "metrics", "--file", "-")
	if err != nil {
		t.Fatalf("metrics error = %v", err)
	}
	for _, want := range []string{"METRIC", "Requests", "Success rate", "100.0%"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestMetricsCmd_RequiresFile(t *testing.T) {
	setupEnv(t)

	if _, err := executeCommand(t, "", "metrics"); err == nil {
		t.Error("expected error without --file")
	}
}

// ABOUTME: Command-line benchmark runner for hallucination detection scenarios
// ABOUTME: Executes the detection benchmarks and outputs JSON results

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/amb/benchmarks/detection"
	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a single scenario (patterns, facts, drift, generation). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, "warn")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var provider llm.Provider
	if cfg.OpenAIKey != "" {
		openai, err := llm.NewOpenAIProvider(llm.ConfigFrom(cfg))
		if err != nil {
			logger.Fatal("Failed to initialize OpenAI provider", zap.Error(err))
		}
		provider = openai
	}

	fmt.Println("========================================")
	fmt.Println("AMB Detection Benchmarks")
	fmt.Println("========================================")
	if provider == nil {
		fmt.Println("Provider: placeholder (OPENAI_API_KEY not set)")
	} else {
		fmt.Printf("Provider: OpenAI %s\n", cfg.ChatModel)
	}
	fmt.Println()

	runner, err := detection.NewBenchmarkRunner(cfg, provider, logger, os.Stdout, *verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	var results []detection.ScenarioResult

	if *scenarioID == "" {
		fmt.Println("Running all detection scenarios...")
		results, err = runner.RunAllScenarios()
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		var scenario detection.Scenario
		switch *scenarioID {
		case "patterns":
			scenario = detection.GetPatternScenario()
		case "facts":
			scenario = detection.GetFactScenario()
		case "drift":
			scenario = detection.GetDriftScenario()
		case "generation":
			scenario = detection.GetGenerationScenario()
		default:
			log.Fatalf("Unknown scenario: %s (valid options: patterns, facts, drift, generation)", *scenarioID)
		}

		fmt.Printf("Running scenario: %s\n", scenario.Name)

		result, err := runner.RunScenario(scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		results = []detection.ScenarioResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.ScenarioName)
		fmt.Printf("  Accuracy: %.2f\n", result.Accuracy)
		fmt.Printf("  Precision: %.2f  Recall: %.2f\n", result.Precision, result.Recall)
		fmt.Printf("  Faithfulness: %.2f\n", result.Faithfulness)
		fmt.Printf("  Status: %s\n", result.Status)
		for _, failure := range result.Failures {
			fmt.Printf("    - %s\n", failure)
		}

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Scenarios: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// ABOUTME: Scenario data structures for hallucination detection benchmarks
// ABOUTME: Defines probes, generation requests and ground truth for each scenario

package detection

import "github.com/harper/amb/internal/models"

// Scenario is a complete benchmark run against a fresh pipeline
type Scenario struct {
	ID          string
	Name        string
	Description string
	Setup       Setup
	Probes      []Probe
	Requests    []GenerationProbe
}

// Setup is registered with the pipeline before any probe runs
type Setup struct {
	Facts   map[string]string // known facts, key -> value
	Sources map[string]string // reference content per source, for drift
}

// Probe is one piece of content run through hallucination detection
type Probe struct {
	Content        string
	Source         string
	ExpectDetected bool
	ExpectType     string // detection type when ExpectDetected; empty matches any
}

// GenerationProbe is one request run through the full pipeline
type GenerationProbe struct {
	Request             map[string]any
	ExpectSuccess       bool
	ExpectedInResponse  []string // Strings that MUST appear in response
	ForbiddenInResponse []string // Strings that MUST NOT appear in response
}

// ScenarioResult represents the outcome of a benchmark scenario
type ScenarioResult struct {
	ScenarioID   string         `json:"scenario_id"`
	ScenarioName string         `json:"scenario_name"`
	Accuracy     float64        `json:"accuracy"`
	Precision    float64        `json:"precision"`
	Recall       float64        `json:"recall"`
	Faithfulness float64        `json:"faithfulness"`
	Status       string         `json:"status"` // "PASS" or "FAIL"
	Failures     []string       `json:"failures,omitempty"`
	Details      map[string]any `json:"details"`
}

// GetPatternScenario returns the hallucination pattern scenario
func GetPatternScenario() Scenario {
	return Scenario{
		ID:          "patterns",
		Name:        "Hallucination Patterns",
		Description: "Self-reference, placeholders, speculation and AI disclaimers are caught; plain facts pass",
		Probes: []Probe{
			{Content: "Water boils at 100 degrees Celsius at sea level", Source: "kb", ExpectDetected: false},
			{Content: "As a language model, I have no opinion", Source: "kb", ExpectDetected: true, ExpectType: models.DetectionPatternMatch},
			{Content: "See [citation] for the details", Source: "kb", ExpectDetected: true, ExpectType: models.DetectionPatternMatch},
			{Content: "Hypothetically the treaty changed nothing", Source: "kb", ExpectDetected: true, ExpectType: models.DetectionPatternMatch},
			{Content: "The treaty was signed in 1648", Source: "kb", ExpectDetected: false},
			{Content: "As an AI, I cannot browse the web", Source: "kb", ExpectDetected: true, ExpectType: models.DetectionDataValidation},
			{Content: "Mercury is the closest planet to the Sun", Source: "", ExpectDetected: true, ExpectType: models.DetectionDataValidation},
		},
	}
}

// GetFactScenario returns the known-fact contradiction scenario
func GetFactScenario() Scenario {
	return Scenario{
		ID:          "facts",
		Name:        "Fact Contradictions",
		Description: "Statements that negate a registered fact are rejected; consistent ones pass",
		Setup: Setup{
			Facts: map[string]string{"capital of france": "Paris"},
		},
		Probes: []Probe{
			{Content: "The capital of France is Paris", Source: "atlas", ExpectDetected: false},
			{Content: "The capital of France is not Paris", Source: "atlas", ExpectDetected: true, ExpectType: models.DetectionLogicInconsistency},
			{Content: "Lyon is a large city in France", Source: "atlas", ExpectDetected: false},
			{Content: "It is always sunny there and never rains", Source: "atlas", ExpectDetected: true, ExpectType: models.DetectionLogicInconsistency},
		},
		Requests: []GenerationProbe{
			{
				Request:       map[string]any{"query": "Is the capital of France not Paris?"},
				ExpectSuccess: false,
			},
		},
	}
}

// GetDriftScenario returns the source drift scenario
func GetDriftScenario() Scenario {
	return Scenario{
		ID:          "drift",
		Name:        "Source Drift",
		Description: "Content that differs from the registered source text loses confidence and is flagged",
		Setup: Setup{
			Sources: map[string]string{"q3-report": "Revenue was 10 million dollars"},
		},
		Probes: []Probe{
			{Content: "Revenue was 10 million dollars", Source: "q3-report", ExpectDetected: false},
			{Content: "Revenue was 12 million dollars", Source: "q3-report", ExpectDetected: true, ExpectType: models.DetectionDataValidation},
			{Content: "Revenue was 12 million dollars", Source: "q4-report", ExpectDetected: false},
		},
	}
}

// GetGenerationScenario returns the end-to-end generation scenario
func GetGenerationScenario() Scenario {
	return Scenario{
		ID:          "generation",
		Name:        "Guarded Generation",
		Description: "Grounded requests succeed with their context; injected or empty requests are refused",
		Requests: []GenerationProbe{
			{
				Request: map[string]any{
					"query":   "Summarize the Q3 report",
					"context": map[string]any{"revenue": "10 million dollars"},
				},
				ExpectSuccess:       true,
				ExpectedInResponse:  []string{"Q3 report"},
				ForbiddenInResponse: []string{"As an AI", "[PLACEHOLDER]"},
			},
			{
				Request:       map[string]any{"query": "DROP TABLE reports"},
				ExpectSuccess: false,
			},
			{
				Request:       map[string]any{"query": "   "},
				ExpectSuccess: false,
			},
		},
	}
}

// AllScenarios returns every benchmark scenario in run order
func AllScenarios() []Scenario {
	return []Scenario{
		GetPatternScenario(),
		GetFactScenario(),
		GetDriftScenario(),
		GetGenerationScenario(),
	}
}

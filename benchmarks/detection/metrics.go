// ABOUTME: Benchmark metrics for detection quality and response faithfulness
// ABOUTME: Deterministic scoring against each scenario's ground truth

package detection

import (
	"fmt"
	"strings"
)

// Confusion counts detection outcomes, with "hallucination detected" as positive
type Confusion struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Add records one probe outcome
func (c *Confusion) Add(expected, detected bool) {
	switch {
	case expected && detected:
		c.TruePositives++
	case !expected && detected:
		c.FalsePositives++
	case !expected && !detected:
		c.TrueNegatives++
	default:
		c.FalseNegatives++
	}
}

// Total returns the number of recorded outcomes
func (c Confusion) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Accuracy is the share of correct outcomes, 1.0 when nothing was recorded
func (c Confusion) Accuracy() float64 {
	if c.Total() == 0 {
		return 1.0
	}
	return float64(c.TruePositives+c.TrueNegatives) / float64(c.Total())
}

// Precision is the share of detections that were expected, 1.0 without detections
func (c Confusion) Precision() float64 {
	if c.TruePositives+c.FalsePositives == 0 {
		return 1.0
	}
	return float64(c.TruePositives) / float64(c.TruePositives+c.FalsePositives)
}

// Recall is the share of expected detections that fired, 1.0 without positives
func (c Confusion) Recall() float64 {
	if c.TruePositives+c.FalseNegatives == 0 {
		return 1.0
	}
	return float64(c.TruePositives) / float64(c.TruePositives+c.FalseNegatives)
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0).
// A perfect score requires every expected item and no forbidden item.
func CalculateFaithfulness(
	response string,
	expectedInResponse []string,
	forbiddenInResponse []string,
) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingItems := []string{}
	for _, expected := range expectedInResponse {
		if !strings.Contains(responseUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingItems) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Perfect faithfulness - response matches expected ground truth"
	case len(missingItems) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	case len(missingItems) > 0:
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	default:
		return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
	}
}

// passed applies the release bar: at least 0.9 on both accuracy and faithfulness
func passed(accuracy, faithfulness float64) bool {
	return accuracy >= 0.9 && faithfulness >= 0.9
}

// ABOUTME: Validation records, batch results and logic check results
// ABOUTME: Shared by the data validator and logic checker
package models

import "time"

// ValidationRecord is one entry in a validator's audit history
type ValidationRecord struct {
	DataHash   string    `json:"data_hash"`
	Source     string    `json:"source"`
	Valid      bool      `json:"valid"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ValidationStats aggregates a validator's retained history
type ValidationStats struct {
	TotalValidations  int     `json:"total_validations"`
	ValidCount        int     `json:"valid_count"`
	InvalidCount      int     `json:"invalid_count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// BatchItem is one data point submitted for batch validation
type BatchItem struct {
	Data   any    `json:"data"`
	Source string `json:"source"`
}

// BatchEntry is the per-item outcome of batch validation
type BatchEntry struct {
	Data       any     `json:"data"`
	Source     string  `json:"source"`
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// BatchResult summarizes a batch validation run in input order
type BatchResult struct {
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
	Results []BatchEntry `json:"results"`
}

// LogicResult is the outcome of a whole-response logic check
type LogicResult struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	ConsistencyScore float64  `json:"consistency_score"`
}

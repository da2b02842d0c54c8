// ABOUTME: Hallucination audit log entries and handler performance reports
// ABOUTME: Entries are capped in memory and optionally mirrored to an audit sink
package models

import "time"

// Detection types recorded in the hallucination log
const (
	DetectionDataValidation     = "data_validation"
	DetectionLogicInconsistency = "logic_inconsistency"
	DetectionPatternMatch       = "pattern_match"
)

// HallucinationLogEntry records a single positive detection
type HallucinationLogEntry struct {
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	ContentSnippet string    `json:"content_snippet" yaml:"content_snippet"`
	DetectionType  string    `json:"detection_type" yaml:"detection_type"`
	Reason         string    `json:"reason" yaml:"reason"`
}

// PerformanceReport exposes handler counters and derived rates
type PerformanceReport struct {
	TotalRequests               int                     `json:"total_requests"`
	SuccessfulRequests          int                     `json:"successful_requests"`
	FailedRequests              int                     `json:"failed_requests"`
	HallucinationsPrevented     int                     `json:"hallucinations_prevented"`
	AverageResponseTimeMs       float64                 `json:"average_response_time_ms"`
	SuccessRate                 float64                 `json:"success_rate"`
	HallucinationPreventionRate float64                 `json:"hallucination_prevention_rate"`
	RecentHallucinations        []HallucinationLogEntry `json:"recent_hallucinations"`
}

// GenerationStats exposes response generator counters
type GenerationStats struct {
	TotalRequests int     `json:"total_requests"`
	Successful    int     `json:"successful"`
	Rejected      int     `json:"rejected"`
	SuccessRate   float64 `json:"success_rate"`
	RejectionRate float64 `json:"rejection_rate"`
}

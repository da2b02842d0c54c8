// ABOUTME: Response, DataPoint and Draft structures for the generation pipeline
// ABOUTME: Draft is provider output; Response is what callers receive
package models

import "time"

// DataPoint is a single supporting datum attached to a response.
// Percentage and Count are optional numeric attributes checked for plausibility.
type DataPoint struct {
	Key        string    `json:"key"`
	Value      any       `json:"value"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	Percentage *float64  `json:"percentage,omitempty"`
	Count      *float64  `json:"count,omitempty"`
}

// Draft is an unvalidated response produced by a content provider
type Draft struct {
	Content  string         `json:"content"`
	Data     []DataPoint    `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IsEmpty reports whether the draft carries nothing at all
func (d *Draft) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Content == "" && d.Data == nil && d.Metadata == nil
}

// PreventionInfo describes the hallucination checks applied to a response
type PreventionInfo struct {
	Enabled             bool     `json:"enabled"`
	ConfidenceThreshold float64  `json:"confidence_threshold"`
	ChecksPerformed     []string `json:"checks_performed"`
}

// Response is the outcome of a generation request.
// A response with Success=false always carries a non-empty Error.
type Response struct {
	Success                 bool            `json:"success"`
	RequestID               string          `json:"request_id,omitempty"`
	Content                 string          `json:"content"`
	Data                    []DataPoint     `json:"data"`
	Confidence              float64         `json:"confidence"`
	Error                   string          `json:"error,omitempty"`
	ErrorDetails            []string        `json:"error_details,omitempty"`
	Metadata                map[string]any  `json:"metadata"`
	HallucinationPrevention *PreventionInfo `json:"hallucination_prevention,omitempty"`
}

// NewErrorResponse builds a failed response with a timestamped metadata block
func NewErrorResponse(message string, details []string) *Response {
	if details == nil {
		details = []string{}
	}
	return &Response{
		Success:      false,
		Content:      "",
		Data:         []DataPoint{},
		Confidence:   0.0,
		Error:        message,
		ErrorDetails: details,
		Metadata: map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

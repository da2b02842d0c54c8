// ABOUTME: Request is the validated form of an inbound query
// ABOUTME: Built by handler preprocessing and consumed once by the generator
package models

import "time"

// Request represents a query with optional context and metadata
type Request struct {
	Query     string         `json:"query"`
	Context   map[string]any `json:"context,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// IsEmpty reports whether the request carries nothing at all.
// A non-nil but empty context still counts as content.
func (r *Request) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Query == "" && r.Context == nil && r.Metadata == nil && r.Timestamp.IsZero()
}

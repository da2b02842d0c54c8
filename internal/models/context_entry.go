// ABOUTME: ContextEntry is one admitted statement in a session's context window
// ABOUTME: Only statements with no detected contradictions are stored
package models

import "time"

// ContextEntry represents a statement retained for consistency checking
type ContextEntry struct {
	Statement string         `json:"statement"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// ContextSummary describes the current state of a session's context window
type ContextSummary struct {
	ContextSize     int        `json:"context_size"`
	MaxContext      int        `json:"max_context"`
	FactsRegistered int        `json:"facts_registered"`
	OldestContext   *time.Time `json:"oldest_context"`
	NewestContext   *time.Time `json:"newest_context"`
}

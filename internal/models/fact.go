// ABOUTME: Fact represents a key-value assertion registered for a session
// ABOUTME: Statements mentioning the key are checked against the stored value
package models

import (
	"errors"
	"strings"
	"time"
)

// Fact is a registered key-value assertion. Last write wins per key.
type Fact struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFact creates a new Fact with validation
func NewFact(key string, value any) (*Fact, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("fact key cannot be empty")
	}
	return &Fact{
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}, nil
}

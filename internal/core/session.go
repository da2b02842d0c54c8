// ABOUTME: Session owns the mutable memory of one validator/checker pair
// ABOUTME: Holds the context FIFO, the fact table and the per-source content hash cache
package core

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/harper/amb/internal/models"
)

// Session is the state that survives across calls within one pipeline instance.
// Drift detection and fact contradiction checks both depend on it.
//
// A Session has a single writer and no internal locking. Callers that share a
// component across goroutines must serialize access themselves.
type Session struct {
	window  int
	context []models.ContextEntry
	facts   map[string]models.Fact
	// insertion order of fact keys; overwrites keep their original position
	factOrder []string
	hashes    map[string]string
}

// NewSession creates an empty session with the given context capacity
func NewSession(contextWindow int) (*Session, error) {
	if contextWindow <= 0 {
		return nil, fmt.Errorf("%w: context window must be positive, got %d", ErrConfiguration, contextWindow)
	}
	return &Session{
		window:  contextWindow,
		context: make([]models.ContextEntry, 0, contextWindow),
		facts:   make(map[string]models.Fact),
		hashes:  make(map[string]string),
	}, nil
}

// ContextWindow returns the maximum number of retained statements
func (s *Session) ContextWindow() int {
	return s.window
}

// Context returns a copy of the retained statements, oldest first
func (s *Session) Context() []models.ContextEntry {
	out := make([]models.ContextEntry, len(s.context))
	copy(out, s.context)
	return out
}

// admit appends a statement, evicting the oldest when full
func (s *Session) admit(statement string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	entry := models.ContextEntry{
		Statement: statement,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	if len(s.context) == s.window {
		copy(s.context, s.context[1:])
		s.context[len(s.context)-1] = entry
		return
	}
	s.context = append(s.context, entry)
}

// setFact stores or overwrites a fact
func (s *Session) setFact(fact *models.Fact) {
	if _, exists := s.facts[fact.Key]; !exists {
		s.factOrder = append(s.factOrder, fact.Key)
	}
	s.facts[fact.Key] = *fact
}

// Facts returns registered facts in first-registration order
func (s *Session) Facts() []models.Fact {
	out := make([]models.Fact, 0, len(s.factOrder))
	for _, key := range s.factOrder {
		out = append(out, s.facts[key])
	}
	return out
}

// FactCount returns the number of registered facts
func (s *Session) FactCount() int {
	return len(s.facts)
}

// cachedHash returns the reference content hash recorded for a source
func (s *Session) cachedHash(source string) (string, bool) {
	h, ok := s.hashes[source]
	return h, ok
}

// cacheHash records the reference content hash for a source
func (s *Session) cacheHash(source, hash string) {
	s.hashes[source] = hash
}

// contentHash returns the hex xxhash of stringified content
func contentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

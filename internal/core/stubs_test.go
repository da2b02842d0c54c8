// ABOUTME: Test doubles for providers, metrics recorders and audit sinks
// ABOUTME: Shared by generator and handler tests

package core

import (
	"errors"
	"time"

	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/models"
)

// stubProvider returns scripted drafts in order, repeating the last one
type stubProvider struct {
	contents  []string
	data      []models.DataPoint
	err       error
	panicWith any
	calls     []*llm.Constraints
}

func (s *stubProvider) Draft(query string, context map[string]any, constraints *llm.Constraints) (*models.Draft, error) {
	s.calls = append(s.calls, constraints)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.calls) - 1
	if i >= len(s.contents) {
		i = len(s.contents) - 1
	}
	data := make([]models.DataPoint, len(s.data))
	copy(data, s.data)
	return &models.Draft{Content: s.contents[i], Data: data}, nil
}

type recordedRequest struct {
	outcome string
	elapsed time.Duration
}

type fakeRecorder struct {
	requests       []recordedRequest
	hallucinations []string
}

func (f *fakeRecorder) ObserveRequest(outcome string, elapsed time.Duration) {
	f.requests = append(f.requests, recordedRequest{outcome, elapsed})
}

func (f *fakeRecorder) ObserveHallucination(detectionType string) {
	f.hallucinations = append(f.hallucinations, detectionType)
}

type fakeSink struct {
	entries []models.HallucinationLogEntry
	fail    bool
}

func (f *fakeSink) RecordHallucination(entry models.HallucinationLogEntry) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.entries = append(f.entries, entry)
	return nil
}

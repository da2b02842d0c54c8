// ABOUTME: Tests for AuditStore persistence
// ABOUTME: Verifies recording, ordering, filtering and per-type counts
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/amb/internal/models"
)

func newTestStore(t *testing.T) *AuditStore {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	store := NewAuditStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *AuditStore) time.Time {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.HallucinationLogEntry{
		{Timestamp: base, DetectionType: models.DetectionDataValidation, Reason: "Missing source reference", ContentSnippet: "first"},
		{Timestamp: base.Add(time.Minute), DetectionType: models.DetectionPatternMatch, Reason: "Placeholder pattern", ContentSnippet: "second [x]"},
		{Timestamp: base.Add(2 * time.Minute), DetectionType: models.DetectionPatternMatch, Reason: "Speculative language pattern", ContentSnippet: "third"},
	}
	for _, e := range entries {
		if err := store.RecordHallucination(e); err != nil {
			t.Fatalf("RecordHallucination() error = %v", err)
		}
	}
	return base
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	base := seed(t, store)

	entries, err := store.List(0, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	if entries[0].ContentSnippet != "third" {
		t.Errorf("entries[0] = %q, want newest first", entries[0].ContentSnippet)
	}
	if !entries[2].Timestamp.Equal(base) {
		t.Errorf("entries[2].Timestamp = %v, want %v", entries[2].Timestamp, base)
	}
	if entries[1].Reason != "Placeholder pattern" {
		t.Errorf("entries[1].Reason = %q", entries[1].Reason)
	}
}

func TestListLimitAndFilter(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	limited, err := store.List(1, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(1) returned %d entries, want 1", len(limited))
	}

	patterns, err := store.List(0, models.DetectionPatternMatch)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(patterns) != 2 {
		t.Errorf("List(pattern_match) returned %d entries, want 2", len(patterns))
	}
	for _, e := range patterns {
		if e.DetectionType != models.DetectionPatternMatch {
			t.Errorf("unexpected detection type %q", e.DetectionType)
		}
	}
}

func TestListEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(10, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", entries)
	}
}

func TestRecordZeroTimestamp(t *testing.T) {
	store := newTestStore(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := store.RecordHallucination(models.HallucinationLogEntry{DetectionType: "pattern_match", Reason: "r"}); err != nil {
		t.Fatalf("RecordHallucination() error = %v", err)
	}

	entries, _ := store.List(1, "")
	if len(entries) != 1 || entries[0].Timestamp.Before(before) {
		t.Errorf("zero timestamp should be replaced with now, got %+v", entries)
	}
}

func TestCountByType(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	counts, err := store.CountByType()
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if counts[models.DetectionPatternMatch] != 2 || counts[models.DetectionDataValidation] != 1 {
		t.Errorf("CountByType() = %v", counts)
	}
}

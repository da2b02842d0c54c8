// ABOUTME: AuditStore persists hallucination detections to SQLite
// ABOUTME: Write-only from the pipeline's point of view; read back by the audit command
package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/amb/internal/models"
)

// AuditStore handles hallucination log persistence
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// OpenAuditStore opens the database at path, or the default path when empty
func OpenAuditStore(path string) (*AuditStore, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewAuditStore(db), nil
}

// Close closes the underlying database
func (s *AuditStore) Close() error {
	return s.db.Close()
}

// RecordHallucination appends one detection to the log
func (s *AuditStore) RecordHallucination(entry models.HallucinationLogEntry) error {
	detectedAt := entry.Timestamp
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO hallucinations (id, detected_at, detection_type, reason, content_snippet)
		VALUES (?, ?, ?, ?, ?)
	`, "hal_"+uuid.New().String(), detectedAt.UTC(), entry.DetectionType, entry.Reason, entry.ContentSnippet)
	if err != nil {
		return fmt.Errorf("failed to record hallucination: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
// A non-empty detectionType filters by detector.
func (s *AuditStore) List(limit int, detectionType string) ([]models.HallucinationLogEntry, error) {
	query := `SELECT detected_at, detection_type, reason, content_snippet FROM hallucinations`
	var args []any
	if detectionType != "" {
		query += ` WHERE detection_type = ?`
		args = append(args, detectionType)
	}
	query += ` ORDER BY detected_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hallucinations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []models.HallucinationLogEntry{}
	for rows.Next() {
		var e models.HallucinationLogEntry
		if err := rows.Scan(&e.Timestamp, &e.DetectionType, &e.Reason, &e.ContentSnippet); err != nil {
			return nil, fmt.Errorf("failed to scan hallucination: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByType returns the number of recorded detections per detection type
func (s *AuditStore) CountByType() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT detection_type, COUNT(*)
		FROM hallucinations
		GROUP BY detection_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count hallucinations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			detectionType string
			n             int
		)
		if err := rows.Scan(&detectionType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[detectionType] = n
	}
	return counts, rows.Err()
}

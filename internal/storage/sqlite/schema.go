// ABOUTME: SQLite schema for the hallucination audit log
// ABOUTME: One append-only table indexed by time and detection type
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS hallucinations (
    id TEXT PRIMARY KEY,
    detected_at DATETIME NOT NULL,
    detection_type TEXT NOT NULL,
    reason TEXT NOT NULL,
    content_snippet TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hallucinations_detected_at ON hallucinations(detected_at);
CREATE INDEX IF NOT EXISTS idx_hallucinations_type ON hallucinations(detection_type);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

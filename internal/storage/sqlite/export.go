// ABOUTME: Export functionality for the hallucination audit log
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/harper/amb/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable audit log
type ExportData struct {
	Version        string                         `yaml:"version" json:"version"`
	ExportedAt     string                         `yaml:"exported_at" json:"exported_at"`
	Tool           string                         `yaml:"tool" json:"tool"`
	Counts         map[string]int                 `yaml:"counts" json:"counts"`
	Hallucinations []models.HallucinationLogEntry `yaml:"hallucinations" json:"hallucinations"`
}

// Export collects every recorded detection, newest first
func (s *AuditStore) Export() (*ExportData, error) {
	entries, err := s.List(0, "")
	if err != nil {
		return nil, err
	}
	counts, err := s.CountByType()
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:        "1.0",
		ExportedAt:     time.Now().Format(time.RFC3339),
		Tool:           "amb",
		Counts:         counts,
		Hallucinations: entries,
	}, nil
}

// WriteYAML writes the export as YAML
func (s *AuditStore) WriteYAML(w io.Writer) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteMarkdown writes the export as a Markdown report
func (s *AuditStore) WriteMarkdown(w io.Writer) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "# Hallucination Audit - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Counts) > 0 {
		types := make([]string, 0, len(data.Counts))
		for t := range data.Counts {
			types = append(types, t)
		}
		sort.Strings(types)

		_, _ = fmt.Fprintln(w, "## Detections by Type")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "| Type | Count |")
		_, _ = fmt.Fprintln(w, "|------|-------|")
		for _, t := range types {
			_, _ = fmt.Fprintf(w, "| %s | %d |\n", t, data.Counts[t])
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Hallucinations) > 0 {
		_, _ = fmt.Fprintln(w, "## Detections")
		_, _ = fmt.Fprintln(w)
		for _, e := range data.Hallucinations {
			_, _ = fmt.Fprintf(w, "- **%s** `%s`: %s\n", e.Timestamp.Format(time.RFC3339), e.DetectionType, e.Reason)
			_, _ = fmt.Fprintf(w, "  > %s\n", e.ContentSnippet)
		}
	}

	return nil
}

// ExportToFile writes the export to outputPath in the given format ("yaml" or "markdown")
func (s *AuditStore) ExportToFile(outputPath, format string) error {
	var write func(io.Writer) error
	switch format {
	case "yaml", "yml", "":
		write = s.WriteYAML
	case "markdown", "md":
		write = s.WriteMarkdown
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

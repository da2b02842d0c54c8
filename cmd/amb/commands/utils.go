// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Input reading, JSON output and response formatting
package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harper/amb/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// maxLineBytes bounds a single JSONL request line
const maxLineBytes = 1024 * 1024

// jsonOutput reports whether results should be printed as JSON
func jsonOutput() bool {
	return outputFormat == "json"
}

// writeJSON prints v as indented JSON on the command's stdout
func writeJSON(cmd *cobra.Command, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	return nil
}

// textArg returns the joined positional args, or stdin when there are none
func textArg(cmd *cobra.Command, args []string) (string, error) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}

// readMapFile reads a JSON or YAML mapping from path
func readMapFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return values, nil
}

// readRequests reads one JSON request object per line, skipping blank lines
func readRequests(r io.Reader) ([]map[string]any, error) {
	var requests []map[string]any

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		requests = append(requests, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}
	return requests, nil
}

// openInput opens path for reading, with "-" meaning stdin
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// printResponse writes a human-readable rendering of resp
func printResponse(w io.Writer, resp *models.Response) {
	if resp.Success {
		fmt.Fprintf(w, "✓ %s (confidence %.2f)\n", resp.RequestID, resp.Confidence)
		fmt.Fprintf(w, "%s\n", resp.Content)
		for _, point := range resp.Data {
			fmt.Fprintf(w, "  • %s = %v [%s]\n", point.Key, point.Value, point.Source)
		}
		for _, key := range []string{"validation_warnings", "logic_warnings"} {
			if warnings, ok := resp.Metadata[key].([]string); ok {
				for _, warning := range warnings {
					fmt.Fprintf(w, "  ! %s\n", warning)
				}
			}
		}
		return
	}

	fmt.Fprintf(w, "✗ %s %s\n", resp.RequestID, resp.Error)
	for _, detail := range resp.ErrorDetails {
		fmt.Fprintf(w, "  - %s\n", detail)
	}
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

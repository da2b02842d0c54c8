// ABOUTME: Tests for version command
// ABOUTME: Verifies text and JSON build information output

package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	defer SetVersion("dev", "none", "unknown")

	output, err := executeCommand(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	for _, want := range []string{"amb 1.2.3", "Commit: abc123", "Built:  2026-01-01"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	defer SetVersion("dev", "none", "unknown")

	output, err := executeCommand(t, "", "--format", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	var info VersionInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("info = %+v", info)
	}
}

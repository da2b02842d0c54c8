// ABOUTME: CLI commands to inspect and export the hallucination audit log
// ABOUTME: Reads the SQLite audit database written by --audit runs and the MCP server
package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/amb/internal/storage/sqlite"
	"github.com/harper/amb/internal/util"
	"github.com/joho/godotenv"
)

var (
	auditLimit      int
	auditType       string
	auditOutput     string
	auditExportType string
)

// NewAuditCmd creates audit command
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the hallucination audit log",
		Long: `Inspect the hallucination audit log.

Detections are recorded when commands run with --audit and by the MCP
server. The database lives at $XDG_DATA_HOME/amb/audit.db unless
AMB_AUDIT_DB or audit_db_path in the config file says otherwise.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded detections, newest first",
		Long: `List recorded detections, newest first.

Examples:
  amb audit list
  amb audit list --limit 50 --type pattern_match
  amb audit list --format json`,
		RunE: runAuditList,
	}
	listCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum entries to show (0 for all)")
	listCmd.Flags().StringVar(&auditType, "type", "", "Only show one detection type (data_validation, logic_inconsistency, pattern_match)")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the audit log as YAML or Markdown",
		Long: `Export the audit log as YAML or Markdown.

Examples:
  amb audit export
  amb audit export --as markdown --output audit.md`,
		RunE: runAuditExport,
	}
	exportCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().StringVar(&auditExportType, "as", "yaml", "Export format: yaml or markdown")

	cmd.AddCommand(listCmd, exportCmd)
	return cmd
}

func openAudit() (*sqlite.AuditStore, error) {
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.OpenAuditStore(cfg.AuditDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}
	return store, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	if auditLimit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", auditLimit)
	}

	store, err := openAudit()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(auditLimit, auditType)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return writeJSON(cmd, entries)
	}

	if len(entries) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No detections recorded\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tTYPE\tREASON\tCONTENT\n")
	fmt.Fprintf(w, "----\t----\t------\t-------\n")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			formatTime(entry.Timestamp),
			entry.DetectionType,
			util.Truncate(entry.Reason, 40),
			util.Truncate(entry.ContentSnippet, 40))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d detection(s)\n", len(entries))
	}
	return nil
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if auditOutput != "" {
		if err := store.ExportToFile(auditOutput, auditExportType); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "Exported audit log to %s\n", auditOutput)
		}
		return nil
	}

	switch auditExportType {
	case "yaml", "yml":
		return store.WriteYAML(cmd.OutOrStdout())
	case "markdown", "md":
		return store.WriteMarkdown(cmd.OutOrStdout())
	default:
		return fmt.Errorf("unsupported export format: %s", auditExportType)
	}
}

// ABOUTME: Root command, global flags and subcommand wiring for the amb CLI
// ABOUTME: Global flags control verbosity, output format, config file and audit logging
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
	auditEnabled bool
)

const banner = `
 █████╗ ███╗   ███╗██████╗
██╔══██╗████╗ ████║██╔══██╗
███████║██╔████╔██║██████╔╝
██╔══██║██║╚██╔╝██║██╔══██╗
██║  ██║██║ ╚═╝ ██║██████╔╝
╚═╝  ╚═╝╚═╝     ╚═╝╚═════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amb",
		Short: "Hallucination prevention for LLM responses",
		Long: banner + `
amb screens model output before it reaches users. Every response is
checked against its source data, previously stated facts and a table
of known hallucination patterns, and is regenerated or rejected when
it fails.

Run it one-shot from the shell, or as an MCP server so LLM agents can
route their answers through it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "json", "text":
				return nil
			default:
				return fmt.Errorf("invalid --format %q (want auto, json or text)", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json or text")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Load settings from a YAML file instead of the environment")
	cmd.PersistentFlags().BoolVar(&auditEnabled, "audit", false, "Record detected hallucinations in the audit database")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewProcessCmd(),
		NewDetectCmd(),
		NewValidateCmd(),
		NewCheckCmd(),
		NewCircularCmd(),
		NewMetricsCmd(),
		NewAuditCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// ABOUTME: CLI command to run queries through the full generation pipeline
// ABOUTME: Supports a single query, inline or file context, known facts and JSONL batches
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	processContext     map[string]string
	processContextFile string
	processFacts       map[string]string
	processBatchFile   string
)

// NewProcessCmd creates process command
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [query]",
		Short: "Generate a validated response for a query",
		Long: `Generate a response and run it through hallucination prevention.

The draft is validated against its sources, checked for contradictions
with known facts and filtered for hallucination patterns. A draft that
fails validation is regenerated once with stricter constraints.

Examples:
  amb process "What is the capital of France?"
  amb process --context city=Paris --fact "capital of france=Paris" "Tell me about Paris"
  amb process --context-file sources.yaml "Summarize the sources"
  amb process --file requests.jsonl --format json`,
		Args: cobra.ArbitraryArgs,
		RunE: runProcess,
	}

	cmd.Flags().StringToStringVar(&processContext, "context", nil, "Context entries as key=value (repeatable)")
	cmd.Flags().StringVar(&processContextFile, "context-file", "", "Read context from a JSON or YAML file")
	cmd.Flags().StringToStringVar(&processFacts, "fact", nil, "Known facts as key=value (repeatable)")
	cmd.Flags().StringVar(&processBatchFile, "file", "", "Process one JSON request per line from a file (- for stdin)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	for key, value := range processFacts {
		p.handler.RegisterFact(key, value)
	}

	if processBatchFile != "" {
		return runProcessBatch(cmd, p)
	}

	query, err := textArg(cmd, args)
	if err != nil {
		return err
	}

	raw := map[string]any{"query": query}
	requestContext, err := buildContext()
	if err != nil {
		return err
	}
	if requestContext != nil {
		raw["context"] = requestContext
	}

	resp := p.handler.ProcessRequest(raw)

	if jsonOutput() {
		if err := writeJSON(cmd, resp); err != nil {
			return err
		}
	} else {
		printResponse(cmd.OutOrStdout(), resp)
	}

	if !resp.Success {
		return fmt.Errorf("request rejected: %s", resp.Error)
	}
	return nil
}

func runProcessBatch(cmd *cobra.Command, p *pipeline) error {
	in, err := openInput(cmd, processBatchFile)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	requests, err := readRequests(in)
	if err != nil {
		return err
	}

	responses := p.handler.BatchProcess(requests)

	if jsonOutput() {
		return writeJSON(cmd, responses)
	}

	succeeded := 0
	for _, resp := range responses {
		printResponse(cmd.OutOrStdout(), resp)
		if resp.Success {
			succeeded++
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nProcessed %d request(s), %d succeeded\n", len(responses), succeeded)
	}
	return nil
}

// buildContext merges --context-file with --context, flags winning
func buildContext() (map[string]any, error) {
	var requestContext map[string]any
	if processContextFile != "" {
		values, err := readMapFile(processContextFile)
		if err != nil {
			return nil, err
		}
		requestContext = values
	}

	if len(processContext) > 0 {
		if requestContext == nil {
			requestContext = make(map[string]any, len(processContext))
		}
		for key, value := range processContext {
			requestContext[key] = value
		}
	}
	return requestContext, nil
}


// ABOUTME: MCP tool definitions and registration for the amb server
// ABOUTME: Exposes the hallucination prevention pipeline to LLM agents
package mcp

import (
	"github.com/harper/amb/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients during initialization
const ServerName = "amb hallucination guard"

// NewServer creates an MCP server with every tool registered against handler
func NewServer(handler *core.ModelHandler, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, handler)
	return server
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, handler *core.ModelHandler) *Handlers {
	handlers := NewHandlers(handler)

	server.AddTool(mcp.Tool{
		Name:        "process_request",
		Description: "Generate a validated response for a query. The draft is checked against the supplied context, known facts and hallucination patterns before it is returned.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The question or instruction to answer",
				},
				"context": map[string]any{
					"type":        "object",
					"description": "Optional source data the response must stay grounded in",
				},
				"metadata": map[string]any{
					"type":        "object",
					"description": "Optional caller metadata",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.ProcessRequest)

	server.AddTool(mcp.Tool{
		Name:        "detect_hallucination",
		Description: "Run the detector cascade (data validation, logic consistency, hallucination patterns) over a piece of text.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"content": map[string]any{
					"type":        "string",
					"description": "Text to inspect",
				},
				"context": map[string]any{
					"type":        "object",
					"description": "Optional context; context.source is used as the source reference",
				},
			},
			Required: []string{"content"},
		},
	}, handlers.DetectHallucination)

	server.AddTool(mcp.Tool{
		Name:        "validate_data",
		Description: "Score a single data point against its source reference. Registering source data first enables drift detection.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"data": map[string]any{
					"description": "The value to validate",
				},
				"source": map[string]any{
					"type":        "string",
					"description": "Source reference the value claims to come from",
				},
				"register": map[string]any{
					"type":        "boolean",
					"description": "Register data as the reference content for source instead of validating it",
					"default":     false,
				},
			},
			Required: []string{"data", "source"},
		},
	}, handlers.ValidateData)

	server.AddTool(mcp.Tool{
		Name:        "check_statement",
		Description: "Check a statement for contradictions against recent statements, registered facts and itself. Consistent statements join the context window.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"statement": map[string]any{
					"type":        "string",
					"description": "Statement to check",
				},
				"metadata": map[string]any{
					"type":        "object",
					"description": "Optional metadata stored with the statement",
				},
			},
			Required: []string{"statement"},
		},
	}, handlers.CheckStatement)

	server.AddTool(mcp.Tool{
		Name:        "detect_circular_logic",
		Description: "Report whether a chain of 'X because Y' statements reasons in a circle.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"statements": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Statements in reasoning order",
				},
			},
			Required: []string{"statements"},
		},
	}, handlers.DetectCircularLogic)

	server.AddTool(mcp.Tool{
		Name:        "register_fact",
		Description: "Register a known fact. Later statements and responses that contradict it are rejected.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"key": map[string]any{
					"type":        "string",
					"description": "Fact key, e.g. 'capital of france'",
				},
				"value": map[string]any{
					"description": "Fact value",
				},
			},
			Required: []string{"key", "value"},
		},
	}, handlers.RegisterFact)

	server.AddTool(mcp.Tool{
		Name:        "get_metrics",
		Description: "Get request counters, success and prevention rates, and the most recent hallucination detections.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, handlers.GetMetrics)

	server.AddTool(mcp.Tool{
		Name:        "reset_metrics",
		Description: "Zero the request counters. The hallucination log is kept.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, handlers.ResetMetrics)

	return handlers
}

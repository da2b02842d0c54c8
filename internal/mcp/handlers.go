// ABOUTME: MCP tool handler implementations for the amb server
// ABOUTME: Serializes access to the single-threaded pipeline behind one mutex
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/harper/amb/internal/core"
	"github.com/harper/amb/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	mu      sync.Mutex
	handler *core.ModelHandler
}

// NewHandlers wraps handler for concurrent tool calls
func NewHandlers(handler *core.ModelHandler) *Handlers {
	return &Handlers{handler: handler}
}

// ProcessRequest handles the process_request tool
func (h *Handlers) ProcessRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := request.RequireString("query"); err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	args := request.GetArguments()
	raw := map[string]any{"query": args["query"]}
	for _, key := range []string{"context", "metadata"} {
		if v, ok := args[key]; ok && v != nil {
			raw[key] = v
		}
	}

	h.mu.Lock()
	resp := h.handler.ProcessRequest(raw)
	h.mu.Unlock()

	return jsonResult(resp)
}

// DetectHallucination handles the detect_hallucination tool
func (h *Handlers) DetectHallucination(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	detectCtx, err := objectArg(request, "context")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	detected, confidence, reason := h.handler.DetectHallucination(content, detectCtx)
	h.mu.Unlock()

	return jsonResult(map[string]any{
		"hallucination_detected": detected,
		"confidence":             confidence,
		"reason":                 reason,
	})
}

// ValidateData handles the validate_data tool
func (h *Handlers) ValidateData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	data, ok := args["data"]
	if !ok {
		return mcp.NewToolResultError("data argument is required"), nil
	}
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source argument is required and must be a string"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if request.GetBool("register", false) {
		h.handler.Validator().RegisterSourceData(source, data)
		return jsonResult(map[string]any{"registered": source})
	}

	valid, confidence, reason := h.handler.Validator().ValidateDataPoint(data, source)
	return jsonResult(map[string]any{
		"valid":      valid,
		"confidence": confidence,
		"reason":     reason,
	})
}

// CheckStatement handles the check_statement tool
func (h *Handlers) CheckStatement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statement, err := request.RequireString("statement")
	if err != nil {
		return mcp.NewToolResultError("statement argument is required and must be a string"), nil
	}

	metadata, err := objectArg(request, "metadata")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	consistent, contradictions := h.handler.Checker().CheckStatementConsistency(statement, metadata)
	summary := h.handler.Checker().ContextSummary()
	h.mu.Unlock()

	return jsonResult(map[string]any{
		"consistent":     consistent,
		"contradictions": contradictions,
		"context":        summary,
	})
}

// DetectCircularLogic handles the detect_circular_logic tool
func (h *Handlers) DetectCircularLogic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	rawStatements, ok := args["statements"]
	if !ok {
		return mcp.NewToolResultError("statements argument is required"), nil
	}
	statements, err := cast.ToStringSliceE(rawStatements)
	if err != nil {
		return mcp.NewToolResultError("statements must be an array of strings"), nil
	}

	h.mu.Lock()
	circular := h.handler.Checker().DetectCircularLogic(statements)
	h.mu.Unlock()

	return jsonResult(map[string]any{
		"circular":   circular,
		"statements": len(statements),
	})
}

// RegisterFact handles the register_fact tool
func (h *Handlers) RegisterFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	value, ok := request.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError("value argument is required"), nil
	}

	fact, err := models.NewFact(key, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fact: %v", err)), nil
	}

	h.mu.Lock()
	h.handler.RegisterFact(fact.Key, fact.Value)
	known := h.handler.Checker().ContextSummary().FactsRegistered
	h.mu.Unlock()

	return jsonResult(map[string]any{
		"key":         fact.Key,
		"facts_count": known,
	})
}

// GetMetrics handles the get_metrics tool
func (h *Handlers) GetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	report := h.handler.PerformanceMetrics()
	generation := h.handler.Generator().GenerationStats()
	validation := h.handler.Validator().ValidationStats()
	h.mu.Unlock()

	return jsonResult(map[string]any{
		"performance": report,
		"generation":  generation,
		"validation":  validation,
	})
}

// ResetMetrics handles the reset_metrics tool
func (h *Handlers) ResetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	h.handler.ResetMetrics()
	h.mu.Unlock()

	return mcp.NewToolResultText(`{"reset":true}`), nil
}

// objectArg returns an optional object argument, or an error when it has the wrong shape
func objectArg(request mcp.CallToolRequest, name string) (map[string]any, error) {
	v, ok := request.GetArguments()[name]
	if !ok || v == nil {
		return nil, nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an object", name)
	}
	return m, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ABOUTME: Main entry point for the amb MCP server with stdio transport
// ABOUTME: Builds the pipeline from the environment and serves all tools
package main

import (
	"log"
	"os"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/core"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/mcp"
	"github.com/harper/amb/internal/storage/sqlite"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	opts := []core.HandlerOption{core.WithLogger(logger)}

	if cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set - responses use the placeholder provider")
	} else if provider, err := llm.NewOpenAIProvider(llm.ConfigFrom(cfg)); err != nil {
		logger.Warn("Failed to initialize OpenAI provider", zap.Error(err))
	} else {
		opts = append(opts, core.WithProvider(provider))
	}

	// Audit log with XDG-compliant default path
	if os.Getenv("AMB_NO_AUDIT") == "" {
		store, err := sqlite.OpenAuditStore(cfg.AuditDBPath)
		if err != nil {
			logger.Fatal("Failed to open audit store", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, core.WithAuditSink(store))
	}

	handler, err := core.NewModelHandler(cfg, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize handler", zap.Error(err))
	}

	server := mcp.NewServer(handler, version)

	logger.Info("amb MCP server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

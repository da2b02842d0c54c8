// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents route answers through hallucination checks via stdio
package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/amb/internal/mcp"
	"github.com/harper/amb/internal/metrics"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var (
	mcpMetricsAddr string
	mcpNoAudit     bool
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs amb as an MCP (Model Context Protocol) server over stdio. LLM
agents get tools to generate validated responses, detect hallucinations,
check statements, register facts and read pipeline metrics.

Detections are recorded in the audit database unless --no-audit is set.
With --metrics-addr, Prometheus metrics are served at /metrics.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  amb mcp

  # Expose Prometheus metrics while serving
  amb mcp --metrics-addr 127.0.0.1:9464

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "amb": {
  #       "command": "amb",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&mcpNoAudit, "no-audit", false, "Do not record detections in the audit database")

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	auditEnabled = !mcpNoAudit

	var collector *metrics.Collector
	if mcpMetricsAddr != "" {
		collector = metrics.NewCollector("")
	}

	p, err := newPipeline(collector)
	if err != nil {
		return err
	}
	defer p.Close()

	server := mcp.NewServer(p.handler, versionInfo.Version)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if collector != nil {
		metricsServer = newMetricsServer(mcpMetricsAddr, collector)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				p.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		p.logger.Info("Serving Prometheus metrics", zap.String("addr", mcpMetricsAddr))
	}

	if !quiet {
		p.logger.Info("amb MCP server starting on stdio")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		p.logger.Info("Shutdown signal received, gracefully shutting down")
	case err := <-serverErr:
		if err != nil {
			shutdownMetrics(metricsServer, p.logger)
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownMetrics(metricsServer, p.logger)
	return nil
}

func newMetricsServer(addr string, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func shutdownMetrics(srv *http.Server, logger *zap.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping metrics server", zap.Error(err))
	}
}

// ABOUTME: Shared pipeline setup for CLI commands
// ABOUTME: Loads .env and config, builds the logger, provider, audit store and handler
package commands

import (
	"fmt"
	"os"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/core"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/metrics"
	"github.com/harper/amb/internal/storage/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// pipeline bundles a handler with the resources that must be released after use
type pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	handler *core.ModelHandler
	audit   *sqlite.AuditStore
}

// newPipeline builds a handler from .env, the environment or --config.
// A non-nil collector receives request and detection metrics.
func newPipeline(collector *metrics.Collector) (*pipeline, error) {
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("loading config: %w", err)
	}

	p := &pipeline{cfg: cfg, logger: logger}
	opts := []core.HandlerOption{core.WithLogger(logger)}

	if provider := newProvider(cfg, logger); provider != nil {
		opts = append(opts, core.WithProvider(provider))
	}

	if auditEnabled {
		store, err := sqlite.OpenAuditStore(cfg.AuditDBPath)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		p.audit = store
		opts = append(opts, core.WithAuditSink(store))
	}

	if collector != nil {
		opts = append(opts, core.WithCollector(collector))
	}

	p.handler, err = core.NewModelHandler(cfg, opts...)
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the audit store and flushes the logger
func (p *pipeline) Close() {
	if p.audit != nil {
		if err := p.audit.Close(); err != nil {
			p.logger.Warn("Error closing audit store", zap.Error(err))
		}
	}
	_ = p.logger.Sync()
}

// newLogger honours --verbose and --quiet over AMB_LOG_LEVEL. The CLI defaults
// to warnings only so command output stays readable.
func newLogger() (*zap.Logger, error) {
	level := os.Getenv("AMB_LOG_LEVEL")
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	case level == "":
		level = "warn"
	}
	return logging.New(os.Getenv("AMB_ENV"), level)
}

func loadConfig(logger *zap.Logger) (*config.Config, error) {
	if configPath == "" {
		return config.Load()
	}

	cfg, err := config.LoadFile(configPath, logger)
	if err != nil {
		return nil, err
	}
	// secrets never live in the YAML file
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// newProvider returns an OpenAI provider when a key is configured, or nil to
// keep the handler's placeholder provider
func newProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	if cfg.OpenAIKey == "" {
		logger.Debug("OPENAI_API_KEY not set, using placeholder provider")
		return nil
	}

	provider, err := llm.NewOpenAIProvider(llm.ConfigFrom(cfg))
	if err != nil {
		logger.Warn("Could not initialize OpenAI provider, using placeholder", zap.Error(err))
		return nil
	}
	logger.Debug("OpenAI provider initialized", zap.String("model", cfg.ChatModel))
	return provider
}

// ABOUTME: Centralized configuration for the hallucination prevention pipeline
// ABOUTME: Loads from environment, YAML files or plain maps with validation and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Default values for recognized keys
const (
	DefaultConfidenceThreshold = 0.85
	DefaultContextWindow       = 100
	DefaultMaxResponseTimeMs   = 200
	DefaultCacheTTLSeconds     = 300
	DefaultMaxRetries          = 2
)

// RequiredKeys are warned about when absent from a config map
var RequiredKeys = []string{"confidence_threshold", "context_window", "max_response_time_ms"}

// Config holds all configuration for the pipeline
type Config struct {
	// Pipeline settings
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	ContextWindow       int     `yaml:"context_window" validate:"gt=0"`
	MaxResponseTimeMs   int     `yaml:"max_response_time_ms" validate:"gte=0"`
	EnableCaching       bool    `yaml:"enable_caching"`
	CacheTTLSeconds     int     `yaml:"cache_ttl_seconds" validate:"gte=0"`
	// MaxRetries is recognized but the generator always regenerates exactly once
	MaxRetries int `yaml:"max_retries" validate:"gte=0,lte=10"`

	// OpenAI provider settings
	OpenAIKey       string        `yaml:"-"`
	ChatModel       string        `yaml:"chat_model"`
	Timeout         time.Duration `yaml:"timeout"`
	ProviderRetries int           `yaml:"provider_retries" validate:"gte=0,lte=10"`
	RetryDelay      time.Duration `yaml:"retry_delay"`

	// Runtime settings
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	AuditDBPath string `yaml:"audit_db_path"`
}

// Default returns a configuration with every recognized key at its default
func Default() *Config {
	return &Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		ContextWindow:       DefaultContextWindow,
		MaxResponseTimeMs:   DefaultMaxResponseTimeMs,
		EnableCaching:       true,
		CacheTTLSeconds:     DefaultCacheTTLSeconds,
		MaxRetries:          DefaultMaxRetries,
		ChatModel:           "gpt-4o-mini",
		Timeout:             30 * time.Second,
		ProviderRetries:     3,
		RetryDelay:          2 * time.Second,
		Environment:         "development",
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ConfidenceThreshold: getEnvFloat("AMB_CONFIDENCE_THRESHOLD", DefaultConfidenceThreshold),
		ContextWindow:       getEnvInt("AMB_CONTEXT_WINDOW", DefaultContextWindow),
		MaxResponseTimeMs:   getEnvInt("AMB_MAX_RESPONSE_TIME_MS", DefaultMaxResponseTimeMs),
		EnableCaching:       getEnvBool("AMB_ENABLE_CACHING", true),
		CacheTTLSeconds:     getEnvInt("AMB_CACHE_TTL_SECONDS", DefaultCacheTTLSeconds),
		MaxRetries:          getEnvInt("AMB_MAX_RETRIES", DefaultMaxRetries),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("AMB_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		ProviderRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		Environment:         getEnv("AMB_ENV", "development"),
		LogLevel:            os.Getenv("AMB_LOG_LEVEL"),
		AuditDBPath:         os.Getenv("AMB_AUDIT_DB"),
	}

	return cfg, cfg.Validate()
}

// LoadFile reads a flat YAML mapping of recognized keys
func LoadFile(path string, logger *zap.Logger) (*Config, error) {
	content, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	return FromMap(values, logger)
}

// FromMap builds a configuration from a mapping of recognized keys.
// Missing required keys are logged and defaulted; unknown keys are ignored.
func FromMap(values map[string]any, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Default()
	if values == nil {
		values = map[string]any{}
	}

	for _, key := range RequiredKeys {
		if _, ok := values[key]; !ok {
			logger.Warn("Missing config key, using default", zap.String("key", key))
		}
	}

	var errs []string
	setFloat := func(key string, dst *float64) {
		if v, ok := values[key]; ok {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a number", key))
				return
			}
			*dst = f
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := values[key]; ok {
			i, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be an integer", key))
				return
			}
			*dst = i
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := values[key]; ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a boolean", key))
				return
			}
			*dst = b
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := values[key]; ok {
			*dst = cast.ToString(v)
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := values[key]; ok {
			d, err := cast.ToDurationE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a duration", key))
				return
			}
			*dst = d
		}
	}

	setFloat("confidence_threshold", &cfg.ConfidenceThreshold)
	setInt("context_window", &cfg.ContextWindow)
	setInt("max_response_time_ms", &cfg.MaxResponseTimeMs)
	setBool("enable_caching", &cfg.EnableCaching)
	setInt("cache_ttl_seconds", &cfg.CacheTTLSeconds)
	setInt("max_retries", &cfg.MaxRetries)
	setString("chat_model", &cfg.ChatModel)
	setDuration("timeout", &cfg.Timeout)
	setInt("provider_retries", &cfg.ProviderRetries)
	setDuration("retry_delay", &cfg.RetryDelay)
	setString("environment", &cfg.Environment)
	setString("log_level", &cfg.LogLevel)
	setString("audit_db_path", &cfg.AuditDBPath)

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return cfg, cfg.Validate()
}

var validate = validator.New()

// Validate checks every field against its declared bounds
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError turns validator field errors into one readable error
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := toSnake(e.Field())

	switch e.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s, got %v", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// toSnake converts a Go field name to its config key form
func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// ABOUTME: ModelHandler is the request lifecycle entry point with input screening and metrics
// ABOUTME: Owns a validator/checker session separate from the response generator's
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/models"
	"github.com/harper/amb/internal/util"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	maxHallucinationLog      = 1000
	retainedHallucinationLog = 500
	recentHallucinationCount = 10
	snippetLength            = 100
)

// ChecksPerformed lists the checks stamped on every processed response
var ChecksPerformed = []string{"data_validation", "logic_consistency", "pattern_detection"}

// Request outcomes reported to a MetricsRecorder
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsRecorder receives request and detection events as they happen
type MetricsRecorder interface {
	ObserveRequest(outcome string, elapsed time.Duration)
	ObserveHallucination(detectionType string)
}

// AuditSink persists hallucination log entries. Failures are logged and ignored.
type AuditSink interface {
	RecordHallucination(entry models.HallucinationLogEntry) error
}

// HandlerOption customizes a ModelHandler
type HandlerOption func(*ModelHandler)

// WithProvider sets the content provider used by the generator
func WithProvider(p llm.Provider) HandlerOption {
	return func(h *ModelHandler) { h.provider = p }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *ModelHandler) { h.logger = logger }
}

// WithCollector mirrors handler events into a metrics recorder
func WithCollector(c MetricsRecorder) HandlerOption {
	return func(h *ModelHandler) { h.collector = c }
}

// WithAuditSink copies every hallucination log entry to sink
func WithAuditSink(sink AuditSink) HandlerOption {
	return func(h *ModelHandler) { h.sink = sink }
}

type performanceCounters struct {
	total                   int
	successful              int
	failed                  int
	hallucinationsPrevented int
	totalResponseTime       time.Duration
}

// ModelHandler processes requests end to end and runs standalone detection.
// It is not safe for concurrent use.
type ModelHandler struct {
	cfg       *config.Config
	validator *DataValidator
	checker   *LogicChecker
	generator *ResponseGenerator

	provider  llm.Provider
	logger    *zap.Logger
	collector MetricsRecorder
	sink      AuditSink

	counters         performanceCounters
	hallucinationLog []models.HallucinationLogEntry
}

// NewModelHandler validates cfg and builds the pipeline. A nil cfg uses defaults.
func NewModelHandler(cfg *config.Config, opts ...HandlerOption) (*ModelHandler, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	h := &ModelHandler{cfg: cfg}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.OrNop(h.logger)

	session, err := NewSession(cfg.ContextWindow)
	if err != nil {
		return nil, err
	}
	h.validator, err = NewDataValidatorForSession(cfg.ConfidenceThreshold, session, h.logger.Named("handler"))
	if err != nil {
		return nil, err
	}
	h.checker = NewLogicCheckerForSession(session, h.logger.Named("handler"))

	h.generator, err = NewResponseGenerator(GeneratorConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		ContextWindow:       cfg.ContextWindow,
		Provider:            h.provider,
		Logger:              h.logger,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("ModelHandler initialized with hallucination prevention",
		zap.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		zap.Int("context_window", cfg.ContextWindow))
	return h, nil
}

// Config returns the handler's configuration
func (h *ModelHandler) Config() *config.Config {
	return h.cfg
}

// Validator returns the handler-owned data validator
func (h *ModelHandler) Validator() *DataValidator {
	return h.validator
}

// Checker returns the handler-owned logic checker
func (h *ModelHandler) Checker() *LogicChecker {
	return h.checker
}

// Generator returns the handler's response generator
func (h *ModelHandler) Generator() *ResponseGenerator {
	return h.generator
}

// RegisterFact registers a known fact with the handler's checker and with the
// generator, which keeps its own session
func (h *ModelHandler) RegisterFact(key string, value any) {
	h.checker.RegisterFact(key, value)
	h.generator.RegisterFact(key, value)
}

// ProcessRequest screens, generates and post-processes one raw request.
// It never panics; every failure is reported as an unsuccessful response.
//
// Only completed generations count toward total requests. Empty requests,
// rejected input and recovered panics bump the failed counter alone.
func (h *ModelHandler) ProcessRequest(raw map[string]any) (resp *models.Response) {
	start := time.Now()
	requestID := newRequestID(start)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Error processing request", zap.String("request_id", requestID), zap.Any("panic", r))
			h.counters.failed++
			h.observeRequest(OutcomeError, time.Since(start))
			resp = errorResponse(fmt.Sprintf("Processing error: %v", r), requestID, nil)
		}
	}()

	h.logger.Info("Processing request", zap.String("request_id", requestID))

	if len(raw) == 0 {
		h.logger.Error("Empty request", zap.String("request_id", requestID))
		h.counters.failed++
		h.observeRequest(OutcomeRejected, time.Since(start))
		return errorResponse("Empty request", requestID, nil)
	}

	req, errs := preprocess(raw)
	if len(errs) > 0 {
		h.logger.Warn("Input validation failed",
			zap.String("request_id", requestID),
			zap.Strings("errors", errs))
		h.counters.failed++
		h.observeRequest(OutcomeRejected, time.Since(start))
		return errorResponse("Input validation failed", requestID, errs)
	}

	resp = h.generator.GenerateResponse(req)
	h.postprocess(resp, requestID)

	elapsed := time.Since(start)
	h.updateMetrics(elapsed, resp.Success)

	limit := time.Duration(h.cfg.MaxResponseTimeMs) * time.Millisecond
	if elapsed > limit {
		h.logger.Warn("Response time exceeded threshold",
			zap.String("request_id", requestID),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", limit))
	}

	h.logger.Info("Request processed",
		zap.String("request_id", requestID),
		zap.Bool("success", resp.Success),
		zap.Duration("elapsed", elapsed))
	return resp
}

// BatchProcess processes requests one at a time, in order
func (h *ModelHandler) BatchProcess(raws []map[string]any) []*models.Response {
	responses := make([]*models.Response, 0, len(raws))
	if len(raws) == 0 {
		return responses
	}

	h.logger.Info("Processing batch", zap.Int("requests", len(raws)))
	successful := 0
	for _, raw := range raws {
		resp := h.ProcessRequest(raw)
		if resp.Success {
			successful++
		}
		responses = append(responses, resp)
	}
	h.logger.Info("Batch processing complete",
		zap.Int("successful", successful),
		zap.Int("failed", len(responses)-successful))
	return responses
}

// preprocess validates a raw request and builds the typed form
func preprocess(raw map[string]any) (*models.Request, []string) {
	var errs []string

	query := strings.TrimSpace(cast.ToString(raw["query"]))
	if query == "" {
		errs = append(errs, "Missing or empty query")
	}
	if detectInjection(query) {
		errs = append(errs, "Potential injection detected in query")
	}

	context := map[string]any{}
	switch c := raw["context"].(type) {
	case nil:
	case map[string]any:
		context = c
	case map[string]string:
		for k, v := range c {
			context[k] = v
		}
	default:
		errs = append(errs, "Context must be a dictionary")
	}

	metadata, ok := raw["metadata"].(map[string]any)
	if !ok || metadata == nil {
		metadata = map[string]any{}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &models.Request{
		Query:     query,
		Context:   context,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (h *ModelHandler) postprocess(resp *models.Response, requestID string) {
	resp.RequestID = requestID
	resp.HallucinationPrevention = &models.PreventionInfo{
		Enabled:             true,
		ConfidenceThreshold: h.cfg.ConfidenceThreshold,
		ChecksPerformed:     append([]string(nil), ChecksPerformed...),
	}

	if !resp.Success {
		lower := strings.ToLower(resp.Error)
		if strings.Contains(lower, "hallucination") || strings.Contains(lower, "validation") {
			h.counters.hallucinationsPrevented++
		}
	}
}

func (h *ModelHandler) updateMetrics(elapsed time.Duration, success bool) {
	h.counters.total++
	h.counters.totalResponseTime += elapsed
	outcome := OutcomeSuccess
	if success {
		h.counters.successful++
	} else {
		h.counters.failed++
		outcome = OutcomeFailure
	}
	h.observeRequest(outcome, elapsed)
}

func (h *ModelHandler) observeRequest(outcome string, elapsed time.Duration) {
	if h.collector != nil {
		h.collector.ObserveRequest(outcome, elapsed)
	}
}

// PerformanceMetrics reports counters and derived rates. Rates are zero
// until a request has completed.
func (h *ModelHandler) PerformanceMetrics() models.PerformanceReport {
	c := h.counters
	report := models.PerformanceReport{
		TotalRequests:           c.total,
		SuccessfulRequests:      c.successful,
		FailedRequests:          c.failed,
		HallucinationsPrevented: c.hallucinationsPrevented,
		RecentHallucinations:    h.recentHallucinations(recentHallucinationCount),
	}
	if c.total > 0 {
		report.AverageResponseTimeMs = float64(c.totalResponseTime) / float64(time.Millisecond) / float64(c.total)
		report.SuccessRate = float64(c.successful) / float64(c.total)
		report.HallucinationPreventionRate = float64(c.hallucinationsPrevented) / float64(c.total)
	}
	return report
}

// ResetMetrics zeroes the performance counters. The hallucination log is kept.
func (h *ModelHandler) ResetMetrics() {
	h.counters = performanceCounters{}
	h.logger.Info("Performance metrics reset")
}

// HallucinationLog returns a copy of the retained detection log, oldest first
func (h *ModelHandler) HallucinationLog() []models.HallucinationLogEntry {
	return h.recentHallucinations(len(h.hallucinationLog))
}

func (h *ModelHandler) recentHallucinations(n int) []models.HallucinationLogEntry {
	if n > len(h.hallucinationLog) {
		n = len(h.hallucinationLog)
	}
	out := make([]models.HallucinationLogEntry, n)
	copy(out, h.hallucinationLog[len(h.hallucinationLog)-n:])
	return out
}

func (h *ModelHandler) logHallucination(content string, d *detection) {
	entry := models.HallucinationLogEntry{
		Timestamp:      time.Now().UTC(),
		ContentSnippet: util.Snippet(content, snippetLength),
		DetectionType:  d.detectionType,
		Reason:         d.reason,
	}

	h.hallucinationLog = append(h.hallucinationLog, entry)
	if len(h.hallucinationLog) > maxHallucinationLog {
		kept := make([]models.HallucinationLogEntry, retainedHallucinationLog)
		copy(kept, h.hallucinationLog[len(h.hallucinationLog)-retainedHallucinationLog:])
		h.hallucinationLog = kept
	}

	h.logger.Info("Hallucination detected and prevented",
		zap.String("detection_type", d.detectionType),
		zap.String("reason", d.reason))

	if h.collector != nil {
		h.collector.ObserveHallucination(d.detectionType)
	}
	if h.sink != nil {
		if err := h.sink.RecordHallucination(entry); err != nil {
			h.logger.Warn("Failed to record hallucination in audit sink", zap.Error(err))
		}
	}
}

// newRequestID builds req_<UTC YYYYMMDDHHMMSS>_<8 hex chars>
func newRequestID(t time.Time) string {
	return fmt.Sprintf("req_%s_%s", t.UTC().Format("20060102150405"), uuid.New().String()[:8])
}

func errorResponse(message, requestID string, details []string) *models.Response {
	resp := models.NewErrorResponse(message, details)
	resp.RequestID = requestID
	return resp
}

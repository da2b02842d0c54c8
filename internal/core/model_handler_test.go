// ABOUTME: Tests for ModelHandler request lifecycle, accounting and detection
// ABOUTME: Verifies asymmetric counters, injection screening and the detector cascade

package core

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var requestIDPattern = regexp.MustCompile(`^req_\d{14}_[0-9a-f]{8}$`)

func newTestHandler(t *testing.T, opts ...HandlerOption) *ModelHandler {
	t.Helper()
	h, err := NewModelHandler(config.Default(), opts...)
	require.NoError(t, err)
	return h
}

func TestNewModelHandler_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ConfidenceThreshold = 1.2
	_, err := NewModelHandler(cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	cfg = config.Default()
	cfg.ContextWindow = 0
	_, err = NewModelHandler(cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestNewModelHandler_NilConfigUsesDefaults(t *testing.T) {
	h, err := NewModelHandler(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfidenceThreshold, h.Config().ConfidenceThreshold)
}

func TestProcessRequest_Success(t *testing.T) {
	h := newTestHandler(t)

	resp := h.ProcessRequest(map[string]any{
		"query":   "  What is Go?  ",
		"context": map[string]any{"lang": "go"},
	})

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "Response to: What is Go?", resp.Content)
	assert.Regexp(t, requestIDPattern, resp.RequestID)
	require.NotNil(t, resp.HallucinationPrevention)
	assert.True(t, resp.HallucinationPrevention.Enabled)
	assert.Equal(t, 0.85, resp.HallucinationPrevention.ConfidenceThreshold)
	assert.Equal(t, []string{"data_validation", "logic_consistency", "pattern_detection"},
		resp.HallucinationPrevention.ChecksPerformed)

	m := h.PerformanceMetrics()
	assert.Equal(t, 1, m.TotalRequests)
	assert.Equal(t, 1, m.SuccessfulRequests)
	assert.Equal(t, 0, m.FailedRequests)
	assert.Equal(t, 1.0, m.SuccessRate)
	assert.GreaterOrEqual(t, m.AverageResponseTimeMs, 0.0)
}

func TestProcessRequest_EmptyRequestSkipsTotal(t *testing.T) {
	h := newTestHandler(t)

	for _, raw := range []map[string]any{nil, {}} {
		resp := h.ProcessRequest(raw)
		assert.False(t, resp.Success)
		assert.Equal(t, "Empty request", resp.Error)
		assert.Regexp(t, requestIDPattern, resp.RequestID)
		assert.Nil(t, resp.HallucinationPrevention)
	}

	m := h.PerformanceMetrics()
	assert.Equal(t, 0, m.TotalRequests)
	assert.Equal(t, 2, m.FailedRequests)
	assert.Equal(t, 0.0, m.SuccessRate)
	assert.Equal(t, 0.0, m.AverageResponseTimeMs)
}

func TestProcessRequest_PreprocessingFailures(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		details []string
	}{
		{"missing query", map[string]any{"context": map[string]any{}}, []string{"Missing or empty query"}},
		{"blank query", map[string]any{"query": "   "}, []string{"Missing or empty query"}},
		{"script tag", map[string]any{"query": "<script>alert(1)</script>"}, []string{"Potential injection detected in query"}},
		{"javascript url", map[string]any{"query": "JavaScript:void(0)"}, []string{"Potential injection detected in query"}},
		{"event handler", map[string]any{"query": "img onload = steal()"}, []string{"Potential injection detected in query"}},
		{"eval", map[string]any{"query": "eval (payload)"}, []string{"Potential injection detected in query"}},
		{"drop table", map[string]any{"query": "x; drop   table users"}, []string{"Potential injection detected in query"}},
		{"delete from", map[string]any{"query": "DELETE FROM accounts"}, []string{"Potential injection detected in query"}},
		{"insert into", map[string]any{"query": "insert into t values (1)"}, []string{"Potential injection detected in query"}},
		{"context not a mapping", map[string]any{"query": "hi", "context": "nope"}, []string{"Context must be a dictionary"}},
		{
			"multiple errors",
			map[string]any{"query": "", "context": []string{"a"}},
			[]string{"Missing or empty query", "Context must be a dictionary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			resp := h.ProcessRequest(tt.raw)

			assert.False(t, resp.Success)
			assert.Equal(t, "Input validation failed", resp.Error)
			assert.Equal(t, tt.details, resp.ErrorDetails)

			m := h.PerformanceMetrics()
			assert.Equal(t, 0, m.TotalRequests)
			assert.Equal(t, 1, m.FailedRequests)
		})
	}
}

func TestProcessRequest_BenignQueriesPass(t *testing.T) {
	h := newTestHandler(t)

	for _, q := range []string{"How do I delete a file?", "Explain evaluation metrics", "What is a table drop-down?"} {
		resp := h.ProcessRequest(map[string]any{"query": q})
		assert.True(t, resp.Success, "%q: %s %v", q, resp.Error, resp.ErrorDetails)
	}
}

func TestProcessRequest_GeneratorFailureCounts(t *testing.T) {
	provider := &stubProvider{contents: []string{"It is always true and never false"}}
	h := newTestHandler(t, WithProvider(provider))

	resp := h.ProcessRequest(map[string]any{"query": "q"})

	assert.False(t, resp.Success)
	assert.Equal(t, "Logic inconsistency detected", resp.Error)
	assert.NotNil(t, resp.HallucinationPrevention)

	m := h.PerformanceMetrics()
	assert.Equal(t, 1, m.TotalRequests)
	assert.Equal(t, 1, m.FailedRequests)
	assert.Equal(t, 0, m.HallucinationsPrevented, "error text names neither hallucination nor validation")
}

func TestProcessRequest_HallucinationsPreventedByErrorText(t *testing.T) {
	provider := &stubProvider{err: errors.New("validation backend unavailable")}
	h := newTestHandler(t, WithProvider(provider))

	resp := h.ProcessRequest(map[string]any{"query": "q"})

	assert.Equal(t, "Generation error: validation backend unavailable", resp.Error)
	m := h.PerformanceMetrics()
	assert.Equal(t, 1, m.HallucinationsPrevented)
	assert.Equal(t, 1.0, m.HallucinationPreventionRate)
}

func TestProcessRequest_SlowResponseOnlyWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.Default()
	cfg.MaxResponseTimeMs = 0

	h, err := NewModelHandler(cfg, WithLogger(zap.New(core)))
	require.NoError(t, err)

	resp := h.ProcessRequest(map[string]any{"query": "q"})

	assert.True(t, resp.Success)
	assert.Equal(t, 1, logs.FilterMessage("Response time exceeded threshold").Len())
}

func TestProcessRequest_RecordsOutcomes(t *testing.T) {
	rec := &fakeRecorder{}
	h := newTestHandler(t, WithCollector(rec))

	h.ProcessRequest(map[string]any{"query": "q"})
	h.ProcessRequest(nil)
	h.ProcessRequest(map[string]any{"query": "<script>"})

	require.Len(t, rec.requests, 3)
	assert.Equal(t, OutcomeSuccess, rec.requests[0].outcome)
	assert.Equal(t, OutcomeRejected, rec.requests[1].outcome)
	assert.Equal(t, OutcomeRejected, rec.requests[2].outcome)
}

func TestProcessRequest_SessionsAreIsolated(t *testing.T) {
	provider := &stubProvider{contents: []string{"The capital is not Paris"}}
	h := newTestHandler(t, WithProvider(provider))
	h.Checker().RegisterFact("capital", "Paris")

	resp := h.ProcessRequest(map[string]any{"query": "q"})
	assert.True(t, resp.Success, "generator does not see handler facts: %v", resp.ErrorDetails)

	detected, _, reason := h.DetectHallucination("The capital is not Paris", map[string]any{"source": "doc"})
	assert.True(t, detected)
	assert.Equal(t, "Contradicts fact: capital = Paris", reason)
}

func TestBatchProcess(t *testing.T) {
	h := newTestHandler(t)

	assert.Empty(t, h.BatchProcess(nil))

	responses := h.BatchProcess([]map[string]any{
		{"query": "first"},
		{},
		{"query": "DROP TABLE x"},
	})
	require.Len(t, responses, 3)
	assert.True(t, responses[0].Success)
	assert.Equal(t, "Empty request", responses[1].Error)
	assert.Equal(t, "Input validation failed", responses[2].Error)

	m := h.PerformanceMetrics()
	assert.Equal(t, 1, m.TotalRequests)
	assert.Equal(t, 2, m.FailedRequests)
}

func TestResetMetrics_KeepsLog(t *testing.T) {
	h := newTestHandler(t)
	h.ProcessRequest(map[string]any{"query": "q"})
	h.DetectHallucination("no source given", nil)

	h.ResetMetrics()

	m := h.PerformanceMetrics()
	assert.Equal(t, 0, m.TotalRequests)
	assert.Equal(t, 0, m.SuccessfulRequests)
	assert.Equal(t, 0, m.FailedRequests)
	assert.Len(t, h.HallucinationLog(), 1)
	assert.Len(t, m.RecentHallucinations, 1)
}

func TestDetectHallucination_Cascade(t *testing.T) {
	doc := map[string]any{"source": "doc"}

	tests := []struct {
		name          string
		content       string
		ctx           map[string]any
		detected      bool
		confidence    float64
		reason        string
		detectionType string
	}{
		{"empty content", "", nil, true, 1.0, "Empty content", ""},
		{"missing source", "hello world", nil, true, 1.0, "Missing source reference", models.DetectionDataValidation},
		{"low confidence", "As an AI, I cannot help", doc, true, 0.91, "Confidence 0.09 below threshold 0.85", models.DetectionDataValidation},
		{"internal contradiction", "Yes and no", doc, true, 0.9, "Internal contradiction: contains both 'yes' and 'no'", models.DetectionLogicInconsistency},
		{"self reference", "Speaking as a language model here", doc, true, 0.95, "Self-referential AI pattern", models.DetectionPatternMatch},
		{"access limitation", "The server cannot access it", doc, true, 0.9, "Access limitation pattern", models.DetectionPatternMatch},
		{"placeholder", "See [citation] for details", doc, true, 0.8, "Placeholder pattern", models.DetectionPatternMatch},
		{"speculation", "Hypothetically the answer holds", doc, true, 0.7, "Speculative language pattern", models.DetectionPatternMatch},
		{"clean", "Water boils at 100 degrees Celsius", doc, false, 1.0, "No hallucination detected", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			detected, confidence, reason := h.DetectHallucination(tt.content, tt.ctx)

			assert.Equal(t, tt.detected, detected)
			assert.InDelta(t, tt.confidence, confidence, 1e-9)
			assert.Equal(t, tt.reason, reason)

			log := h.HallucinationLog()
			if tt.detectionType == "" {
				assert.Empty(t, log)
				return
			}
			require.Len(t, log, 1)
			assert.Equal(t, tt.detectionType, log[0].DetectionType)
			assert.Equal(t, tt.reason, log[0].Reason)
		})
	}
}

func TestDetectHallucination_FirstPatternWins(t *testing.T) {
	h := newTestHandler(t)

	_, confidence, reason := h.DetectHallucination("As a language model, in theory {x}", map[string]any{"source": "doc"})
	assert.Equal(t, 0.95, confidence)
	assert.Equal(t, "Self-referential AI pattern", reason)
}

func TestDetectHallucination_SnippetAndCap(t *testing.T) {
	h := newTestHandler(t)

	long := strings.Repeat("é", 150)
	h.DetectHallucination(long, nil)
	assert.Equal(t, strings.Repeat("é", 100), h.HallucinationLog()[0].ContentSnippet)

	for i := 0; i < maxHallucinationLog; i++ {
		h.DetectHallucination("unsourced", nil)
	}
	assert.Len(t, h.HallucinationLog(), retainedHallucinationLog)
	assert.Len(t, h.PerformanceMetrics().RecentHallucinations, recentHallucinationCount)
}

func TestDetectHallucination_NotifiesCollectorAndSink(t *testing.T) {
	rec := &fakeRecorder{}
	sink := &fakeSink{}
	h := newTestHandler(t, WithCollector(rec), WithAuditSink(sink))

	h.DetectHallucination("See [ref]", map[string]any{"source": "doc"})
	h.DetectHallucination("Water boils at 100 degrees Celsius", map[string]any{"source": "doc"})

	assert.Equal(t, []string{models.DetectionPatternMatch}, rec.hallucinations)
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "See [ref]", sink.entries[0].ContentSnippet)
}

func TestDetectHallucination_SinkFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := newTestHandler(t, WithAuditSink(&fakeSink{fail: true}), WithLogger(zap.New(core)))

	detected, _, _ := h.DetectHallucination("unsourced", nil)

	assert.True(t, detected)
	assert.Len(t, h.HallucinationLog(), 1)
	assert.Equal(t, 1, logs.FilterMessage("Failed to record hallucination in audit sink").Len())
}

func TestWithProvider_UsedByGenerator(t *testing.T) {
	provider := &stubProvider{contents: []string{"Plain answer"}}
	h := newTestHandler(t, WithProvider(provider))

	resp := h.ProcessRequest(map[string]any{"query": "q"})

	assert.Equal(t, "Plain answer", resp.Content)
	assert.Len(t, provider.calls, 1)
	var _ llm.Provider = provider
}

func TestRegisterFact_ReachesBothSessions(t *testing.T) {
	h := newTestHandler(t)
	h.RegisterFact("capital", "Paris")

	assert.Equal(t, 1, h.Checker().ContextSummary().FactsRegistered)

	resp := h.ProcessRequest(map[string]any{"query": "The capital is not Paris"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Logic inconsistency detected", resp.Error)
}

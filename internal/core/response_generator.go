// ABOUTME: ResponseGenerator drafts, validates, regenerates once and logic-checks responses
// ABOUTME: Owns its own session, independent of the handler's validator and checker
package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/llm"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/models"
	"go.uber.org/zap"
)

// ResponseContentSource is the source reference draft content is validated against
const ResponseContentSource = "response_content"

const (
	regenerationMaxLength = 500
	// filtered content shorter than this share of the original is over-filtered
	minRetainedShare = 0.5
)

// GeneratorConfig configures a ResponseGenerator.
// A zero ContextWindow uses the default; a nil Provider uses the placeholder.
type GeneratorConfig struct {
	ConfidenceThreshold float64
	ContextWindow       int
	Provider            llm.Provider
	Logger              *zap.Logger
}

type generationCounters struct {
	total      int
	successful int
	rejected   int
}

// ResponseGenerator turns requests into validated responses
type ResponseGenerator struct {
	validator *DataValidator
	checker   *LogicChecker
	provider  llm.Provider
	logger    *zap.Logger
	stats     generationCounters
}

// draftValidation is the outcome of validating one draft
type draftValidation struct {
	valid      bool
	errors     []string
	warnings   []string
	confidence float64
}

// NewResponseGenerator creates a generator with a fresh session
func NewResponseGenerator(cfg GeneratorConfig) (*ResponseGenerator, error) {
	window := cfg.ContextWindow
	if window == 0 {
		window = config.DefaultContextWindow
	}
	session, err := NewSession(window)
	if err != nil {
		return nil, err
	}

	logger := logging.OrNop(cfg.Logger).Named("generator")
	validator, err := NewDataValidatorForSession(cfg.ConfidenceThreshold, session, logger)
	if err != nil {
		return nil, err
	}

	provider := cfg.Provider
	if provider == nil {
		provider = llm.NewPlaceholderProvider()
	}

	logger.Info("ResponseGenerator initialized", zap.Float64("threshold", cfg.ConfidenceThreshold))
	return &ResponseGenerator{
		validator: validator,
		checker:   NewLogicCheckerForSession(session, logger),
		provider:  provider,
		logger:    logger,
	}, nil
}

// GenerateResponse runs the full pipeline for one request. It never panics;
// every failure is reported as an unsuccessful response.
func (g *ResponseGenerator) GenerateResponse(req *models.Request) (resp *models.Response) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Response generation error", zap.Any("panic", r))
			g.stats.total++
			resp = models.NewErrorResponse(fmt.Sprintf("Generation error: %v", r), nil)
		}
	}()

	if req.IsEmpty() {
		g.logger.Error("Empty request received")
		return models.NewErrorResponse("Empty request", nil)
	}
	if req.Query == "" {
		g.logger.Warn("No query in request")
		return models.NewErrorResponse("No query provided", nil)
	}

	draft, err := g.draft(req, nil)
	if err != nil {
		return g.generationError(err)
	}

	attempt := 1
	validation := g.validateDraft(draft)
	if !validation.valid {
		g.logger.Warn("Response validation failed", zap.Strings("errors", validation.errors))
		g.stats.rejected++

		constraints := &llm.Constraints{
			AvoidPatterns:  avoidPatterns(validation.errors),
			RequireSources: true,
			MaxLength:      regenerationMaxLength,
		}
		g.logger.Info("Regenerating response with stricter constraints",
			zap.Strings("avoid_patterns", constraints.AvoidPatterns))

		draft, err = g.draft(req, constraints)
		if err != nil {
			return g.generationError(err)
		}
		draft.Content = stripUncertainty(draft.Content)

		attempt = 2
		validation = g.validateDraft(draft)
		if !validation.valid {
			return models.NewErrorResponse("Could not generate valid response", validation.errors)
		}
	}

	logic := g.checker.CheckResponseLogic(draft)
	if !logic.Valid {
		g.logger.Warn("Logic check failed", zap.Strings("errors", logic.Errors))
		g.stats.rejected++
		return models.NewErrorResponse("Logic inconsistency detected", logic.Errors)
	}

	resp = buildFinalResponse(draft, validation, logic, attempt)
	g.stats.successful++
	g.stats.total++

	g.logger.Info("Response generated", zap.Float64("confidence", resp.Confidence))
	return resp
}

func (g *ResponseGenerator) draft(req *models.Request, constraints *llm.Constraints) (*models.Draft, error) {
	draft, err := g.provider.Draft(req.Query, req.Context, constraints)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = &models.Draft{}
	}
	return draft, nil
}

func (g *ResponseGenerator) generationError(err error) *models.Response {
	g.logger.Error("Response generation error", zap.Error(err))
	g.stats.total++
	return models.NewErrorResponse(fmt.Sprintf("Generation error: %v", err), nil)
}

// validateDraft filters the draft content in place and drops invalid data points
func (g *ResponseGenerator) validateDraft(draft *models.Draft) draftValidation {
	result := draftValidation{errors: []string{}, warnings: []string{}, confidence: 1.0}

	if draft.Content != "" {
		valid, filtered, confidence := g.ValidateAndFilter(draft.Content, ResponseContentSource)
		result.confidence = confidence
		if valid {
			draft.Content = filtered
		} else {
			result.errors = append(result.errors, fmt.Sprintf("Content validation failed (confidence: %.2f)", confidence))
		}
	}

	kept := make([]models.DataPoint, 0, len(draft.Data))
	for _, point := range draft.Data {
		valid, _, reason := g.validator.ValidateDataPoint(point.Value, point.Source)
		if valid {
			kept = append(kept, point)
			continue
		}
		result.warnings = append(result.warnings, fmt.Sprintf("Data point rejected: %s", reason))
	}
	draft.Data = kept

	result.valid = len(result.errors) == 0
	return result
}

// ValidateAndFilter validates content against source and strips known
// hallucination phrases. Content that loses more than half its length to
// filtering is rejected with halved confidence.
func (g *ResponseGenerator) ValidateAndFilter(content, source string) (valid bool, filtered string, confidence float64) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Validation and filtering error", zap.Any("panic", r))
			valid, filtered, confidence = false, "", 0.0
		}
	}()

	if content == "" {
		return false, "", 0.0
	}

	ok, confidence, reason := g.validator.ValidateDataPoint(content, source)
	if !ok {
		g.logger.Debug("Content validation failed", zap.String("reason", reason))
		return false, "", confidence
	}

	filtered = filterHallucinationPhrases(content)
	if float64(utf8.RuneCountInString(filtered)) < float64(utf8.RuneCountInString(content))*minRetainedShare {
		g.logger.Warn("Filtering removed too much content")
		return false, filtered, confidence * 0.5
	}
	return true, filtered, confidence
}

// GenerateBatchResponses generates responses one request at a time, in order
func (g *ResponseGenerator) GenerateBatchResponses(reqs []*models.Request) []*models.Response {
	responses := make([]*models.Response, 0, len(reqs))
	for _, req := range reqs {
		responses = append(responses, g.GenerateResponse(req))
	}
	if len(reqs) > 0 {
		g.logger.Info("Batch generation complete", zap.Int("responses", len(responses)))
	}
	return responses
}

// GenerationStats reports generator counters. Total counts completed
// generations and generation errors; rejections are counted per rejected attempt.
func (g *ResponseGenerator) GenerationStats() models.GenerationStats {
	stats := models.GenerationStats{
		TotalRequests: g.stats.total,
		Successful:    g.stats.successful,
		Rejected:      g.stats.rejected,
	}
	if g.stats.total > 0 {
		stats.SuccessRate = float64(g.stats.successful) / float64(g.stats.total)
		stats.RejectionRate = float64(g.stats.rejected) / float64(g.stats.total)
	}
	return stats
}

// RegisterFact registers a fact in the generator's own session
func (g *ResponseGenerator) RegisterFact(key string, value any) {
	g.checker.RegisterFact(key, value)
}

func filterHallucinationPhrases(content string) string {
	filtered := content
	for _, phrase := range hallucinationPhrases {
		filtered = strings.ReplaceAll(filtered, phrase, "")
	}
	return strings.Join(strings.Fields(filtered), " ")
}

func stripUncertainty(content string) string {
	filtered := content
	for _, phrase := range uncertaintyPhrases {
		filtered = strings.ReplaceAll(filtered, phrase, "")
	}
	return strings.TrimSpace(filtered)
}

// avoidPatterns maps failure reasons to the patterns a regeneration should avoid
func avoidPatterns(errs []string) []string {
	patterns := []string{}
	for _, e := range errs {
		lower := strings.ToLower(e)
		if strings.Contains(lower, "hallucination") {
			patterns = append(patterns, "unsupported_claim")
		}
		if strings.Contains(lower, "contradiction") {
			patterns = append(patterns, "contradictory_statement")
		}
		if strings.Contains(lower, "confidence") {
			patterns = append(patterns, "low_confidence_assertion")
		}
	}
	return patterns
}

func buildFinalResponse(draft *models.Draft, validation draftValidation, logic models.LogicResult, attempt int) *models.Response {
	data := draft.Data
	if data == nil {
		data = []models.DataPoint{}
	}
	return &models.Response{
		Success:    true,
		Content:    draft.Content,
		Data:       data,
		Confidence: validation.confidence*0.5 + logic.ConsistencyScore*0.5,
		Metadata: map[string]any{
			"timestamp":           time.Now().UTC().Format(time.RFC3339Nano),
			"validation_warnings": validation.warnings,
			"logic_warnings":      logic.Warnings,
			"generation_attempt":  attempt,
		},
	}
}

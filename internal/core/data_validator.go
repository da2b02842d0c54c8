// ABOUTME: DataValidator scores data points against a source reference
// ABOUTME: Confidence drops for suspicious phrasing and for drift from registered source content
package core

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/models"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	maxValidationHistory    = 10000
	retainedValidationCount = 5000
)

// DataValidator validates data points and keeps an audit history of results
type DataValidator struct {
	threshold float64
	session   *Session
	history   []models.ValidationRecord
	logger    *zap.Logger
}

// NewDataValidator creates a validator with its own session
func NewDataValidator(threshold float64, logger *zap.Logger) (*DataValidator, error) {
	session, err := NewSession(config.DefaultContextWindow)
	if err != nil {
		return nil, err
	}
	return NewDataValidatorForSession(threshold, session, logger)
}

// NewDataValidatorForSession creates a validator that keeps its hash cache in session
func NewDataValidatorForSession(threshold float64, session *Session, logger *zap.Logger) (*DataValidator, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: confidence threshold must be between 0 and 1, got %v", ErrConfiguration, threshold)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session is required", ErrConfiguration)
	}

	logger = logging.OrNop(logger)
	logger.Info("DataValidator initialized", zap.Float64("threshold", threshold))

	return &DataValidator{
		threshold: threshold,
		session:   session,
		logger:    logger,
	}, nil
}

// Threshold returns the minimum confidence for a valid data point
func (v *DataValidator) Threshold() float64 {
	return v.threshold
}

// ValidateDataPoint scores data against sourceRef.
// The reason is empty when the data point is valid.
func (v *DataValidator) ValidateDataPoint(data any, sourceRef string) (valid bool, confidence float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("Validation error", zap.Any("panic", r))
			valid, confidence, reason = false, 0.0, fmt.Sprintf("Validation error: %v", r)
		}
	}()

	if data == nil {
		v.logger.Warn("Null data point received")
		return false, 0.0, "Data point is null"
	}
	if sourceRef == "" {
		v.logger.Warn("No source reference provided")
		return false, 0.0, "Missing source reference"
	}

	content := stringify(data)
	confidence = v.calculateConfidence(content, sourceRef)
	valid = confidence >= v.threshold
	v.record(content, sourceRef, valid, confidence)

	if !valid {
		reason = fmt.Sprintf("Confidence %.2f below threshold %v", confidence, v.threshold)
		v.logger.Warn("Data validation failed", zap.String("reason", reason))
		return false, confidence, reason
	}

	v.logger.Debug("Data validated", zap.Float64("confidence", confidence))
	return true, confidence, ""
}

// RegisterSourceData records reference content for a source.
// Later data validated against the same source is penalized if it differs.
func (v *DataValidator) RegisterSourceData(sourceRef string, data any) {
	if sourceRef == "" {
		v.logger.Warn("Cannot register source data with empty source")
		return
	}
	v.session.cacheHash(sourceRef, contentHash(stringify(data)))
	v.logger.Debug("Source data registered", zap.String("source", sourceRef))
}

func (v *DataValidator) calculateConfidence(content, sourceRef string) float64 {
	confidence := 1.0

	if sourceRef == "" {
		confidence *= missingSourcePenalty
	}

	for _, re := range suspiciousPatterns {
		if re.MatchString(content) {
			confidence *= suspiciousPenalty
			v.logger.Debug("Hallucination pattern detected", zap.String("pattern", re.String()))
		}
	}

	if cached, ok := v.session.cachedHash(sourceRef); ok && cached != contentHash(content) {
		confidence *= driftPenalty
		v.logger.Debug("Data inconsistency with cache detected", zap.String("source", sourceRef))
	}

	return clamp01(confidence)
}

func (v *DataValidator) record(content, sourceRef string, valid bool, confidence float64) {
	v.history = append(v.history, models.ValidationRecord{
		DataHash:   contentHash(content),
		Source:     sourceRef,
		Valid:      valid,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	})

	if len(v.history) > maxValidationHistory {
		kept := make([]models.ValidationRecord, retainedValidationCount)
		copy(kept, v.history[len(v.history)-retainedValidationCount:])
		v.history = kept
	}
}

// ValidateBatch validates items in order and summarizes the outcome
func (v *DataValidator) ValidateBatch(items []models.BatchItem) models.BatchResult {
	result := models.BatchResult{Results: make([]models.BatchEntry, 0, len(items))}

	for _, item := range items {
		valid, confidence, reason := v.ValidateDataPoint(item.Data, item.Source)
		if valid {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Results = append(result.Results, models.BatchEntry{
			Data:       item.Data,
			Source:     item.Source,
			Valid:      valid,
			Confidence: confidence,
			Error:      reason,
		})
	}

	if len(items) > 0 {
		v.logger.Info("Batch validation complete",
			zap.Int("valid", result.Valid),
			zap.Int("invalid", result.Invalid))
	}
	return result
}

// CheckNumericBounds reports whether value lies in [lo, hi].
// Nil and non-numeric values are out of bounds.
func (v *DataValidator) CheckNumericBounds(value any, lo, hi float64) bool {
	if value == nil {
		return false
	}

	f, err := cast.ToFloat64E(value)
	if err != nil {
		v.logger.Error("Numeric bounds check failed", zap.Error(err))
		return false
	}

	inBounds := lo <= f && f <= hi
	if !inBounds {
		v.logger.Warn("Value outside bounds",
			zap.Float64("value", f),
			zap.Float64("min", lo),
			zap.Float64("max", hi))
	}
	return inBounds
}

// DetectPatternAnomaly reports whether data matches pattern from its first character.
// Empty input and invalid patterns report false.
func (v *DataValidator) DetectPatternAnomaly(data any, pattern string) bool {
	content := stringify(data)
	if content == "" || pattern == "" {
		return false
	}

	// compile bare first so an unbalanced pattern cannot pair up with the anchor group
	if _, err := regexp.Compile(pattern); err != nil {
		v.logger.Error("Pattern matching error", zap.String("pattern", pattern), zap.Error(err))
		return false
	}
	anchored, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		v.logger.Error("Pattern matching error", zap.String("pattern", pattern), zap.Error(err))
		return false
	}

	matches := anchored.MatchString(content)
	if !matches {
		v.logger.Warn("Pattern anomaly detected", zap.String("pattern", pattern))
	}
	return matches
}

// ValidationStats aggregates the retained history
func (v *DataValidator) ValidationStats() models.ValidationStats {
	if len(v.history) == 0 {
		return models.ValidationStats{}
	}

	stats := models.ValidationStats{TotalValidations: len(v.history)}
	var sum float64
	for _, rec := range v.history {
		if rec.Valid {
			stats.ValidCount++
		}
		sum += rec.Confidence
	}
	stats.InvalidCount = stats.TotalValidations - stats.ValidCount
	stats.AverageConfidence = sum / float64(stats.TotalValidations)
	return stats
}

func clamp01(f float64) float64 {
	return math.Max(0.0, math.Min(1.0, f))
}

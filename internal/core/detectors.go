// ABOUTME: Standalone hallucination detection as an ordered cascade of detectors
// ABOUTME: The first positive detector wins and is recorded in the audit log
package core

import (
	"fmt"
	"strings"

	"github.com/harper/amb/internal/models"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// detection is a positive result from one detector
type detection struct {
	detectionType string
	confidence    float64
	reason        string
}

// DetectHallucination checks content with data validation, logic consistency
// and the pattern table, in that order. The source reference for validation is
// read from ctx["source"]. It never panics.
func (h *ModelHandler) DetectHallucination(content string, ctx map[string]any) (detected bool, confidence float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Hallucination detection error", zap.Any("panic", r))
			detected, confidence, reason = true, 0.5, fmt.Sprintf("Detection error: %v", r)
		}
	}()

	if content == "" {
		return true, 1.0, "Empty content"
	}

	var source string
	if ctx != nil {
		source = cast.ToString(ctx["source"])
	}

	var validationConfidence float64
	detectors := []func() *detection{
		func() *detection {
			valid, conf, reason := h.validator.ValidateDataPoint(content, source)
			validationConfidence = conf
			if valid {
				return nil
			}
			if reason == "" {
				reason = "Failed data validation"
			}
			return &detection{models.DetectionDataValidation, 1.0 - conf, reason}
		},
		func() *detection {
			consistent, contradictions := h.checker.CheckStatementConsistency(content, nil)
			if consistent {
				return nil
			}
			return &detection{models.DetectionLogicInconsistency, 0.9, strings.Join(contradictions, "; ")}
		},
		func() *detection {
			return matchHallucinationRules(content)
		},
	}

	for _, detect := range detectors {
		if d := detect(); d != nil {
			h.logHallucination(content, d)
			return true, d.confidence, d.reason
		}
	}
	return false, validationConfidence, "No hallucination detected"
}

// matchHallucinationRules returns the first matching pattern rule, if any
func matchHallucinationRules(content string) *detection {
	for _, rule := range hallucinationRules {
		if rule.re.MatchString(content) {
			return &detection{models.DetectionPatternMatch, rule.confidence, rule.reason}
		}
	}
	return nil
}

func detectInjection(text string) bool {
	for _, re := range injectionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

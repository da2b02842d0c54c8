// ABOUTME: LogicChecker detects contradictions against session context, facts and within a statement
// ABOUTME: Consistent statements are admitted into the session's bounded context window
package core

import (
	"fmt"
	"strings"

	"github.com/harper/amb/internal/logging"
	"github.com/harper/amb/internal/models"
	"github.com/harper/amb/internal/util"
	"go.uber.org/zap"
)

// sharedWordThreshold is the number of common words above which two
// opposing statements are treated as being about the same subject
const sharedWordThreshold = 3

// LogicChecker checks statements and responses for logical consistency
type LogicChecker struct {
	session *Session
	logger  *zap.Logger
}

// NewLogicChecker creates a checker with its own session of the given capacity
func NewLogicChecker(contextWindow int, logger *zap.Logger) (*LogicChecker, error) {
	session, err := NewSession(contextWindow)
	if err != nil {
		return nil, err
	}
	return NewLogicCheckerForSession(session, logger), nil
}

// NewLogicCheckerForSession creates a checker over an existing session
func NewLogicCheckerForSession(session *Session, logger *zap.Logger) *LogicChecker {
	logger = logging.OrNop(logger)
	logger.Info("LogicChecker initialized", zap.Int("context_window", session.ContextWindow()))
	return &LogicChecker{session: session, logger: logger}
}

// CheckStatementConsistency checks statement against retained context, registered
// facts and itself. The statement is retained only when no contradiction is found.
func (c *LogicChecker) CheckStatementConsistency(statement string, metadata map[string]any) (consistent bool, contradictions []string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Logic check error", zap.Any("panic", r))
			consistent, contradictions = false, []string{fmt.Sprintf("Logic check error: %v", r)}
		}
	}()

	if statement == "" {
		c.logger.Warn("Empty statement provided")
		return false, []string{"Empty statement"}
	}

	contradictions = []string{}
	contradictions = append(contradictions, c.checkContext(statement)...)
	contradictions = append(contradictions, c.checkFacts(statement)...)
	contradictions = append(contradictions, checkInternal(statement)...)

	if len(contradictions) > 0 {
		c.logger.Warn("Logic inconsistencies found", zap.Strings("contradictions", contradictions))
		return false, contradictions
	}

	c.session.admit(statement, metadata)
	c.logger.Debug("Statement is logically consistent")
	return true, contradictions
}

func (c *LogicChecker) checkContext(statement string) []string {
	var out []string
	for _, entry := range c.session.context {
		if statementsContradict(statement, entry.Statement) {
			out = append(out, fmt.Sprintf("Contradicts previous: %s...", util.Snippet(entry.Statement, 50)))
		}
	}
	return out
}

// statementsContradict flags an "is" / "is not" opposition between two
// statements that share enough vocabulary to be about the same subject
func statementsContradict(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)

	opposed := (strings.Contains(a, "is") && strings.Contains(b, "is not")) ||
		(strings.Contains(a, "is not") && strings.Contains(b, "is"))
	if !opposed {
		return false
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		words[w] = struct{}{}
	}
	common := make(map[string]struct{})
	for _, w := range strings.Fields(b) {
		if _, ok := words[w]; ok {
			common[w] = struct{}{}
		}
	}
	return len(common) > sharedWordThreshold
}

func (c *LogicChecker) checkFacts(statement string) []string {
	var out []string
	lower := strings.ToLower(statement)

	for _, fact := range c.session.Facts() {
		if !strings.Contains(lower, strings.ToLower(fact.Key)) {
			continue
		}
		value := strings.ToLower(stringify(fact.Value))
		for _, neg := range negationWords {
			if strings.Contains(lower, neg) && strings.Contains(lower, value) {
				out = append(out, fmt.Sprintf("Contradicts fact: %s = %s", fact.Key, stringify(fact.Value)))
				break
			}
		}
	}
	return out
}

func checkInternal(statement string) []string {
	var out []string
	lower := strings.ToLower(statement)
	for _, pair := range antonymPairs {
		if strings.Contains(lower, pair.a) && strings.Contains(lower, pair.b) {
			out = append(out, fmt.Sprintf("Internal contradiction: contains both '%s' and '%s'", pair.a, pair.b))
		}
	}
	return out
}

// CheckResponseLogic checks a draft's content and the plausibility of its data points.
// Only content contradictions invalidate the draft; data issues are warnings.
func (c *LogicChecker) CheckResponseLogic(draft *models.Draft) models.LogicResult {
	if draft.IsEmpty() {
		return models.LogicResult{
			Valid:            false,
			Errors:           []string{"Empty response"},
			Warnings:         []string{},
			ConsistencyScore: 0.0,
		}
	}

	result := models.LogicResult{Errors: []string{}, Warnings: []string{}}
	var checks, passed int

	if draft.Content != "" {
		consistent, contradictions := c.CheckStatementConsistency(draft.Content, nil)
		checks++
		if consistent {
			passed++
		} else {
			result.Errors = append(result.Errors, contradictions...)
		}
	}

	for _, point := range draft.Data {
		issues := dataPointIssues(point)
		checks++
		if len(issues) == 0 {
			passed++
		} else {
			result.Warnings = append(result.Warnings, issues...)
		}
	}

	if checks > 0 {
		result.ConsistencyScore = float64(passed) / float64(checks)
	}
	result.Valid = len(result.Errors) == 0

	c.logger.Info("Response logic check complete",
		zap.Bool("valid", result.Valid),
		zap.Float64("score", result.ConsistencyScore))
	return result
}

func dataPointIssues(point models.DataPoint) []string {
	var issues []string
	if p := point.Percentage; p != nil && (*p < 0 || *p > 100) {
		issues = append(issues, fmt.Sprintf("Invalid percentage: %v", *p))
	}
	if n := point.Count; n != nil && *n < 0 {
		issues = append(issues, fmt.Sprintf("Negative count: %v", *n))
	}
	return issues
}

// RegisterFact stores a fact for later contradiction checks; last write wins.
// An empty key is ignored.
func (c *LogicChecker) RegisterFact(key string, value any) {
	fact, err := models.NewFact(key, value)
	if err != nil {
		c.logger.Warn("Cannot register fact", zap.Error(err))
		return
	}
	c.session.setFact(fact)
	c.logger.Debug("Fact registered", zap.String("key", key), zap.Any("value", value))
}

// ContextSummary describes the session's current context window
func (c *LogicChecker) ContextSummary() models.ContextSummary {
	summary := models.ContextSummary{
		ContextSize:     len(c.session.context),
		MaxContext:      c.session.ContextWindow(),
		FactsRegistered: c.session.FactCount(),
	}
	if n := len(c.session.context); n > 0 {
		oldest := c.session.context[0].Timestamp
		newest := c.session.context[n-1].Timestamp
		summary.OldestContext = &oldest
		summary.NewestContext = &newest
	}
	return summary
}

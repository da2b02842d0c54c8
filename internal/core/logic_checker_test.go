// ABOUTME: Tests for LogicChecker consistency checks and response logic
// ABOUTME: Covers context, fact and internal contradictions plus FIFO admission

package core

import (
	"errors"
	"testing"

	"github.com/harper/amb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, window int) *LogicChecker {
	t.Helper()
	c, err := NewLogicChecker(window, nil)
	require.NoError(t, err)
	return c
}

func ptr(f float64) *float64 { return &f }

func TestNewLogicChecker_InvalidWindow(t *testing.T) {
	_, err := NewLogicChecker(0, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCheckStatementConsistency_Empty(t *testing.T) {
	c := newTestChecker(t, 5)

	ok, contradictions := c.CheckStatementConsistency("", nil)
	assert.False(t, ok)
	assert.Equal(t, []string{"Empty statement"}, contradictions)
	assert.Equal(t, 0, c.ContextSummary().ContextSize)
}

func TestCheckStatementConsistency_FIFOEviction(t *testing.T) {
	c := newTestChecker(t, 3)

	statements := []string{
		"The sky appears blue today",
		"Cats like warm places",
		"Rivers flow toward the sea",
		"Bread is baked in ovens",
	}
	for _, s := range statements {
		ok, contradictions := c.CheckStatementConsistency(s, nil)
		require.True(t, ok, "%q: %v", s, contradictions)
	}

	summary := c.ContextSummary()
	assert.Equal(t, 3, summary.ContextSize)
	assert.Equal(t, 3, summary.MaxContext)
	assert.Equal(t, "Cats like warm places", c.session.Context()[0].Statement)
}

func TestCheckStatementConsistency_ContextContradiction(t *testing.T) {
	c := newTestChecker(t, 10)

	ok, _ := c.CheckStatementConsistency("The capital of France is Paris city", nil)
	require.True(t, ok)

	ok, contradictions := c.CheckStatementConsistency("The capital of France is not Paris city", nil)
	assert.False(t, ok)
	assert.Equal(t, []string{"Contradicts previous: The capital of France is Paris city..."}, contradictions)
	assert.Equal(t, 1, c.ContextSummary().ContextSize, "contradicting statements are not admitted")
}

func TestCheckStatementConsistency_FewSharedWordsIsNotContradiction(t *testing.T) {
	c := newTestChecker(t, 10)

	ok, _ := c.CheckStatementConsistency("Paris is big", nil)
	require.True(t, ok)

	ok, contradictions := c.CheckStatementConsistency("Rome is not small", nil)
	assert.True(t, ok, "%v", contradictions)
}

func TestCheckStatementConsistency_PreviousStatementSnippet(t *testing.T) {
	c := newTestChecker(t, 10)
	long := "The annual rainfall in the northern valley region is considerably higher than average"

	ok, _ := c.CheckStatementConsistency(long, nil)
	require.True(t, ok)

	_, contradictions := c.CheckStatementConsistency("The annual rainfall in the northern valley region is not high", nil)
	require.Len(t, contradictions, 1)
	assert.Equal(t, "Contradicts previous: The annual rainfall in the northern valley region ...", contradictions[0])
}

func TestCheckStatementConsistency_FactContradiction(t *testing.T) {
	c := newTestChecker(t, 10)
	c.RegisterFact("capital", "Paris")

	ok, contradictions := c.CheckStatementConsistency("The capital is not Paris", nil)
	assert.False(t, ok)
	assert.Equal(t, []string{"Contradicts fact: capital = Paris"}, contradictions)

	c.RegisterFact("capital", "Lyon")
	ok, contradictions = c.CheckStatementConsistency("The capital is not Paris", nil)
	assert.True(t, ok, "%v", contradictions)
	assert.Equal(t, 1, c.ContextSummary().FactsRegistered)
}

func TestCheckStatementConsistency_InternalContradiction(t *testing.T) {
	c := newTestChecker(t, 10)

	ok, contradictions := c.CheckStatementConsistency("It is always true and never false", nil)
	assert.False(t, ok)
	assert.Equal(t, []string{
		"Internal contradiction: contains both 'always' and 'never'",
		"Internal contradiction: contains both 'true' and 'false'",
	}, contradictions)
}

func TestRegisterFact_EmptyKeyIgnored(t *testing.T) {
	c := newTestChecker(t, 10)
	c.RegisterFact("", "x")

	assert.Equal(t, 0, c.ContextSummary().FactsRegistered)
}

func TestCheckResponseLogic_Empty(t *testing.T) {
	c := newTestChecker(t, 10)
	want := models.LogicResult{
		Valid:            false,
		Errors:           []string{"Empty response"},
		Warnings:         []string{},
		ConsistencyScore: 0.0,
	}

	assert.Equal(t, want, c.CheckResponseLogic(nil))
	assert.Equal(t, want, c.CheckResponseLogic(&models.Draft{}))
}

func TestCheckResponseLogic_DataWarningsDoNotInvalidate(t *testing.T) {
	c := newTestChecker(t, 10)

	result := c.CheckResponseLogic(&models.Draft{
		Content: "ok",
		Data:    []models.DataPoint{{Percentage: ptr(150)}},
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid percentage")
	assert.Equal(t, "Invalid percentage: 150", result.Warnings[0])
	assert.InDelta(t, 0.5, result.ConsistencyScore, 1e-9)
}

func TestCheckResponseLogic_NegativeCount(t *testing.T) {
	c := newTestChecker(t, 10)

	result := c.CheckResponseLogic(&models.Draft{
		Data: []models.DataPoint{
			{Count: ptr(-1)},
			{Count: ptr(3), Percentage: ptr(42.5)},
		},
	})

	assert.True(t, result.Valid)
	assert.Equal(t, []string{"Negative count: -1"}, result.Warnings)
	assert.InDelta(t, 0.5, result.ConsistencyScore, 1e-9)
}

func TestCheckResponseLogic_ContentContradictionIsError(t *testing.T) {
	c := newTestChecker(t, 10)

	result := c.CheckResponseLogic(&models.Draft{
		Content: "Everyone agrees and no one agrees",
		Data:    []models.DataPoint{{Key: "k", Value: "v", Source: "s"}},
	})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Internal contradiction: contains both 'everyone' and 'no one'")
	assert.InDelta(t, 0.5, result.ConsistencyScore, 1e-9)
}

func TestContextSummary(t *testing.T) {
	c := newTestChecker(t, 4)

	summary := c.ContextSummary()
	assert.Equal(t, 0, summary.ContextSize)
	assert.Equal(t, 4, summary.MaxContext)
	assert.Nil(t, summary.OldestContext)
	assert.Nil(t, summary.NewestContext)

	c.CheckStatementConsistency("Cats like warm places", nil)
	c.CheckStatementConsistency("Rivers flow toward the sea", nil)

	summary = c.ContextSummary()
	assert.Equal(t, 2, summary.ContextSize)
	require.NotNil(t, summary.OldestContext)
	require.NotNil(t, summary.NewestContext)
	assert.False(t, summary.NewestContext.Before(*summary.OldestContext))
}

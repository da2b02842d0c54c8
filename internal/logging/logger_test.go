// ABOUTME: Tests for logger construction
// ABOUTME: Covers environment presets, level parsing and the nop fallback
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		logger, err := New(env, "")
		require.NoError(t, err, env)
		assert.NotNil(t, logger)
	}
}

func TestNew_Level(t *testing.T) {
	logger, err := New("production", "WARN")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("development", "loud")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}

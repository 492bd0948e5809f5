package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProductionLogsInfoAndAbove(t *testing.T) {
	log, err := New("production")
	require.NoError(t, err)
	defer log.Sync() //nolint:errcheck

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewDevelopmentLogsDebug(t *testing.T) {
	log, err := New("development")
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestMustNeverReturnsNil(t *testing.T) {
	assert.NotNil(t, Must("anything"))
}

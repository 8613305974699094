package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestNewSelectsLevelByMode(t *testing.T) {
	prod, err := New("production")
	require.NoError(t, err)
	require.False(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
	require.True(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))

	dev, err := New("development")
	require.NoError(t, err)
	require.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromCore(core).With("component", "test")

	log.Warn("slow query", "elapsed_ms", 120, zap.Error(errors.New("timeout")))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "test", fields["component"])
	require.EqualValues(t, 120, fields["elapsed_ms"])
	require.Equal(t, "timeout", fields["error"])
}

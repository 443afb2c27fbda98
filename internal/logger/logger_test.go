package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, detailed bool) *observer.ObservedLogs {
	t.Helper()
	prevLogger, prevDetailed := globalLogger, detailedLogging
	t.Cleanup(func() {
		globalLogger, detailedLogging = prevLogger, prevDetailed
	})

	detailedLogging = detailed
	core, logs := observer.New(zapcore.DebugLevel)
	useCore(core)
	return logs
}

func TestInfoCarriesRunID(t *testing.T) {
	logs := observe(t, false)

	Info(context.Background(), "lookup finished", "ticker", "AAPL")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "lookup finished", entries[0].Message)
	assert.Equal(t, "AAPL", fields["ticker"])
	assert.Equal(t, RunID(), fields["run_id"])
	assert.NotEmpty(t, RunID())
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	logs := observe(t, false)
	Debug(context.Background(), "hidden")
	assert.Equal(t, 0, logs.Len())

	logs = observe(t, true)
	Debug(context.Background(), "shown")
	assert.Equal(t, 1, logs.Len())
}

func TestErrorWithErr(t *testing.T) {
	logs := observe(t, false)

	ErrorWithErr(context.Background(), "write failed", errors.New("disk full"), "path", "out.csv")

	entries := logs.FilterMessage("write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "disk full", entries[0].ContextMap()["error"])
	assert.Equal(t, "out.csv", entries[0].ContextMap()["path"])
}

func TestOperationTimerEndWithError(t *testing.T) {
	logs := observe(t, false)

	op := StartOperation(context.Background(), "export", "path", "out.csv")
	op.EndWithError(errors.New("boom"))

	entries := logs.FilterMessage("Operation failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "out.csv", fields["path"])
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields, "duration_ms")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("verbose"))
}

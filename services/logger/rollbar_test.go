package logsvc

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
)

func newObservedLogger() (*RollbarLogger, *observer.ObservedLogs) {
	zc, logs := observer.New(zapcore.DebugLevel)
	return NewRollbarLogger(zap.New(zc).Sugar(), core.NewTestConfig()), logs
}

func TestRollbarLogger_fields(t *testing.T) {
	logger, logs := newObservedLogger()

	err := errors.New("boom")
	logger.Error("saving form", err, map[string]interface{}{"form": "contact"}, user.User{ID: "u1", Name: "Jane"}, user.User{ID: "u2"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "saving form", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "contact", ctx["form"])
	assert.Equal(t, "u1", ctx["user"]) // only the first user is kept
}

func TestListenErrorEvents(t *testing.T) {
	logger, logs := newObservedLogger()
	events := core.NewErrorEvents(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenErrorEvents(ctx, events, logger) }()

	events.Emit(core.ErrorEvent{Kind: core.InternalError, Op: "certificate", Message: "render failed", UserID: "u1"})
	events.Emit(core.ErrorEvent{Kind: core.UpstreamFailure, Op: "notify", Message: "provider said no", Status: 400})

	assert.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 5*time.Millisecond)
	entries := logs.All()
	assert.Equal(t, "certificate: render failed", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "u1", entries[0].ContextMap()["user"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, 400, entries[1].ContextMap()["status"])

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

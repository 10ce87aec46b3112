package logger_test

import (
	"context"
	"testing"

	"github.com/SscSPs/posting_ledger/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_ReturnsScopedLogger(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	scoped := zap.New(core).With(zap.String("request_id", "r-1"))

	ctx := logger.WithContext(context.Background(), scoped)
	logger.FromContext(ctx).Info("run created")

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "run created", entry.Message)
	assert.Equal(t, "r-1", entry.ContextMap()["request_id"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, zap.L(), logger.FromContext(context.Background()))
}

func TestNew(t *testing.T) {
	l, err := logger.New(logger.Config{IsProduction: true, Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = logger.New(logger.Config{Level: "loud"})
	assert.Error(t, err)
}

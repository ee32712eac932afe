package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{})
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.NewZapCore("storefront", zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("order_id", "1"))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "1", entry.ContextMap()["order_id"])
}

func TestSetup_AllDisabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "storefront"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.False(t, p.LogCore().Enabled(zapcore.ErrorLevel))

	dbCfg := p.DBConfig("sqlite")
	assert.False(t, dbCfg.TraceEnabled)
	assert.Equal(t, "sqlite", dbCfg.DBSystem)

	assert.NoError(t, p.Shutdown(context.Background()))
}

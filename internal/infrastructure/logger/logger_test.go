package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("nil config falls back to defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("level is honoured", func(t *testing.T) {
		l, err := New(&Config{Level: "warn", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("extra cores receive entries", func(t *testing.T) {
		extra, recorded := observer.New(zapcore.InfoLevel)
		l, err := New(&Config{Level: "info", Format: "json", Output: "stderr"}, extra)
		require.NoError(t, err)

		l.Info("order placed", zap.Int64("order_id", 7))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "order placed", logs[0].Message)
		assert.Equal(t, int64(7), logs[0].ContextMap()["order_id"])
	})

	t.Run("writes json lines to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		l.Info("hello", zap.String("k", "v"))
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, string(data), `"k":"v"`)
	})
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		l, err := NewForEnvironment(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
	assert.Equal(t, "json", ProductionConfig().Format)
	assert.Equal(t, "console", DefaultConfig().Format)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

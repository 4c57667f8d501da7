package logger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notesync/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}
}

func TestFromContext(t *testing.T) {
	t.Run("success when logger exists in context", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		retrieved, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, retrieved)
	})

	t.Run("error when no logger in context", func(t *testing.T) {
		retrieved, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, retrieved)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestLog(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	t.Run("returns logger from context when available", func(t *testing.T) {
		contextLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		globalLogger, err := logger.NewLogger(logger.Production, "error")
		require.NoError(t, err)
		logger.SetGlobalLogger(globalLogger)

		ctx := logger.NewContext(context.Background(), contextLogger)

		assert.Same(t, contextLogger, logger.Log(ctx))
	})

	t.Run("returns global logger when no logger in context", func(t *testing.T) {
		globalLogger, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)
		logger.SetGlobalLogger(globalLogger)

		assert.Same(t, globalLogger, logger.Log(context.Background()))
	})

	t.Run("returns fallback logger when no context or global logger", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		result := logger.Log(context.Background())
		assert.NotNil(t, result, "fallback logger should not be nil")
		assert.Same(t, result, logger.Log(context.Background()), "fallback logger should be a singleton")
	})
}

func TestInitGlobalLogger(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	err := logger.InitGlobalLogger(logger.Production)
	require.NoError(t, err)

	first := logger.Log(context.Background())
	require.NotNil(t, first)

	// Повторная инициализация не заменяет существующий глобальный логгер.
	err = logger.InitGlobalLogger(logger.Development)
	require.NoError(t, err)
	assert.Same(t, first, logger.Log(context.Background()))
}

func TestLoggerMethods(t *testing.T) {
	log, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)

	t.Run("With creates new logger instance", func(t *testing.T) {
		newLog := log.With(zap.String("key", "value"))
		assert.NotNil(t, newLog)
		assert.NotSame(t, log, newLog)
	})

	t.Run("logging methods do not panic", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "test-request-id")

		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug message")
			log.Info(ctx, "info message", zap.Int("count", 1))
			log.Warn(ctx, "warn message")
			log.Error(ctx, "error message")
		})
	})
}

func TestRequestID(t *testing.T) {
	t.Run("stores provided request ID in context", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "req-123")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "req-123", id)
	})

	t.Run("generates a valid uuid when empty string provided", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("absent in plain context", func(t *testing.T) {
		id, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("WithRequestID returns same logger without request ID", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		assert.Same(t, log, log.WithRequestID(context.Background()))

		ctx := logger.NewRequestIDContext(context.Background(), "req-456")
		assert.NotSame(t, log, log.WithRequestID(ctx))
	})
}

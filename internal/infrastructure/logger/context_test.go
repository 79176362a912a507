package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWithContextAndFromContext(t *testing.T) {
	t.Run("round trip returns the stored logger", func(t *testing.T) {
		log, _ := observedLogger()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("missing logger yields a usable no-op", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		log.Info("must not panic")
	})
}

func TestContextEnrichment(t *testing.T) {
	t.Run("request id is stored and logged", func(t *testing.T) {
		log, logs := observedLogger()
		ctx, enriched := WithRequestID(context.Background(), log, "req-42")

		assert.Equal(t, "req-42", GetRequestID(ctx))
		assert.Same(t, enriched, FromContext(ctx))

		enriched.Info("hit")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("tenant and user ids stack on one logger", func(t *testing.T) {
		log, logs := observedLogger()
		ctx, enriched := WithTenantID(context.Background(), log, "tenant-1")
		ctx, enriched = WithUserID(ctx, enriched, "user-1")

		assert.Equal(t, "tenant-1", GetTenantID(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))

		enriched.Info("scoped")
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.Equal(t, "user-1", fields["user_id"])
	})

	t.Run("getters return empty strings on a bare context", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span leaves the logger unchanged", func(t *testing.T) {
		log, _ := observedLogger()
		assert.Same(t, log, WithTraceContext(context.Background(), log))
	})

	t.Run("valid span adds trace and span ids", func(t *testing.T) {
		log, logs := observedLogger()

		traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("0102030405060708")
		require.NoError(t, err)
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		WithTraceContext(ctx, log).Info("traced")
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
	})
}

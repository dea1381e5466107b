package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &LoggerClient{Zap: zap.New(core), tracingEnabled: tracing}, logs
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestLoggerFields(t *testing.T) {
	l, logs := newObservedLogger(false)

	l.Error("insert failed", errors.New("boom"), map[string]interface{}{
		"collection": "test",
	}, map[string]interface{}{
		"collection": "other",
		"count":      3,
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "insert failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "other", ctx["collection"])
	assert.EqualValues(t, 3, ctx["count"])
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	l, logs := newObservedLogger(true)
	l.InfoWithContext(ctx, "searching", nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithContextTracingDisabled(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	l, logs := newObservedLogger(false)
	l.WarnWithContext(ctx, "slow", nil)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestWithContextNoSpan(t *testing.T) {
	l, logs := newObservedLogger(true)
	l.DebugWithContext(context.Background(), "no span", nil)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["span_id"]
	assert.False(t, ok)
}

func TestFXModule(t *testing.T) {
	var got Logger
	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{Level: Debug, ServiceName: "rag-test"}),
		fx.Populate(&got),
	)
	app.RequireStart()
	require.NotNil(t, got)
	app.RequireStop()
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func Test_ContextHandler_AddsRequestAndTraceIDs(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := New(&buf, "info")
	traceID := trace.TraceID{0x01, 0x02}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{0x03}})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-42")

	// when
	log.With("component", "test").InfoContext(ctx, "hello")

	// then
	record := decodeLine(t, &buf)
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Equal(t, "test", record["component"])
}

func Test_ContextHandler_WithoutContextValues(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.InfoContext(context.Background(), "hello")

	record := decodeLine(t, &buf)
	assert.NotContains(t, record, "request_id")
	assert.NotContains(t, record, "trace_id")
}

func Test_New_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("dropped")

	assert.Zero(t, buf.Len())
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}

func Test_ToLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ToLevel("WARN"))
	assert.Equal(t, slog.LevelError, ToLevel("error"))
	assert.Equal(t, slog.LevelInfo, ToLevel(""))
	assert.Equal(t, slog.LevelInfo, ToLevel("unknown"))
}

// Package observability provides logging context plumbing and OpenTelemetry
// metrics behind a Prometheus exporter.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// requestIDKey is the unexported context key type for the X-Request-ID value.
type requestIDKey struct{}

// RequestIDKey is the context key under which the request-id middleware stores
// the request ID. TraceContextHandler reads it back when emitting log records.
var RequestIDKey = &requestIDKey{}

// TraceContextHandler is a slog.Handler decorator that stamps each record with
// trace_id, span_id, and request_id pulled from the context, when present.
type TraceContextHandler struct {
	inner slog.Handler
}

// NewTraceContextHandler wraps inner with trace and request-id stamping.
func NewTraceContextHandler(inner slog.Handler) *TraceContextHandler {
	return &TraceContextHandler{inner: inner}
}

// Enabled defers to the wrapped handler.
func (h *TraceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle attaches the context's trace and request-id attributes to the record
// before handing it to the wrapped handler.
func (h *TraceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("inner handler: %w", err)
	}

	return nil
}

// WithAttrs wraps the inner handler's WithAttrs result so stamping survives.
func (h *TraceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup wraps the inner handler's WithGroup result so stamping survives.
func (h *TraceContextHandler) WithGroup(name string) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithGroup(name)}
}

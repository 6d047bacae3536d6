package logging

import (
	"context"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// EnvTraceID lets a caller pin the trace ID of a run.
const EnvTraceID = "REVIEWLENS_TRACE_ID"

type traceIDKey struct{}

// ContextWithTraceID stores traceID on ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID on ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns the trace ID already on ctx, then the one in
// REVIEWLENS_TRACE_ID, and otherwise a new ULID.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	if id := os.Getenv(EnvTraceID); id != "" {
		return id
	}
	return ulid.Make().String()
}

// TraceHook adds trace_id to events logged with Ctx(ctx).
type TraceHook struct{}

// Run implements zerolog.Hook.
func (TraceHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if id := TraceIDFromContext(e.GetCtx()); id != "" {
		e.Str("trace_id", id)
	}
}

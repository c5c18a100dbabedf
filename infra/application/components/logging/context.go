package logging

import (
	"context"

	"github.com/google/uuid"
)

type traceIDKey struct{}

// ContextWithTraceID attaches a local trace id, used when no OTel span is recording.
// An empty id generates a new uuid.
func ContextWithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, traceIDKey{}, id)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

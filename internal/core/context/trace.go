package context

import (
	"context"

	"pharmaledger/internal/core/id"
)

// TraceContext identifies the request a piece of work belongs to. It is
// attached by the HTTP trace middleware and read by the logger.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// RequestID returns the request ID from context or empty string.
func RequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext fills the IDs the caller did not supply.
func NewTraceContext(traceID, spanID, requestID string) *TraceContext {
	if requestID == "" {
		requestID = id.New().String()
	}
	if traceID == "" {
		traceID = id.New().String()
	}
	if spanID == "" {
		spanID = id.New().String()[:16]
	}
	return &TraceContext{TraceID: traceID, SpanID: spanID, RequestID: requestID}
}

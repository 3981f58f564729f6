package flight

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/metadata"
)

// Metadata header keys recognized on incoming requests.
const (
	// HeaderTraceID carries a distributed trace identifier.
	HeaderTraceID = "memquery-trace-id"
	// HeaderSessionID carries a client session identifier.
	HeaderSessionID = "memquery-client-session-id"
)

// RequestMeta holds request metadata used for log correlation.
type RequestMeta struct {
	TraceID   string
	SessionID string
}

type contextKey int

const requestMetaKey contextKey = iota

// WithRequestMeta returns a context carrying meta.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, &meta)
}

// RequestMetaFromContext returns the metadata stored by WithRequestMeta or
// EnrichContext, or nil.
func RequestMetaFromContext(ctx context.Context) *RequestMeta {
	meta, _ := ctx.Value(requestMetaKey).(*RequestMeta)
	return meta
}

// EnrichContext copies request metadata from incoming gRPC headers into the
// context. An already enriched context is returned unchanged.
func EnrichContext(ctx context.Context) context.Context {
	if RequestMetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	var meta RequestMeta
	if values := md.Get(HeaderTraceID); len(values) > 0 {
		meta.TraceID = values[0]
	}
	if values := md.Get(HeaderSessionID); len(values) > 0 {
		meta.SessionID = values[0]
	}
	return WithRequestMeta(ctx, meta)
}

// requestLogger returns logger annotated with the request metadata in ctx.
func requestLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	meta := RequestMetaFromContext(ctx)
	if meta == nil {
		return logger
	}
	if meta.TraceID != "" {
		logger = logger.With("trace_id", meta.TraceID)
	}
	if meta.SessionID != "" {
		logger = logger.With("session_id", meta.SessionID)
	}
	return logger
}

package bdapp

import (
	"context"

	"github.com/advdv/bdispatch"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id. An inbound value is kept, otherwise one is generated.
const RequestIDHeader = "X-Request-Id"

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies (env, engine) are accessed via Runtime instead.
type requestDep struct {
	logger    *zap.Logger
	requestID string
}

// withRequestScope returns a filter that assigns the request id and stores the request-scoped
// dependencies in the request context. The id is echoed on the response.
func withRequestScope(logger *zap.Logger) bdispatch.Filter {
	return bdispatch.FilterFunc(func(rc *bdispatch.RequestContext, w bdispatch.ResponseWriter, next bdispatch.Continuation) error {
		id := rc.Request.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(rc.Request.Context(), ctxKeyRequestDep, &requestDep{
			logger:    logger,
			requestID: id,
		})

		rc.Request = rc.Request.WithContext(ctx)

		return next.Proceed()
	})
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bdapp: requestDep not found in context; is the request scope filter installed?")
	}

	return d
}

// RequestID returns the id of the current request, or "" outside of a request.
func RequestID(ctx context.Context) string {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		return ""
	}

	return d.requestID
}

// Log returns a request and trace correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(append([]zap.Field{zap.String("request_id", d.requestID)}, traceFields(ctx)...)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}

	sc := span.SpanContext()

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

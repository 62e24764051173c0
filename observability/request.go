package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fittrack/logger"
)

// Request is the telemetry of one HTTP request: its server span, the
// in-flight gauge and the completion metrics.
type Request struct {
	service string
	route   string
	started time.Time
	span    trace.Span
	metrics *Metrics
}

type requestKey struct{}

// StartRequest opens a server span for route, puts its trace id on ctx for
// request-scoped loggers and counts the request as in flight. metrics may
// be nil.
func StartRequest(ctx context.Context, service, route, requestID string, metrics *Metrics) (context.Context, *Request) {
	ctx, span := StartSpan(ctx, SpanHTTPRequest, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String(AttrServiceName, service),
		attribute.String(AttrRoute, route),
		attribute.String(AttrRequestID, requestID),
	)
	if sc := span.SpanContext(); sc.HasTraceID() {
		ctx = logger.ContextWithTraceID(ctx, sc.TraceID().String())
	}
	r := &Request{service: service, route: route, started: time.Now(), span: span, metrics: metrics}
	if metrics != nil {
		metrics.RecordRequestStart(ctx)
	}
	return context.WithValue(ctx, requestKey{}, r), r
}

// RequestFromContext returns the request started on ctx, or nil.
func RequestFromContext(ctx context.Context) *Request {
	r, _ := ctx.Value(requestKey{}).(*Request)
	return r
}

// SetUser tags the span with the authenticated user. Safe on a nil Request.
func (r *Request) SetUser(id string) {
	if r == nil || id == "" {
		return
	}
	r.span.SetAttributes(attribute.String(AttrUserID, id))
}

// End closes the span with status as its outcome and records the request.
func (r *Request) End(ctx context.Context, status string, err error) {
	elapsed := time.Since(r.started)
	r.span.SetAttributes(attribute.Int64(AttrDurationMs, elapsed.Milliseconds()))
	EndSpan(r.span, status, err)
	if r.metrics != nil {
		r.metrics.RecordRequestEnd(ctx, r.service, r.route, status, elapsed)
	}
}

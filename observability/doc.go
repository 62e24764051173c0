// Package observability wires OpenTelemetry tracing and metrics.
//
// Provider is a lifecycle component that installs OTLP HTTP exporters when
// enabled. Instrumented code always goes through the global providers, so
// with export disabled spans and instruments are no-ops:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanSessionVerify)
//	defer observability.EndSpan(span, "ok", nil)
//
//	metrics := observability.DefaultMetrics()
//	metrics.RecordOperation(ctx, "account.login", "ok", time.Since(start))
package observability

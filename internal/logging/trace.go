package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// traceFromContext extracts the OpenTelemetry span identifiers from ctx.
func traceFromContext(ctx context.Context) TraceInfo {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

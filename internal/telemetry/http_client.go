package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewTransport wraps base so every outgoing request is traced. A nil base
// uses http.DefaultTransport.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(
		base,
		otelhttp.WithSpanOptions(
			trace.WithSpanKind(trace.SpanKindClient),
		),
	)
}

// ExternalCallAttrs holds attributes for a call to a backing service
type ExternalCallAttrs struct {
	Service   string // elasticsearch, redis, postgres
	Operation string
	Index     string
	Engine    string
}

// TraceExternalCall starts a client span for a backing service call
func TraceExternalCall(ctx context.Context, attrs ExternalCallAttrs) (context.Context, trace.Span) {
	tracer := otel.Tracer("external-api")

	spanName := fmt.Sprintf("%s.%s", attrs.Service, attrs.Operation)
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", attrs.Service),
			attribute.String("external.operation", attrs.Operation),
		),
	)

	if attrs.Index != "" {
		span.SetAttributes(attribute.String("search.index", attrs.Index))
	}
	if attrs.Engine != "" {
		span.SetAttributes(attribute.String("search.engine", attrs.Engine))
	}

	return ctx, span
}

// EndExternalCall records the outcome on span and ends it
func EndExternalCall(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

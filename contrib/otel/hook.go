// Package otel exports giga request telemetry as OpenTelemetry spans.
//
// Usage:
//
//	client := core.NewClient(transport, creds, core.WithTelemetry(otel.NewHook(tp)))
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/giga/core"
)

// InstrumentationName identifies the tracer created by NewHook.
const InstrumentationName = "github.com/petal-labs/giga/contrib/otel"

// Attribute keys set on every span.
const (
	AttrTransport   = attribute.Key("giga.transport")
	AttrModel       = attribute.Key("giga.model")
	AttrTotalTokens = attribute.Key("giga.usage.total_tokens")
	AttrErrorType   = attribute.Key("error.type")
)

// Hook implements core.TelemetryHook by recording one client span per
// request. The span is created when the request ends, backdated to its start.
type Hook struct {
	tracer trace.Tracer
}

// NewHook returns a Hook using tp, or the global provider when tp is nil.
func NewHook(tp trace.TracerProvider) *Hook {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Hook{tracer: tp.Tracer(InstrumentationName)}
}

// OnRequestStart is a no-op; spans are emitted in OnRequestEnd.
func (h *Hook) OnRequestStart(core.RequestStartEvent) {}

// OnRequestEnd records the finished request as a span.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []attribute.KeyValue{AttrTransport.String(e.Transport)}
	if e.Model != "" {
		attrs = append(attrs, AttrModel.String(string(e.Model)))
	}
	if e.Usage.TotalTokens > 0 {
		attrs = append(attrs, AttrTotalTokens.Int(e.Usage.TotalTokens))
	}

	_, span := h.tracer.Start(context.Background(), "giga."+string(e.Operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(attrs...),
	)

	if e.Err != nil {
		// Error messages may embed response bodies, so only the kind is exported.
		span.SetAttributes(AttrErrorType.String(errorType(e.Err)))
		span.SetStatus(codes.Error, errorType(e.Err))
	}

	span.End(trace.WithTimestamp(e.End))
}

func errorType(err error) string {
	switch {
	case core.IsAuthenticationError(err):
		return "authentication"
	case core.IsAPIError(err):
		return "api"
	default:
		return "other"
	}
}

var _ core.TelemetryHook = (*Hook)(nil)

package core

import "time"

// Operation names the network exchange a telemetry event belongs to.
type Operation string

const (
	OperationToken    Operation = "token"
	OperationComplete Operation = "complete"
)

// TelemetryHook receives notifications about request lifecycle events.
//
// Events carry operational metadata only. Client secrets, access tokens,
// prompt text and response bodies are never part of an event; Err may carry a
// raw response body, so hooks that export errors should log the type, not the
// message, when the destination is not trusted.
type TelemetryHook interface {
	OnRequestStart(e RequestStartEvent)
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Operation Operation
	Transport string
	Model     ModelID // empty for OperationToken
	Start     time.Time
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Operation Operation
	Transport string
	Model     ModelID
	Start     time.Time
	End       time.Time
	Usage     TokenUsage
	Err       error
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}

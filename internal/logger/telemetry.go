package logger

import (
	"log/slog"

	"github.com/petal-labs/giga/core"
)

// TelemetryHook logs request lifecycle events. Only operation metadata is
// logged; credentials, tokens, prompts and responses never reach the log.
type TelemetryHook struct {
	logger *slog.Logger
}

// NewTelemetryHook returns a hook that logs to l.
func NewTelemetryHook(l *slog.Logger) *TelemetryHook {
	if l == nil {
		l = NewDefaultLogger()
	}
	return &TelemetryHook{logger: l}
}

// OnRequestStart logs at debug level.
func (h *TelemetryHook) OnRequestStart(e core.RequestStartEvent) {
	h.logger.Debug("request started",
		"operation", e.Operation,
		"transport", e.Transport,
		"model", e.Model,
	)
}

// OnRequestEnd logs at debug level. Failures are reported once by the
// caller that handles the error, so the hook only adds timing detail.
func (h *TelemetryHook) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []any{
		"operation", e.Operation,
		"transport", e.Transport,
		"model", e.Model,
		"duration", e.Duration(),
	}
	if e.Err != nil {
		h.logger.Debug("request failed", append(attrs, "error", e.Err)...)
		return
	}
	if e.Usage.TotalTokens > 0 {
		attrs = append(attrs, "total_tokens", e.Usage.TotalTokens)
	}
	h.logger.Debug("request finished", attrs...)
}

var _ core.TelemetryHook = (*TelemetryHook)(nil)

// Package logger builds the slog loggers used by giga.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

// NewLogger returns a text logger writing to w at the named level
// (DEBUG, INFO, WARN, ERROR; case-insensitive, offsets like "INFO+2" allowed).
// A nil w writes to stderr.
func NewLogger(logLevel string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, errors.WithStack(err)
	}
	if w == nil {
		w = os.Stderr
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})), nil
}

func NewDefaultLogger() *slog.Logger {
	l, _ := NewLogger("INFO", nil)
	return l
}

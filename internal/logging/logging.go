// Package logging holds the shared slog conventions.
//
// Loggers are dependency-injected: main() builds the base logger and every
// component scopes it once at construction with logger.With("component", ...).
// Nothing in this module touches slog.SetDefault or any global logger, and
// nothing logs inside index or scoring loops; build and load boundaries are
// the intended log points.
package logging

import (
	"context"
	"log/slog"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns logger if non-nil, otherwise a discard logger. Constructors
// taking an optional *slog.Logger run their argument through this.
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

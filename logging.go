package datatable

import (
	"context"
	"log/slog"
)

// discardHandler discards every log record. It backs the default logger so
// components never need a nil check before logging.
//
// Grounded in gastrolog's internal/logging package: the teacher itself
// never logs from library code, so this ambient concern is adopted from
// elsewhere in the retrieval pack rather than from the teacher.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

// defaultLogger returns logger if non-nil, otherwise a discard logger.
// Logging is dependency-injected and never global: ReaderConfig.Logger is
// the only way a caller supplies one.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return discardLogger()
}

package log

import (
	"context"
	"log/slog"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// NewContext stores logger in ctx; the trace middleware does this per request.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

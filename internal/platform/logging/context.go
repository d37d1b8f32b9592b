package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, defaultLogger)
}

// FromContextOr returns the logger stored in ctx, or fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx == nil {
		return fallback
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return fallback
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithSessionID tags the context logger with the id of the current run.
// A context without a logger is returned unchanged.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return tag(ctx, slog.String("session_id", sessionID))
}

// WithCommand tags the context logger with the command being executed.
// A context without a logger is returned unchanged.
func WithCommand(ctx context.Context, command string) context.Context {
	return tag(ctx, slog.String("command", command))
}

func tag(ctx context.Context, attr slog.Attr) context.Context {
	logger := FromContextOr(ctx, nil)
	if logger == nil {
		return ctx
	}

	return WithContext(ctx, logger.With(attr))
}

// SetDefault sets the logger used when a context carries none.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

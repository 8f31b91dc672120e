package plyshard

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pipeline-specific helpers so both run
// types log consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogSplit logs the outcome of a split run.
func (l *Logger) LogSplit(ctx context.Context, chunks, failed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "split failed",
			"chunks", chunks,
			"failed_chunks", failed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "split completed",
			"chunks", chunks,
			"failed_chunks", failed,
		)
	}
}

// LogGroups logs the outcome of a group run.
func (l *Logger) LogGroups(ctx context.Context, attempted, failed int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "group run failed",
			"groups", attempted,
			"failed_groups", failed,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "group run completed with failures",
			"groups", attempted,
			"failed_groups", failed,
		)
	default:
		l.InfoContext(ctx, "group run completed",
			"groups", attempted,
		)
	}
}

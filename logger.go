package imecore

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/imecore/dataset"
)

// Logger wraps slog.Logger with imecore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSource adds a source field to the logger.
func (l *Logger) WithSource(src string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", src),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogOpen logs the outcome of Open.
func (l *Logger) LogOpen(ctx context.Context, src string, size int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"source", src,
			"duration", d,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "data set opened",
			"source", src,
			"bytes", size,
			"duration", d,
		)
	}
}

// LogSectionLoaded logs one section of a loaded data set.
func (l *Logger) LogSectionLoaded(ctx context.Context, s dataset.Section) {
	l.DebugContext(ctx, "section loaded",
		"section", s.Name,
		"size", s.Size,
		"stored", s.StoredSize,
		"codec", s.Codec.String(),
	)
}

// LogComponentInit logs the construction of a query component.
func (l *Logger) LogComponentInit(ctx context.Context, component string, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "component init failed",
			"component", component,
			"duration", d,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "component initialized",
			"component", component,
			"duration", d,
		)
	}
}

// LogFailOpen logs a component replaced by its permissive fallback.
func (l *Logger) LogFailOpen(ctx context.Context, component string, err error) {
	l.WarnContext(ctx, "component disabled, failing open",
		"component", component,
		"error", err,
	)
}

// LogClose logs engine shutdown.
func (l *Logger) LogClose(ctx context.Context, src string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"source", src,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "engine closed",
			"source", src,
		)
	}
}

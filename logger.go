package starcache

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with starcache-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithCatalog adds the catalog name to the logger.
func (l *Logger) WithCatalog(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("catalog", name),
	}
}

// LogOpen logs the result of opening a catalog.
func (l *Logger) LogOpen(ctx context.Context, level, trixels int, faintMag float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "catalog opened",
		"level", level,
		"trixels", trixels,
		"faint_mag", faintMag,
	)
}

// LogDraw logs a draw pass.
func (l *Logger) LogDraw(ctx context.Context, drawID uint64, stats DrawStats, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "draw failed",
			"draw_id", drawID,
			"error", err,
		)
	case stats.Partial > 0:
		l.DebugContext(ctx, "draw completed with partial trixels",
			"draw_id", drawID,
			"trixels", stats.Trixels,
			"partial", stats.Partial,
			"stars", stats.Stars,
		)
	default:
		l.DebugContext(ctx, "draw completed",
			"draw_id", drawID,
			"trixels", stats.Trixels,
			"stars", stats.Stars,
		)
	}
}

// LogReclaim logs an explicit reclaim.
func (l *Logger) LogReclaim(ctx context.Context, op string, freed int, elapsed time.Duration) {
	l.InfoContext(ctx, "blocks reclaimed",
		"op", op,
		"freed", freed,
		"elapsed", elapsed,
	)
}

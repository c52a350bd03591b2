package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "requestID"

// LevelTrace is below DEBUG and used for per-line parser events.
const LevelTrace = slog.LevelDebug - 4

var logger atomic.Pointer[slog.Logger]

// Logs go to stderr so that reports written to stdout stay clean.
var output io.Writer = os.Stderr

func init() {
	SetLevel(slog.LevelInfo)
}

func current() *slog.Logger {
	return logger.Load()
}

// SetLevel installs the compact console handler at the given level
func SetLevel(level slog.Level) {
	handler := NewCompactHandler(output, &slog.HandlerOptions{
		Level: level,
	})
	logger.Store(slog.New(handler))
}

// SetJSONOutput switches to JSON format output
func SetJSONOutput(level slog.Level) {
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level,
	})
	logger.Store(slog.New(handler))
}

// SetOutput redirects log output and reinstalls the compact handler.
func SetOutput(w io.Writer, level slog.Level) {
	output = w
	SetLevel(level)
}

// ParseLevel maps a verbosity name or a -v count to a slog level.
// An explicit name wins over the count.
func ParseLevel(name string, verboseCount int) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	switch {
	case verboseCount >= 2:
		return LevelTrace
	case verboseCount == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a logger tagged with a component name.
func New(component string) *slog.Logger {
	return current().With("component", component)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func withRequestID(ctx context.Context, args []any) []any {
	requestID := GetRequestID(ctx)
	if requestID != "" {
		return append([]any{"requestID", requestID}, args...)
	}
	return args
}

// Trace logs at TRACE level (very verbose, debug-time only)
func Trace(msg string, args ...any) {
	current().Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at DEBUG level (internal component behavior)
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs at INFO level (user-facing operations)
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// InfoContext logs at INFO level with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	current().InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

// Warn logs at WARN level (recovered input problems)
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs at ERROR level
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// ErrorContext logs at ERROR level with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	current().ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}

// Fatal logs at ERROR level and exits
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}

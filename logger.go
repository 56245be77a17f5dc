package heapkit

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with heapkit-specific helpers. Allocation
// failures are reported here at Debug level and propagated to callers
// as nil pointers; they are never turned into errors or panics.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogAllocFailure logs an allocation failure from the underlying
// allocator.
func (l *Logger) LogAllocFailure(op string, size uintptr) {
	l.Debug("allocation failed",
		"op", op,
		"size", uint64(size),
	)
}

// LogSizeOverflow logs a calloc request whose element count times
// element size does not fit in a uintptr.
func (l *Logger) LogSizeOverflow(count, elemSize uintptr) {
	l.Debug("allocation size overflow",
		"err", ErrSizeOverflow,
		"count", uint64(count),
		"elem_size", uint64(elemSize),
	)
}

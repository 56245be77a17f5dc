package heapkit

import (
	"log/slog"
	"os"
	"unsafe"
)

type options struct {
	emptyRealloc     EmptyReallocPolicy
	pageSize         uintptr
	minAlign         uintptr
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Heap construction behavior.
type Option func(*options)

// WithEmptyReallocPolicy selects what Realloc(ptr, 0) returns after
// freeing the block: a minimal 1-byte block (EmptyReallocMinimal, the
// default) or nil (EmptyReallocNil). Which one is "correct" is a
// platform convention, so it is a configuration choice here.
func WithEmptyReallocPolicy(policy EmptyReallocPolicy) Option {
	return func(o *options) {
		o.emptyRealloc = policy
	}
}

// WithPageSize overrides the page size Valloc aligns to. The default
// is the operating system page size.
func WithPageSize(size uintptr) Option {
	return func(o *options) {
		if size != 0 {
			o.pageSize = size
		}
	}
}

// WithMinAlignment overrides the minimum alignment Memalign raises
// small alignment requests to. The default matches the platform's
// maximum natural alignment (16 bytes on 64-bit targets). Must be a
// power of two; other values are ignored.
func WithMinAlignment(align uintptr) Option {
	return func(o *options) {
		if align != 0 && align&(align-1) == 0 {
			o.minAlign = align
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// allocation operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &heapkit.BasicMetricsCollector{}
//	heap := heapkit.New(pool, heapkit.WithMetricsCollector(metrics))
//	// ... use heap ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for allocation operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets
// it. Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		emptyRealloc:     EmptyReallocMinimal,
		pageSize:         uintptr(os.Getpagesize()),
		minAlign:         2 * unsafe.Sizeof(uintptr(0)),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

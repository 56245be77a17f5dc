package heapkit

import "sync/atomic"

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring
// systems like Prometheus.
type MetricsCollector interface {
	// RecordMalloc is called after each underlying allocation request
	// made on behalf of Malloc (including the ones Calloc, Memalign
	// and Strdup issue). ok is false on allocation failure.
	RecordMalloc(size uintptr, ok bool)

	// RecordFree is called after each deallocation.
	RecordFree()

	// RecordRealloc is called after each resize. relocated is false
	// when shrink dampening kept the block in place; ok is false when
	// the allocation for the new block failed.
	RecordRealloc(relocated bool, ok bool)

	// RecordCalloc is called after each bulk zeroed allocation.
	// overflow reports a count*elemSize product rejected before any
	// allocator call.
	RecordCalloc(size uintptr, overflow bool)

	// RecordMemalign is called after each aligned allocation with the
	// number of attempts the three-step search needed (1..3).
	RecordMemalign(attempts int, ok bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMalloc(uintptr, bool) {}
func (NoopMetricsCollector) RecordFree()                {}
func (NoopMetricsCollector) RecordRealloc(bool, bool)   {}
func (NoopMetricsCollector) RecordCalloc(uintptr, bool) {}
func (NoopMetricsCollector) RecordMemalign(int, bool)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external
// dependencies.
type BasicMetricsCollector struct {
	MallocCount      atomic.Int64
	MallocFailures   atomic.Int64
	MallocBytes      atomic.Int64
	FreeCount        atomic.Int64
	ReallocCount     atomic.Int64
	ReallocInPlace   atomic.Int64
	ReallocFailures  atomic.Int64
	CallocCount      atomic.Int64
	CallocOverflows  atomic.Int64
	MemalignCount    atomic.Int64
	MemalignAttempts atomic.Int64
	MemalignFailures atomic.Int64
}

// RecordMalloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMalloc(size uintptr, ok bool) {
	b.MallocCount.Add(1)
	if ok {
		b.MallocBytes.Add(int64(size))
	} else {
		b.MallocFailures.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree() {
	b.FreeCount.Add(1)
}

// RecordRealloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRealloc(relocated, ok bool) {
	b.ReallocCount.Add(1)
	if !relocated {
		b.ReallocInPlace.Add(1)
	}
	if !ok {
		b.ReallocFailures.Add(1)
	}
}

// RecordCalloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCalloc(size uintptr, overflow bool) {
	b.CallocCount.Add(1)
	if overflow {
		b.CallocOverflows.Add(1)
	}
}

// RecordMemalign implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMemalign(attempts int, ok bool) {
	b.MemalignCount.Add(1)
	b.MemalignAttempts.Add(int64(attempts))
	if !ok {
		b.MemalignFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MallocCount:      b.MallocCount.Load(),
		MallocFailures:   b.MallocFailures.Load(),
		MallocBytes:      b.MallocBytes.Load(),
		FreeCount:        b.FreeCount.Load(),
		ReallocCount:     b.ReallocCount.Load(),
		ReallocInPlace:   b.ReallocInPlace.Load(),
		ReallocFailures:  b.ReallocFailures.Load(),
		CallocCount:      b.CallocCount.Load(),
		CallocOverflows:  b.CallocOverflows.Load(),
		MemalignCount:    b.MemalignCount.Load(),
		MemalignAttempts: b.MemalignAttempts.Load(),
		MemalignFailures: b.MemalignFailures.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MallocCount      int64
	MallocFailures   int64
	MallocBytes      int64
	FreeCount        int64
	ReallocCount     int64
	ReallocInPlace   int64
	ReallocFailures  int64
	CallocCount      int64
	CallocOverflows  int64
	MemalignCount    int64
	MemalignAttempts int64
	MemalignFailures int64
}

package heapkit

import "unsafe"

// Heap binds an Allocator and exposes the POSIX-style allocation
// operations on top of it. The zero value is not usable; construct
// with New.
//
// Heap keeps no mutable state of its own, so a single Heap may be
// shared freely between goroutines as long as the underlying
// Allocator is thread-safe (which the Allocator contract requires).
type Heap struct {
	alloc    Allocator
	policy   EmptyReallocPolicy
	pageSize uintptr
	minAlign uintptr
	metrics  MetricsCollector
	logger   *Logger
}

// New creates a Heap on top of alloc.
func New(alloc Allocator, optFns ...Option) *Heap {
	o := applyOptions(optFns)
	return &Heap{
		alloc:    alloc,
		policy:   o.emptyRealloc,
		pageSize: o.pageSize,
		minAlign: o.minAlign,
		metrics:  o.metricsCollector,
		logger:   o.logger,
	}
}

// Allocator returns the underlying allocator.
func (h *Heap) Allocator() Allocator {
	return h.alloc
}

// Malloc allocates a block of at least size bytes and returns its
// address, or nil on allocation failure. A size of 0 is treated as 1
// so the underlying allocator never sees a zero-size request.
func (h *Heap) Malloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	ptr := h.alloc.Allocate(size)
	if ptr == nil {
		h.logger.LogAllocFailure("malloc", size)
	}
	h.metrics.RecordMalloc(size, ptr != nil)
	return ptr
}

// Free releases a block returned by one of the allocation operations.
// Free of nil is a no-op.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	h.alloc.Deallocate(ptr)
	h.metrics.RecordFree()
}

// UsableSize reports the usable size of the block at ptr. UsableSize
// of nil is 0.
func (h *Heap) UsableSize(ptr unsafe.Pointer) uintptr {
	if ptr == nil {
		return 0
	}
	return h.alloc.UsableSize(ptr)
}

// GoodSize reports the usable size the allocator would actually hand
// out for a request of size bytes. It probes by allocating and
// immediately freeing a block; on allocation failure it reports size
// unchanged.
func (h *Heap) GoodSize(size uintptr) uintptr {
	ptr := h.Malloc(size)
	if ptr == nil {
		return size
	}
	n := h.alloc.UsableSize(ptr)
	h.Free(ptr)
	return n
}

// Strdup copies s into allocator memory as a NUL-terminated C string
// and returns its address, or nil on allocation failure.
func (h *Heap) Strdup(s string) unsafe.Pointer {
	n := uintptr(len(s)) + 1
	ptr := h.Malloc(n)
	if ptr == nil {
		return nil
	}
	buf := unsafe.Slice((*byte)(ptr), n)
	copy(buf, s)
	buf[len(s)] = 0
	return ptr
}

// BatchMalloc allocates up to n blocks of size bytes each. It stops at
// the first allocation failure; the returned slice holds exactly the
// blocks that were allocated, in order.
func (h *Heap) BatchMalloc(size uintptr, n int) []unsafe.Pointer {
	ptrs := make([]unsafe.Pointer, 0, n)
	for i := 0; i < n; i++ {
		ptr := h.Malloc(size)
		if ptr == nil {
			break
		}
		ptrs = append(ptrs, ptr)
	}
	return ptrs
}

// BatchFree releases every block in ptrs. Nil entries are skipped.
func (h *Heap) BatchFree(ptrs []unsafe.Pointer) {
	for _, ptr := range ptrs {
		h.Free(ptr)
	}
}

// memmove copies n bytes from src to dst. The regions must not
// overlap; resize only ever copies between distinct blocks.
func memmove(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

// memclr zeroes n bytes starting at ptr.
func memclr(ptr unsafe.Pointer, n uintptr) {
	clear(unsafe.Slice((*byte)(ptr), n))
}

package heapkit

import "unsafe"

// Calloc allocates memory for count elements of elemSize bytes each,
// zero-fills the whole region and returns its address.
//
// A count*elemSize product that overflows uintptr is rejected before
// any allocator call and yields nil, the calloc overflow convention.
// Allocation failure also yields nil.
func (h *Heap) Calloc(count, elemSize uintptr) unsafe.Pointer {
	n := count * elemSize
	if elemSize != 0 && n/elemSize != count {
		h.logger.LogSizeOverflow(count, elemSize)
		h.metrics.RecordCalloc(0, true)
		return nil
	}
	if n == 0 {
		n = 1
	}
	ptr := h.Malloc(n)
	if ptr != nil {
		memclr(ptr, n)
	}
	h.metrics.RecordCalloc(n, false)
	return ptr
}

package heapkit

import "unsafe"

// Memalign allocates size bytes whose address is a multiple of
// alignment and returns it, or nil on allocation failure.
//
// The alignment is normalized first: it is raised to the heap's
// minimum alignment and rounded up to the next power of two. Callers
// that need strict argument validation should use PosixMemalign.
//
// The block is built from the unaligned Allocator in up to three
// attempts, each freeing the previous one before moving on:
//
//  1. Allocate size bytes and hope the address is already aligned.
//  2. Allocate size rounded up to a multiple of alignment; allocators
//     whose size classes impose natural alignment succeed here.
//  3. Allocate 2*alignment+size bytes and return the first aligned
//     address inside the block. The returned pointer is then interior
//     to the allocation, which is why the Allocator contract requires
//     tolerating Deallocate on interior addresses.
func (h *Heap) Memalign(alignment, size uintptr) unsafe.Pointer {
	alignment = h.normalizeAlignment(alignment)
	mask := alignment - 1

	// Attempt 1: the cheap case.
	ptr := h.Malloc(size)
	if uintptr(ptr)&mask == 0 {
		h.metrics.RecordMemalign(1, ptr != nil)
		return ptr
	}
	h.Free(ptr)

	// Attempt 2: a size that is a multiple of the alignment lands on
	// an aligned size class in many allocators.
	padded := roundUp(size, alignment)
	if padded < alignment {
		padded = alignment
	}
	ptr = h.Malloc(padded)
	if uintptr(ptr)&mask == 0 {
		h.metrics.RecordMemalign(2, ptr != nil)
		return ptr
	}
	h.Free(ptr)

	// Attempt 3: overallocate and carve out an aligned interior
	// pointer.
	buf := h.Malloc(2*alignment + size)
	if buf == nil {
		h.metrics.RecordMemalign(3, false)
		return nil
	}
	off := roundUp(uintptr(buf), alignment) - uintptr(buf)
	h.metrics.RecordMemalign(3, true)
	return unsafe.Add(buf, off)
}

// AlignedAlloc is Memalign with the C11 aligned_alloc size constraint
// resolved by rounding: rather than rejecting a size that is not a
// multiple of alignment, the size is rounded up.
func (h *Heap) AlignedAlloc(alignment, size uintptr) unsafe.Pointer {
	size = roundUp(size, h.normalizeAlignment(alignment))
	return h.Memalign(alignment, size)
}

// PosixMemalign allocates size bytes aligned to alignment.
//
// Unlike Memalign it validates its arguments: a zero or
// non-power-of-two alignment yields ErrInvalidAlignment without any
// allocator call. Allocation failure yields ErrOutOfMemory.
func (h *Heap) PosixMemalign(alignment, size uintptr) (unsafe.Pointer, error) {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return nil, ErrInvalidAlignment
	}
	ptr := h.Memalign(alignment, size)
	if ptr == nil {
		return nil, ErrOutOfMemory
	}
	return ptr, nil
}

// Valloc allocates size bytes aligned to the page size.
func (h *Heap) Valloc(size uintptr) unsafe.Pointer {
	return h.Memalign(h.pageSize, size)
}

// normalizeAlignment raises alignment to the heap's minimum and rounds
// it up to the next power of two.
func (h *Heap) normalizeAlignment(alignment uintptr) uintptr {
	if alignment < h.minAlign {
		alignment = h.minAlign
	}
	if alignment&(alignment-1) != 0 {
		a := h.minAlign
		for a < alignment {
			a <<= 1
		}
		alignment = a
	}
	return alignment
}

// roundUp rounds n up to the next multiple of align. align must be a
// power of two.
func roundUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

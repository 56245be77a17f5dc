package heapkit

import "unsafe"

// EmptyReallocPolicy selects what Realloc returns for a zero-size
// request. Both choices are POSIX-conformant; Darwin libc hands back a
// minimal live block, glibc returns NULL.
type EmptyReallocPolicy int

const (
	// EmptyReallocMinimal frees the block and returns a fresh minimal
	// 1-byte block. This is the Darwin convention and the default.
	EmptyReallocMinimal EmptyReallocPolicy = iota

	// EmptyReallocNil frees the block and returns nil.
	EmptyReallocNil
)

// Realloc resizes the block at ptr to at least size bytes.
//
// A nil ptr behaves as Malloc(size). A size of 0 frees the block and
// returns either a minimal block or nil, per the configured
// EmptyReallocPolicy. On allocation failure Realloc returns nil and
// the original block stays live.
//
// Relocation is dampened in both directions: a shrink by less than
// half keeps the block in place, and a growth target is rounded up to
// at least 1.25x the current usable size. Either way the result
// satisfies UsableSize(result) >= size.
func (h *Heap) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	return h.resize(ptr, size, false)
}

// Reallocf is Realloc with free-on-failure semantics: when the new
// allocation fails, the original block is freed before nil is
// returned. Mirrors the BSD/Darwin reallocf.
func (h *Heap) Reallocf(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	return h.resize(ptr, size, true)
}

// resize is the single engine behind Realloc and Reallocf; the two
// differ only in freeOnFailure.
func (h *Heap) resize(ptr unsafe.Pointer, size uintptr, freeOnFailure bool) unsafe.Pointer {
	if ptr == nil {
		return h.Malloc(size)
	}

	if size == 0 {
		h.alloc.Deallocate(ptr)
		h.metrics.RecordFree()
		if h.policy == EmptyReallocNil {
			return nil
		}
		return h.alloc.Allocate(1)
	}

	oldSize := h.alloc.UsableSize(ptr)

	// Shrinking by less than half: the block already fits, keep it.
	if oldSize/2 < size && size <= oldSize {
		h.metrics.RecordRealloc(false, true)
		return ptr
	}

	// Growing: round the target up to at least 1.25x the current size
	// so a run of monotonic growth relocates O(log n) times.
	target := size
	if size > oldSize {
		if grown := oldSize + oldSize/4; grown > target {
			target = grown
		}
	}

	buf := h.alloc.Allocate(target)
	if buf == nil {
		h.logger.LogAllocFailure("realloc", target)
		h.metrics.RecordRealloc(true, false)
		if freeOnFailure {
			h.alloc.Deallocate(ptr)
			h.metrics.RecordFree()
		}
		return nil
	}

	n := oldSize
	if size < n {
		n = size
	}
	memmove(buf, ptr, n)
	h.alloc.Deallocate(ptr)
	h.metrics.RecordFree()
	h.metrics.RecordRealloc(true, true)
	return buf
}

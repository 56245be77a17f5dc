package heapkit

import "unsafe"

// Allocator is the minimal contract an underlying allocator must
// satisfy for Heap to build the POSIX-style allocation surface on top
// of it.
//
// Implementations must be safe for concurrent use from multiple
// goroutines; Heap adds no locking of its own around Allocate,
// Deallocate or UsableSize.
//
// Heap never calls Allocate with size 0.
//
// The aligned-allocation path may hand Deallocate an address that lies
// inside a larger allocated block: the block start rounded up to the
// next alignment boundary. Implementations plugged into Heap must
// either resolve such interior pointers to the owning block or ignore
// the call. Allocators that store a header immediately before each
// block and crash on interior frees are not suitable. See
// Heap.Memalign.
type Allocator interface {
	// Allocate returns a block of at least size bytes, or nil if the
	// request cannot be satisfied.
	Allocate(size uintptr) unsafe.Pointer

	// Deallocate releases a block previously returned by Allocate.
	Deallocate(ptr unsafe.Pointer)

	// UsableSize reports the number of usable bytes in the block at
	// ptr. The result is at least the size that was requested when the
	// block was allocated.
	UsableSize(ptr unsafe.Pointer) uintptr

	// Lock brings the allocator to a quiescent state. It blocks until
	// no other thread is inside an allocator operation and keeps new
	// ones from starting until Unlock. Used by the fork bracket.
	Lock()

	// Unlock releases the lock taken by Lock.
	Unlock()
}

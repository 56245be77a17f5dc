// Package heapkit builds a full POSIX-style allocation surface on top
// of a minimal five-primitive allocator contract.
//
// An underlying allocator only has to supply Allocate, Deallocate,
// UsableSize, Lock and Unlock (see the Allocator interface). Heap then
// provides the rest: malloc/free, adaptive realloc and reallocf with a
// bounded-relocation resize policy, overflow-checked calloc,
// memalign/posix_memalign/valloc built from an unaligned allocator,
// strdup, batch allocation, and a fork-safety bracket.
//
// # Quick Start
//
//	pool, _ := mmapheap.New()
//	heap := heapkit.New(pool)
//
//	p := heap.Malloc(64)
//	p = heap.Realloc(p, 256)
//	heap.Free(p)
//
//	q, err := heap.PosixMemalign(4096, 1<<20)
//
// # Resize Policy
//
// Realloc keeps the block in place when it shrinks by less than half,
// and rounds growth targets up to at least 1.25x the current usable
// size. A monotonically growing block is therefore relocated
// O(log(final/initial)) times instead of once per call.
//
// # Zones
//
// NewZone produces an explicit allocation-zone descriptor (a record of
// function bindings plus a name and version) for callers that splice
// the heap into a host memory subsystem. Registration itself is the
// caller's concern; heapkit only fills in the descriptor.
//
// # Concurrency
//
// Heap holds no mutable state of its own. All thread safety is
// delegated to the underlying Allocator, which must support concurrent
// invocation. The fork bracket (Acquire/Release, or the ForkPrepare/
// ForkParent/ForkChild trio) is the only ordering primitive.
package heapkit

// Package mmapheap provides a size-class slab allocator backed by
// anonymous memory mappings. It implements the five-primitive
// allocator contract heapkit.Heap builds on.
//
// Requests up to 4 KiB are served from spans: fixed-size mapped
// regions cut into power-of-two blocks. Because every block starts at
// a multiple of its class size, small allocations carry natural
// alignment, and an address anywhere inside a block resolves back to
// the owning block on Deallocate. Larger requests get a dedicated
// page-rounded mapping of their own.
//
// The interior-pointer resolution is what makes Pool safe to plug into
// heapkit's aligned-allocation path, which may free an address that is
// not the start of the underlying block.
package mmapheap

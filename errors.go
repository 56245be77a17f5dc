package heapkit

import "errors"

var (
	// ErrOutOfMemory is returned by PosixMemalign when the underlying
	// allocator cannot satisfy the request. On the pointer-returning
	// operations (Malloc, Realloc, Calloc, Memalign) allocation failure
	// stays a nil pointer, matching the C surface they mirror.
	ErrOutOfMemory = errors.New("heapkit: out of memory")

	// ErrInvalidAlignment is returned by PosixMemalign when alignment
	// is zero or not a power of two. No allocation is attempted.
	ErrInvalidAlignment = errors.New("heapkit: alignment must be a nonzero power of two")

	// ErrSizeOverflow indicates a count*elemSize product that does not
	// fit in a uintptr. Calloc rejects such requests before touching
	// the allocator.
	ErrSizeOverflow = errors.New("heapkit: allocation size overflow")
)

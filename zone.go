package heapkit

import "unsafe"

// ZoneVersion is the descriptor layout version NewZone fills in,
// matching the malloc_zone_t revision the bindings were modeled on.
const ZoneVersion = 8

// Zone is an allocation-zone descriptor: a named record of function
// bindings that a platform-registration collaborator splices into a
// host memory subsystem. heapkit only constructs the descriptor;
// registering it (symbol interposition, zone tables, process
// registration) is the caller's concern.
//
// Zones are explicit objects. Build one per Heap with NewZone and pass
// it to whatever performs registration at startup; there is no
// implicit default zone.
type Zone struct {
	Name    string
	Version int

	Size             func(ptr unsafe.Pointer) uintptr
	Malloc           func(size uintptr) unsafe.Pointer
	Calloc           func(count, elemSize uintptr) unsafe.Pointer
	Valloc           func(size uintptr) unsafe.Pointer
	Free             func(ptr unsafe.Pointer)
	FreeDefiniteSize func(ptr unsafe.Pointer, size uintptr)
	Realloc          func(ptr unsafe.Pointer, size uintptr) unsafe.Pointer
	Memalign         func(alignment, size uintptr) unsafe.Pointer
	GoodSize         func(size uintptr) uintptr
	BatchMalloc      func(size uintptr, n int) []unsafe.Pointer
	BatchFree        func(ptrs []unsafe.Pointer)

	// Check reports whether the zone is internally consistent. The
	// heap carries no introspectable state of its own, so this always
	// reports true; it exists because zone tables expect the binding.
	Check func() bool
}

// NewZone builds a Zone descriptor whose bindings all delegate to h.
func NewZone(h *Heap, name string) *Zone {
	return &Zone{
		Name:    name,
		Version: ZoneVersion,

		Size:    h.UsableSize,
		Malloc:  h.Malloc,
		Calloc:  h.Calloc,
		Valloc:  h.Valloc,
		Free:    h.Free,
		Realloc: h.Realloc,
		FreeDefiniteSize: func(ptr unsafe.Pointer, _ uintptr) {
			h.Free(ptr)
		},
		Memalign:    h.Memalign,
		GoodSize:    h.GoodSize,
		BatchMalloc: h.BatchMalloc,
		BatchFree:   h.BatchFree,
		Check:       func() bool { return true },
	}
}

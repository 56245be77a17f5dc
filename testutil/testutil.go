// Package testutil provides scriptable allocator doubles for testing
// code built on heapkit's Allocator contract: failure injection,
// forced address misalignment, usable-size slack, and call recording.
package testutil

import (
	"fmt"
	"sync"
	"unsafe"
)

// block is one live stub allocation. ptr may sit past the start of buf
// when a forced offset is configured.
type block struct {
	buf  []byte
	addr uintptr
	size uintptr
}

// StubAllocator is a Go-heap backed allocator double. It keeps every
// live block reachable, records calls, and can be scripted to fail or
// to return deliberately misaligned addresses.
//
// It satisfies heapkit's Allocator contract, including Deallocate on
// interior pointers.
type StubAllocator struct {
	mu     sync.Mutex
	blocks []*block

	sizes   []uintptr
	frees   int
	locks   int
	unlocks int

	// failRemaining counts allocations that still succeed before every
	// later one fails; -1 disables failure injection.
	failRemaining int

	slack       uintptr
	offsetAlign uintptr
	offsetDelta uintptr
}

// NewStub creates a StubAllocator with no scripted behavior: every
// allocation succeeds and usable size equals the requested size.
func NewStub() *StubAllocator {
	return &StubAllocator{failRemaining: -1}
}

// FailAfter scripts the allocator to satisfy n more allocations and
// fail every one after that.
func (s *StubAllocator) FailAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRemaining = n
}

// FailNone clears failure injection.
func (s *StubAllocator) FailNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRemaining = -1
}

// SetSlack makes every block report n more usable bytes than were
// requested, mimicking allocators with size classes.
func (s *StubAllocator) SetSlack(n uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slack = n
}

// ForceOffset makes every returned address congruent to delta modulo
// align, so callers can force the aligned-allocation search off its
// fast path. align must be a power of two and delta < align.
func (s *StubAllocator) ForceOffset(align, delta uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsetAlign = align
	s.offsetDelta = delta
}

// Allocate implements the allocator contract.
func (s *StubAllocator) Allocate(size uintptr) unsafe.Pointer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sizes = append(s.sizes, size)

	if s.failRemaining == 0 {
		return nil
	}
	if s.failRemaining > 0 {
		s.failRemaining--
	}

	usable := size + s.slack
	if usable == 0 {
		usable = 1
	}
	if s.offsetAlign == 0 {
		buf := make([]byte, usable)
		b := &block{buf: buf, addr: uintptr(unsafe.Pointer(&buf[0])), size: usable}
		s.blocks = append(s.blocks, b)
		return unsafe.Pointer(&buf[0])
	}

	// Overallocate, then pick the first address past an alignment
	// boundary plus the configured delta.
	buf := make([]byte, usable+2*s.offsetAlign)
	base := uintptr(unsafe.Pointer(&buf[0]))
	start := (base+s.offsetAlign-1)&^(s.offsetAlign-1) + s.offsetDelta
	b := &block{buf: buf, addr: start, size: usable}
	s.blocks = append(s.blocks, b)
	return unsafe.Pointer(&buf[start-base])
}

// Deallocate implements the allocator contract. Interior addresses
// resolve to the containing block. Freeing an address the stub does
// not own panics so tests catch ownership bugs immediately.
func (s *StubAllocator) Deallocate(ptr unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(uintptr(ptr))
	if i < 0 {
		panic(fmt.Sprintf("testutil: Deallocate of unknown address %#x", uintptr(ptr)))
	}
	s.blocks[i] = s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]
	s.frees++
}

// UsableSize implements the allocator contract. Addresses the stub
// does not own report 0.
func (s *StubAllocator) UsableSize(ptr unsafe.Pointer) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(uintptr(ptr))
	if i < 0 {
		return 0
	}
	return s.blocks[i].size
}

// Lock implements the allocator contract: it serializes with every
// in-flight stub operation and holds them off until Unlock.
func (s *StubAllocator) Lock() {
	s.mu.Lock()
	s.locks++
}

// Unlock implements the allocator contract.
func (s *StubAllocator) Unlock() {
	s.unlocks++
	s.mu.Unlock()
}

// Live reports the number of live blocks.
func (s *StubAllocator) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}

// IsLive reports whether ptr falls inside a live block.
func (s *StubAllocator) IsLive(ptr unsafe.Pointer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(uintptr(ptr)) >= 0
}

// Allocs reports the number of Allocate calls, including failed ones.
func (s *StubAllocator) Allocs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sizes)
}

// Frees reports the number of successful Deallocate calls.
func (s *StubAllocator) Frees() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frees
}

// Sizes returns the requested sizes of every Allocate call in order.
func (s *StubAllocator) Sizes() []uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uintptr, len(s.sizes))
	copy(out, s.sizes)
	return out
}

// LastSize returns the size of the most recent Allocate call, or 0 if
// none was made.
func (s *StubAllocator) LastSize() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sizes) == 0 {
		return 0
	}
	return s.sizes[len(s.sizes)-1]
}

// Locks reports the number of Lock calls.
func (s *StubAllocator) Locks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks
}

// Unlocks reports the number of Unlock calls.
func (s *StubAllocator) Unlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocks
}

// find returns the index of the block containing addr, or -1. Caller
// must hold s.mu.
func (s *StubAllocator) find(addr uintptr) int {
	for i, b := range s.blocks {
		if addr >= b.addr && addr < b.addr+b.size {
			return i
		}
	}
	return -1
}

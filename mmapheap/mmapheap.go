package mmapheap

import (
	"os"
	"sync"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
)

// span is one mapped region cut into equal blocks. A dedicated large
// mapping is modeled as a single-block span so the lookup and free
// paths stay uniform.
type span struct {
	data      []byte
	base      uintptr
	blockSize uintptr
	free      *roaring.Bitmap
	large     bool
}

// take hands out the lowest free block. Caller must hold the pool
// lock and have checked that the span has a free block.
func (s *span) take() unsafe.Pointer {
	idx := s.free.Minimum()
	s.free.Remove(idx)
	return unsafe.Pointer(&s.data[uintptr(idx)*s.blockSize])
}

// Pool is a slab allocator over anonymous memory mappings. It
// satisfies heapkit's Allocator contract, including Deallocate on
// interior pointers, which resolve to the containing block.
//
// All operations serialize on one mutex. Lock takes that same mutex,
// so once Lock returns no other goroutine is inside an operation; do
// not allocate between Lock and Unlock.
type Pool struct {
	mu       sync.Mutex
	pageSize uintptr
	classes  [numClasses][]*span
	byPage   map[uintptr]*span
}

// New creates an empty Pool. Mappings are created lazily as spans
// fill up.
func New() (*Pool, error) {
	return &Pool{
		pageSize: uintptr(os.Getpagesize()),
		byPage:   make(map[uintptr]*span),
	}, nil
}

// Allocate returns a zero-initialized block of at least size bytes, or
// nil if the mapping request is refused by the OS.
func (p *Pool) Allocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if size > maxClassSize {
		return p.allocateLarge(size)
	}

	ci := classIndex(size)
	for _, s := range p.classes[ci] {
		if !s.free.IsEmpty() {
			return s.take()
		}
	}

	s, err := p.newSpan(ci)
	if err != nil {
		return nil
	}
	return s.take()
}

// Deallocate releases the block containing ptr. Unknown addresses and
// repeated frees of the same block are ignored.
func (p *Pool) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.byPage[uintptr(ptr)&^(p.pageSize-1)]
	if s == nil {
		return
	}

	if s.large {
		p.releaseSpan(s)
		return
	}

	// Interior pointers round down to the owning block here.
	idx := uint32((uintptr(ptr) - s.base) / s.blockSize)
	if s.free.Contains(idx) {
		return
	}
	memclrBlock(s, idx)
	s.free.Add(idx)
}

// UsableSize reports the size of the block containing ptr, or 0 for an
// address the pool does not own.
func (p *Pool) UsableSize(ptr unsafe.Pointer) uintptr {
	if ptr == nil {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.byPage[uintptr(ptr)&^(p.pageSize-1)]
	if s == nil {
		return 0
	}
	return s.blockSize
}

// Lock brings the pool to a quiescent state: it blocks until no other
// goroutine is inside an operation and holds off new ones until
// Unlock.
func (p *Pool) Lock() {
	p.mu.Lock()
}

// Unlock releases the lock taken by Lock.
func (p *Pool) Unlock() {
	p.mu.Unlock()
}

// Close unmaps every region the pool created. Any outstanding block
// becomes invalid.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	seen := make(map[*span]struct{})
	for _, s := range p.byPage {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		if err := unmapRegion(s.data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.byPage = make(map[uintptr]*span)
	for ci := range p.classes {
		p.classes[ci] = nil
	}
	return firstErr
}

// PoolStats summarizes pool occupancy.
type PoolStats struct {
	Spans       int
	LargeSpans  int
	FreeBlocks  uint64
	MappedBytes uintptr
}

// Stats reports a snapshot of span and block occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var st PoolStats
	seen := make(map[*span]struct{})
	for _, s := range p.byPage {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		st.MappedBytes += uintptr(len(s.data))
		if s.large {
			st.LargeSpans++
			continue
		}
		st.Spans++
		st.FreeBlocks += s.free.GetCardinality()
	}
	return st
}

// allocateLarge maps a dedicated page-rounded region for one block.
// Caller must hold the pool lock.
func (p *Pool) allocateLarge(size uintptr) unsafe.Pointer {
	mapped := (size + p.pageSize - 1) &^ (p.pageSize - 1)
	data, err := mapRegion(int(mapped))
	if err != nil {
		return nil
	}
	s := &span{
		data:      data,
		base:      uintptr(unsafe.Pointer(&data[0])),
		blockSize: mapped,
		free:      roaring.New(),
		large:     true,
	}
	p.register(s)
	return unsafe.Pointer(&data[0])
}

// newSpan maps a fresh span for class ci with every block free.
// Caller must hold the pool lock.
func (p *Pool) newSpan(ci int) (*span, error) {
	data, err := mapRegion(spanSize)
	if err != nil {
		return nil, err
	}
	bs := classSize(ci)
	n := uint32(spanSize / bs)
	s := &span{
		data:      data,
		base:      uintptr(unsafe.Pointer(&data[0])),
		blockSize: bs,
		free:      roaring.New(),
	}
	s.free.AddRange(0, uint64(n))
	p.classes[ci] = append(p.classes[ci], s)
	p.register(s)
	return s, nil
}

// register indexes every page of the span for pointer lookup. Mapped
// bases are page-aligned, so block-to-span resolution is a single map
// probe on the page address.
func (p *Pool) register(s *span) {
	for off := uintptr(0); off < uintptr(len(s.data)); off += p.pageSize {
		p.byPage[s.base+off] = s
	}
}

// releaseSpan unmaps s and drops it from the page index. Caller must
// hold the pool lock.
func (p *Pool) releaseSpan(s *span) {
	for off := uintptr(0); off < uintptr(len(s.data)); off += p.pageSize {
		delete(p.byPage, s.base+off)
	}
	_ = unmapRegion(s.data)
}

// memclrBlock zeroes a freed block so reused blocks come back as clean
// as freshly mapped ones.
func memclrBlock(s *span, idx uint32) {
	off := uintptr(idx) * s.blockSize
	clear(s.data[off : off+s.blockSize])
}

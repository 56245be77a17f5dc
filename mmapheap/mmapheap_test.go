package mmapheap

import (
	"fmt"
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestClassIndex(t *testing.T) {
	tests := []struct {
		size uintptr
		want uintptr
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{48, 64},
		{64, 64},
		{100, 128},
		{4095, 4096},
		{4096, 4096},
	}
	for _, tt := range tests {
		assert.EqualValues(t, tt.want, classSize(classIndex(tt.size)), "size %d", tt.size)
	}
}

func TestAllocateNaturalAlignment(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	for _, size := range []uintptr{1, 16, 48, 100, 1000, 4096} {
		p := pool.Allocate(size)
		require.NotNil(t, p, "size %d", size)

		cs := classSize(classIndex(size))
		assert.EqualValues(t, 0, uintptr(p)&(cs-1), "block of class %d must carry natural alignment", cs)
		assert.EqualValues(t, cs, pool.UsableSize(p))
	}
}

func TestDeallocateReusesBlock(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	p := pool.Allocate(100)
	require.NotNil(t, p)

	pool.Deallocate(p)

	q := pool.Allocate(100)
	assert.Equal(t, p, q, "the lowest free block is handed out first")
}

func TestDeallocateInteriorPointer(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	p := pool.Allocate(100)
	require.NotNil(t, p)

	// Free through an address 40 bytes into the block.
	pool.Deallocate(unsafe.Add(p, 40))

	q := pool.Allocate(100)
	assert.Equal(t, p, q, "the interior free must release the owning block")
}

func TestDoubleFreeIgnored(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	p := pool.Allocate(64)
	require.NotNil(t, p)
	pool.Deallocate(p)
	pool.Deallocate(p)

	q := pool.Allocate(64)
	r := pool.Allocate(64)
	assert.NotEqual(t, q, r, "a double free must not hand the same block out twice")
}

func TestReusedBlockIsZeroed(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	p := pool.Allocate(64)
	require.NotNil(t, p)
	buf := unsafe.Slice((*byte)(p), 64)
	for i := range buf {
		buf[i] = 0xAA
	}
	pool.Deallocate(p)

	q := pool.Allocate(64)
	require.Equal(t, p, q)
	for i, b := range unsafe.Slice((*byte)(q), 64) {
		require.EqualValues(t, 0, b, "byte %d still dirty after reuse", i)
	}
}

func TestLargeAllocation(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	pageSize := uintptr(os.Getpagesize())

	p := pool.Allocate(1 << 20)
	require.NotNil(t, p)
	assert.EqualValues(t, 0, uintptr(p)&(pageSize-1), "large blocks are page aligned")
	assert.GreaterOrEqual(t, uint64(pool.UsableSize(p)), uint64(1<<20))

	pool.Deallocate(p)
	assert.EqualValues(t, 0, pool.UsableSize(p), "a released large block is no longer owned")
}

func TestUnknownPointerIgnored(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	var local [64]byte
	assert.EqualValues(t, 0, pool.UsableSize(unsafe.Pointer(&local[0])))
	assert.NotPanics(t, func() {
		pool.Deallocate(unsafe.Pointer(&local[0]))
	})
}

func TestStats(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	require.NotNil(t, pool.Allocate(64))
	require.NotNil(t, pool.Allocate(64))
	require.NotNil(t, pool.Allocate(1<<20))

	st := pool.Stats()
	assert.Equal(t, 1, st.Spans)
	assert.Equal(t, 1, st.LargeSpans)
	assert.EqualValues(t, spanSize/64-2, st.FreeBlocks)
	assert.GreaterOrEqual(t, uint64(st.MappedBytes), uint64(spanSize+(1<<20)))
}

func TestConcurrentAllocateFree(t *testing.T) {
	pool, err := New()
	require.NoError(t, err)
	defer pool.Close()

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			ptrs := make([]unsafe.Pointer, 0, 64)
			for i := 0; i < 500; i++ {
				p := pool.Allocate(uintptr(1 + (i*31+w)%5000))
				if p == nil {
					return fmt.Errorf("allocation %d failed", i)
				}
				ptrs = append(ptrs, p)
				if len(ptrs) == cap(ptrs) {
					for _, q := range ptrs {
						pool.Deallocate(q)
					}
					ptrs = ptrs[:0]
				}
			}
			for _, q := range ptrs {
				pool.Deallocate(q)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := pool.Stats()
	assert.Equal(t, 0, st.LargeSpans, "every large block must have been returned")
}

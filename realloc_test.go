package heapkit

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/heapkit/testutil"
)

func TestReallocNilPointer(t *testing.T) {
	stub := testutil.NewStub()
	h := New(stub)

	p := h.Realloc(nil, 64)
	require.NotNil(t, p)
	assert.GreaterOrEqual(t, uint64(h.UsableSize(p)), uint64(64))
	h.Free(p)
}

func TestReallocZeroSize(t *testing.T) {
	t.Run("MinimalPolicy", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub) // EmptyReallocMinimal is the default

		p := h.Malloc(10)
		require.NotNil(t, p)

		q := h.Realloc(p, 0)
		require.NotNil(t, q)
		assert.Equal(t, 1, stub.Frees(), "the original block must be freed")
		assert.GreaterOrEqual(t, uint64(h.UsableSize(q)), uint64(1))
		h.Free(q)
	})

	t.Run("NilPolicy", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub, WithEmptyReallocPolicy(EmptyReallocNil))

		p := h.Malloc(10)
		require.NotNil(t, p)

		q := h.Realloc(p, 0)
		assert.Nil(t, q)
		assert.Equal(t, 1, stub.Frees())
		assert.Equal(t, 0, stub.Live())
	})
}

func TestReallocShrinkDampening(t *testing.T) {
	t.Run("MinorShrinkKeepsBlock", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		// Anything in (50, 100] stays put.
		for _, n := range []uintptr{100, 99, 75, 51} {
			q := h.Realloc(p, n)
			assert.Equal(t, p, q, "shrink to %d must not relocate", n)
		}
		assert.Equal(t, 0, stub.Frees())
		h.Free(p)
	})

	t.Run("HalvingRelocates", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		q := h.Realloc(p, 50)
		require.NotNil(t, q)
		assert.NotEqual(t, p, q)
		assert.Equal(t, 1, stub.Frees())
		h.Free(q)
	})
}

func TestReallocGrowthDampening(t *testing.T) {
	t.Run("SmallGrowthRoundsUp", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		q := h.Realloc(p, 110)
		require.NotNil(t, q)
		assert.EqualValues(t, 125, stub.LastSize(), "target must be rounded up to 1.25x the old size")
		h.Free(q)
	})

	t.Run("LargeGrowthUnchanged", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		q := h.Realloc(p, 1000)
		require.NotNil(t, q)
		assert.EqualValues(t, 1000, stub.LastSize())
		h.Free(q)
	})
}

func TestReallocCopiesContent(t *testing.T) {
	stub := testutil.NewStub()
	h := New(stub)

	p := h.Malloc(100)
	require.NotNil(t, p)
	src := unsafe.Slice((*byte)(p), 100)
	for i := range src {
		src[i] = byte(i)
	}

	q := h.Realloc(p, 400)
	require.NotNil(t, q)
	require.NotEqual(t, p, q)

	dst := unsafe.Slice((*byte)(q), 100)
	for i := range dst {
		require.Equal(t, byte(i), dst[i], "byte %d lost in relocation", i)
	}
	h.Free(q)
}

func TestReallocFailure(t *testing.T) {
	t.Run("ReallocKeepsOriginal", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		stub.FailAfter(0)
		q := h.Realloc(p, 400)
		assert.Nil(t, q)
		assert.True(t, stub.IsLive(p), "the original block must survive a failed realloc")
		assert.Equal(t, 0, stub.Frees())

		stub.FailNone()
		h.Free(p)
	})

	t.Run("ReallocfFreesOriginal", func(t *testing.T) {
		stub := testutil.NewStub()
		h := New(stub)

		p := h.Malloc(100)
		require.NotNil(t, p)

		stub.FailAfter(0)
		q := h.Reallocf(p, 400)
		assert.Nil(t, q)
		assert.False(t, stub.IsLive(p), "reallocf must free the original block on failure")
		assert.Equal(t, 1, stub.Frees())
		assert.Equal(t, 0, stub.Live())
	})
}

func TestReallocUsableSizeProperty(t *testing.T) {
	stub := testutil.NewStub()
	stub.SetSlack(7)
	h := New(stub)

	p := h.Malloc(8)
	require.NotNil(t, p)
	for _, n := range []uintptr{1, 8, 16, 64, 100, 1000, 4096} {
		p = h.Realloc(p, n)
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, uint64(h.UsableSize(p)), uint64(n))
	}
	h.Free(p)
}

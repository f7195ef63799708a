package heap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/grow"
)

// TestNewIsLazy verifies that creating a heap obtains no memory.
func TestNewIsLazy(t *testing.T) {
	h, g := newTestHeap(t, 0)

	assert.Zero(t, g.Len(), "New must not grow the region")
	assert.Empty(t, blockList(h))
	assert.NoError(t, h.Check())
	assert.Zero(t, h.Stats().Grown)
}

// TestAllocAlignmentAndCapacity verifies that every allocation is aligned and
// at least as large as requested.
func TestAllocAlignmentAndCapacity(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	for n := range 200 {
		p := mustAlloc(t, h, n)
		assert.Zero(t, int(p)%Alignment, "Alloc(%d) = %d is not aligned", n, p)

		size, err := h.UsableSize(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size, n)
		assert.Zero(t, size%Alignment)
	}
	assertInvariants(t, h)
}

// TestAllocGrowsExactly verifies that a miss grows by the rounded request plus
// one header, and appends the block at the tail.
func TestAllocGrowsExactly(t *testing.T) {
	h, g := newTestHeap(t, 0)

	a := mustAlloc(t, h, 10)
	assert.Equal(t, Ptr(HeaderSize), a, "first payload follows the first header")
	assert.Equal(t, 16+HeaderSize, g.Len())

	b := mustAlloc(t, h, 20)
	assert.Equal(t, Ptr(16+2*HeaderSize), b)
	assert.Equal(t, 16+32+2*HeaderSize, g.Len())

	s := h.Stats()
	assert.Equal(t, 2, s.GrowCalls)
	assert.Equal(t, 2, s.AllocSlowPath)
	assert.Equal(t, 0, s.AllocFastPath)
	assertInvariants(t, h)
}

// TestAllocZeroIsDistinct verifies that zero-byte requests return distinct
// non-null pointers.
func TestAllocZeroIsDistinct(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	p1 := mustAlloc(t, h, 0)
	p2 := mustAlloc(t, h, 0)
	assert.NotEqual(t, p1, p2)

	size, err := h.UsableSize(p1)
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, h.Free(p1))
	require.NoError(t, h.Free(p2))
	assertInvariants(t, h)
}

// TestScenarioFirstFitReuse verifies that a freed low block is reused before
// anything at a higher address.
func TestScenarioFirstFitReuse(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	a := mustAlloc(t, h, 10)
	_ = mustAlloc(t, h, 20)
	require.NoError(t, h.Free(a))

	c := mustAlloc(t, h, 5)
	assert.Equal(t, a, c, "allocation must reuse the lowest free block")
	assert.Equal(t, 2, h.Stats().GrowCalls, "reuse must not grow the heap")
	assertInvariants(t, h)
}

// TestFirstFitSkipsSmallBlocks verifies the scan passes over free blocks that
// are too small and picks the first one that fits.
func TestFirstFitSkipsSmallBlocks(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	small := mustAlloc(t, h, 16)
	_ = mustAlloc(t, h, 16)
	big1 := mustAlloc(t, h, 96)
	_ = mustAlloc(t, h, 16)
	big2 := mustAlloc(t, h, 96)
	_ = mustAlloc(t, h, 16)

	require.NoError(t, h.Free(small))
	require.NoError(t, h.Free(big1))
	require.NoError(t, h.Free(big2))

	p := mustAlloc(t, h, 64)
	assert.Equal(t, big1, p, "first fit is the lowest block that is large enough")
	assertInvariants(t, h)
}

// TestSplitThreshold verifies that a free block is only split when the
// remainder can hold a header plus the minimum payload. A remainder of exactly
// HeaderSize+MinPayload counts as large enough: it yields a free block with
// the minimum payload.
func TestSplitThreshold(t *testing.T) {
	tests := []struct {
		name      string
		request   int
		wantSize  int
		wantSplit bool
	}{
		{"exact fit", 64, 64, false},
		{"remainder below threshold", 32, 64, false},
		{"remainder equal to header plus minimum payload splits", 16, 16, true},
		{"zero request", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHeap(t, 0)
			a := mustAlloc(t, h, 64)
			_ = mustAlloc(t, h, 16) // guard against coalescing into the tail
			require.NoError(t, h.Free(a))

			p := mustAlloc(t, h, tt.request)
			require.Equal(t, a, p)

			size, err := h.UsableSize(p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, size)

			blocks := blockList(h)
			if tt.wantSplit {
				require.Len(t, blocks, 3)
				assert.True(t, blocks[1].Free, "remainder must be free")
				assert.Equal(t, 64-tt.wantSize-HeaderSize, blocks[1].Size)
				assert.Equal(t, 1, h.Stats().Splits)
			} else {
				require.Len(t, blocks, 2)
				assert.Zero(t, h.Stats().Splits)
			}
			assertInvariants(t, h)
		})
	}
}

// TestMinPayloadOption verifies that a larger minimum payload suppresses splits.
func TestMinPayloadOption(t *testing.T) {
	h := New(grow.NewSlice(0), &Options{MinPayload: 40})
	assert.Equal(t, 48, h.minPayload, "MinPayload is rounded to the alignment")

	a := mustAlloc(t, h, 128)
	_ = mustAlloc(t, h, 16)
	require.NoError(t, h.Free(a))

	// 128 - 64 = 64 < 32 + 48: the whole block is handed out.
	p := mustAlloc(t, h, 64)
	size, err := h.UsableSize(p)
	require.NoError(t, err)
	assert.Equal(t, 128, size)
	assertInvariants(t, h)
}

// TestAllocOutOfMemory verifies that a refused growth surfaces as
// ErrOutOfMemory and leaves the heap untouched.
func TestAllocOutOfMemory(t *testing.T) {
	h, g := newTestHeap(t, 256)

	a := mustAlloc(t, h, 200)
	fillSeq(t, h, a, 200)
	before := h.Stats()

	p, b, err := h.Alloc(16)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, grow.ErrExhausted, "the grower's error stays in the chain")
	assert.Equal(t, Null, p)
	assert.Nil(t, b)

	after := h.Stats()
	assert.Equal(t, before.Grown, after.Grown)
	assert.Equal(t, before.Blocks, after.Blocks)
	assert.Equal(t, 1, after.GrowFailures)
	assert.Equal(t, 240, g.Len())
	assertSeq(t, h, a, 200)
	assertInvariants(t, h)
}

// TestAllocOutOfMemoryDefaultGrower verifies that the default grower refuses
// requests beyond its host-derived ceiling rather than panicking.
func TestAllocOutOfMemoryDefaultGrower(t *testing.T) {
	h := New(nil, nil)

	p, b, err := h.Alloc(1 << 50)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, grow.ErrExhausted)
	assert.Equal(t, Null, p)
	assert.Nil(t, b)
	assert.Zero(t, h.Stats().Grown)
	assert.Empty(t, blockList(h))
	assert.NoError(t, h.Check())

	a := mustAlloc(t, h, 64)
	fillSeq(t, h, a, 64)
	before := blockList(h)

	_, _, err = h.Alloc(1 << 50)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, before, blockList(h))
	assertSeq(t, h, a, 64)
	assertInvariants(t, h)
}

// TestAllocSizeOverflow verifies that requests whose rounding or header
// addition overflows are reported as out of memory without touching the grower.
func TestAllocSizeOverflow(t *testing.T) {
	calls := 0
	h := New(grow.NewSlice(0), &Options{OnGrow: func(int) { calls++ }})

	for _, n := range []int{math.MaxInt, math.MaxInt - 14, math.MaxInt - 20} {
		p, _, err := h.Alloc(n)
		assert.ErrorIs(t, err, ErrOutOfMemory, "Alloc(%d)", n)
		assert.Equal(t, Null, p)
	}
	assert.Zero(t, calls)
	assert.Zero(t, h.Stats().GrowFailures, "overflow is detected before growth")
}

// TestAllocNegative verifies that negative sizes are rejected.
func TestAllocNegative(t *testing.T) {
	h, _ := newTestHeap(t, 0)
	_, _, err := h.Alloc(-1)
	assert.ErrorIs(t, err, ErrBadSize)
}

// TestOnGrowHook verifies the growth hook sees every successful growth.
func TestOnGrowHook(t *testing.T) {
	var sizes []int
	h := New(grow.NewSlice(0), &Options{OnGrow: func(n int) { sizes = append(sizes, n) }})

	a := mustAlloc(t, h, 1)
	_ = mustAlloc(t, h, 100)
	require.NoError(t, h.Free(a))
	_ = mustAlloc(t, h, 8) // reuses a, no growth

	assert.Equal(t, []int{16 + HeaderSize, 112 + HeaderSize}, sizes)
}

// TestCallocZeroesReusedMemory verifies Calloc clears memory recycled from a
// previous allocation.
func TestCallocZeroesReusedMemory(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	a := mustAlloc(t, h, 32)
	fill(t, h, a, 32, 0xff)
	_ = mustAlloc(t, h, 16)
	require.NoError(t, h.Free(a))

	p, b, err := h.Calloc(4, 8)
	require.NoError(t, err)
	assert.Equal(t, a, p)
	assert.Len(t, b, 32)
	for i, v := range b[:cap(b)] {
		require.Zero(t, v, "byte %d not cleared", i)
	}
}

// TestCallocOverflow verifies count*size overflow is out of memory.
func TestCallocOverflow(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	_, _, err := h.Calloc(math.MaxInt/2, 3)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, _, err = h.Calloc(-1, 3)
	assert.ErrorIs(t, err, ErrBadSize)
}

// TestBytesViews verifies Bytes exposes the full usable payload of a live block.
func TestBytesViews(t *testing.T) {
	h, _ := newTestHeap(t, 0)

	p, b, err := h.Alloc(10)
	require.NoError(t, err)
	assert.Len(t, b, 10)
	assert.Equal(t, 16, cap(b))

	full, err := h.Bytes(p)
	require.NoError(t, err)
	assert.Len(t, full, 16)

	copy(b, "heapkit!!!")
	assert.Equal(t, "heapkit!!!", string(full[:10]), "views alias the same payload")

	require.NoError(t, h.Free(p))
	_, err = h.Bytes(p)
	assert.ErrorIs(t, err, ErrDoubleFree)
}

func TestRegion(t *testing.T) {
	h, _ := newTestHeap(t, 0)
	assert.Nil(t, h.Region())

	a := mustAlloc(t, h, 16)
	b, err := h.Bytes(a)
	require.NoError(t, err)
	copy(b, "region")

	r := h.Region()
	assert.Len(t, r, HeaderSize+16)
	assert.Equal(t, "region", string(r[HeaderSize:HeaderSize+6]))
}

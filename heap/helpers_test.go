package heap

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/grow"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestHeap returns a heap over a fresh Slice grower limited to limit bytes
// (0 = the default ceiling), plus the grower for direct region inspection.
func newTestHeap(t testing.TB, limit int) (*Heap, *grow.Slice) {
	t.Helper()
	g := grow.NewSlice(limit)
	return New(g, nil), g
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(t testing.TB, h *Heap, n int) Ptr {
	t.Helper()
	p, b, err := h.Alloc(n)
	require.NoError(t, err, "Alloc(%d)", n)
	require.NotEqual(t, Null, p, "Alloc(%d) returned Null", n)
	require.Len(t, b, n)
	return p
}

// fill writes pattern byte v over the first n bytes of p.
func fill(t testing.TB, h *Heap, p Ptr, n int, v byte) {
	t.Helper()
	b, err := h.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range b[:n] {
		b[i] = v
	}
}

// fillSeq writes 0, 1, 2, ... over the first n bytes of p.
func fillSeq(t testing.TB, h *Heap, p Ptr, n int) {
	t.Helper()
	b, err := h.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range b[:n] {
		b[i] = byte(i)
	}
}

// assertSeq verifies the first n bytes of p still read 0, 1, 2, ...
func assertSeq(t testing.TB, h *Heap, p Ptr, n int) {
	t.Helper()
	b, err := h.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	for i := range b[:n] {
		if b[i] != byte(i) {
			t.Fatalf("byte %d of block %d = %d, want %d", i, p, b[i], byte(i))
		}
	}
}

// assertInvariants checks the directory invariants plus the accounting and
// overlap properties that Check does not express directly.
func assertInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())

	s := h.Stats()
	assert.Equal(t, s.Grown, s.InUseBytes+s.FreeBytes+s.Overhead,
		"block sizes plus headers must account for every grown byte")
	assert.Equal(t, int64(s.Grown), s.GrowBytes, "grown bytes must match growth counter")

	var blocks []BlockInfo
	h.Walk(func(b BlockInfo) bool {
		blocks = append(blocks, b)
		return true
	})
	require.True(t, sort.SliceIsSorted(blocks, func(i, j int) bool { return blocks[i].Ptr < blocks[j].Ptr }),
		"walk must be in address order")
	for i := 1; i < len(blocks); i++ {
		prevEnd := int(blocks[i-1].Ptr) + blocks[i-1].Size
		assert.LessOrEqual(t, prevEnd+HeaderSize, int(blocks[i].Ptr), "payloads overlap")
		assert.False(t, blocks[i-1].Free && blocks[i].Free, "adjacent free blocks at %d and %d",
			blocks[i-1].Ptr, blocks[i].Ptr)
	}
}

// blockList returns the directory as a slice for layout assertions.
func blockList(h *Heap) []BlockInfo {
	var out []BlockInfo
	h.Walk(func(b BlockInfo) bool {
		out = append(out, b)
		return true
	})
	return out
}

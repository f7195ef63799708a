package heap

import (
	"fmt"
	"io"
)

// Counters holds cumulative operation counts since the heap was created.
type Counters struct {
	AllocCalls    int // Alloc/Calloc calls, including those made by Realloc(Null, n)
	FreeCalls     int // Free calls, including Free(Null)
	ReallocCalls  int // Realloc calls
	AllocFastPath int // allocations served from a free block
	AllocSlowPath int // allocations that required growth

	GrowCalls    int   // successful growth requests
	GrowBytes    int64 // bytes obtained from the growth primitive
	GrowFailures int   // growth requests refused

	Splits           int // blocks split into used + free remainder
	CoalesceForward  int // merges with the following block
	CoalesceBackward int // merges with the preceding block

	ShrinkInPlace int // Realloc served by trimming the block
	GrowInPlace   int // Realloc served by absorbing the free successor
	Moves         int // Realloc served by allocate + copy + free
}

// Stats is a snapshot of the heap's shape and counters.
type Stats struct {
	Counters

	Grown       int // bytes of region owned by the heap
	Blocks      int
	FreeBlocks  int
	InUseBytes  int // payload bytes of live blocks
	FreeBytes   int // payload bytes of free blocks
	LargestFree int // payload bytes of the largest free block
	Overhead    int // header bytes (Blocks * HeaderSize)
}

// Stats walks the directory and returns the current snapshot.
func (h *Heap) Stats() Stats {
	s := Stats{Counters: h.stats}
	if h.started {
		s.Grown = h.end - h.base
	}
	h.Walk(func(b BlockInfo) bool {
		s.Blocks++
		if b.Free {
			s.FreeBlocks++
			s.FreeBytes += b.Size
			s.LargestFree = max(s.LargestFree, b.Size)
		} else {
			s.InUseBytes += b.Size
		}
		return true
	})
	s.Overhead = s.Blocks * HeaderSize
	return s
}

// Fragmentation returns the share of free payload bytes outside the largest
// free block: 0 when all free space is one block (or there is none), close to
// 1 when it is scattered across many small blocks.
func (s Stats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// Fprint writes a human-readable report of the snapshot.
func (s Stats) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Heap: %d bytes in %d blocks (%d free)\n", s.Grown, s.Blocks, s.FreeBlocks)
	fmt.Fprintf(w, "  in use:   %d bytes\n", s.InUseBytes)
	fmt.Fprintf(w, "  free:     %d bytes (largest %d, fragmentation %.1f%%)\n",
		s.FreeBytes, s.LargestFree, s.Fragmentation()*100)
	fmt.Fprintf(w, "  overhead: %d bytes\n", s.Overhead)
	fmt.Fprintf(w, "Calls: alloc=%d (fast=%d slow=%d) free=%d realloc=%d\n",
		s.AllocCalls, s.AllocFastPath, s.AllocSlowPath, s.FreeCalls, s.ReallocCalls)
	fmt.Fprintf(w, "Growth: %d calls, %d bytes, %d refused\n", s.GrowCalls, s.GrowBytes, s.GrowFailures)
	fmt.Fprintf(w, "Blocks: splits=%d coalesce(fwd=%d bwd=%d)\n",
		s.Splits, s.CoalesceForward, s.CoalesceBackward)
	fmt.Fprintf(w, "Realloc: shrink=%d grow=%d move=%d\n", s.ShrinkInPlace, s.GrowInPlace, s.Moves)
}

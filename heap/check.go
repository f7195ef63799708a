package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Check walks the block directory and verifies every structural invariant:
// blocks tile [base, end) in address order, links are symmetric, sizes are
// aligned, headers carry the magic, and no two adjacent blocks are free.
// It returns nil or an error wrapping ErrCorrupt that names the first
// violation found.
func (h *Heap) Check() error {
	if !h.started {
		if h.head != Null || h.tail != Null {
			return fmt.Errorf("%w: uninitialized heap has blocks", ErrCorrupt)
		}
		return nil
	}
	if !buf.Has(h.g.Bytes(), h.base, h.end-h.base) {
		return fmt.Errorf("%w: region is %d bytes, heap ends at %d", ErrCorrupt, len(h.g.Bytes()), h.end)
	}

	cursor := h.base
	prev := Null
	prevFree := false
	for p := h.head; p != Null; p = h.nextOf(p) {
		if h.headerOf(p) != cursor {
			return fmt.Errorf("%w: block at %d, expected header at %d", ErrCorrupt, int(p), cursor)
		}
		if int(p) > h.end {
			return fmt.Errorf("%w: block at %d starts past heap end %d", ErrCorrupt, int(p), h.end)
		}
		if !h.hasMagic(p) {
			return fmt.Errorf("%w: block at %d has no header magic", ErrCorrupt, int(p))
		}
		if h.prevOf(p) != prev {
			return fmt.Errorf("%w: block at %d links back to %d, expected %d",
				ErrCorrupt, int(p), int(h.prevOf(p)), int(prev))
		}

		size := h.sizeOf(p)
		if size < 0 || size > h.end-int(p) {
			return fmt.Errorf("%w: block at %d has size %d past heap end %d", ErrCorrupt, int(p), size, h.end)
		}
		if !buf.IsAligned(size, Alignment) {
			return fmt.Errorf("%w: block at %d has unaligned size %d", ErrCorrupt, int(p), size)
		}

		free := h.isFree(p)
		if free && prevFree {
			return fmt.Errorf("%w: adjacent free blocks at %d and %d", ErrCorrupt, int(prev), int(p))
		}

		cursor = int(p) + size
		prev = p
		prevFree = free
	}

	if prev != h.tail {
		return fmt.Errorf("%w: tail is %d, last block is %d", ErrCorrupt, int(h.tail), int(prev))
	}
	if cursor != h.end {
		return fmt.Errorf("%w: blocks cover [%d, %d), heap is [%d, %d)", ErrCorrupt, h.base, cursor, h.base, h.end)
	}
	return nil
}

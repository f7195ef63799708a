package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Header field offsets, relative to the header start (p - HeaderSize).
const (
	hdrSize = 0x00
	hdrTag  = 0x08
	hdrPrev = 0x10
	hdrNext = 0x18
)

const (
	// tagMagic occupies the upper half of the tag word of every authoritative header.
	tagMagic = uint64(0x68656170) << 32 // "heap"
	tagFree  = uint64(1)
	tagMask  = uint64(0xffffffff) << 32
)

// ============================================================================
// Header field access
// ============================================================================

func (h *Heap) word(p Ptr, field int) uint64 {
	return buf.GetU64LE(h.g.Bytes(), int(p)-HeaderSize+field)
}

func (h *Heap) setWord(p Ptr, field int, v uint64) {
	buf.PutU64LE(h.g.Bytes(), int(p)-HeaderSize+field, v)
}

func (h *Heap) sizeOf(p Ptr) int { return int(h.word(p, hdrSize)) }
func (h *Heap) setSize(p Ptr, n int) { h.setWord(p, hdrSize, uint64(n)) }
func (h *Heap) isFree(p Ptr) bool { return h.word(p, hdrTag)&tagFree != 0 }
func (h *Heap) prevOf(p Ptr) Ptr { return Ptr(h.word(p, hdrPrev)) }
func (h *Heap) nextOf(p Ptr) Ptr { return Ptr(h.word(p, hdrNext)) }
func (h *Heap) setPrev(p Ptr, q Ptr) { h.setWord(p, hdrPrev, uint64(q)) }
func (h *Heap) setNext(p Ptr, q Ptr) { h.setWord(p, hdrNext, uint64(q)) }
func (h *Heap) hasMagic(p Ptr) bool { return h.word(p, hdrTag)&tagMask == tagMagic }
func (h *Heap) clearHeader(p Ptr) { h.setWord(p, hdrTag, 0) }
func (h *Heap) endOf(p Ptr) int { return int(p) + h.sizeOf(p) }
func (h *Heap) headerOf(p Ptr) int { return int(p) - HeaderSize }
func (h *Heap) payloadAt(hdr int) Ptr { return Ptr(hdr + HeaderSize) }

func (h *Heap) setFree(p Ptr, free bool) {
	tag := tagMagic
	if free {
		tag |= tagFree
	}
	h.setWord(p, hdrTag, tag)
}

// initHeader writes a complete, authoritative header for the block at p.
func (h *Heap) initHeader(p Ptr, size int, free bool, prev, next Ptr) {
	h.setSize(p, size)
	h.setFree(p, free)
	h.setPrev(p, prev)
	h.setNext(p, next)
}

// ============================================================================
// Directory operations
// ============================================================================

// locate resolves p to its block, rejecting anything that cannot be the
// payload of a live header in this heap: out-of-range or misaligned offsets,
// and headers without the magic (never written, or absorbed by a merge).
func (h *Heap) locate(p Ptr) error {
	off := int(p)
	if !h.started || off < h.base+HeaderSize || off > h.end {
		return fmt.Errorf("%w: offset %d outside [%d, %d]", ErrBadPtr, off, h.base+HeaderSize, h.end)
	}
	if !buf.IsAligned(off-h.base, Alignment) {
		return fmt.Errorf("%w: offset %d is not %d-byte aligned", ErrBadPtr, off, Alignment)
	}
	data := h.g.Bytes()
	hdr, ok := buf.Slice(data, h.headerOf(p), HeaderSize)
	if !ok {
		return fmt.Errorf("%w: region is %d bytes, heap ends at %d", ErrCorrupt, len(data), h.end)
	}
	if buf.U64LE(hdr[hdrTag:])&tagMask != tagMagic {
		return fmt.Errorf("%w: no block header at offset %d", ErrBadPtr, off)
	}
	size := int(buf.U64LE(hdr[hdrSize:]))
	if size < 0 || size > h.end-off {
		return fmt.Errorf("%w: header at offset %d claims %d bytes", ErrBadPtr, off, size)
	}
	if !buf.Has(data, off, size) {
		return fmt.Errorf("%w: region is %d bytes, block at %d ends at %d", ErrCorrupt, len(data), off, off+size)
	}
	return nil
}

// split carves the tail of p into a new free block so that p keeps exactly
// need payload bytes. It does nothing and returns Null when the remainder
// could not hold a header plus the minimum payload.
func (h *Heap) split(p Ptr, need int) Ptr {
	size := h.sizeOf(p)
	rem := size - need
	if rem < HeaderSize+h.minPayload {
		return Null
	}

	q := h.payloadAt(int(p) + need)
	next := h.nextOf(p)
	h.initHeader(q, rem-HeaderSize, true, p, next)
	if next != Null {
		h.setPrev(next, q)
	} else {
		h.tail = q
	}
	h.setNext(p, q)
	h.setSize(p, need)

	h.stats.Splits++
	return q
}

// merge absorbs q, which must be p's successor, into p. The absorbed header
// stops being authoritative: its tag is cleared so stale pointers to it are
// rejected by locate.
func (h *Heap) merge(p, q Ptr) {
	next := h.nextOf(q)
	h.setSize(p, h.sizeOf(p)+HeaderSize+h.sizeOf(q))
	h.setNext(p, next)
	if next != Null {
		h.setPrev(next, p)
	} else {
		h.tail = p
	}
	h.clearHeader(q)
}

// coalesce merges the free block p with free neighbors on both sides and
// returns the surviving block. One merge per side suffices because no two
// adjacent blocks were free before p was.
func (h *Heap) coalesce(p Ptr) Ptr {
	if q := h.nextOf(p); q != Null && h.isFree(q) {
		h.merge(p, q)
		h.stats.CoalesceForward++
	}
	if q := h.prevOf(p); q != Null && h.isFree(q) {
		h.merge(q, p)
		h.stats.CoalesceBackward++
		p = q
	}
	return p
}

// firstFit returns the lowest-addressed free block holding at least need bytes.
func (h *Heap) firstFit(need int) Ptr {
	for p := h.head; p != Null; p = h.nextOf(p) {
		if h.isFree(p) && h.sizeOf(p) >= need {
			return p
		}
	}
	return Null
}

// Walk calls fn for every block in ascending address order until fn returns false.
// fn must not call back into the heap.
func (h *Heap) Walk(fn func(BlockInfo) bool) {
	for p := h.head; p != Null; p = h.nextOf(p) {
		if !fn(BlockInfo{Ptr: p, Size: h.sizeOf(p), Free: h.isFree(p)}) {
			return
		}
	}
}

package heap

// Realloc changes the size of the block p to at least n bytes, preserving the
// first min(old, n) bytes of its contents.
//
//   - p == Null: same as Alloc(n)
//   - n == 0: same as Free(p); returns Null
//   - n fits the current block: shrink in place, returns p
//   - the free successor makes room: grow in place, returns p
//   - otherwise: allocate, copy, free; returns the new block
//
// On ErrOutOfMemory the original block is untouched and still valid.
func (h *Heap) Realloc(p Ptr, n int) (Ptr, []byte, error) {
	h.stats.ReallocCalls++
	if p == Null {
		return h.Alloc(n)
	}

	need, err := roundRequest(n)
	if err != nil {
		return Null, nil, err
	}
	if err := h.live(p); err != nil {
		h.log.Debug("realloc rejected", "ptr", int(p), "err", err)
		return Null, nil, err
	}

	if n == 0 {
		h.release(p)
		return Null, nil, nil
	}

	old := h.sizeOf(p)
	if need <= old {
		h.shrink(p, need)
		h.stats.ShrinkInPlace++
		return p, h.view(p, n), nil
	}

	if q := h.nextOf(p); q != Null && h.isFree(q) && old+HeaderSize+h.sizeOf(q) >= need {
		h.merge(p, q)
		h.split(p, need)
		h.stats.GrowInPlace++
		return p, h.view(p, n), nil
	}

	np, err := h.alloc(n)
	if err != nil {
		return Null, nil, err
	}
	data := h.g.Bytes()
	copy(data[int(np):int(np)+old], data[int(p):int(p)+old])
	h.release(p)
	h.stats.Moves++
	return np, h.view(np, n), nil
}

// shrink trims the live block p to need bytes. The cut-off tail becomes a
// free block, merged into the successor when that one is free too.
func (h *Heap) shrink(p Ptr, need int) {
	q := h.split(p, need)
	if q == Null {
		return
	}
	if r := h.nextOf(q); r != Null && h.isFree(r) {
		h.merge(q, r)
		h.stats.CoalesceForward++
	}
}

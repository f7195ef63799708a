package heap

// Free releases the block p and coalesces it with free neighbors.
//
// Free(Null) is a no-op. A pointer that this heap never returned, or one that
// has already been freed, is rejected with ErrBadPtr or ErrDoubleFree and the
// heap is left unchanged. Detection is best effort: a forged pointer into a
// payload that happens to contain a valid-looking header is not caught.
func (h *Heap) Free(p Ptr) error {
	h.stats.FreeCalls++
	if p == Null {
		return nil
	}
	if err := h.live(p); err != nil {
		h.log.Debug("free rejected", "ptr", int(p), "err", err)
		return err
	}
	h.release(p)
	return nil
}

// release frees a validated live block and returns the block that contains
// it after coalescing.
func (h *Heap) release(p Ptr) Ptr {
	h.setFree(p, true)
	return h.coalesce(p)
}

package writer

// MemWriter keeps the latest snapshot in memory.
type MemWriter struct {
	Buf   []byte
	Count int // snapshots taken
}

// WriteSnapshot replaces Buf with a copy of region.
func (w *MemWriter) WriteSnapshot(region []byte) (int, error) {
	if len(region) == 0 {
		return 0, ErrEmpty
	}
	w.Buf = append(w.Buf[:0], region...)
	w.Count++
	return len(w.Buf), nil
}

package heap

import "sync"

// Locked serializes every operation on a Heap behind one mutex, making it safe
// to share between goroutines. The lock is held for the whole operation and
// released on every return path.
//
// Slices returned by Locked.Alloc and Locked.Realloc are still borrowed views;
// use Do to write through them while no other goroutine can grow the heap.
type Locked struct {
	mu sync.Mutex
	h  *Heap
}

// NewLocked wraps h. The caller must not use h directly afterwards.
func NewLocked(h *Heap) *Locked {
	return &Locked{h: h}
}

// Alloc is Heap.Alloc under the lock.
func (l *Locked) Alloc(n int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Alloc(n)
}

// Calloc is Heap.Calloc under the lock.
func (l *Locked) Calloc(count, size int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Calloc(count, size)
}

// Realloc is Heap.Realloc under the lock.
func (l *Locked) Realloc(p Ptr, n int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Realloc(p, n)
}

// Free is Heap.Free under the lock.
func (l *Locked) Free(p Ptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Free(p)
}

// Stats is Heap.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Stats()
}

// Check is Heap.Check under the lock.
func (l *Locked) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Check()
}

// Do runs fn with exclusive access to the underlying heap.
func (l *Locked) Do(fn func(h *Heap) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.h)
}

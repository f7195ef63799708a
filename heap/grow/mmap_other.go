//go:build !linux && !darwin

package grow

// DefaultReserve is the address range an Mmap reserves when none is given.
const DefaultReserve = 1 << 30

// Mmap is unavailable on this platform; NewMmap always fails.
type Mmap struct{}

// NewMmap reports ErrUnsupported. Use NewSlice instead.
func NewMmap(reserve int) (*Mmap, error) {
	return nil, ErrUnsupported
}

// Grow always fails.
func (m *Mmap) Grow(n int) (int, error) { return 0, ErrUnsupported }

// Bytes returns nil.
func (m *Mmap) Bytes() []byte { return nil }

// Len returns 0.
func (m *Mmap) Len() int { return 0 }

// Reserved returns 0.
func (m *Mmap) Reserved() int { return 0 }

// Close is a no-op.
func (m *Mmap) Close() error { return nil }

package grow

import (
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/limits"
)

// minSliceCap is the first backing capacity a Slice allocates.
const minSliceCap = 4096

// MaxSlice is the largest region a Slice created without a limit will hand
// out. It is lowered further to the host's RAM and half its address-space
// limit, so oversized requests fail with ErrExhausted instead of crashing the
// runtime.
const MaxSlice = 1 << 36

// Slice is a growth primitive backed by an ordinary Go byte slice.
//
// Growing past the current capacity moves the region, so any slice previously
// obtained from Bytes is stale after a successful Grow. Offsets stay valid.
type Slice struct {
	buf   []byte
	limit int
}

// NewSlice returns a Slice that refuses to grow beyond limit bytes.
// A limit of 0 selects the host-derived default (see MaxSlice).
func NewSlice(limit int) *Slice {
	if limit <= 0 {
		limit = defaultSliceLimit()
	}
	return &Slice{limit: limit}
}

func defaultSliceLimit() int {
	ceiling := uint64(MaxSlice)
	if lim, err := limits.Read(); err == nil && lim.AddressSpace != limits.Unlimited {
		ceiling = min(ceiling, lim.AddressSpace/2)
	}
	if ram, err := limits.PhysicalMemory(); err == nil && ram > 0 {
		ceiling = min(ceiling, ram)
	}
	return int(max(min(ceiling, math.MaxInt), minSliceCap))
}

// Grow extends the region by n bytes and returns the offset of the first new byte.
func (s *Slice) Grow(n int) (int, error) {
	if n < 0 {
		return 0, ErrBadSize
	}
	base := len(s.buf)
	end, ok := buf.AddOverflowSafe(base, n)
	if !ok {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrExhausted, base, n)
	}
	if end > s.limit {
		return 0, fmt.Errorf("%w: need %d bytes, limit %d", ErrExhausted, end, s.limit)
	}

	if end > cap(s.buf) {
		newCap := min(max(cap(s.buf)*2, end, minSliceCap), s.limit)
		next := make([]byte, end, newCap)
		copy(next, s.buf)
		s.buf = next
	} else {
		s.buf = s.buf[:end]
	}
	return base, nil
}

// Bytes returns the whole region granted so far.
func (s *Slice) Bytes() []byte {
	return s.buf
}

// Len returns the number of bytes granted so far.
func (s *Slice) Len() int {
	return len(s.buf)
}

// Limit returns the largest region size the Slice will grant.
func (s *Slice) Limit() int {
	return s.limit
}

//go:build linux || darwin

package grow

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/limits"
)

// DefaultReserve is the address range an Mmap reserves when none is given.
const DefaultReserve = 1 << 30

// Mmap is a growth primitive over one anonymous private mapping.
//
// NewMmap reserves the whole range with PROT_NONE; Grow moves a break pointer
// forward and commits whole pages with mprotect as the break crosses them, the
// way sbrk extends a data segment. The mapping never moves, so slices returned
// by Bytes remain valid (over their length) until Close.
type Mmap struct {
	mem       []byte // full reservation
	brk       int    // bytes granted
	committed int    // bytes readable and writable, page multiple
	pageSize  int
}

// NewMmap reserves reserve bytes of address space (rounded up to a page).
// A reserve of 0 selects DefaultReserve, halved until it fits under the
// address-space limit when that limit is finite.
func NewMmap(reserve int) (*Mmap, error) {
	if reserve < 0 {
		return nil, ErrBadSize
	}
	if reserve == 0 {
		reserve = defaultReserve()
	}
	pageSize := unix.Getpagesize()
	size, ok := buf.AlignUp(reserve, pageSize)
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d overflows", ErrExhausted, reserve)
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("grow: reserve %d bytes: %w", size, err)
	}
	return &Mmap{mem: mem, pageSize: pageSize}, nil
}

func defaultReserve() int {
	reserve := DefaultReserve
	lim, err := limits.Read()
	if err != nil || lim.AddressSpace == limits.Unlimited {
		return reserve
	}
	for reserve > 1<<20 && uint64(reserve) > lim.AddressSpace/2 {
		reserve /= 2
	}
	return reserve
}

// Grow extends the break by n bytes and returns the previous break.
func (m *Mmap) Grow(n int) (int, error) {
	if m.mem == nil {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, ErrBadSize
	}
	end, ok := buf.AddOverflowSafe(m.brk, n)
	if !ok || end > len(m.mem) {
		return 0, fmt.Errorf("%w: need %d bytes at break %d, reserved %d", ErrExhausted, n, m.brk, len(m.mem))
	}

	if end > m.committed {
		// end <= len(m.mem), and len(m.mem) is a page multiple, so this cannot overflow it.
		commit, _ := buf.AlignUp(end, m.pageSize)
		if err := unix.Mprotect(m.mem[m.committed:commit], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, fmt.Errorf("grow: commit [%d, %d): %w", m.committed, commit, err)
		}
		m.committed = commit
	}

	base := m.brk
	m.brk = end
	return base, nil
}

// Bytes returns the granted prefix of the mapping.
func (m *Mmap) Bytes() []byte {
	if m.mem == nil {
		return nil
	}
	return m.mem[:m.brk:m.brk]
}

// Len returns the number of bytes granted so far.
func (m *Mmap) Len() int {
	return m.brk
}

// Reserved returns the size of the reserved range.
func (m *Mmap) Reserved() int {
	return len(m.mem)
}

// Close unmaps the region. Further Grow calls fail with ErrClosed.
func (m *Mmap) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.brk = 0
	m.committed = 0
	return err
}

package heap

import "log/slog"

const (
	// HeaderSize is the number of bookkeeping bytes in front of every payload.
	HeaderSize = 32

	// Alignment is the boundary every payload offset and block size is rounded to.
	Alignment = 16

	// MinPayload is the default smallest payload a split remainder may have.
	MinPayload = Alignment
)

// Ptr is the offset of a block's payload within the heap region.
type Ptr int

// Null is the null reference. No block ever has this payload offset.
const Null Ptr = 0

// Grower is the growth primitive a Heap obtains memory from.
//
// Grow extends the region by exactly n bytes and returns the offset of the
// first new byte, which must equal the region length before the call. On
// failure the region must be left unchanged. Bytes returns the whole region
// granted so far.
type Grower interface {
	Grow(n int) (base int, err error)
	Bytes() []byte
}

// Options configures a Heap. The zero value selects the defaults.
type Options struct {
	// Logger receives growth and misuse events. When nil, events go to stderr
	// if HEAPKIT_LOG_ALLOC is set and are discarded otherwise.
	Logger *slog.Logger

	// MinPayload is the smallest payload a block created by splitting may have.
	// It is rounded up to Alignment; 0 selects MinPayload.
	MinPayload int

	// OnGrow is called with the byte count after every successful growth.
	OnGrow func(n int)
}

// BlockInfo describes one block during Walk.
type BlockInfo struct {
	Ptr  Ptr
	Size int
	Free bool
}

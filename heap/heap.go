package heap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/grow"
	"github.com/joshuapare/heapkit/internal/buf"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Heap is a first-fit allocator over the region of one Grower.
//
// The zero value is not usable; create heaps with New. A Heap performs no
// growth until the first allocation.
type Heap struct {
	g Grower

	started bool
	base    int // region offset of the first header
	end     int // region offset one past the last block

	head Ptr // lowest-addressed block
	tail Ptr // highest-addressed block

	minPayload int
	log        *slog.Logger
	onGrow     func(int)

	stats Counters
}

// New creates a heap drawing memory from g. A nil g selects grow.NewSlice(0),
// bounded only by the host; a nil opts selects the defaults.
//
// The heap assumes exclusive use of g from its current length onward.
func New(g Grower, opts *Options) *Heap {
	if g == nil {
		g = grow.NewSlice(0)
	}
	if opts == nil {
		opts = &Options{}
	}

	h := &Heap{
		g:          g,
		minPayload: MinPayload,
		log:        opts.Logger,
		onGrow:     opts.OnGrow,
	}
	if opts.MinPayload > 0 {
		if mp, ok := buf.AlignUp(opts.MinPayload, Alignment); ok {
			h.minPayload = mp
		}
	}
	if h.log == nil {
		h.log = defaultLogger()
	}
	return h
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// Alloc returns a block with at least n usable bytes. The returned slice has
// length n and capacity equal to the block's usable size; its contents are
// unspecified. Alloc(0) returns a distinct, non-null block of size zero.
//
// Errors: ErrBadSize for n < 0, ErrOutOfMemory when growth fails or the
// rounded size overflows. The heap is unchanged on error.
func (h *Heap) Alloc(n int) (Ptr, []byte, error) {
	h.stats.AllocCalls++
	p, err := h.alloc(n)
	if err != nil {
		return Null, nil, err
	}
	return p, h.view(p, n), nil
}

// Calloc allocates count*size bytes and zeroes the whole block.
func (h *Heap) Calloc(count, size int) (Ptr, []byte, error) {
	if count < 0 || size < 0 {
		return Null, nil, ErrBadSize
	}
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return Null, nil, fmt.Errorf("%w: %d * %d overflows", ErrOutOfMemory, count, size)
	}
	p, b, err := h.Alloc(total)
	if err != nil {
		return Null, nil, err
	}
	clear(b[:cap(b)])
	return p, b, nil
}

func (h *Heap) alloc(n int) (Ptr, error) {
	need, err := roundRequest(n)
	if err != nil {
		return Null, err
	}

	if p := h.firstFit(need); p != Null {
		h.split(p, need)
		h.setFree(p, false)
		h.stats.AllocFastPath++
		return p, nil
	}

	p, err := h.extend(need)
	if err != nil {
		return Null, err
	}
	h.stats.AllocSlowPath++
	return p, nil
}

// roundRequest rounds a payload request up to Alignment and makes sure the
// block including its header is still representable.
func roundRequest(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	need, ok := buf.AlignUp(n, Alignment)
	if !ok {
		return 0, fmt.Errorf("%w: request %d overflows alignment", ErrOutOfMemory, n)
	}
	if _, ok := buf.AddOverflowSafe(need, HeaderSize); !ok {
		return 0, fmt.Errorf("%w: request %d overflows header", ErrOutOfMemory, n)
	}
	return need, nil
}

// extend grows the region by one block of need payload bytes and appends it,
// in use, at the tail of the directory.
func (h *Heap) extend(need int) (Ptr, error) {
	total := need + HeaderSize

	base, err := h.g.Grow(total)
	if err != nil {
		h.stats.GrowFailures++
		h.log.Debug("grow failed", "bytes", total, "grown", h.end-h.base, "err", err)
		return Null, fmt.Errorf("%w: grow %d bytes: %w", ErrOutOfMemory, total, err)
	}

	if !h.started {
		h.started = true
		h.base = base
		h.end = base
	}
	if base != h.end {
		return Null, fmt.Errorf("%w: grower returned offset %d, heap ends at %d", ErrCorrupt, base, h.end)
	}

	p := h.payloadAt(base)
	h.end = base + total
	h.initHeader(p, need, false, h.tail, Null)
	if h.tail != Null {
		h.setNext(h.tail, p)
	} else {
		h.head = p
	}
	h.tail = p

	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(total)
	h.log.Debug("grow", "bytes", total, "offset", base, "grown", h.end-h.base)
	if h.onGrow != nil {
		h.onGrow(total)
	}
	return p, nil
}

// view returns the caller-visible slice of a live block: length n, capacity
// the block size.
func (h *Heap) view(p Ptr, n int) []byte {
	data := h.g.Bytes()
	return data[int(p) : int(p)+n : h.endOf(p)]
}

// Bytes returns the full payload of the live block p.
func (h *Heap) Bytes(p Ptr) ([]byte, error) {
	if err := h.live(p); err != nil {
		return nil, err
	}
	return h.view(p, h.sizeOf(p)), nil
}

// UsableSize returns the payload capacity of the live block p, which may
// exceed the size originally requested.
func (h *Heap) UsableSize(p Ptr) (int, error) {
	if err := h.live(p); err != nil {
		return 0, err
	}
	return h.sizeOf(p), nil
}

// live validates that p addresses a block that is currently handed out.
func (h *Heap) live(p Ptr) error {
	if err := h.locate(p); err != nil {
		return err
	}
	if h.isFree(p) {
		return fmt.Errorf("%w: offset %d", ErrDoubleFree, int(p))
	}
	return nil
}

// Region returns the heap's part of the grower region, from the first header
// to the end of the last block. It aliases live memory and is invalidated by
// growth when the grower moves.
func (h *Heap) Region() []byte {
	if !h.started {
		return nil
	}
	return h.g.Bytes()[h.base:h.end:h.end]
}

// Close releases the growth primitive when it holds OS resources.
// The heap must not be used afterwards.
func (h *Heap) Close() error {
	if c, ok := h.g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

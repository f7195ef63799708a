package trace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
)

// ErrReplay is wrapped by errors caused by the trace itself rather than the heap.
var ErrReplay = errors.New("trace: replay failed")

// Options controls Replay.
type Options struct {
	// Check runs heap.Check after every event.
	Check bool

	// Logger receives one debug record per event. Nil discards.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Events    int
	Live      int // blocks still allocated when the trace ended
	PeakInUse int // largest in-use payload total reached after an event
	Stats     heap.Stats
}

// block is the replayer's view of one named allocation.
type block struct {
	p      heap.Ptr
	n      int  // bytes requested
	filled int  // prefix written by the last OpWrite still covered by the block
	fill   byte // value written
}

// Replay runs events against h in order. It stops at the first failing event
// and returns the error together with the result so far. Out-of-memory is an
// event failure like any other.
func Replay(ctx context.Context, h *heap.Heap, events []Event, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := replayer{h: h, live: make(map[string]*block), inUse: h.Stats().InUseBytes}
	res := Result{PeakInUse: r.inUse}
	for i, ev := range events {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return r.result(res), err
			}
		}

		if err := r.apply(ev); err != nil {
			return r.result(res), fmt.Errorf("line %d: %s %s: %w", ev.Line, ev.Op, ev.ID, err)
		}
		res.Events++
		log.Debug("replay", "line", ev.Line, "op", ev.Op.String(), "id", ev.ID, "size", ev.Size)

		if opts.Check {
			if err := h.Check(); err != nil {
				return r.result(res), fmt.Errorf("line %d: %w", ev.Line, err)
			}
		}
		res.PeakInUse = max(res.PeakInUse, r.inUse)
	}
	return r.result(res), nil
}

type replayer struct {
	h     *heap.Heap
	live  map[string]*block
	inUse int // payload bytes of live blocks, kept in step with each event
}

func (r *replayer) result(res Result) Result {
	res.Live = len(r.live)
	res.Stats = r.h.Stats()
	return res
}

func (r *replayer) apply(ev Event) error {
	b := r.live[ev.ID]
	switch ev.Op {
	case OpAlloc:
		if b != nil {
			return fmt.Errorf("%w: id already allocated", ErrReplay)
		}
		p, _, err := r.h.Alloc(ev.Size)
		if err != nil {
			return err
		}
		r.inUse += r.usable(p)
		r.live[ev.ID] = &block{p: p, n: ev.Size}

	case OpRealloc:
		old := heap.Null
		if b != nil {
			old = b.p
		}
		oldSize := r.usable(old)
		p, _, err := r.h.Realloc(old, ev.Size)
		if err != nil {
			return err
		}
		r.inUse += r.usable(p) - oldSize
		if p == heap.Null {
			delete(r.live, ev.ID)
			return nil
		}
		if b == nil {
			b = &block{}
			r.live[ev.ID] = b
		}
		b.p, b.n = p, ev.Size
		b.filled = min(b.filled, ev.Size)

	case OpFree:
		if b == nil {
			return fmt.Errorf("%w: id not allocated", ErrReplay)
		}
		size := r.usable(b.p)
		if err := r.h.Free(b.p); err != nil {
			return err
		}
		r.inUse -= size
		delete(r.live, ev.ID)

	case OpWrite:
		data, err := r.bytes(b)
		if err != nil {
			return err
		}
		for i := range data {
			data[i] = ev.Byte
		}
		b.filled, b.fill = b.n, ev.Byte

	case OpVerify:
		data, err := r.bytes(b)
		if err != nil {
			return err
		}
		if b.filled > 0 && b.fill != ev.Byte {
			return fmt.Errorf("%w: block was filled with %#x, not %#x", ErrReplay, b.fill, ev.Byte)
		}
		for i := range data[:b.filled] {
			if data[i] != ev.Byte {
				return fmt.Errorf("%w: byte %d is %#x, want %#x", ErrReplay, i, data[i], ev.Byte)
			}
		}

	default:
		return fmt.Errorf("%w: unknown operation %s", ErrReplay, ev.Op)
	}
	return nil
}

// usable returns the payload size of the live block at p, or 0 for Null or
// a pointer the heap does not recognize.
func (r *replayer) usable(p heap.Ptr) int {
	if p == heap.Null {
		return 0
	}
	n, err := r.h.UsableSize(p)
	if err != nil {
		return 0
	}
	return n
}

// bytes returns the requested-length view of b.
func (r *replayer) bytes(b *block) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: id not allocated", ErrReplay)
	}
	data, err := r.h.Bytes(b.p)
	if err != nil {
		return nil, err
	}
	return data[:b.n], nil
}

package heap

import "errors"

var (
	// ErrOutOfMemory indicates the growth primitive could not satisfy a request,
	// or the request size overflowed while adding alignment or header bytes.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrBadSize indicates a negative size was requested.
	ErrBadSize = errors.New("heap: negative size")

	// ErrBadPtr indicates a pointer that does not address a live block header of this heap.
	ErrBadPtr = errors.New("heap: pointer not owned by heap")

	// ErrDoubleFree indicates an operation on a block that is already free.
	ErrDoubleFree = errors.New("heap: block already free")

	// ErrCorrupt indicates the block directory violates an invariant.
	ErrCorrupt = errors.New("heap: corrupt block directory")
)

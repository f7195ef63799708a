// Package grow provides the growth primitives a heap obtains memory from.
//
// A growth primitive owns one contiguous byte region that only ever gets
// longer. Grow extends it by exactly the requested number of bytes and returns
// the offset at which the new bytes begin, which is always the previous
// length. A failed Grow leaves the region untouched.
package grow

import "errors"

var (
	// ErrExhausted indicates the configured limit or reservation cannot hold the request.
	ErrExhausted = errors.New("grow: region exhausted")

	// ErrBadSize indicates a negative growth request.
	ErrBadSize = errors.New("grow: negative size")

	// ErrUnsupported indicates the primitive is not available on this platform.
	ErrUnsupported = errors.New("grow: unsupported on this platform")

	// ErrClosed indicates the primitive was used after Close.
	ErrClosed = errors.New("grow: closed")
)

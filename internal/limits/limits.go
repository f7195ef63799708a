// Package limits reports the process resource limits that bound how far a heap
// and its collaborators can grow.
package limits

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Unlimited is the normalized value of an infinite limit.
const Unlimited = math.MaxUint64

// ErrUnsupported indicates resource limits cannot be queried on this platform.
var ErrUnsupported = errors.New("limits: unsupported on this platform")

// Limits holds the soft (current) limits of the calling process.
type Limits struct {
	Stack        uint64 // bytes
	Processes    uint64
	OpenFiles    uint64
	AddressSpace uint64 // bytes
}

// Fprint writes the limits in the classic "name: value" report layout.
func (l Limits) Fprint(w io.Writer) error {
	rows := []struct {
		name string
		v    uint64
	}{
		{"stack size", l.Stack},
		{"process limit", l.Processes},
		{"max file descriptors", l.OpenFiles},
		{"address space", l.AddressSpace},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.name, Format(r.v)); err != nil {
			return err
		}
	}
	return nil
}

// Format renders a limit value, spelling out Unlimited.
func Format(v uint64) string {
	if v == Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", v)
}

// normalize folds the platform's infinity encodings into Unlimited.
func normalize(v uint64) uint64 {
	if v >= math.MaxInt64 {
		return Unlimited
	}
	return v
}

//go:build linux || darwin

package limits

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Read queries the soft limits of the current process.
func Read() (Limits, error) {
	var l Limits
	for _, q := range []struct {
		resource int
		dst      *uint64
		name     string
	}{
		{unix.RLIMIT_STACK, &l.Stack, "stack"},
		{unix.RLIMIT_NPROC, &l.Processes, "nproc"},
		{unix.RLIMIT_NOFILE, &l.OpenFiles, "nofile"},
		{unix.RLIMIT_AS, &l.AddressSpace, "as"},
	} {
		var rl unix.Rlimit
		if err := unix.Getrlimit(q.resource, &rl); err != nil {
			return Limits{}, fmt.Errorf("limits: getrlimit %s: %w", q.name, err)
		}
		*q.dst = normalize(rl.Cur)
	}
	return l, nil
}

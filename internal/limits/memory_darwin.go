package limits

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PhysicalMemory returns the total installed RAM in bytes.
func PhysicalMemory() (uint64, error) {
	n, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, fmt.Errorf("limits: sysctl hw.memsize: %w", err)
	}
	return n, nil
}

package limits

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PhysicalMemory returns the total installed RAM in bytes.
func PhysicalMemory() (uint64, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0, fmt.Errorf("limits: sysinfo: %w", err)
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(si.Totalram) * unit, nil
}

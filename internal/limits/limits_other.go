//go:build !linux && !darwin

package limits

// Read reports ErrUnsupported.
func Read() (Limits, error) {
	return Limits{}, ErrUnsupported
}

// PhysicalMemory reports ErrUnsupported.
func PhysicalMemory() (uint64, error) {
	return 0, ErrUnsupported
}

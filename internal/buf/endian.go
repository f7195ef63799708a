// Package buf contains helpers for size arithmetic and little-endian word access
// inside raw byte regions.
package buf

import "encoding/binary"

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU64LE writes v as a little-endian uint64 at b[off:off+8].
// The caller guarantees the range is in bounds.
func PutU64LE(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// GetU64LE reads the little-endian uint64 at b[off:off+8].
// The caller guarantees the range is in bounds.
func GetU64LE(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

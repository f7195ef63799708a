// Package heap implements a first-fit dynamic memory allocator over a single
// contiguous region obtained from a growth primitive.
//
// # Overview
//
// A Heap hands out payload regions of caller-requested size, reclaims them on
// Free and reuses them for later requests. All bookkeeping lives inside the
// managed region itself: every block is a 32-byte header immediately followed
// by its payload, and the headers form a doubly-linked list in ascending
// address order.
//
//	+--------+-----------+--------+-----------+--------+-----------+
//	| header | payload A | header | payload B | header | payload C |
//	+--------+-----------+--------+-----------+--------+-----------+
//	         ^ Ptr A              ^ Ptr B              ^ Ptr C
//
// # Operations
//
//   - Alloc(n): first-fit search from the lowest address, split oversized
//     blocks, grow the region when nothing fits
//   - Free(p): mark the block free and coalesce it with free neighbors
//   - Realloc(p, n): shrink in place, grow in place into a free successor, or
//     allocate, copy and free
//
// # Pointers
//
// A Ptr is the offset of a payload within the region. Payload offsets are
// never smaller than HeaderSize, so the zero Ptr (Null) is never a valid
// block. The header of p lives at p-HeaderSize.
//
// Payload offsets are multiples of Alignment (16) relative to the start of the
// heap. With a page-aligned growth primitive such as grow.Mmap the payload
// addresses themselves are 16-byte aligned.
//
// Byte slices returned by Alloc, Realloc and Bytes are borrowed views into the
// region. They are valid until the block is freed, and with a moving growth
// primitive (grow.Slice) only until the next call that may grow the heap.
//
// # Block Layout
//
//	offset  size  field
//	0x00    8     size  usable payload bytes, header excluded
//	0x08    8     tag   magic (upper 32 bits) | free bit (bit 0)
//	0x10    8     prev  Ptr of the predecessor, Null for the first block
//	0x18    8     next  Ptr of the successor, Null for the last block
//
// # Invariants
//
// After every public call:
//
//  1. Blocks tile the region without gaps, in address order.
//  2. No two adjacent blocks are both free.
//  3. A block's size never includes its header.
//  4. Live payload ranges never overlap.
//
// Check verifies all of them.
//
// # Thread Safety
//
// Heap is not safe for concurrent use. Wrap it in a Locked to share it between
// goroutines; every operation then holds a single mutex.
package heap

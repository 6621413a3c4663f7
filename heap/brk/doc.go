// Package brk provides program-break style boundaries for the heap allocator.
//
// # Overview
//
// A Break owns one contiguous address range [Base, Current). The allocator grows it
// to materialise new blocks and shrinks it when the tail block is released:
//
//	prev, err := b.Adjust(+48) // extend by 48 bytes, prev is the old boundary
//	prev, err = b.Adjust(-48)  // retract again
//	cur := b.Current()         // query
//
// Addresses are logical: Base defaults to 0x1000 so that address 0 is never a
// valid location and can serve as the null address.
//
// # Implementations
//
// Arena: an in-memory region on the Go heap, used for tests and for embedding
// independent heaps inside a process.
//
// Mapped: a private anonymous mmap reservation. Shrinking hands whole pages back
// to the OS with madvise(MADV_DONTNEED).
//
// File: a shared file mapping. Growing and shrinking truncate the backing file,
// and Sync flushes the live range with msync.
//
// Every implementation reserves its Limit up front, so a slice returned by Bytes
// stays valid across Adjust calls as long as it is not read past Current.
//
// # Thread Safety
//
// Breaks are not thread-safe. Callers must synchronize access externally.
package brk

// Package alloc implements a first-fit heap allocator on top of a program break.
//
// # Overview
//
// A Heap serves the four classic dynamic-memory operations out of one contiguous
// range owned by a brk.Break:
//
//   - Malloc(n): allocate n bytes
//   - Calloc(count, size): allocate count*size zeroed bytes
//   - Realloc(p, n): resize an allocation, in place when possible
//   - Free(p): release an allocation
//
// Every block starts with a fixed 40-byte header followed by its usable bytes.
// Headers form a doubly linked list ordered by address, and each block ends exactly
// where the next header begins:
//
//	base                                                        Current()
//	| hdr | data ...... | hdr | data .. | hdr | data ............ |
//	  ^head               ^                ^tail
//
// # Allocation
//
// Requests are rounded up to a multiple of 4 bytes (Align). The list is scanned
// first-fit from the head. A reused block is split when the leftover can hold a
// header plus at least 4 bytes; otherwise the whole block is handed out. When no
// free block fits, the break is extended and a new block is appended at the tail.
//
// # Release
//
// Free marks the block free and merges it with a free previous neighbour and then
// with a free next neighbour, so no two adjacent blocks are ever both free. When
// the merged block is the tail, the break is retracted to its header and the
// memory goes back to the break. Freeing the only block empties the heap, and the
// next Malloc starts over at the same address.
//
// # Resize
//
// Realloc shrinks in place (splitting off the excess), grows in place by absorbing
// a free next neighbour, and otherwise allocates a new block, copies the old
// contents and frees the old block. If that allocation fails the old block is left
// untouched. A zero size is rejected with ErrInvalidRequest; it never frees.
//
// # Pointer Validation
//
// Realloc and Free accept only addresses that were handed out by the heap: the
// address must lie in [Start()+HeaderSize, Current()), and the header in front of it
// must record that same address. Each header also stores a keyed SipHash of its
// address; a header whose address matches but whose check value does not is
// reported as ErrCorrupt. Free silently ignores addresses that are not blocks.
//
// Every header and data access is bounds-checked against the break, so a damaged
// link or size surfaces as ErrCorrupt rather than a panic.
//
// # Errors
//
// Failing calls return Null together with one of ErrInvalidRequest, ErrExhausted,
// ErrInvalidPointer, ErrRelocation or ErrCorrupt. Earlier allocations stay valid
// after any failure.
//
// # Usage Example
//
//	b, err := brk.NewArena(brk.ArenaOptions{Limit: 1 << 20})
//	if err != nil {
//	    return err
//	}
//	h, err := alloc.New(b, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := h.Malloc(100)
//	if err != nil {
//	    return err
//	}
//	data, _ := h.Bytes(p)
//	copy(data, "hello")
//
//	p, err = h.Realloc(p, 400)
//	if err != nil {
//	    return err
//	}
//	_ = h.Free(p)
//
// # Thread Safety
//
// Heap instances are not thread-safe. Callers must synchronize access externally,
// for example with Locked.
package alloc

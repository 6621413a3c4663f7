package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Malloc allocates n bytes and returns the address of the first usable byte.
// The contents are unspecified.
func (h *Heap) Malloc(n uint64) (Addr, error) {
	size, err := alignRequest(n)
	if err != nil {
		return Null, err
	}
	b, err := h.acquire(size)
	if err != nil {
		return Null, err
	}
	return dataAddr(b), nil
}

// Calloc allocates count*size bytes and zeroes them. A product that overflows is
// rejected with ErrInvalidRequest.
func (h *Heap) Calloc(count, size uint64) (Addr, error) {
	total, ok := buf.MulU64(count, size)
	if !ok {
		return Null, fmt.Errorf("%w: %d * %d overflows", ErrInvalidRequest, count, size)
	}
	p, err := h.Malloc(total)
	if err != nil {
		return Null, err
	}
	d, err := h.data(blockAddr(p), total)
	if err != nil {
		return Null, err
	}
	clear(d)
	return p, nil
}

// Realloc resizes the allocation at p to n bytes and returns its (possibly new)
// address. A Null p behaves like Malloc. A zero n is rejected with
// ErrInvalidRequest and leaves p allocated; it does not shrink or release the
// block. Addresses that are not live blocks are rejected with ErrInvalidPointer
// and nothing changes. When the block has to move and the new allocation fails,
// ErrRelocation is returned and p stays valid.
func (h *Heap) Realloc(p Addr, n uint64) (Addr, error) {
	if p == Null {
		return h.Malloc(n)
	}
	b, x, err := h.live(p)
	if err != nil {
		return Null, err
	}
	size, err := alignRequest(n)
	if err != nil {
		if errors.Is(err, ErrExhausted) {
			return Null, fmt.Errorf("%w: %w", ErrRelocation, err)
		}
		return Null, err
	}

	// Already large enough: give back the excess.
	if x.size() >= size {
		if splitWorthy(x.size(), size) {
			if err := h.split(b, size); err != nil {
				return Null, err
			}
		}
		return p, nil
	}

	// Grow into a free successor.
	if next := x.next(); next != Null {
		y, err := h.at(next)
		if err != nil {
			return Null, err
		}
		if y.free() && x.size()+HeaderSize+y.size() >= size {
			if _, err := h.fuse(b); err != nil {
				return Null, err
			}
			if splitWorthy(x.size(), size) {
				if err := h.split(b, size); err != nil {
					return Null, err
				}
			}
			return p, nil
		}
	}

	oldSize := x.size()
	np, err := h.Malloc(size)
	if err != nil {
		return Null, fmt.Errorf("%w: %w", ErrRelocation, err)
	}
	dst, err := h.data(blockAddr(np), size)
	if err != nil {
		return Null, err
	}
	src, err := h.data(b, oldSize)
	if err != nil {
		return Null, err
	}
	copyWords(dst, src)
	h.log.Debug("relocate", "from", p, "to", np, "old_size", oldSize, "new_size", size)
	if err := h.Free(p); err != nil {
		h.log.Warn("release after relocation", "addr", p, "err", err)
	}
	return np, nil
}

// copyWords copies min(len(dst), len(src)) bytes. Both lengths are multiples of
// WordSize.
func copyWords(dst, src []byte) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i += WordSize {
		buf.PutU32LE(dst[i:], buf.U32LE(src[i:]))
	}
}

// Free releases the allocation at p. Null, foreign and already-released addresses
// are ignored. The only errors reported are ErrCorrupt and a failure to retract
// the break.
func (h *Heap) Free(p Addr) error {
	b, x, err := h.lookup(p)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return err
		}
		return nil
	}
	if x.free() {
		return nil
	}
	prev := x.prev()
	var px header
	if prev != Null {
		if px, err = h.at(prev); err != nil {
			return err
		}
	}
	x.setFree(true)

	if px != nil && px.free() {
		if b, err = h.fuse(prev); err != nil {
			return err
		}
	}
	if b, err = h.fuse(b); err != nil {
		return err
	}

	if x, err = h.at(b); err != nil {
		return err
	}
	if x.next() != Null {
		return nil
	}
	return h.trimTail(b)
}

// trimTail retracts the break to the header of the free tail block b.
func (h *Heap) trimTail(b Addr) error {
	x, err := h.at(b)
	if err != nil {
		return err
	}
	prev := x.prev()
	var px header
	if prev != Null {
		if px, err = h.at(prev); err != nil {
			return err
		}
	}
	delta := h.brk.Current() - b
	if _, err := h.brk.Adjust(-int64(delta)); err != nil {
		return fmt.Errorf("alloc: shrink by %d bytes: %w", delta, err)
	}
	if px == nil {
		h.head = Null
	} else {
		px.setNext(Null)
	}
	h.log.Debug("shrink", "block", b, "released", uint64(delta), "boundary", h.brk.Current())
	return nil
}

// Bytes returns the usable bytes of the live allocation at p. The slice stays
// valid until p is freed or moved by Realloc.
func (h *Heap) Bytes(p Addr) ([]byte, error) {
	b, x, err := h.live(p)
	if err != nil {
		return nil, err
	}
	return h.data(b, x.size())
}

// UsableSize returns the usable byte count of the live allocation at p. It is
// Align(n) or more for a block obtained with Malloc(n).
func (h *Heap) UsableSize(p Addr) (uint64, error) {
	_, x, err := h.live(p)
	if err != nil {
		return 0, err
	}
	return x.size(), nil
}

// live looks up p and rejects free blocks.
func (h *Heap) live(p Addr) (Addr, header, error) {
	b, x, err := h.lookup(p)
	if err != nil {
		return Null, nil, err
	}
	if x.free() {
		return Null, nil, fmt.Errorf("%w: %s is free", ErrInvalidPointer, p)
	}
	return b, x, nil
}

package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Walk calls fn for every block in address order until fn returns false. It
// returns an error wrapping ErrCorrupt if a link leaves the break or points
// backwards.
func (h *Heap) Walk(fn func(Block) bool) error {
	for cur := h.head; cur != Null; {
		x, err := h.at(cur)
		if err != nil {
			return err
		}
		blk := Block{Addr: cur, Data: dataAddr(cur), Size: x.size(), Free: x.free()}
		if !fn(blk) {
			return nil
		}
		if cur, err = successor(cur, x); err != nil {
			return err
		}
	}
	return nil
}

// Blocks returns a snapshot of every block in address order. On a damaged list
// it returns the blocks reached before the damage; use Check to diagnose.
func (h *Heap) Blocks() []Block {
	var out []Block
	_ = h.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Check verifies the block list against the break:
//
//   - the head has no predecessor and the tail ends exactly at Current()
//   - every block starts where its predecessor ends, and prev/next links agree
//   - every header records its own client address and a valid check word
//   - usable sizes are multiples of WordSize
//   - no two adjacent blocks are both free
//
// It returns an error wrapping ErrCorrupt describing the first violation.
func (h *Heap) Check() error {
	if h.head == Null {
		return nil
	}
	mem := h.brk.Bytes()
	base, end := h.brk.Base(), h.brk.Current()
	if h.head < base || h.head%WordSize != 0 {
		return fmt.Errorf("%w: head %s outside break [%s, %s)", ErrCorrupt, h.head, base, end)
	}

	prev := Null
	prevFree := false
	// Every block holds at least a header, which bounds the walk even if links loop.
	limit := len(mem)/HeaderSize + 1
	for cur, n := h.head, 0; cur != Null; n++ {
		if n > limit {
			return fmt.Errorf("%w: block list does not terminate", ErrCorrupt)
		}
		hdrEnd, err := buf.CheckRange(len(mem), uint64(cur-base), HeaderSize)
		if err != nil {
			return fmt.Errorf("%w: header %s: %w", ErrCorrupt, cur, err)
		}
		x, err := h.at(cur)
		if err != nil {
			return err
		}
		self := dataAddr(cur)
		switch {
		case x.prev() != prev:
			return fmt.Errorf("%w: block %s prev=%s, want %s", ErrCorrupt, cur, x.prev(), prev)
		case x.self() != self:
			return fmt.Errorf("%w: block %s self=%s, want %s", ErrCorrupt, cur, x.self(), self)
		case !h.consistent(x, self):
			return fmt.Errorf("%w: block %s fails header check", ErrCorrupt, cur)
		case x.size()%WordSize != 0:
			return fmt.Errorf("%w: block %s size %d not a multiple of %d", ErrCorrupt, cur, x.size(), WordSize)
		case prevFree && x.free():
			return fmt.Errorf("%w: adjacent free blocks %s and %s", ErrCorrupt, prev, cur)
		}
		dataEnd, err := buf.CheckRange(len(mem), hdrEnd, x.size())
		if err != nil {
			return fmt.Errorf("%w: block %s size %d: %w", ErrCorrupt, cur, x.size(), err)
		}

		blockEnd := base + Addr(dataEnd)
		next := x.next()
		if next == Null {
			if blockEnd != end {
				return fmt.Errorf("%w: tail %s ends at %s, boundary is %s", ErrCorrupt, cur, blockEnd, end)
			}
		} else if next != blockEnd {
			return fmt.Errorf("%w: block %s ends at %s but next is %s", ErrCorrupt, cur, blockEnd, next)
		}

		prev, prevFree = cur, x.free()
		cur = next
	}
	return nil
}

package brk

import (
	"errors"
	"fmt"
)

// Addr is a logical heap address. Null (0) never names a location.
type Addr uint64

// Null is the zero address.
const Null Addr = 0

const (
	// DefaultBase is the address of the first byte of a break unless configured.
	DefaultBase Addr = 0x1000

	// DefaultLimit is the default maximum size of a break (64 MiB).
	DefaultLimit = 64 << 20

	// baseAlignment is the alignment required of a configured base.
	baseAlignment = 8
)

var (
	// ErrExhausted indicates the break cannot be extended by the requested delta.
	ErrExhausted = errors.New("brk: heap exhausted")

	// ErrUnderflow indicates a shrink would move the boundary below the base.
	ErrUnderflow = errors.New("brk: shrink below base")

	// ErrClosed indicates the break has been closed.
	ErrClosed = errors.New("brk: closed")
)

// Break is a growable contiguous address range.
type Break interface {
	// Base returns the initial boundary. It never changes.
	Base() Addr

	// Current returns the current boundary (one past the last usable byte).
	Current() Addr

	// Adjust moves the boundary by delta bytes and returns the previous boundary.
	// On failure the boundary is unchanged and ErrExhausted or ErrUnderflow is returned.
	Adjust(delta int64) (Addr, error)

	// Bytes returns the memory backing [Base, Current).
	Bytes() []byte
}

// region is the cursor-over-reservation logic shared by every implementation.
type region struct {
	base Addr
	data []byte // full reservation, len == limit
	cur  int    // bytes in use
}

func newRegion(base Addr, data []byte) (region, error) {
	if base == Null {
		base = DefaultBase
	}
	if base%baseAlignment != 0 {
		return region{}, fmt.Errorf("brk: base 0x%x is not %d-byte aligned", base, baseAlignment)
	}
	return region{base: base, data: data}, nil
}

func (r *region) Base() Addr { return r.base }

func (r *region) Current() Addr { return r.base + Addr(r.cur) }

func (r *region) Bytes() []byte { return r.data[:r.cur:r.cur] }

// Limit returns the maximum number of bytes the region can hold.
func (r *region) Limit() int { return len(r.data) }

// adjust moves the cursor. grow and shrink are invoked with the old and new cursor
// before the cursor moves; an error from either leaves the cursor in place.
func (r *region) adjust(delta int64, grow, shrink func(oldCur, newCur int) error) (Addr, error) {
	if r.data == nil {
		return Null, ErrClosed
	}
	prev := r.Current()
	switch {
	case delta == 0:
		return prev, nil
	case delta > 0:
		if delta > int64(len(r.data)-r.cur) {
			return Null, fmt.Errorf("%w: need %d bytes, %d available", ErrExhausted, delta, len(r.data)-r.cur)
		}
		next := r.cur + int(delta)
		if grow != nil {
			if err := grow(r.cur, next); err != nil {
				return Null, fmt.Errorf("%w: %w", ErrExhausted, err)
			}
		}
		r.cur = next
	default:
		if -delta > int64(r.cur) {
			return Null, fmt.Errorf("%w: delta %d, in use %d", ErrUnderflow, delta, r.cur)
		}
		next := r.cur + int(delta)
		if shrink != nil {
			if err := shrink(r.cur, next); err != nil {
				return Null, err
			}
		}
		r.cur = next
	}
	return prev, nil
}

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

// String formats the address in hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

package brk

import "fmt"

// ArenaOptions configures an in-memory break.
type ArenaOptions struct {
	// Base is the logical address of the first byte.
	// Default: DefaultBase
	Base Addr

	// Limit is the maximum size in bytes; growth past it fails with ErrExhausted.
	// Default: DefaultLimit
	Limit int
}

// Arena is a break backed by a Go byte slice.
type Arena struct {
	region
}

var _ Break = (*Arena)(nil)

// NewArena creates an empty in-memory break.
func NewArena(opts ArenaOptions) (*Arena, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return nil, fmt.Errorf("brk: invalid arena limit %d", limit)
	}
	r, err := newRegion(opts.Base, make([]byte, limit))
	if err != nil {
		return nil, err
	}
	return &Arena{region: r}, nil
}

// Adjust moves the boundary. Retracted bytes are zeroed so regrown space starts clean.
func (a *Arena) Adjust(delta int64) (Addr, error) {
	return a.adjust(delta, nil, func(oldCur, newCur int) error {
		clear(a.data[newCur:oldCur])
		return nil
	})
}

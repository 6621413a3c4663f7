package brk

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

// MappedOptions configures an anonymous-mapping break.
type MappedOptions struct {
	// Base is the logical address of the first byte.
	// Default: DefaultBase
	Base Addr

	// Limit is the size of the reservation, rounded up to whole pages.
	// Default: DefaultLimit
	Limit int
}

// Mapped is a break backed by a private anonymous memory mapping.
// Retracting the boundary returns every page wholly above it to the OS. Regrown
// space is not guaranteed to be zero.
type Mapped struct {
	region
	pageSize int
	unmap    func() error
}

var _ Break = (*Mapped)(nil)

// NewMapped reserves opts.Limit bytes of address space.
func NewMapped(opts MappedOptions) (*Mapped, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return nil, fmt.Errorf("brk: invalid mapping limit %d", limit)
	}
	page := mmfile.PageSize()
	data, unmap, err := mmfile.Reserve(alignUp(limit, page))
	if err != nil {
		return nil, err
	}
	r, err := newRegion(opts.Base, data[:limit])
	if err != nil {
		_ = unmap()
		return nil, err
	}
	return &Mapped{region: r, pageSize: page, unmap: unmap}, nil
}

// Adjust moves the boundary.
func (m *Mapped) Adjust(delta int64) (Addr, error) {
	return m.adjust(delta, nil, m.release)
}

// release drops the whole pages above the new boundary. The partial page holding
// the boundary stays resident.
func (m *Mapped) release(oldCur, newCur int) error {
	pageStart := alignUp(newCur, m.pageSize)
	if pageStart >= oldCur {
		return nil
	}
	full := m.data[:cap(m.data)]
	if err := mmfile.Release(full[pageStart:alignUp(oldCur, m.pageSize)]); err != nil {
		return fmt.Errorf("brk: release pages: %w", err)
	}
	return nil
}

// Close unmaps the reservation. The break is unusable afterwards.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	m.data = nil
	m.cur = 0
	return m.unmap()
}

package brk

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

// FileOptions configures a file-backed break.
type FileOptions struct {
	// Path is the backing file. It is created if missing and truncated to zero.
	Path string

	// Base is the logical address of the first byte.
	// Default: DefaultBase
	Base Addr

	// Limit is the size of the mapping, rounded up to whole pages.
	// Default: DefaultLimit
	Limit int
}

// File is a break backed by a shared mapping of a regular file. The file length
// always equals the size of [Base, Current).
type File struct {
	region
	f        *os.File
	pageSize int
}

var _ Break = (*File)(nil)

// OpenFile creates a file-backed break. The mapping covers Limit bytes up front;
// only the prefix the file currently holds may be touched.
func OpenFile(opts FileOptions) (*File, error) {
	if opts.Path == "" {
		return nil, errors.New("brk: file path is required")
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return nil, fmt.Errorf("brk: invalid file limit %d", limit)
	}

	f, err := os.OpenFile(opts.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	page := mmfile.PageSize()
	data, err := mmfile.MapFile(f, alignUp(limit, page))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r, err := newRegion(opts.Base, data[:limit])
	if err != nil {
		_ = mmfile.Unmap(data)
		_ = f.Close()
		return nil, err
	}
	return &File{region: r, f: f, pageSize: page}, nil
}

// Adjust moves the boundary by resizing the backing file.
func (b *File) Adjust(delta int64) (Addr, error) {
	resize := func(_, newCur int) error {
		if err := b.f.Truncate(int64(newCur)); err != nil {
			return fmt.Errorf("brk: resize %s: %w", b.f.Name(), err)
		}
		return nil
	}
	return b.adjust(delta, resize, resize)
}

// Sync flushes [Base, Current) to the backing file.
func (b *File) Sync() error {
	if b.data == nil {
		return ErrClosed
	}
	if b.cur == 0 {
		return nil
	}
	full := b.data[:cap(b.data)]
	return mmfile.Sync(full[:alignUp(b.cur, b.pageSize)])
}

// Path returns the backing file name.
func (b *File) Path() string {
	return b.f.Name()
}

// Close unmaps the file and closes it. The file keeps its last contents.
func (b *File) Close() error {
	if b.data == nil {
		return nil
	}
	full := b.data[:cap(b.data)]
	b.data = nil
	b.cur = 0
	var err error
	if unmapErr := mmfile.Unmap(full); unmapErr != nil {
		err = unmapErr
	}
	if closeErr := b.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

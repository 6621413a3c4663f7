//go:build !linux && !darwin

package mmfile

import "os"

// PageSize returns the OS page size.
func PageSize() int {
	return os.Getpagesize()
}

// Reserve allocates n bytes on the Go heap when mmap is not available.
func Reserve(n int) ([]byte, func() error, error) {
	return make([]byte, n), func() error { return nil }, nil
}

// Release zeroes b so released memory reads back as zeros, matching the mmap build.
func Release(b []byte) error {
	clear(b)
	return nil
}

// MapFile is not supported without mmap.
func MapFile(_ *os.File, _ int) ([]byte, error) {
	return nil, ErrUnsupported
}

// Unmap is a no-op without mmap.
func Unmap(_ []byte) error { return nil }

// Sync is a no-op without mmap.
func Sync(_ []byte) error { return nil }

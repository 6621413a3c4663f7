// Package mmfile provides platform-specific helpers for memory-mapping heap regions.
//
// Anonymous reservations back the in-process break; shared file mappings back the
// file break. On platforms without mmap the helpers fall back to ordinary Go
// slices, and file mappings report ErrUnsupported.
package mmfile

import "errors"

// ErrUnsupported indicates the platform cannot map files.
var ErrUnsupported = errors.New("mmfile: file mapping not supported on this platform")

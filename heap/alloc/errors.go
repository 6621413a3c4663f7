package alloc

import (
	"errors"

	"github.com/joshuapare/heapkit/heap/brk"
)

var (
	// ErrInvalidRequest indicates a zero-byte request or a count*size overflow.
	ErrInvalidRequest = errors.New("alloc: invalid request size")

	// ErrExhausted indicates the break could not be extended.
	ErrExhausted = brk.ErrExhausted

	// ErrInvalidPointer indicates an address that does not start a live block.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")

	// ErrRelocation indicates Realloc needed a new block and could not get one.
	// The original block is still valid.
	ErrRelocation = errors.New("alloc: relocation failed")

	// ErrCorrupt indicates block metadata failed its consistency checks.
	ErrCorrupt = errors.New("alloc: corrupt block header")
)

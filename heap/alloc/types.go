package alloc

import (
	"math"

	"github.com/joshuapare/heapkit/heap/brk"
)

// Addr is a heap address as handed out to clients.
type Addr = brk.Addr

// Null is the address returned by every failing call.
const Null = brk.Null

const (
	// WordSize is the allocation granularity. Usable sizes are always a multiple of it.
	WordSize = 4

	// MinRemainder is the smallest usable size worth carving off during a split.
	MinRemainder = WordSize

	// maxRequest keeps HeaderSize + aligned size within an int64 break delta.
	maxRequest = math.MaxInt64 - HeaderSize - WordSize
)

// Align rounds n up to the next multiple of WordSize, with a minimum of WordSize.
//
//	Align(1) = 4
//	Align(4) = 4
//	Align(5) = 8
//	Align(8) = 8
func Align(n uint64) uint64 {
	if n == 0 {
		return WordSize
	}
	return (n-1)/WordSize*WordSize + WordSize
}

// Block is a snapshot of one block in the list.
type Block struct {
	Addr Addr   // header address
	Data Addr   // first usable byte, the address handed to clients
	Size uint64 // usable bytes
	Free bool
}

// End returns the address one past the block's usable bytes.
func (b Block) End() Addr {
	return b.Data + Addr(b.Size)
}

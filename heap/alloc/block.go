package alloc

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Header layout. All address arithmetic between headers, client addresses and
// break offsets lives in this file.
//
//	0x00  prev   uint64  previous block or Null
//	0x08  next   uint64  next block or Null
//	0x10  size   uint64  usable bytes after the header
//	0x18  self   uint64  header address + HeaderSize
//	0x20  check  uint32  keyed SipHash of self
//	0x24  flags  uint32  bit 0 = free
const (
	offPrev  = 0x00
	offNext  = 0x08
	offSize  = 0x10
	offSelf  = 0x18
	offCheck = 0x20
	offFlags = 0x24

	// HeaderSize is the per-block metadata overhead in bytes.
	HeaderSize = 0x28

	flagFree  uint32 = 1
	flagsMask        = flagFree
)

// header is a view of one block header inside the break's memory.
type header []byte

func (x header) prev() Addr       { return Addr(buf.U64LE(x[offPrev:])) }
func (x header) next() Addr       { return Addr(buf.U64LE(x[offNext:])) }
func (x header) size() uint64     { return buf.U64LE(x[offSize:]) }
func (x header) self() Addr       { return Addr(buf.U64LE(x[offSelf:])) }
func (x header) check() uint32    { return buf.U32LE(x[offCheck:]) }
func (x header) flags() uint32    { return buf.U32LE(x[offFlags:]) }
func (x header) free() bool       { return x.flags()&flagFree != 0 }
func (x header) setPrev(a Addr)   { buf.PutU64LE(x[offPrev:], uint64(a)) }
func (x header) setNext(a Addr)   { buf.PutU64LE(x[offNext:], uint64(a)) }
func (x header) setSize(n uint64) { buf.PutU64LE(x[offSize:], n) }

func (x header) setFree(free bool) {
	f := x.flags() &^ flagFree
	if free {
		f |= flagFree
	}
	buf.PutU32LE(x[offFlags:], f)
}

// dataAddr returns the client address of the block whose header is at b.
func dataAddr(b Addr) Addr { return b + HeaderSize }

// blockAddr returns the header address for client address p.
func blockAddr(p Addr) Addr { return p - HeaderSize }

// offset converts an address to an index into the break's memory.
func (h *Heap) offset(a Addr) int {
	return int(a - h.brk.Base())
}

// span returns n bytes of break memory starting at a. A range outside
// [Base, Current) can only come from damaged links or sizes, so it is ErrCorrupt.
func (h *Heap) span(a Addr, n uint64) ([]byte, error) {
	mem := h.brk.Bytes()
	limit := uint64(len(mem))
	if a < h.brk.Base() || uint64(a-h.brk.Base()) > limit || n > limit {
		return nil, fmt.Errorf("%w: range %s+%d outside break", ErrCorrupt, a, n)
	}
	s, ok := buf.Slice(mem, h.offset(a), int(n))
	if !ok {
		return nil, fmt.Errorf("%w: range %s+%d outside break", ErrCorrupt, a, n)
	}
	return s[:len(s):len(s)], nil
}

// at returns the header view for the block at b.
func (h *Heap) at(b Addr) (header, error) {
	s, err := h.span(b, HeaderSize)
	return header(s), err
}

// data returns the usable bytes of the block at b.
func (h *Heap) data(b Addr, size uint64) ([]byte, error) {
	return h.span(dataAddr(b), size)
}

// initHeader writes a complete header for a block at b.
func (h *Heap) initHeader(b, prev, next Addr, size uint64, free bool) (header, error) {
	x, err := h.at(b)
	if err != nil {
		return nil, err
	}
	x.setPrev(prev)
	x.setNext(next)
	x.setSize(size)
	self := dataAddr(b)
	buf.PutU64LE(x[offSelf:], uint64(self))
	buf.PutU32LE(x[offCheck:], h.checkValue(self))
	buf.PutU32LE(x[offFlags:], 0)
	x.setFree(free)
	return x, nil
}

// successor returns the block after cur. Links only ever point forward, so a
// backward or self link is ErrCorrupt; this also bounds every list walk.
func successor(cur Addr, x header) (Addr, error) {
	next := x.next()
	if next != Null && next <= cur {
		return Null, fmt.Errorf("%w: block %s links back to %s", ErrCorrupt, cur, next)
	}
	return next, nil
}

// wipe erases a header that has been absorbed into a neighbour, so its old client
// address no longer validates.
func (x header) wipe() {
	clear(x)
}

// checkValue derives the per-header check word for client address self.
func (h *Heap) checkValue(self Addr) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(self))
	return uint32(siphash.Hash(h.k0, h.k1, b[:]))
}

// consistent reports whether x carries a valid check word and flag set for self.
func (h *Heap) consistent(x header, self Addr) bool {
	return x.check() == h.checkValue(self) && x.flags()&^flagsMask == 0
}

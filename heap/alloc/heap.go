package alloc

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/buf"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Options configures a Heap.
type Options struct {
	// Logger receives grow, shrink and relocation events at Debug level and
	// corruption reports at Warn level.
	// Default: discard, or a stderr text logger when HEAPKIT_LOG_ALLOC is set
	Logger *slog.Logger

	// CheckKey keys the SipHash stored in every header. Heaps sharing a key
	// recognise each other's headers, so leave it zero unless the layout must be
	// reproducible.
	// Default: 16 random bytes
	CheckKey [16]byte
}

// Heap is a first-fit allocator over a single break.
//
// NOT thread-safe. See Locked.
type Heap struct {
	brk  brk.Break
	head Addr // first block, Null when the heap is empty

	k0, k1 uint64
	log    *slog.Logger
}

// New creates an empty heap that grows b from its current boundary upwards.
// The heap assumes it is the only user of b from now on.
func New(b brk.Break, opts *Options) (*Heap, error) {
	if b == nil {
		return nil, errors.New("alloc: nil break")
	}
	if b.Current()%WordSize != 0 {
		return nil, fmt.Errorf("alloc: break boundary %s is not %d-byte aligned", b.Current(), WordSize)
	}
	if opts == nil {
		opts = &Options{}
	}

	h := &Heap{brk: b, log: opts.Logger}
	if h.log == nil {
		h.log = defaultLogger()
	}

	key := opts.CheckKey
	if key == ([16]byte{}) {
		if _, err := rand.Read(key[:]); err != nil {
			return nil, fmt.Errorf("alloc: generate check key: %w", err)
		}
	}
	h.k0 = binary.LittleEndian.Uint64(key[:8])
	h.k1 = binary.LittleEndian.Uint64(key[8:])
	return h, nil
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Break returns the underlying break.
func (h *Heap) Break() brk.Break { return h.brk }

// Start returns the header address of the first block, or Null when empty.
func (h *Heap) Start() Addr { return h.head }

// Empty reports whether the heap holds no blocks.
func (h *Heap) Empty() bool { return h.head == Null }

// alignRequest validates and rounds a client byte count.
func alignRequest(n uint64) (uint64, error) {
	if n == 0 {
		return 0, ErrInvalidRequest
	}
	if n > maxRequest {
		return 0, fmt.Errorf("%w: request of %d bytes", ErrExhausted, n)
	}
	return Align(n), nil
}

// findFree scans first-fit from the head. It returns the first free block of at
// least size bytes, or Null, plus the last block visited (the tail on a miss).
func (h *Heap) findFree(size uint64) (found, last Addr, err error) {
	for cur := h.head; cur != Null; {
		x, err := h.at(cur)
		if err != nil {
			return Null, last, err
		}
		last = cur
		if x.free() && x.size() >= size {
			return cur, last, nil
		}
		if cur, err = successor(cur, x); err != nil {
			return Null, last, err
		}
	}
	return Null, last, nil
}

// grow extends the break by size+HeaderSize and links a used block after last
// (or as the head when last is Null). Nothing changes on failure.
func (h *Heap) grow(last Addr, size uint64) (Addr, error) {
	total, ok := buf.AddU64(size, HeaderSize)
	if !ok || total > maxRequest {
		return Null, fmt.Errorf("%w: grow by %d bytes", ErrExhausted, size)
	}
	var lx header
	if last != Null {
		var err error
		if lx, err = h.at(last); err != nil {
			return Null, err
		}
	}
	b, err := h.brk.Adjust(int64(total))
	if err != nil {
		h.log.Debug("grow failed", "size", size, "err", err)
		return Null, fmt.Errorf("alloc: grow by %d bytes: %w", total, err)
	}

	if _, err := h.initHeader(b, last, Null, size, false); err != nil {
		return Null, err
	}
	if lx == nil {
		h.head = b
	} else {
		lx.setNext(b)
	}
	h.log.Debug("grow", "block", b, "size", size, "boundary", h.brk.Current())
	return b, nil
}

// splitWorthy reports whether a block of have bytes should be split to serve need.
func splitWorthy(have, need uint64) bool {
	return have >= need && have-need >= HeaderSize+MinRemainder
}

// split shrinks the block at b to size bytes and turns the leftover into a free
// block right after it. The leftover is merged with a free successor so no two
// free blocks end up adjacent.
func (h *Heap) split(b Addr, size uint64) error {
	x, err := h.at(b)
	if err != nil {
		return err
	}
	rest := dataAddr(b) + Addr(size)
	next := x.next()
	var nx header
	if next != Null {
		if nx, err = h.at(next); err != nil {
			return err
		}
	}

	if _, err := h.initHeader(rest, b, next, x.size()-size-HeaderSize, true); err != nil {
		return err
	}
	if nx != nil {
		nx.setPrev(rest)
	}
	x.setNext(rest)
	x.setSize(size)
	_, err = h.fuse(rest)
	return err
}

// fuse absorbs the next block into b when it is free, and returns b.
func (h *Heap) fuse(b Addr) (Addr, error) {
	x, err := h.at(b)
	if err != nil {
		return Null, err
	}
	n := x.next()
	if n == Null {
		return b, nil
	}
	y, err := h.at(n)
	if err != nil {
		return Null, err
	}
	if !y.free() {
		return b, nil
	}
	nn := y.next()
	var z header
	if nn != Null {
		if z, err = h.at(nn); err != nil {
			return Null, err
		}
	}

	x.setSize(x.size() + HeaderSize + y.size())
	x.setNext(nn)
	if z != nil {
		z.setPrev(b)
	}
	y.wipe()
	return b, nil
}

// acquire returns a used block of at least size bytes, reusing free space first.
func (h *Heap) acquire(size uint64) (Addr, error) {
	if h.head == Null {
		return h.grow(Null, size)
	}
	b, last, err := h.findFree(size)
	if err != nil {
		return Null, err
	}
	if b == Null {
		return h.grow(last, size)
	}
	x, err := h.at(b)
	if err != nil {
		return Null, err
	}
	x.setFree(false)
	if splitWorthy(x.size(), size) {
		if err := h.split(b, size); err != nil {
			return Null, err
		}
	}
	return b, nil
}

// lookup validates a client address and returns its header address and view.
func (h *Heap) lookup(p Addr) (Addr, header, error) {
	if h.head == Null || p == Null || p%WordSize != 0 {
		return Null, nil, ErrInvalidPointer
	}
	if p < dataAddr(h.head) || p >= h.brk.Current() {
		return Null, nil, ErrInvalidPointer
	}
	b := blockAddr(p)
	x, err := h.at(b)
	if err != nil {
		return Null, nil, ErrInvalidPointer
	}
	if x.self() != p {
		return Null, nil, ErrInvalidPointer
	}
	if !h.consistent(x, p) {
		h.log.Warn("corrupt header", "addr", p, "check", x.check(), "flags", x.flags())
		return Null, nil, fmt.Errorf("%w at %s", ErrCorrupt, p)
	}
	if _, err := h.data(b, x.size()); err != nil {
		h.log.Warn("corrupt block size", "addr", p, "size", x.size())
		return Null, nil, err
	}
	return b, x, nil
}

// Valid reports whether p is the client address of a live allocation in this heap.
func (h *Heap) Valid(p Addr) bool {
	_, _, err := h.live(p)
	return err == nil
}

package alloc

import "sync"

// Locked serialises access to a Heap with a mutex so it can be shared between
// goroutines. Slices returned by Bytes are not protected once the call returns.
type Locked struct {
	mu sync.Mutex
	h  *Heap
}

// NewLocked wraps h. The caller must stop using h directly.
func NewLocked(h *Heap) *Locked {
	return &Locked{h: h}
}

func (l *Locked) Malloc(n uint64) (Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Malloc(n)
}

func (l *Locked) Calloc(count, size uint64) (Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Calloc(count, size)
}

func (l *Locked) Realloc(p Addr, n uint64) (Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Realloc(p, n)
}

func (l *Locked) Free(p Addr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Free(p)
}

func (l *Locked) Bytes(p Addr) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Bytes(p)
}

// Do runs fn with exclusive access to the heap, for sequences that must not
// interleave with other callers.
func (l *Locked) Do(fn func(*Heap) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.h)
}

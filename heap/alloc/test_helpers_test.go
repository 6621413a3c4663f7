package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/brk"
)

const (
	// testBase is the arena base used by every test heap.
	testBase brk.Addr = 0x1000

	// testLimit is large enough for every scenario that does not test exhaustion.
	testLimit = 1 << 20
)

// testKey makes header check words reproducible across runs.
var testKey = [16]byte{0: 0x68, 1: 0x65, 2: 0x61, 3: 0x70, 15: 0x01}

// newTestHeap creates a heap over a fresh arena of the given limit.
func newTestHeap(t testing.TB, limit int) (*Heap, *brk.Arena) {
	t.Helper()
	a, err := brk.NewArena(brk.ArenaOptions{Base: testBase, Limit: limit})
	require.NoError(t, err)
	h, err := New(a, &Options{CheckKey: testKey})
	require.NoError(t, err)
	return h, a
}

// mustMalloc allocates n bytes or fails the test.
func mustMalloc(t testing.TB, h *Heap, n uint64) Addr {
	t.Helper()
	p, err := h.Malloc(n)
	require.NoError(t, err)
	require.NotEqual(t, Null, p)
	return p
}

// fill writes a recognisable pattern derived from seed into the allocation at p.
func fill(t testing.TB, h *Heap, p Addr, seed byte) {
	t.Helper()
	data, err := h.Bytes(p)
	require.NoError(t, err)
	for i := range data {
		data[i] = seed + byte(i)
	}
}

// requirePattern asserts the first n bytes at p still hold the pattern written by fill.
func requirePattern(t testing.TB, h *Heap, p Addr, seed byte, n int) {
	t.Helper()
	data, err := h.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), n)
	for i := range n {
		require.Equal(t, seed+byte(i), data[i], "byte %d at %s", i, p)
	}
}

// assertInvariants checks the block list is well formed.
func assertInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())
}

// corruptHeader overwrites a header field of the block owning p directly in
// the break's memory.
func corruptHeader(h *Heap, p Addr, field int, v byte) {
	off := h.offset(blockAddr(p)) + field
	h.brk.Bytes()[off] ^= v
}

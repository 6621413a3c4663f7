package alloc

import (
	"testing"
)

// BenchmarkMallocFree measures the grow/shrink cycle on an empty heap.
func BenchmarkMallocFree(b *testing.B) {
	h, _ := newTestHeap(b, testLimit)

	b.ReportAllocs()
	for range b.N {
		p, err := h.Malloc(64)
		if err != nil {
			b.Fatal(err)
		}
		if err := h.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMallocReuse measures first-fit reuse behind a run of live blocks.
func BenchmarkMallocReuse(b *testing.B) {
	h, _ := newTestHeap(b, testLimit)
	for range 256 {
		if _, err := h.Malloc(32); err != nil {
			b.Fatal(err)
		}
	}
	hole, err := h.Malloc(128)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := h.Malloc(32); err != nil {
		b.Fatal(err)
	}
	if err := h.Free(hole); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		p, err := h.Malloc(100)
		if err != nil {
			b.Fatal(err)
		}
		if err := h.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReallocGrowth measures repeated doubling of one allocation.
func BenchmarkReallocGrowth(b *testing.B) {
	h, _ := newTestHeap(b, testLimit)

	b.ReportAllocs()
	for range b.N {
		p, err := h.Malloc(8)
		if err != nil {
			b.Fatal(err)
		}
		for n := uint64(16); n <= 4096; n *= 2 {
			if p, err = h.Realloc(p, n); err != nil {
				b.Fatal(err)
			}
		}
		if err := h.Free(p); err != nil {
			b.Fatal(err)
		}
	}
}

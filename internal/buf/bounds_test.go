package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestAddU64(t *testing.T) {
	if sum, ok := AddU64(40, 8); !ok || sum != 48 {
		t.Fatalf("AddU64(40,8)=%d,%v want 48,true", sum, ok)
	}
	if _, ok := AddU64(math.MaxUint64, 1); ok {
		t.Fatalf("expected wrap when adding to MaxUint64")
	}
}

func TestMulU64(t *testing.T) {
	tests := []struct {
		a, b uint64
		want uint64
		ok   bool
	}{
		{0, 7, 0, true},
		{7, 0, 0, true},
		{3, 4, 12, true},
		{math.MaxUint64, 1, math.MaxUint64, true},
		{math.MaxUint64, 2, 0, false},
		{1 << 32, 1 << 32, 0, false},
		{1 << 31, 1 << 32, 1 << 63, true},
	}
	for _, tt := range tests {
		got, ok := MulU64(tt.a, tt.b)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("MulU64(%d,%d)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCheckRange(t *testing.T) {
	if end, err := CheckRange(64, 24, 40); err != nil || end != 64 {
		t.Fatalf("CheckRange(64,24,40)=%d,%v want 64,nil", end, err)
	}
	if _, err := CheckRange(64, 25, 40); err == nil {
		t.Fatalf("expected bounds error")
	}
	if _, err := CheckRange(64, math.MaxUint64, 1); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if got, ok := Slice(data, 5, 0); !ok || len(got) != 0 {
		t.Fatalf("Slice should allow an empty range at len: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 1, math.MaxInt); ok {
		t.Fatalf("Slice should reject an end that overflows int")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}

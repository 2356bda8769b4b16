package kvapp

import (
	"testing"

	"github.com/dreamware/parasrv/internal/sarray"
)

func uniformFrag(keys []Key, vals []float32) KVPairs[float32] {
	return KVPairs[float32]{Keys: sarray.FromSlice(keys), Vals: sarray.FromSlice(vals)}
}

func variableFrag(keys []Key, vals []float32, lens []int32) KVPairs[float32] {
	return KVPairs[float32]{
		Keys: sarray.FromSlice(keys),
		Vals: sarray.FromSlice(vals),
		Lens: sarray.FromSlice(lens),
	}
}

// TestMergeRangeReassemblesOutOfOrderFragments pins §8 scenario 2:
// fragments for ranks 2, 0, 1 arrive in that order; mergeRange must sort
// them by front key before concatenating so the output lines up with
// the caller's ascending key order.
func TestMergeRangeReassemblesOutOfOrderFragments(t *testing.T) {
	keys := []Key{2, 12, 25}
	frags := []KVPairs[float32]{
		uniformFrag([]Key{25}, []float32{3.0}),
		uniformFrag([]Key{2}, []float32{1.0}),
		uniformFrag([]Key{12}, []float32{2.0}),
	}

	vals := sarray.Empty[float32]()
	mergeRange(keys, frags, vals, nil)

	want := []float32{1.0, 2.0, 3.0}
	if got := vals.Data(); !equalFloat32(got, want) {
		t.Fatalf("mergeRange vals = %v, want %v", got, want)
	}
}

// TestMergeRangeReassemblesVariableWidth pins §8 scenario 4: fragments
// carry per-key Lens and arrive out of order.
func TestMergeRangeReassemblesVariableWidth(t *testing.T) {
	keys := []Key{5, 15}
	frags := []KVPairs[float32]{
		variableFrag([]Key{15}, []float32{7, 8}, []int32{2}),
		variableFrag([]Key{5}, []float32{1, 2, 3}, []int32{3}),
	}

	vals := sarray.Empty[float32]()
	lens := sarray.Empty[int32]()
	mergeRange(keys, frags, vals, lens)

	if got, want := vals.Data(), []float32{1, 2, 3, 7, 8}; !equalFloat32(got, want) {
		t.Fatalf("mergeRange vals = %v, want %v", got, want)
	}
	if got, want := lens.Data(), []int32{3, 2}; !equalInt32(got, want) {
		t.Fatalf("mergeRange lens = %v, want %v", got, want)
	}
}

// TestMergeModuloReassemblesOutOfOrderFragments pins §8 scenario 3 with
// fragments delivered out of rank order (ranks 0, 2, 1).
func TestMergeModuloReassemblesOutOfOrderFragments(t *testing.T) {
	keys := []Key{1, 2, 3, 4, 5}
	frags := []KVPairs[float32]{
		uniformFrag([]Key{3}, []float32{30}),        // rank 0
		uniformFrag([]Key{2, 5}, []float32{20, 50}), // rank 2
		uniformFrag([]Key{1, 4}, []float32{10, 40}), // rank 1
	}

	vals := sarray.Empty[float32]()
	mergeModulo(keys, frags, vals, nil, 3)

	want := []float32{10, 20, 30, 40, 50}
	if got := vals.Data(); !equalFloat32(got, want) {
		t.Fatalf("mergeModulo vals = %v, want %v", got, want)
	}
}

// TestMergeModuloReassemblesVariableWidth exercises the cursor-walk
// merge's width handling when fragments carry per-key Lens, delivered
// out of rank order.
func TestMergeModuloReassemblesVariableWidth(t *testing.T) {
	keys := []Key{1, 2, 3}
	frags := []KVPairs[float32]{
		variableFrag([]Key{2}, []float32{30}, []int32{1}),         // rank 2
		variableFrag([]Key{3}, []float32{40, 50, 60}, []int32{3}), // rank 0
		variableFrag([]Key{1}, []float32{10, 20}, []int32{2}),     // rank 1
	}

	vals := sarray.Empty[float32]()
	lens := sarray.Empty[int32]()
	mergeModulo(keys, frags, vals, lens, 3)

	if got, want := vals.Data(), []float32{10, 20, 30, 40, 50, 60}; !equalFloat32(got, want) {
		t.Fatalf("mergeModulo vals = %v, want %v", got, want)
	}
	if got, want := lens.Data(), []int32{2, 1, 3}; !equalInt32(got, want) {
		t.Fatalf("mergeModulo lens = %v, want %v", got, want)
	}
}

func equalFloat32(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInt32(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

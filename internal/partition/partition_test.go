package partition

import (
	"testing"

	"github.com/dreamware/parasrv/internal/rangetable"
)

func addInt32(a, b int32) int32 { return a + b }

func TestOwnsKey(t *testing.T) {
	p := New[int32](0, rangetable.Range{Begin: 10, End: 20})
	if !p.OwnsKey(15) {
		t.Fatal("OwnsKey(15) = false, want true")
	}
	if p.OwnsKey(25) {
		t.Fatal("OwnsKey(25) = true, want false")
	}
}

func TestPushAccumulatesAndCountsOps(t *testing.T) {
	p := New[int32](0, rangetable.Range{Begin: 0, End: 100})
	p.Push(5, 3, addInt32)
	p.Push(5, 4, addInt32)

	if got := p.Pull(5); got != 7 {
		t.Fatalf("Pull(5) = %d, want 7", got)
	}
	stats := p.GetStats()
	if stats.Ops.Pushes != 2 {
		t.Fatalf("Ops.Pushes = %d, want 2", stats.Ops.Pushes)
	}
	if stats.Ops.Pulls != 1 {
		t.Fatalf("Ops.Pulls = %d, want 1", stats.Ops.Pulls)
	}
}

func TestPullOfUnseenKeyIsZero(t *testing.T) {
	p := New[int32](0, rangetable.Range{Begin: 0, End: 100})
	if got := p.Pull(42); got != 0 {
		t.Fatalf("Pull(unseen) = %d, want 0", got)
	}
}

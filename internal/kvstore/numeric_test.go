package kvstore

import "testing"

func TestNumericStoreRoundTrip(t *testing.T) {
	ns := NewNumericStore[int32]()
	if ns.Has(7) {
		t.Fatal("Has(7) true before any Put")
	}
	ns.Put(7, 42)
	if !ns.Has(7) {
		t.Fatal("Has(7) false after Put")
	}
	if got := ns.Get(7); got != 42 {
		t.Fatalf("Get(7) = %d, want 42", got)
	}
	ns.Delete(7)
	if ns.Has(7) {
		t.Fatal("Has(7) true after Delete")
	}
}

func TestNumericStoreGetMissingIsZero(t *testing.T) {
	ns := NewNumericStore[float32]()
	if got := ns.Get(99); got != 0 {
		t.Fatalf("Get(missing) = %v, want 0", got)
	}
}

func TestNumericStoreStats(t *testing.T) {
	ns := NewNumericStore[int32]()
	ns.Put(1, 10)
	ns.Put(2, 20)
	stats := ns.Stats()
	if stats.Keys != 2 {
		t.Fatalf("Stats().Keys = %d, want 2", stats.Keys)
	}
	if stats.Bytes == 0 {
		t.Fatal("Stats().Bytes = 0, want > 0")
	}
}

func TestNumericStorePutOverwrites(t *testing.T) {
	ns := NewNumericStore[int32]()
	ns.Put(5, 1)
	ns.Put(5, 2)
	if got := ns.Get(5); got != 2 {
		t.Fatalf("Get(5) = %d, want 2 (overwritten)", got)
	}
	if stats := ns.Stats(); stats.Keys != 1 {
		t.Fatalf("Stats().Keys = %d, want 1", stats.Keys)
	}
}

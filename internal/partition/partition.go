// Package partition represents one server rank's ownership of a slice of
// the key space, backing a KVServer's reference handler with per-rank
// operation counters. It is adapted from torua's internal/shard: the same
// op-counter and Stats/Info idiom, but ownership is now decided by a
// rangetable.Range computed once at bootstrap rather than by hashing a
// key against a shard count, and the primary/replica/migrating state
// machine is gone — the parameter service has no replication or
// migration to model (see DESIGN.md).
package partition

import (
	"sync/atomic"

	"github.com/dreamware/parasrv/internal/kvstore"
	"github.com/dreamware/parasrv/internal/rangetable"
)

// OperationStats tracks operation counts for a partition.
type OperationStats struct {
	Pushes uint64
	Pulls  uint64
}

// Stats bundles a partition's operation counters with its storage
// statistics.
type Stats struct {
	Ops     OperationStats
	Storage kvstore.StoreStats
}

// Partition is the rank-scoped backing store for a KVServer handler. Push
// and Pull operate on the numeric Key/V domain via kvstore.NumericStore;
// OwnsKey answers range-table membership queries so a handler can assert
// it was only ever sent keys it is responsible for.
type Partition[V any] struct {
	Rank  int
	Range rangetable.Range
	Store *kvstore.NumericStore[V]

	ops OperationStats
}

// New creates an empty, in-memory partition for rank, owning rng.
func New[V any](rank int, rng rangetable.Range) *Partition[V] {
	return &Partition[V]{
		Rank:  rank,
		Range: rng,
		Store: kvstore.NewNumericStore[V](),
	}
}

// OwnsKey reports whether key falls within this partition's range.
func (p *Partition[V]) OwnsKey(key rangetable.Key) bool {
	return p.Range.Contains(key)
}

// Push adds delta to whatever value is on file for key (zero if unseen)
// and records a push operation.
func (p *Partition[V]) Push(key rangetable.Key, delta V, add func(a, b V) V) {
	atomic.AddUint64(&p.ops.Pushes, 1)
	p.Store.Put(key, add(p.Store.Get(key), delta))
}

// Pull returns the value on file for key (zero if unseen) and records a
// pull operation.
func (p *Partition[V]) Pull(key rangetable.Key) V {
	atomic.AddUint64(&p.ops.Pulls, 1)
	return p.Store.Get(key)
}

// GetStats returns a snapshot of this partition's operation and storage
// statistics.
func (p *Partition[V]) GetStats() Stats {
	return Stats{
		Ops: OperationStats{
			Pushes: atomic.LoadUint64(&p.ops.Pushes),
			Pulls:  atomic.LoadUint64(&p.ops.Pulls),
		},
		Storage: p.Store.Stats(),
	}
}

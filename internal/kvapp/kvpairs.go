// Package kvapp implements the worker-side multiplexer and server-side
// demultiplexer of the parameter service: KVWorker and KVServer in
// ps-lite's terms. A single push or pull call fans out across every
// server rank that owns a slice of the requested keys and recombines
// their responses into one caller-visible result.
package kvapp

import (
	"github.com/dreamware/parasrv/internal/rangetable"
	"github.com/dreamware/parasrv/internal/sarray"
)

// Key is the unsigned integer identifier shared by every key set in the
// parameter service.
type Key = rangetable.Key

// KVPairs is a parallel-array batch of keys, values, and (for
// variable-width entries) per-key value lengths. Lens is nil for
// uniform-width batches, where every key owns vals.Size()/keys.Size()
// values.
type KVPairs[V any] struct {
	Keys *sarray.SArray[Key]
	Vals *sarray.SArray[V]
	Lens *sarray.SArray[int32]
}

// Uniform reports whether this batch uses fixed-width values (Lens is
// absent or empty).
func (kv KVPairs[V]) Uniform() bool { return kv.Lens == nil || kv.Lens.Size() == 0 }

// ValueWidth returns the number of values per key for a uniform batch. It
// panics if vals.Size() does not divide evenly by keys.Size(), which
// indicates a caller error rather than a recoverable condition.
func (kv KVPairs[V]) ValueWidth() int {
	n := kv.Keys.Size()
	if n == 0 {
		return 0
	}
	if kv.Vals.Size()%n != 0 {
		panic("kvapp: vals length is not a multiple of keys length for a uniform-width batch")
	}
	return kv.Vals.Size() / n
}

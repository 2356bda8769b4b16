// Package kvstore holds what a single Partition has on file: one
// encoded value per key, guarded by a lock so concurrent pushes and
// pulls against the same rank are safe. Earlier revisions routed this
// through a byte-level Store interface with its own MemoryStore
// implementation, mirroring torua's internal/storage; that detour had
// exactly one implementation and one caller, so NumericStore now owns
// its map directly instead of wrapping a byte-level abstraction nothing
// else plugs into.
package kvstore

import (
	"sync"

	"github.com/dreamware/parasrv/internal/rangetable"
	"github.com/dreamware/parasrv/internal/wire"
)

// StoreStats summarizes a partition's storage footprint.
type StoreStats struct {
	Keys  int
	Bytes int
}

// NumericStore holds the encoded values for every key a Partition owns,
// keyed by the parameter service's uint64 key space rather than by
// string, and speaking V rather than raw bytes at the call site.
type NumericStore[V any] struct {
	mu   sync.RWMutex
	data map[rangetable.Key][]byte
}

// NewNumericStore creates an empty store.
func NewNumericStore[V any]() *NumericStore[V] {
	return &NumericStore[V]{data: make(map[rangetable.Key][]byte)}
}

// Get returns the single value on file for key, or zero if absent.
func (s *NumericStore[V]) Get(key rangetable.Key) V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	if !ok {
		var zero V
		return zero
	}
	return wire.DecodeNums[V](b)[0]
}

// Put overwrites the value on file for key.
func (s *NumericStore[V]) Put(key rangetable.Key, val V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = wire.EncodeNums([]V{val})
}

// Has reports whether key has ever been put.
func (s *NumericStore[V]) Has(key rangetable.Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Delete removes key's value, if any.
func (s *NumericStore[V]) Delete(key rangetable.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Stats reports the number of keys on file and the total bytes their
// encoded values occupy.
func (s *NumericStore[V]) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bytes := 0
	for _, b := range s.data {
		bytes += len(b)
	}
	return StoreStats{Keys: len(s.data), Bytes: bytes}
}

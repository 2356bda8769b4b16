// Package postoffice implements the Go counterpart of ps-lite's
// Postoffice: the static, once-at-bootstrap description of a parameter
// service deployment — which server rank owns which slice of the key
// space, and how to reach it. Unlike torua's ShardRegistry, which this
// package is adapted from, a Registry here is immutable after
// construction: RangeTable's own contract fixes the partitioning for the
// life of a run, so there is no AssignShard/RebalanceShards to expose.
package postoffice

import (
	"fmt"
	"sync"

	"github.com/dreamware/parasrv/internal/rangetable"
)

// RankAssignment names the node that owns one server rank and the
// address workers should use to reach it.
type RankAssignment struct {
	Rank   int
	NodeID string
	Addr   string
}

// Registry resolves server ranks and keys to the nodes that own them. It
// is built once from a ClusterConfig and never mutated afterward; reads
// need no lock for correctness, but one guards against data races when a
// Registry is shared across goroutines that might otherwise see a
// half-built value.
type Registry struct {
	mu          sync.RWMutex
	assignments []RankAssignment
	ranges      *rangetable.RangeTable
}

// NewRegistry partitions [0, cfg.KeySpaceEnd) evenly across cfg.Servers,
// rank i getting cfg.Servers[i].
func NewRegistry(cfg *ClusterConfig) (*Registry, error) {
	n := len(cfg.Servers)
	if n == 0 {
		return nil, fmt.Errorf("postoffice: cannot build a registry with zero servers")
	}
	ranges := rangetable.Uniform(n, cfg.KeySpaceEnd)
	assignments := make([]RankAssignment, n)
	for i, s := range cfg.Servers {
		assignments[i] = RankAssignment{Rank: i, NodeID: s.ID, Addr: s.Addr}
	}
	return &Registry{assignments: assignments, ranges: ranges}, nil
}

// Ranges returns the key-space partitioning this registry was built
// with.
func (r *Registry) Ranges() *rangetable.RangeTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ranges
}

// NumServers returns the number of server ranks in the deployment.
func (r *Registry) NumServers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assignments)
}

// NodeForRank returns the assignment for the given rank.
func (r *Registry) NodeForRank(rank int) (RankAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rank < 0 || rank >= len(r.assignments) {
		return RankAssignment{}, fmt.Errorf("postoffice: invalid rank %d, have %d servers", rank, len(r.assignments))
	}
	return r.assignments[rank], nil
}

// NodeForKey returns the assignment for the rank that owns key.
func (r *Registry) NodeForKey(key rangetable.Key) (RankAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assignments {
		if r.ranges.At(a.Rank).Contains(key) {
			return a, nil
		}
	}
	return RankAssignment{}, fmt.Errorf("postoffice: key %d is not owned by any server rank", key)
}

// All returns a copy of every rank assignment, ordered by rank.
func (r *Registry) All() []RankAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RankAssignment(nil), r.assignments...)
}

// ServerNodeIDs returns the node id owning each rank, in rank order —
// the shape kvapp.Transport.ServerRankToNodeID needs.
func (r *Registry) ServerNodeIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.assignments))
	for i, a := range r.assignments {
		ids[i] = a.NodeID
	}
	return ids
}

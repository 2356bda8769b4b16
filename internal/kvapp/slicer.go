package kvapp

import (
	"fmt"

	"github.com/dreamware/parasrv/internal/rangetable"
	"github.com/dreamware/parasrv/internal/sarray"
)

// SlicedKV is one server rank's fragment of a sliced batch. Inactive
// fragments (Active == false) own no keys and are never sent; the worker
// pre-credits them as completed so the pull/push-completion count still
// reaches the full server count.
type SlicedKV[V any] struct {
	Active bool
	Shard  KVPairs[V]
}

// Slicer partitions a batch of keys (and their values) across every
// server rank named by ranges. It must produce exactly ranges.Len()
// entries, one per rank, in rank order.
type Slicer[V any] func(send KVPairs[V], ranges *rangetable.RangeTable) []SlicedKV[V]

// SlicerKind identifies which reassembly algorithm a pull callback must
// use to merge a slicer's fragments back into caller order; it travels
// alongside the Slicer function value because Go cannot recover a
// function's partitioning scheme by inspecting it.
type SlicerKind int

const (
	// SlicerRange partitions keys by contiguous range, matching
	// KVWorker::DefaultSlicer.
	SlicerRange SlicerKind = iota
	// SlicerModulo partitions keys by key % numServers, matching
	// KVWorker::ModSlicer. It requires numServers == ranges.Len().
	SlicerModulo
)

// RangeSlicer assigns each key to the rank whose range contains it. The
// caller's keys must already be sorted ascending; the implementation
// binary-searches range boundaries rather than hashing or scanning.
func RangeSlicer[V any](send KVPairs[V], ranges *rangetable.RangeTable) []SlicedKV[V] {
	n := ranges.Len()
	sliced := make([]SlicedKV[V], n)
	keys := send.Keys.Data()

	pos := make([]int, n+1)
	pos[0] = rangetable.LowerBound(keys, ranges.At(0).Begin)
	for i := 0; i < n; i++ {
		if i > 0 && ranges.At(i-1).End != ranges.At(i).Begin {
			panic("kvapp: range table is not contiguous")
		}
		pos[i+1] = rangetable.LowerBound(keys, ranges.At(i).End)
	}
	if pos[n] != len(keys) {
		panic(fmt.Sprintf("kvapp: %d of %d keys fall outside the range table's coverage", len(keys)-pos[n], len(keys)))
	}
	if len(keys) == 0 {
		return sliced
	}

	uniform := send.Uniform()
	var width int
	if uniform {
		width = send.ValueWidth()
	} else if send.Lens.Size() != len(keys) {
		panic("kvapp: lens length does not match keys length")
	}

	valBegin := 0
	for i := 0; i < n; i++ {
		if pos[i+1] == pos[i] {
			continue
		}
		shard := KVPairs[V]{Keys: send.Keys.Segment(pos[i], pos[i+1])}
		if uniform {
			shard.Vals = send.Vals.Segment(pos[i]*width, pos[i+1]*width)
		} else {
			lensSeg := send.Lens.Segment(pos[i], pos[i+1])
			total := 0
			for _, l := range lensSeg.Data() {
				total += int(l)
			}
			shard.Vals = send.Vals.Segment(valBegin, valBegin+total)
			shard.Lens = lensSeg
			valBegin += total
		}
		sliced[i] = SlicedKV[V]{Active: true, Shard: shard}
	}
	return sliced
}

// ModSlicer assigns each key to rank key % numServers. Because keys
// destined for one rank are rarely contiguous in send, fragments are
// built by copying into fresh per-rank buffers rather than by segmenting
// the source array.
func ModSlicer[V any](send KVPairs[V], ranges *rangetable.RangeTable) []SlicedKV[V] {
	numServers := ranges.Len()
	sliced := make([]SlicedKV[V], numServers)
	keys := send.Keys.Data()
	if len(keys) == 0 {
		return sliced
	}

	uniform := send.Uniform()
	var width int
	if uniform {
		width = send.ValueWidth()
	} else if send.Lens.Size() != len(keys) {
		panic("kvapp: lens length does not match keys length")
	}

	keyBuckets := make([][]Key, numServers)
	valBuckets := make([][]V, numServers)
	var lenBuckets [][]int32
	if !uniform {
		lenBuckets = make([][]int32, numServers)
	}

	vals := send.Vals.Data()
	var lens []int32
	if !uniform {
		lens = send.Lens.Data()
	}
	valCursor := 0
	for i, key := range keys {
		rank := int(key % Key(numServers))
		keyBuckets[rank] = append(keyBuckets[rank], key)
		if uniform {
			valBuckets[rank] = append(valBuckets[rank], vals[i*width:(i+1)*width]...)
		} else {
			l := int(lens[i])
			valBuckets[rank] = append(valBuckets[rank], vals[valCursor:valCursor+l]...)
			lenBuckets[rank] = append(lenBuckets[rank], lens[i])
			valCursor += l
		}
	}

	for rank := 0; rank < numServers; rank++ {
		if len(keyBuckets[rank]) == 0 {
			continue
		}
		shard := KVPairs[V]{
			Keys: sarray.FromSlice(keyBuckets[rank]),
			Vals: sarray.FromSlice(valBuckets[rank]),
		}
		if !uniform {
			shard.Lens = sarray.FromSlice(lenBuckets[rank])
		}
		sliced[rank] = SlicedKV[V]{Active: true, Shard: shard}
	}
	return sliced
}

// Package rangetable implements the key-space partitioning used by the
// range slicer: a sorted, gap-free sequence of half-open key ranges, one
// per server rank, the Go counterpart of ps-lite's std::vector<Range>.
package rangetable

import (
	"fmt"
	"sort"
)

// Key is the unsigned integer key type shared across the parameter
// service: SArray[Key] keys, range boundaries, and slicer arithmetic all
// operate on this type.
type Key = uint64

// Range is a half-open interval [Begin, End) of the key space owned by a
// single server rank.
type Range struct {
	Begin Key
	End   Key
}

// Contains reports whether k falls within this range.
func (r Range) Contains(k Key) bool { return k >= r.Begin && k < r.End }

// Size returns the number of keys this range spans.
func (r Range) Size() Key { return r.End - r.Begin }

// RangeTable is an ordered, contiguous partition of the key space across
// server ranks. It is built once at bootstrap and never mutated
// afterward: the parameter service assumes a fixed server-rank topology
// for the lifetime of a run.
type RangeTable struct {
	ranges []Range
}

// New validates that ranges are contiguous (each range's End equals the
// next range's Begin) and returns a RangeTable over a private copy.
func New(ranges []Range) (*RangeTable, error) {
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].End != ranges[i].Begin {
			return nil, fmt.Errorf("rangetable: range %d ends at %d, range %d begins at %d: ranges must be contiguous",
				i-1, ranges[i-1].End, i, ranges[i].Begin)
		}
	}
	cp := append([]Range(nil), ranges...)
	return &RangeTable{ranges: cp}, nil
}

// Uniform splits [0, keySpaceEnd) into numServers contiguous, roughly
// equal ranges. The last range absorbs any remainder.
func Uniform(numServers int, keySpaceEnd Key) *RangeTable {
	ranges := make([]Range, numServers)
	span := keySpaceEnd / Key(numServers)
	for i := 0; i < numServers; i++ {
		begin := Key(i) * span
		end := begin + span
		if i == numServers-1 {
			end = keySpaceEnd
		}
		ranges[i] = Range{Begin: begin, End: end}
	}
	rt, err := New(ranges)
	if err != nil {
		// Uniform always produces contiguous ranges by construction.
		panic(err)
	}
	return rt
}

// Len returns the number of server ranks covered by this table.
func (rt *RangeTable) Len() int { return len(rt.ranges) }

// At returns the range owned by the given rank.
func (rt *RangeTable) At(rank int) Range { return rt.ranges[rank] }

// All returns a copy of the underlying ranges, ordered by rank.
func (rt *RangeTable) All() []Range { return append([]Range(nil), rt.ranges...) }

// LowerBound returns the index of the first element of keys that is >=
// target, or len(keys) if none is. keys must be sorted ascending.
func LowerBound(keys []Key, target Key) int {
	return sort.Search(len(keys), func(i int) bool { return keys[i] >= target })
}

// FindRange returns the half-open index range [i, j) of keys whose values
// fall within [lo, hi). keys must be sorted ascending.
func FindRange(keys []Key, lo, hi Key) (int, int) {
	i := LowerBound(keys, lo)
	j := LowerBound(keys, hi)
	return i, j
}

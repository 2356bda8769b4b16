package kvapp

import (
	"fmt"

	"slices"

	"github.com/dreamware/parasrv/internal/rangetable"
	"github.com/dreamware/parasrv/internal/sarray"
)

// mergeRange reassembles a pull's response fragments into caller order
// for a range-sliced request. Each fragment owns a contiguous run of
// keys, so once fragments are sorted by their first key the fragments'
// value blocks simply concatenate in that order.
func mergeRange[V any](keys []Key, frags []KVPairs[V], vals *sarray.SArray[V], lens *sarray.SArray[int32]) {
	totalKeys, totalVals := 0, 0
	for _, f := range frags {
		lo, hi := rangetable.FindRange(keys, f.Keys.Data()[0], f.Keys.Data()[f.Keys.Size()-1]+1)
		if hi-lo != f.Keys.Size() {
			panic(fmt.Sprintf("kvapp: pull merge: fragment spans %d caller keys but carries %d", hi-lo, f.Keys.Size()))
		}
		if f.Lens != nil && f.Lens.Size() != f.Keys.Size() {
			panic("kvapp: pull merge: fragment lens length does not match its keys length")
		}
		totalKeys += f.Keys.Size()
		totalVals += f.Vals.Size()
	}
	if totalKeys != len(keys) {
		panic(fmt.Sprintf("kvapp: pull merge: fragments cover %d of %d requested keys", totalKeys, len(keys)))
	}

	sorted := append([]KVPairs[V](nil), frags...)
	slices.SortFunc(sorted, func(a, b KVPairs[V]) int {
		ak, bk := a.Keys.Data()[0], b.Keys.Data()[0]
		switch {
		case ak < bk:
			return -1
		case ak > bk:
			return 1
		default:
			return 0
		}
	})

	vals.EnsureLen(totalVals)
	if lens != nil {
		lens.EnsureLen(len(keys))
	}
	valCursor, keyCursor := 0, 0
	for _, f := range sorted {
		copy(vals.Data()[valCursor:], f.Vals.Data())
		valCursor += f.Vals.Size()
		if lens != nil && f.Lens != nil {
			copy(lens.Data()[keyCursor:], f.Lens.Data())
		}
		keyCursor += f.Keys.Size()
	}
}

// mergeModulo reassembles a pull's response fragments into caller order
// for a modulo-sliced request. Fragments are not contiguous in caller
// order, so reassembly walks the caller's key list and, for each key,
// advances whichever fragment's unconsumed head matches it.
func mergeModulo[V any](keys []Key, frags []KVPairs[V], vals *sarray.SArray[V], lens *sarray.SArray[int32], numServers int) {
	cntByRank := make([]int, numServers)
	for _, k := range keys {
		cntByRank[k%Key(numServers)]++
	}

	totalKeys, totalVals := 0, 0
	for _, f := range frags {
		rank := int(f.Keys.Data()[0] % Key(numServers))
		if f.Keys.Size() != cntByRank[rank] {
			panic(fmt.Sprintf("kvapp: pull merge: rank %d fragment carries %d keys, caller requested %d", rank, f.Keys.Size(), cntByRank[rank]))
		}
		if f.Lens != nil && f.Lens.Size() != f.Keys.Size() {
			panic("kvapp: pull merge: fragment lens length does not match its keys length")
		}
		totalKeys += f.Keys.Size()
		totalVals += f.Vals.Size()
	}
	if totalKeys != len(keys) {
		panic(fmt.Sprintf("kvapp: pull merge: fragments cover %d of %d requested keys", totalKeys, len(keys)))
	}

	vals.EnsureLen(totalVals)
	if lens != nil {
		lens.EnsureLen(len(keys))
	}

	uniformWidth := 0
	if lens == nil && totalKeys > 0 {
		uniformWidth = totalVals / totalKeys
	}

	keyCursor := make([]int, len(frags))
	valCursor := make([]int, len(frags))
	outVal := 0
	for t, key := range keys {
		found := -1
		for j, f := range frags {
			if keyCursor[j] < f.Keys.Size() && f.Keys.Data()[keyCursor[j]] == key {
				found = j
				break
			}
		}
		if found < 0 {
			panic(fmt.Sprintf("kvapp: pull merge: no fragment holds key %d", key))
		}
		f := frags[found]
		width := uniformWidth
		if f.Lens != nil {
			width = int(f.Lens.Data()[keyCursor[found]])
		}
		copy(vals.Data()[outVal:outVal+width], f.Vals.Data()[valCursor[found]:valCursor[found]+width])
		if lens != nil {
			lens.Data()[t] = int32(width)
		}
		keyCursor[found]++
		valCursor[found] += width
		outVal += width
	}
}

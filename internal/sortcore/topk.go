package sortcore

import (
	"github.com/melihbirim/sievik/internal/heap"
)

// topK keeps the best k records using a bounded heap of indices over a
// record store, so re-ordering the heap swaps int32s instead of 64-byte
// records. The root is always the worst retained record; a candidate
// replaces it only when it orders strictly before it.
func topK(recs []Record, descending bool, k int) []Record {
	store := make([]Record, 0, k)
	indirect := make([]int32, 0, k)

	// worse(i, j) puts the record furthest from the front of the query
	// order at the heap root.
	worse := func(i, j int32) bool {
		return lessQuery(&store[j], &store[i], descending)
	}

	for r := range recs {
		if len(store) < k {
			store = append(store, recs[r])
			heap.Push(&indirect, int32(len(store)-1), worse)
			continue
		}
		root := indirect[0]
		if lessQuery(&recs[r], &store[root], descending) {
			store[root] = recs[r]
			heap.Fix(indirect, 0, worse)
		}
	}

	// Drain worst-first into the tail of the output.
	out := make([]Record, len(indirect))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = store[heap.Pop(&indirect, worse)]
	}
	return out
}

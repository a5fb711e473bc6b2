package sortcore

// Indirect LSD radix sort. A companion array of (key, index) pairs is
// sorted instead of the records themselves; the records are gathered into
// final order once at the end. A pre-scan finds which of the eight byte
// positions actually vary across the input and only those passes run.
// Every pass is a stable 256-way counting sort, so the overall order is
// stable on the index array.

type keyIndex struct {
	key uint64
	idx int32
}

func radixSort(recs []Record) {
	n := len(recs)
	pairs := make([]keyIndex, n)
	for i := range recs {
		pairs[i] = keyIndex{key: recs[i].Key, idx: int32(i)}
	}
	scratch := make([]keyIndex, n)

	// Byte positions where at least two keys differ.
	var varying uint64
	first := pairs[0].key
	for i := 1; i < n; i++ {
		varying |= pairs[i].key ^ first
		if varying == ^uint64(0) {
			break
		}
	}

	src, dst := pairs, scratch
	for pass := 0; pass < 8; pass++ {
		shift := uint(pass * 8)
		if (varying>>shift)&0xFF == 0 {
			continue
		}

		var counts [256]int
		for i := range src {
			counts[(src[i].key>>shift)&0xFF]++
		}
		total := 0
		for b := 0; b < 256; b++ {
			c := counts[b]
			counts[b] = total
			total += c
		}
		for i := range src {
			b := (src[i].key >> shift) & 0xFF
			dst[counts[b]] = src[i]
			counts[b]++
		}
		src, dst = dst, src
	}

	// Gather records into sorted order through the index array.
	sorted := make([]Record, n)
	for i := range src {
		sorted[i] = recs[src[i].idx]
	}
	copy(recs, sorted)
}

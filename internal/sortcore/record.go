// Package sortcore implements the engine's adaptive ORDER BY subsystem:
// an order-preserving key codec, a bounded top-K heap, an indirect LSD
// radix sort with pass skipping, and a comparison-sort fallback behind a
// single entry point.
package sortcore

import (
	"math"
	"strconv"
	"unsafe"
)

// Record is the per-row payload carried through a sort. SortBytes and Row
// alias the mapped region or a worker arena; they are never copied per row.
type Record struct {
	// Key orders the record under unsigned comparison. For descending
	// sorts it has already been XORed with all-ones.
	Key uint64
	// Num is the float64 parse of SortBytes, or NaN when the parse failed.
	Num float64
	// SortBytes is the raw sort-column field.
	SortBytes []byte
	// Row is the entire raw line the record came from.
	Row []byte
}

// MakeRecord builds a Record from the sort-column field and its row.
// Non-numeric fields get a byte-prefix key and the NaN sentinel; the
// comparison path resolves their full order from SortBytes.
func MakeRecord(sortBytes, row []byte, descending bool) Record {
	rec := Record{SortBytes: sortBytes, Row: row, Num: math.NaN()}
	if v, err := strconv.ParseFloat(bytesToString(sortBytes), 64); err == nil && !math.IsNaN(v) {
		rec.Num = v
		rec.Key = Float64Key(v)
	} else {
		rec.Key = BytesKey(sortBytes)
	}
	if descending {
		rec.Key ^= descMask
	}
	return rec
}

// numeric reports whether the record's sort field parsed as a number.
func (r *Record) numeric() bool { return !math.IsNaN(r.Num) }

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

package sortcore

import (
	"encoding/binary"
	"math"
)

// Float64Key maps a finite non-NaN float64 to a uint64 whose unsigned order
// equals the float's signed order: negative values flip all bits, others
// flip only the sign bit. The mapping is reversible.
func Float64Key(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits ^ (1 << 63)
}

// Float64FromKey inverts Float64Key.
func Float64FromKey(key uint64) float64 {
	if key&(1<<63) != 0 {
		return math.Float64frombits(key &^ (1 << 63))
	}
	return math.Float64frombits(^key)
}

// BytesKey packs the first up to eight bytes of b big-endian into a uint64,
// zero-padded on the right. Unsigned order of the keys matches lexicographic
// order of the 8-byte prefixes; ties past the eighth byte are not encoded.
func BytesKey(b []byte) uint64 {
	if len(b) >= 8 {
		return binary.BigEndian.Uint64(b)
	}
	var buf [8]byte
	copy(buf[:], b)
	return binary.BigEndian.Uint64(buf[:])
}

// descMask is XORed into keys at construction time for descending sorts so
// the sort core always orders ascending.
const descMask = ^uint64(0)

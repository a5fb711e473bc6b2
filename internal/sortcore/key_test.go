package sortcore

import (
	"math"
	"sort"
	"testing"
)

func TestFloat64KeyRoundTrip(t *testing.T) {
	values := []float64{
		0, math.Copysign(0, -1), 1, -1, 0.5, -0.5,
		math.MaxFloat64, -math.MaxFloat64,
		math.SmallestNonzeroFloat64, -math.SmallestNonzeroFloat64,
		math.Inf(1), math.Inf(-1),
		3.14159265358979, -2.718281828, 1e-300, -1e300,
	}
	for _, v := range values {
		got := Float64FromKey(Float64Key(v))
		if got != v && !(v == 0 && got == 0) {
			t.Errorf("round trip %v -> %v", v, got)
		}
		if math.Signbit(v) != math.Signbit(got) {
			t.Errorf("sign lost in round trip of %v", v)
		}
	}
}

func TestFloat64KeyOrder(t *testing.T) {
	values := []float64{
		math.Inf(-1), -math.MaxFloat64, -1e10, -2.5, -1, -0.25,
		math.Copysign(0, -1), 0, 0.25, 1, 2.5, 1e10, math.MaxFloat64, math.Inf(1),
	}
	// Note -0 keys strictly below +0: the codec refines float equality
	// into a total order, which ascending output is allowed to do.
	for i := 1; i < len(values); i++ {
		a, b := values[i-1], values[i]
		ka, kb := Float64Key(a), Float64Key(b)
		if a <= b && ka > kb {
			t.Errorf("key order broken: %v <= %v but %016x > %016x", a, b, ka, kb)
		}
	}
}

func TestFloat64KeyDescendingMask(t *testing.T) {
	a, b := Float64Key(1.0)^descMask, Float64Key(2.0)^descMask
	if a <= b {
		t.Fatalf("descending mask does not invert order: %016x <= %016x", a, b)
	}
}

func TestBytesKeyLexicographic(t *testing.T) {
	words := []string{"", "a", "ab", "abc", "abcdefgh", "abd", "b", "bob", "carol", "zz"}
	if !sort.StringsAreSorted(words) {
		t.Fatal("fixture must be sorted")
	}
	for i := 1; i < len(words); i++ {
		ka := BytesKey([]byte(words[i-1]))
		kb := BytesKey([]byte(words[i]))
		if ka > kb {
			t.Errorf("BytesKey order broken: %q > %q", words[i-1], words[i])
		}
	}
}

func TestBytesKeyTruncation(t *testing.T) {
	// Equal 8-byte prefixes collide; the comparison path owns the tiebreak.
	if BytesKey([]byte("abcdefghX")) != BytesKey([]byte("abcdefghY")) {
		t.Fatal("keys differ past the eighth byte")
	}
}

package engine

import (
	"io"
	"strings"
	"testing"
)

func readAllLines(t *testing.T, input string, bufSize int) []string {
	t.Helper()
	lr := newLineReader(strings.NewReader(input), bufSize)
	var lines []string
	for {
		line, err := lr.next()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		lines = append(lines, string(line))
	}
}

func TestLineReaderBasic(t *testing.T) {
	lines := readAllLines(t, "a\nbb\nccc\n", 64)
	want := []string{"a", "bb", "ccc"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLineReaderRefillAcrossBoundary(t *testing.T) {
	// Lines straddle the tiny window, forcing compaction and refills.
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString(strings.Repeat("x", i%13))
		sb.WriteByte('\n')
	}
	lines := readAllLines(t, sb.String(), 16)
	if len(lines) != 200 {
		t.Fatalf("got %d lines, want 200", len(lines))
	}
	for i, line := range lines {
		if line != strings.Repeat("x", i%13) {
			t.Fatalf("line %d corrupted: %q", i, line)
		}
	}
}

func TestLineReaderGrowsForLongLine(t *testing.T) {
	long := strings.Repeat("y", 1000)
	lines := readAllLines(t, long+"\nshort\n", 32)
	if len(lines) != 2 || lines[0] != long || lines[1] != "short" {
		t.Fatalf("long line handling wrong: %d lines", len(lines))
	}
}

func TestLineReaderCRLFAndFinalLine(t *testing.T) {
	lines := readAllLines(t, "a\r\nb\r\nc", 64)
	want := []string{"a", "b", "c"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q", i, lines[i])
		}
	}
}

func TestLineReaderEmptyInput(t *testing.T) {
	if lines := readAllLines(t, "", 64); len(lines) != 0 {
		t.Fatalf("empty input produced %q", lines)
	}
}

func TestArenaCopies(t *testing.T) {
	var ar arena
	src := []byte("hello")
	kept := ar.copyOf(src)
	src[0] = 'X'
	if string(kept) != "hello" {
		t.Fatalf("arena copy aliases source: %q", kept)
	}

	// Fills past one block.
	big := make([]byte, arenaBlockSize+10)
	for i := range big {
		big[i] = byte(i)
	}
	kept2 := ar.copyOf(big)
	if len(kept2) != len(big) || kept2[arenaBlockSize] != big[arenaBlockSize] {
		t.Fatal("oversized copy wrong")
	}

	if got := ar.copyOf(nil); got != nil {
		t.Fatalf("empty copy = %v", got)
	}
	ar.release()
}

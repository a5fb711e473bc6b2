package mmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func mapTempFile(t *testing.T, content []byte) *Region {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	region, err := Map(f)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	return region
}

func TestMapReadsContents(t *testing.T) {
	content := []byte("id,name\n1,a\n2,b\n")
	region := mapTempFile(t, content)
	defer region.Close()

	if !bytes.Equal(region.Bytes(), content) {
		t.Fatalf("mapped bytes differ: %q", region.Bytes())
	}
	if region.Len() != len(content) {
		t.Fatalf("len = %d, want %d", region.Len(), len(content))
	}
}

func TestMapEmptyFile(t *testing.T) {
	region := mapTempFile(t, nil)
	defer region.Close()
	if region.Len() != 0 {
		t.Fatalf("empty file mapped to %d bytes", region.Len())
	}
}

func TestCloseTwice(t *testing.T) {
	region := mapTempFile(t, []byte("x\n"))
	if err := region.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := region.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

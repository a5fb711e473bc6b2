// Package mmap provides a read-only, page-aligned view of a file. The
// region is shared by every scan worker and released exactly once after
// the last consumer is done.
package mmap

import (
	"os"
)

// Region is a mapped (or, on fallback platforms, fully read) input file.
type Region struct {
	data   []byte
	mapped bool
	closed bool
}

// Bytes returns the region's contents. Slices derived from it are valid
// only until Close.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region size in bytes.
func (r *Region) Len() int { return len(r.data) }

// Map maps f read-only. An empty file yields an empty, unmapped region so
// callers see the same zero-length Bytes on every platform.
func Map(f *os.File) (*Region, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return &Region{}, nil
	}
	return mapFile(f, info.Size())
}

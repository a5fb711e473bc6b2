//go:build !unix

package mmap

import (
	"io"
	"os"
)

// Fallback for platforms without a usable mmap: read the whole file. The
// Region contract (stable bytes until Close, close-once) is unchanged.
func mapFile(f *os.File, size int64) (*Region, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return &Region{data: data}, nil
}

// Close releases the buffered copy.
func (r *Region) Close() error {
	r.closed = true
	r.data = nil
	return nil
}

//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int64) (*Region, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	// The scan is a single forward pass; tell the kernel so readahead
	// stays aggressive. Best effort.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	return &Region{data: data, mapped: true}, nil
}

// Close unmaps the region. Safe to call more than once; only the first
// call releases the mapping.
func (r *Region) Close() error {
	if r.closed || !r.mapped {
		r.closed = true
		return nil
	}
	r.closed = true
	data := r.data
	r.data = nil
	return unix.Munmap(data)
}

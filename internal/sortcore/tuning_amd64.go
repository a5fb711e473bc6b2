//go:build amd64

package sortcore

// 32KB L1d per core on most x86-64 parts; smaller heap, later radix
// crossover than ARM.
const (
	heapMaxK  = 1024
	radixMinN = 16384
)

// Package options holds the engine's tuning knobs with their defaults.
// The defaults are the shipped behavior; tests and the --config file
// override them to steer the strategy router onto specific paths.
package options

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Options controls execution strategy thresholds and buffer sizing.
type Options struct {
	// MaxWorkers caps the parallel scan's worker count. The effective
	// count is min(GOMAXPROCS, MaxWorkers); cores past the cap are left
	// idle to bound per-worker overhead.
	//
	// Default: 8
	MaxWorkers int `json:"maxWorkers"`

	// MmapMinBytes is the file size above which the input is memory
	// mapped instead of read through the buffered line reader.
	//
	// Default: 5MB
	MmapMinBytes int64 `json:"mmapMinBytes"`

	// ParallelMinBytes is the file size above which a mapped scan fans
	// out across workers.
	//
	// Default: 10MB
	ParallelMinBytes int64 `json:"parallelMinBytes"`

	// ParallelMinLimit gates parallelism for limited, unsorted queries:
	// a LIMIT at or below it runs sequentially, where short top-of-file
	// queries finish in milliseconds anyway.
	//
	// Default: 100000
	ParallelMinLimit int `json:"parallelMinLimit"`

	// ReaderBufBytes sizes the sequential path's double-buffered window.
	//
	// Default: 2MB
	ReaderBufBytes int `json:"readerBufBytes"`

	// WriterBufBytes sizes the output writer's buffer; it drains to the
	// sink in whole-buffer writes.
	//
	// Default: 1MB
	WriterBufBytes int `json:"writerBufBytes"`
}

// OptionFunc mutates Options before execution.
type OptionFunc func(*Options)

// Default returns the shipped configuration.
func Default() Options {
	return Options{
		MaxWorkers:       8,
		MmapMinBytes:     5 * 1024 * 1024,
		ParallelMinBytes: 10 * 1024 * 1024,
		ParallelMinLimit: 100000,
		ReaderBufBytes:   2 * 1024 * 1024,
		WriterBufBytes:   1 * 1024 * 1024,
	}
}

// WithMaxWorkers overrides the worker cap.
func WithMaxWorkers(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.MaxWorkers = n
		}
	}
}

// WithThresholds overrides the router's size thresholds.
func WithThresholds(mmapMin, parallelMin int64) OptionFunc {
	return func(o *Options) {
		if mmapMin > 0 {
			o.MmapMinBytes = mmapMin
		}
		if parallelMin > 0 {
			o.ParallelMinBytes = parallelMin
		}
	}
}

// FromFile merges a YAML config file over the defaults.
func FromFile(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts.sanitized(), nil
}

// Apply folds functional options over the defaults.
func Apply(fns ...OptionFunc) Options {
	opts := Default()
	for _, fn := range fns {
		fn(&opts)
	}
	return opts.sanitized()
}

func (o Options) sanitized() Options {
	def := Default()
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = def.MaxWorkers
	}
	if o.MmapMinBytes <= 0 {
		o.MmapMinBytes = def.MmapMinBytes
	}
	if o.ParallelMinBytes <= 0 {
		o.ParallelMinBytes = def.ParallelMinBytes
	}
	if o.ParallelMinLimit < 0 {
		o.ParallelMinLimit = def.ParallelMinLimit
	}
	if o.ReaderBufBytes < 64*1024 {
		o.ReaderBufBytes = def.ReaderBufBytes
	}
	if o.WriterBufBytes < 4*1024 {
		o.WriterBufBytes = def.WriterBufBytes
	}
	return o
}

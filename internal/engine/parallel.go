package engine

import (
	"bytes"
	"sync"

	"github.com/melihbirim/sievik/internal/scan"
	"github.com/melihbirim/sievik/internal/sortcore"
)

// mappedExec runs a query over the mapped data region. The same machinery
// serves the single-threaded mapped path (one worker) and the parallel
// path: boundaries are precomputed gap-free before spawn, each worker
// scans its chunk into private result lists, and the main goroutine joins
// them in worker order. Workers share nothing mutable, so the scan needs
// no locks, atomics, or channels.
type mappedExec struct {
	data    []byte // data region, header stripped
	pred    rowPredicate
	proj    projection
	sortIdx int // raw-row position of the sort column, -1 when unsorted
	desc    bool
	limit   int // -1 when unbounded

	stats scanStats // filled by run after the join
}

// workerResult is one worker's private output. Exactly one of the three
// lists is populated, depending on the projection and sort mode.
type workerResult struct {
	lines [][]byte          // raw rows, all-columns non-sort
	rows  [][][]byte        // projected rows, non-sort
	recs  []sortcore.Record // sort records, sort path

	scanned int64 // rows visited
	matched int64 // rows past the predicate
	dropped int64 // rows over the field cap
}

// chunkBoundaries splits the data region into n line-aligned chunks:
// nominal equal division, with every interior boundary advanced one byte
// past the next newline. Concatenating the chunks reproduces the region
// exactly; no row is split or visited twice.
func chunkBoundaries(data []byte, n int) []int {
	bounds := make([]int, n+1)
	bounds[n] = len(data)
	for i := 1; i < n; i++ {
		nominal := i * len(data) / n
		if nominal < bounds[i-1] {
			nominal = bounds[i-1]
		}
		nl := bytes.IndexByte(data[nominal:], '\n')
		if nl < 0 {
			bounds[i] = len(data)
		} else {
			bounds[i] = nominal + nl + 1
		}
	}
	return bounds
}

// scanStats aggregates the workers' private counters after the join.
type scanStats struct {
	scanned int64
	matched int64
	dropped int64
}

// run scans with the given worker count and emits through w. The caller
// has already written the header row.
func (ex *mappedExec) run(workers int, w *rowWriter) error {
	if len(ex.data) == 0 {
		return w.flush()
	}
	if workers < 1 {
		workers = 1
	}

	bounds := chunkBoundaries(ex.data, workers)
	results := make([]workerResult, workers)

	if workers == 1 {
		ex.scanChunk(ex.data, &results[0])
	} else {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			start, end := bounds[i], bounds[i+1]
			if start >= end {
				continue
			}
			wg.Add(1)
			go func(chunk []byte, res *workerResult) {
				defer wg.Done()
				ex.scanChunk(chunk, res)
			}(ex.data[start:end], &results[i])
		}
		wg.Wait()
	}

	for i := range results {
		ex.stats.scanned += results[i].scanned
		ex.stats.matched += results[i].matched
		ex.stats.dropped += results[i].dropped
	}

	if ex.sortIdx >= 0 {
		ex.joinSorted(results, w)
	} else {
		ex.joinOrdered(results, w)
	}
	return w.flush()
}

// scanChunk is the worker body. No suspension points: every line is
// split, filtered, and recorded into the worker's private lists.
func (ex *mappedExec) scanChunk(chunk []byte, res *workerResult) {
	var fieldsBuf [][]byte
	sorting := ex.sortIdx >= 0

	for pos := 0; pos < len(chunk); {
		line, next := scan.Line(chunk, pos)
		pos = next
		if len(line) == 0 {
			continue
		}

		res.scanned++
		fields, ok := scan.Fields(line, fieldsBuf)
		fieldsBuf = fields
		if !ok {
			// Row exceeds the field cap; drop it and keep scanning.
			res.dropped++
			continue
		}
		if ex.pred != nil && !ex.pred(fields) {
			continue
		}
		res.matched++

		if sorting {
			var sortBytes []byte
			if ex.sortIdx < len(fields) {
				sortBytes = fields[ex.sortIdx]
			}
			res.recs = append(res.recs, sortcore.MakeRecord(sortBytes, line, ex.desc))
			continue
		}

		if ex.proj.all {
			res.lines = append(res.lines, line)
		} else {
			row := make([][]byte, 0, len(ex.proj.idxs))
			res.rows = append(res.rows, ex.proj.projectInto(fields, row))
		}

		// This worker alone can satisfy the limit; later rows cannot be
		// emitted ahead of these, so stop scanning early. Checked only at
		// line boundaries.
		if ex.limit > 0 && len(res.lines)+len(res.rows) >= ex.limit {
			return
		}
	}
}

// joinOrdered emits worker outputs in worker order, which is file order,
// truncating at the limit.
func (ex *mappedExec) joinOrdered(results []workerResult, w *rowWriter) {
	written := 0
	for i := range results {
		res := &results[i]
		if ex.proj.all {
			for _, line := range res.lines {
				if ex.limit > 0 && written >= ex.limit {
					return
				}
				w.writeRaw(line)
				written++
			}
		} else {
			for _, row := range res.rows {
				if ex.limit > 0 && written >= ex.limit {
					return
				}
				w.writeFields(row)
				written++
			}
		}
	}
}

// joinSorted concatenates all workers' records, sorts, then re-splits
// each surviving row at emission. Projected field arrays are never stored
// across the sort; for unbounded sorts that would hold every projected
// row in memory at once.
func (ex *mappedExec) joinSorted(results []workerResult, w *rowWriter) {
	total := 0
	for i := range results {
		total += len(results[i].recs)
	}
	recs := make([]sortcore.Record, 0, total)
	for i := range results {
		recs = append(recs, results[i].recs...)
		results[i].recs = nil
	}

	ordered := sortcore.Sort(recs, ex.desc, ex.limit)

	var fieldsBuf, rowBuf [][]byte
	for i := range ordered {
		line := ordered[i].Row
		if ex.proj.all {
			w.writeRaw(line)
			continue
		}
		fields, ok := scan.Fields(line, fieldsBuf)
		fieldsBuf = fields
		if !ok {
			continue
		}
		rowBuf = ex.proj.projectInto(fields, rowBuf)
		w.writeFields(rowBuf)
	}
}

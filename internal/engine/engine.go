// Package engine executes validated CSV queries. The strategy router
// picks among a parallel mapped scan, a single-threaded mapped scan, a
// sequential buffered scan, and an RFC-4180 streaming path, from the file
// size, core count, limit, and presence of a sort.
package engine

import (
	"io"
	"os"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/melihbirim/sievik/internal/logger"
	"github.com/melihbirim/sievik/internal/mmap"
	"github.com/melihbirim/sievik/internal/options"
	"github.com/melihbirim/sievik/internal/qerror"
	"github.com/melihbirim/sievik/internal/scan"
	"github.com/melihbirim/sievik/internal/sortcore"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

// Engine runs queries with a fixed configuration. Zero state persists
// across queries.
type Engine struct {
	opts options.Options
	log  *zap.SugaredLogger
}

// New builds an Engine. A nil logger runs silent.
func New(opts options.Options, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{opts: opts, log: log}
}

// Execute streams query results to out using the default configuration.
func Execute(query sqlparser.Query, out io.Writer) error {
	return New(options.Default(), nil).Execute(query, out)
}

// Execute runs one query and writes the projected header plus matching
// rows to out. Everything allocated for the query is released before it
// returns. The writer is flushed on success; a read error in the middle of
// a sequential or stream scan returns without flushing the rows still
// buffered.
func (e *Engine) Execute(query sqlparser.Query, out io.Writer) error {
	log := e.log.With("query_id", uuid.NewString(), "source", query.FilePath)

	if len(query.GroupBy) > 0 {
		log.Debugw("routing to group-by aggregation path")
		return e.executeGroupByFile(query, out)
	}

	if query.FilePath == "-" || query.FilePath == "stdin" {
		log.Debugw("routing to stdin stream path")
		return e.executeStream(query, os.Stdin, out)
	}

	src, err := openInput(query.FilePath)
	if err != nil {
		return err
	}
	defer src.close()

	if src.stream != nil {
		// Pipes and compressed files cannot be mapped; compressed disk
		// input still gets the hot-path scanner over the decompressed
		// stream.
		if src.compressed {
			log.Debugw("routing to sequential path", "reason", "compressed input")
			return e.executeSequential(query, src.stream, out)
		}
		log.Debugw("routing to stdin stream path", "reason", "not a regular file")
		return e.executeStream(query, src.stream, out)
	}

	size := src.size
	cores := runtime.GOMAXPROCS(0)
	sorted := query.OrderBy != nil

	switch {
	case size > e.opts.ParallelMinBytes && cores > 1 &&
		(query.Limit < 0 || query.Limit > e.opts.ParallelMinLimit || sorted):
		workers := cores
		if workers > e.opts.MaxWorkers {
			workers = e.opts.MaxWorkers
		}
		log.Debugw("routing to parallel mapped path", "bytes", size, "workers", workers)
		return e.executeMapped(query, src.file, out, workers)
	case size > e.opts.MmapMinBytes:
		log.Debugw("routing to single mapped path", "bytes", size)
		return e.executeMapped(query, src.file, out, 1)
	default:
		log.Debugw("routing to sequential path", "bytes", size)
		return e.executeSequential(query, src.file, out)
	}
}

// queryPlan holds the header-dependent pieces of a query: projection,
// compiled predicate, and resolved sort column. Built once per query;
// every column error surfaces here, before any scanning.
type queryPlan struct {
	proj    projection
	pred    rowPredicate
	sortIdx int
	desc    bool
}

func buildPlan(query sqlparser.Query, h *header) (queryPlan, error) {
	plan := queryPlan{sortIdx: -1}

	proj, err := resolveProjection(query, h)
	if err != nil {
		return queryPlan{}, err
	}
	plan.proj = proj

	if query.Where != nil {
		pred, err := compilePredicate(query.Where, h)
		if err != nil {
			return queryPlan{}, err
		}
		plan.pred = pred
	}

	if query.OrderBy != nil {
		idx, ok := h.lookup(query.OrderBy.Column)
		if !ok {
			return queryPlan{}, qerror.New(qerror.CodeColumnNotFound,
				"ORDER BY column %q not found in CSV header", query.OrderBy.Column)
		}
		plan.sortIdx = idx
		plan.desc = query.OrderBy.Descending
	}

	return plan, nil
}

// executeMapped maps the file and scans it with the given worker count.
// The mapping outlives every worker and is released exactly once.
func (e *Engine) executeMapped(query sqlparser.Query, f *os.File, out io.Writer, workers int) (err error) {
	region, err := mmap.Map(f)
	if err != nil {
		return qerror.Wrap(err, qerror.CodeResource, "map %s", query.FilePath)
	}
	defer func() {
		err = multierr.Append(err, region.Close())
	}()

	data := region.Bytes()
	if len(data) == 0 {
		return qerror.New(qerror.CodeEmptyInput, "%s: empty input", query.FilePath)
	}

	headerLine, dataStart := scan.Line(data, 0)
	h, err := parseHeader(headerLine)
	if err != nil {
		return err
	}
	plan, err := buildPlan(query, h)
	if err != nil {
		return err
	}

	w := newRowWriter(out, e.opts.WriterBufBytes)
	w.writeStrings(plan.proj.names)

	ex := &mappedExec{
		data:    data[dataStart:],
		pred:    plan.pred,
		proj:    plan.proj,
		sortIdx: plan.sortIdx,
		desc:    plan.desc,
		limit:   query.Limit,
	}
	if err := ex.run(workers, w); err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "write output")
	}
	e.log.Debugw("mapped scan done",
		"workers", workers,
		"rows_scanned", ex.stats.scanned,
		"rows_matched", ex.stats.matched,
		"rows_dropped", ex.stats.dropped)
	return nil
}

// executeSequential scans a stream with the hot-path scanner through the
// 2MB double-buffered reader. Non-sort rows are written as they match;
// sort rows are retained in the arena until the final sort.
func (e *Engine) executeSequential(query sqlparser.Query, r io.Reader, out io.Writer) error {
	lr := newLineReader(r, e.opts.ReaderBufBytes)

	headerLine, err := lr.next()
	if err == io.EOF {
		return qerror.New(qerror.CodeEmptyInput, "%s: empty input", query.FilePath)
	}
	if err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "read header")
	}
	h, err := parseHeader(headerLine)
	if err != nil {
		return err
	}
	plan, err := buildPlan(query, h)
	if err != nil {
		return err
	}

	w := newRowWriter(out, e.opts.WriterBufBytes)
	w.writeStrings(plan.proj.names)

	if plan.sortIdx >= 0 {
		return e.sequentialSorted(query, lr, plan, w)
	}

	var fieldsBuf, rowBuf [][]byte
	written := 0
	for {
		line, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return qerror.Wrap(err, qerror.CodeIO, "read row")
		}
		if len(line) == 0 {
			continue
		}
		fields, ok := scan.Fields(line, fieldsBuf)
		fieldsBuf = fields
		if !ok {
			continue
		}
		if plan.pred != nil && !plan.pred(fields) {
			continue
		}
		if plan.proj.all {
			w.writeRaw(line)
		} else {
			rowBuf = plan.proj.projectInto(fields, rowBuf)
			w.writeFields(rowBuf)
		}
		written++
		if query.Limit > 0 && written >= query.Limit {
			break
		}
	}
	if err := w.flush(); err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "write output")
	}
	return nil
}

// sequentialSorted retains matching rows past buffer refills by copying
// them into the arena, then sorts and emits like the mapped join.
func (e *Engine) sequentialSorted(query sqlparser.Query, lr *lineReader, plan queryPlan, w *rowWriter) error {
	var ar arena
	defer ar.release()

	var fieldsBuf [][]byte
	var recs []sortcore.Record
	for {
		line, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return qerror.Wrap(err, qerror.CodeIO, "read row")
		}
		if len(line) == 0 {
			continue
		}
		fields, ok := scan.Fields(line, fieldsBuf)
		fieldsBuf = fields
		if !ok {
			continue
		}
		if plan.pred != nil && !plan.pred(fields) {
			continue
		}

		// The reader invalidates line on the next call; the kept copy is
		// split again so the sort field aliases arena bytes, not the
		// transient window.
		kept := ar.copyOf(line)
		var sortBytes []byte
		if plan.sortIdx < len(fields) {
			keptFields, _ := scan.Fields(kept, fieldsBuf)
			fieldsBuf = keptFields
			sortBytes = keptFields[plan.sortIdx]
		}
		recs = append(recs, sortcore.MakeRecord(sortBytes, kept, plan.desc))
	}

	ordered := sortcore.Sort(recs, plan.desc, query.Limit)

	var rowBuf [][]byte
	for i := range ordered {
		if plan.proj.all {
			w.writeRaw(ordered[i].Row)
			continue
		}
		fields, ok := scan.Fields(ordered[i].Row, fieldsBuf)
		fieldsBuf = fields
		if !ok {
			continue
		}
		rowBuf = plan.proj.projectInto(fields, rowBuf)
		w.writeFields(rowBuf)
	}
	if err := w.flush(); err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "write output")
	}
	return nil
}

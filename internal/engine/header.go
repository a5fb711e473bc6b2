package engine

import (
	"strings"

	"github.com/melihbirim/sievik/internal/qerror"
	"github.com/melihbirim/sievik/internal/scan"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

// header holds the column names in file order plus the case-folded lookup
// index. Built once per query before workers spawn; read-only after.
type header struct {
	names []string
	index map[string]int
}

// parseHeader splits the raw header line. A BOM is stripped first.
func parseHeader(line []byte) (*header, error) {
	line = scan.TrimBOM(line)
	fields, ok := scan.Fields(line, nil)
	if !ok {
		return nil, qerror.New(qerror.CodeEmptyInput, "header exceeds the %d-field cap", scan.FieldCap)
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(string(f))
	}
	return newHeader(names), nil
}

// newHeader builds the lookup index from already-materialized names.
func newHeader(names []string) *header {
	h := &header{names: names, index: make(map[string]int, len(names))}
	for i, name := range names {
		h.index[asciiFold(strings.TrimSpace(name))] = i
	}
	return h
}

func (h *header) lookup(name string) (int, bool) {
	idx, ok := h.index[asciiFold(strings.TrimSpace(name))]
	return idx, ok
}

// projection is the ordered list of row positions to emit. all marks the
// distinguished "every column" plan, which lets the mapped non-sort path
// pass raw lines through without rebuilding them.
type projection struct {
	all   bool
	idxs  []int
	names []string
}

// resolveProjection maps the query's column names onto row positions.
func resolveProjection(q sqlparser.Query, h *header) (projection, error) {
	if q.AllColumns {
		idxs := make([]int, len(h.names))
		for i := range h.names {
			idxs[i] = i
		}
		return projection{all: true, idxs: idxs, names: h.names}, nil
	}

	idxs := make([]int, len(q.Columns))
	names := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		idx, ok := h.lookup(col)
		if !ok {
			return projection{}, qerror.New(qerror.CodeColumnNotFound, "column %q not found in CSV header", col)
		}
		idxs[i] = idx
		names[i] = h.names[idx]
	}
	return projection{idxs: idxs, names: names}, nil
}

// projectInto gathers the projected fields of a row into dst, reusing its
// backing array. Positions past the row's field count come back empty.
func (p *projection) projectInto(fields [][]byte, dst [][]byte) [][]byte {
	dst = dst[:0]
	for _, idx := range p.idxs {
		if idx < len(fields) {
			dst = append(dst, fields[idx])
		} else {
			dst = append(dst, nil)
		}
	}
	return dst
}

package engine

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/melihbirim/sievik/internal/qerror"
	"github.com/melihbirim/sievik/internal/scan"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

// executeStream runs a query over a non-seekable source through the
// compliant RFC-4180 reader: quoted fields, doubled quotes, and CRLF all
// honored. Sorting is not supported here; a stream cannot be rescanned
// and the hot sort path is built for mapped rows.
func (e *Engine) executeStream(query sqlparser.Query, r io.Reader, out io.Writer) error {
	if query.OrderBy != nil {
		return fmt.Errorf("ORDER BY is not supported when reading from a stream")
	}

	reader := csv.NewReader(bufio.NewReaderSize(r, e.opts.ReaderBufBytes))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err == io.EOF {
		return qerror.New(qerror.CodeEmptyInput, "%s: empty input", query.FilePath)
	}
	if err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "read header")
	}

	// Copy the header; ReuseRecord overwrites the slice.
	names := make([]string, len(headerRecord))
	copy(names, headerRecord)
	if len(names) > 0 {
		names[0] = strings.TrimPrefix(names[0], "\ufeff")
	}

	h := newHeader(names)
	plan, err := buildPlan(query, h)
	if err != nil {
		return err
	}

	w := newRowWriter(out, e.opts.WriterBufBytes)
	w.writeStrings(plan.proj.names)

	var fieldsBuf [][]byte
	var rowBuf []string
	written := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return qerror.Wrap(err, qerror.CodeIO, "read row")
		}
		if len(record) > scan.FieldCap {
			continue
		}

		if plan.pred != nil {
			fieldsBuf = stringFields(record, fieldsBuf)
			if !plan.pred(fieldsBuf) {
				continue
			}
		}

		rowBuf = rowBuf[:0]
		for _, idx := range plan.proj.idxs {
			if idx < len(record) {
				rowBuf = append(rowBuf, record[idx])
			} else {
				rowBuf = append(rowBuf, "")
			}
		}
		w.writeStrings(rowBuf)

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

// stringFields views a []string record as field slices for the compiled
// predicate, reusing dst.
func stringFields(record []string, dst [][]byte) [][]byte {
	dst = dst[:0]
	for _, s := range record {
		dst = append(dst, s2b(s))
	}
	return dst
}

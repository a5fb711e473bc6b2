package engine

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/melihbirim/sievik/internal/qerror"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

// aggregateFunc is one aggregate expression in the SELECT list.
type aggregateFunc struct {
	name   string // COUNT, SUM, AVG, MIN, MAX
	column string // column name, or "*" for COUNT(*)
	alias  string // original expression, used as the output header
}

// aggregator accumulates one group's values.
type aggregator struct {
	rowCount int64
	sums     []float64
	counts   []int64
	mins     []float64
	maxs     []float64
	hasMin   []bool
	hasMax   []bool
}

func newAggregator(n int) *aggregator {
	return &aggregator{
		sums:   make([]float64, n),
		counts: make([]int64, n),
		mins:   make([]float64, n),
		maxs:   make([]float64, n),
		hasMin: make([]bool, n),
		hasMax: make([]bool, n),
	}
}

var aggregateFuncRe = regexp.MustCompile(`(?i)^(COUNT|SUM|AVG|MIN|MAX)\s*\(\s*([*a-zA-Z0-9_]+)\s*\)$`)

func parseAggregateFunc(expr string) (*aggregateFunc, bool) {
	expr = strings.TrimSpace(expr)
	matches := aggregateFuncRe.FindStringSubmatch(expr)
	if len(matches) == 0 {
		return nil, false
	}
	return &aggregateFunc{
		name:   strings.ToUpper(matches[1]),
		column: strings.TrimSpace(matches[2]),
		alias:  expr,
	}, true
}

// executeGroupByFile routes GROUP BY queries onto the streaming reader.
// Aggregation reduces the output to one row per group, so the mapped scan
// buys nothing here.
func (e *Engine) executeGroupByFile(query sqlparser.Query, out io.Writer) error {
	if query.OrderBy != nil {
		return fmt.Errorf("ORDER BY is not supported with GROUP BY")
	}

	var r io.Reader
	if query.FilePath == "-" || query.FilePath == "stdin" {
		r = os.Stdin
	} else {
		src, err := openInput(query.FilePath)
		if err != nil {
			return err
		}
		defer src.close()
		if src.stream != nil {
			r = src.stream
		} else {
			r = src.file
		}
	}
	return e.executeGroupBy(query, r, out)
}

func (e *Engine) executeGroupBy(query sqlparser.Query, r io.Reader, out io.Writer) error {
	if query.AllColumns {
		return fmt.Errorf("SELECT * is not supported with GROUP BY, please specify columns")
	}

	// Split the SELECT list into group columns and aggregates.
	var groupCols []string
	var aggregates []*aggregateFunc
	for _, col := range query.Columns {
		if agg, isAgg := parseAggregateFunc(col); isAgg {
			aggregates = append(aggregates, agg)
		} else {
			groupCols = append(groupCols, strings.TrimSpace(col))
		}
	}
	if len(groupCols) != len(query.GroupBy) {
		return fmt.Errorf("all non-aggregate columns in SELECT must appear in GROUP BY")
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
	names := make([]string, len(headerRecord))
	copy(names, headerRecord)
	h := newHeader(names)

	groupByIdx := make([]int, len(query.GroupBy))
	for i, col := range query.GroupBy {
		idx, ok := h.lookup(col)
		if !ok {
			return qerror.New(qerror.CodeColumnNotFound, "GROUP BY column %q not found in CSV header", col)
		}
		groupByIdx[i] = idx
	}

	aggIdx := make([]int, len(aggregates))
	for i, agg := range aggregates {
		if agg.name == "COUNT" && agg.column == "*" {
			aggIdx[i] = -1
			continue
		}
		idx, ok := h.lookup(agg.column)
		if !ok {
			return qerror.New(qerror.CodeColumnNotFound, "aggregate column %q not found in CSV header", agg.column)
		}
		aggIdx[i] = idx
	}

	var pred rowPredicate
	if query.Where != nil {
		pred, err = compilePredicate(query.Where, h)
		if err != nil {
			return err
		}
	}

	// Accumulate groups in first-seen order.
	groups := make(map[string]*aggregator)
	var groupKeys []string
	var fieldsBuf [][]byte
	var keyParts []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return qerror.Wrap(err, qerror.CodeIO, "read row")
		}

		if pred != nil {
			fieldsBuf = stringFields(record, fieldsBuf)
			if !pred(fieldsBuf) {
				continue
			}
		}

		keyParts = keyParts[:0]
		for _, idx := range groupByIdx {
			if idx < len(record) {
				keyParts = append(keyParts, record[idx])
			} else {
				keyParts = append(keyParts, "")
			}
		}
		groupKey := strings.Join(keyParts, "\x00")

		agg, exists := groups[groupKey]
		if !exists {
			agg = newAggregator(len(aggregates))
			groups[groupKey] = agg
			groupKeys = append(groupKeys, groupKey)
		}
		agg.rowCount++

		for i, aggFunc := range aggregates {
			idx := aggIdx[i]
			if idx < 0 || idx >= len(record) {
				continue
			}
			switch aggFunc.name {
			case "SUM", "AVG":
				if val, err := strconv.ParseFloat(record[idx], 64); err == nil {
					agg.sums[i] += val
					agg.counts[i]++
				}
			case "MIN":
				if val, err := strconv.ParseFloat(record[idx], 64); err == nil {
					if !agg.hasMin[i] || val < agg.mins[i] {
						agg.mins[i] = val
						agg.hasMin[i] = true
					}
				}
			case "MAX":
				if val, err := strconv.ParseFloat(record[idx], 64); err == nil {
					if !agg.hasMax[i] || val > agg.maxs[i] {
						agg.maxs[i] = val
						agg.hasMax[i] = true
					}
				}
			}
		}
	}

	w := newRowWriter(out, e.opts.WriterBufBytes)
	outputHeader := make([]string, 0, len(query.GroupBy)+len(aggregates))
	outputHeader = append(outputHeader, query.GroupBy...)
	for _, agg := range aggregates {
		outputHeader = append(outputHeader, agg.alias)
	}
	w.writeStrings(outputHeader)

	outputCount := 0
	row := make([]string, 0, len(outputHeader))
	for _, groupKey := range groupKeys {
		if query.Limit > 0 && outputCount >= query.Limit {
			break
		}
		agg := groups[groupKey]

		row = row[:0]
		row = append(row, strings.Split(groupKey, "\x00")...)
		for i, aggFunc := range aggregates {
			var value string
			switch aggFunc.name {
			case "COUNT":
				value = strconv.FormatInt(agg.rowCount, 10)
			case "SUM":
				value = fmt.Sprintf("%.2f", agg.sums[i])
			case "AVG":
				if agg.counts[i] > 0 {
					value = fmt.Sprintf("%.2f", agg.sums[i]/float64(agg.counts[i]))
				} else {
					value = "0"
				}
			case "MIN":
				if agg.hasMin[i] {
					value = fmt.Sprintf("%.2f", agg.mins[i])
				}
			case "MAX":
				if agg.hasMax[i] {
					value = fmt.Sprintf("%.2f", agg.maxs[i])
				}
			}
			row = append(row, value)
		}
		w.writeStrings(row)
		outputCount++
	}

	if err := w.flush(); err != nil {
		return qerror.Wrap(err, qerror.CodeIO, "write output")
	}
	return nil
}

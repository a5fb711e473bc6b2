// Package sqlparser turns a limited SQL string, or the positional "simple
// mode" arguments, into the validated query tree the engine executes.
package sqlparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Query captures the information required to execute a CSV query.
// Limit is -1 when absent; LIMIT 0 means unbounded and normalizes to -1.
type Query struct {
	Columns    []string
	AllColumns bool
	FilePath   string
	Where      Expression
	GroupBy    []string
	OrderBy    *OrderBy
	Limit      int
}

// OrderBy names the single sort column and its direction.
type OrderBy struct {
	Column     string
	Descending bool
}

// Expression is a WHERE clause node: a Comparison leaf or a boolean
// connective over other expressions.
type Expression interface {
	expr()
}

// BinaryExpr joins two expressions with AND or OR.
type BinaryExpr struct {
	Operator string
	Left     Expression
	Right    Expression
}

// UnaryExpr negates an expression (NOT).
type UnaryExpr struct {
	Operator string
	Expr     Expression
}

// Comparison is a single column-operator-literal test. NumericValue is
// pre-parsed when the literal reads as a base-10 float so the evaluator's
// hot path never re-parses it.
type Comparison struct {
	Column       string
	Operator     string
	Value        string
	NumericValue float64
	IsNumeric    bool
}

func (BinaryExpr) expr() {}
func (UnaryExpr) expr()  {}
func (Comparison) expr() {}

var queryRe = regexp.MustCompile(
	`(?i)^\s*select\s+(.+?)\s+from\s+((?:'[^']+'|"[^"]+"|\S+))` +
		`(?:\s+where\s+(.+?))?` +
		`(?:\s+group\s+by\s+(.+?))?` +
		`(?:\s+order\s+by\s+(.+?))?` +
		`(?:\s+limit\s+(\d+))?\s*$`)

// Parse turns a limited SQL string into a Query.
func Parse(input string) (Query, error) {
	matches := queryRe.FindStringSubmatch(input)
	if len(matches) == 0 {
		return Query{}, fmt.Errorf("unsupported query; expected SELECT ... FROM file [WHERE ...] [GROUP BY ...] [ORDER BY col [ASC|DESC]] [LIMIT n]")
	}

	columnsPart := strings.TrimSpace(matches[1])
	filePart := trimQuotes(strings.TrimSpace(matches[2]))
	wherePart := strings.TrimSpace(matches[3])
	groupPart := strings.TrimSpace(matches[4])
	orderPart := strings.TrimSpace(matches[5])
	limitPart := strings.TrimSpace(matches[6])

	q := Query{FilePath: filePart, Limit: -1}

	if q.FilePath == "" {
		return Query{}, fmt.Errorf("missing file path in FROM clause")
	}

	if columnsPart == "*" {
		q.AllColumns = true
	} else {
		cols, err := splitColumnList(columnsPart)
		if err != nil {
			return Query{}, fmt.Errorf("SELECT clause: %w", err)
		}
		q.Columns = cols
	}

	if wherePart != "" {
		expr, err := ParseExpression(wherePart)
		if err != nil {
			return Query{}, err
		}
		q.Where = expr
	}

	if groupPart != "" {
		cols, err := splitColumnList(groupPart)
		if err != nil {
			return Query{}, fmt.Errorf("GROUP BY clause: %w", err)
		}
		q.GroupBy = cols
	}

	if orderPart != "" {
		ob, err := parseOrderBy(orderPart)
		if err != nil {
			return Query{}, err
		}
		q.OrderBy = ob
	}

	if limitPart != "" {
		limit, err := strconv.Atoi(limitPart)
		if err != nil || limit < 0 {
			return Query{}, fmt.Errorf("invalid LIMIT value: %s", limitPart)
		}
		if limit == 0 {
			// LIMIT 0 reads as "no limit".
			limit = -1
		}
		q.Limit = limit
	}

	return q, nil
}

// BuildSimple assembles a Query from simple-mode arguments. An empty
// selectCols means all columns; limit <= 0 means unbounded.
func BuildSimple(filePath, selectCols, where, orderBy string, descending bool, limit int) (Query, error) {
	q := Query{FilePath: filePath, Limit: -1}
	if q.FilePath == "" {
		return Query{}, fmt.Errorf("missing input file")
	}

	if selectCols == "" || selectCols == "*" {
		q.AllColumns = true
	} else {
		cols, err := splitColumnList(selectCols)
		if err != nil {
			return Query{}, fmt.Errorf("--select: %w", err)
		}
		q.Columns = cols
	}

	if where != "" {
		expr, err := ParseExpression(where)
		if err != nil {
			return Query{}, err
		}
		q.Where = expr
	}

	if orderBy != "" {
		q.OrderBy = &OrderBy{Column: orderBy, Descending: descending}
	} else if descending {
		return Query{}, fmt.Errorf("--desc requires --order-by")
	}

	if limit > 0 {
		q.Limit = limit
	}

	return q, nil
}

// IsSQL reports whether an argument starts a SQL-mode query rather than
// naming a simple-mode input file.
func IsSQL(firstArg string) bool {
	return len(firstArg) >= 6 && strings.EqualFold(firstArg[:6], "select")
}

func parseOrderBy(input string) (*OrderBy, error) {
	if strings.Contains(input, ",") {
		return nil, fmt.Errorf("ORDER BY supports a single column")
	}
	fields := strings.Fields(input)
	switch len(fields) {
	case 1:
		return &OrderBy{Column: fields[0]}, nil
	case 2:
		switch strings.ToLower(fields[1]) {
		case "asc":
			return &OrderBy{Column: fields[0]}, nil
		case "desc":
			return &OrderBy{Column: fields[0], Descending: true}, nil
		}
	}
	return nil, fmt.Errorf("invalid ORDER BY clause: %s", input)
}

func splitColumnList(input string) ([]string, error) {
	parts := strings.Split(input, ",")
	cols := make([]string, 0, len(parts))
	for _, col := range parts {
		cleaned := strings.TrimSpace(col)
		if cleaned == "" {
			return nil, fmt.Errorf("empty column name")
		}
		cols = append(cols, cleaned)
	}
	return cols, nil
}

func trimQuotes(input string) string {
	if len(input) >= 2 {
		if (input[0] == '\'' && input[len(input)-1] == '\'') || (input[0] == '"' && input[len(input)-1] == '"') {
			return input[1 : len(input)-1]
		}
	}
	return input
}

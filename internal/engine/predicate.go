package engine

import (
	"bytes"
	"strconv"

	"github.com/melihbirim/sievik/internal/qerror"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

// rowPredicate evaluates a compiled WHERE clause against one row's field
// slices. It never errors: numeric parse failures and out-of-range column
// indices evaluate to false.
type rowPredicate func(fields [][]byte) bool

type cmpOp uint8

const (
	opEq cmpOp = iota
	opNe
	opLt
	opLe
	opGt
	opGe
)

var cmpOps = map[string]cmpOp{
	"=": opEq, "!=": opNe, "<>": opNe,
	"<": opLt, "<=": opLe, ">": opGt, ">=": opGe,
}

// compilePredicate resolves every column reference once and folds the
// expression tree into nested closures, so per-row evaluation touches no
// maps and allocates nothing. Column resolution failures surface here,
// before any worker spawns.
func compilePredicate(expr sqlparser.Expression, h *header) (rowPredicate, error) {
	switch e := expr.(type) {
	case sqlparser.BinaryExpr:
		left, err := compilePredicate(e.Left, h)
		if err != nil {
			return nil, err
		}
		right, err := compilePredicate(e.Right, h)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case "AND":
			return func(fields [][]byte) bool {
				return left(fields) && right(fields)
			}, nil
		case "OR":
			return func(fields [][]byte) bool {
				return left(fields) || right(fields)
			}, nil
		}
		return nil, qerror.New(qerror.CodeInvalidPredicate, "unknown boolean operator %q", e.Operator)

	case sqlparser.UnaryExpr:
		if e.Operator != "NOT" {
			return nil, qerror.New(qerror.CodeInvalidPredicate, "unknown unary operator %q", e.Operator)
		}
		inner, err := compilePredicate(e.Expr, h)
		if err != nil {
			return nil, err
		}
		return func(fields [][]byte) bool {
			return !inner(fields)
		}, nil

	case sqlparser.Comparison:
		return compileComparison(e, h)

	default:
		return nil, qerror.New(qerror.CodeInvalidPredicate, "unknown predicate node %T", expr)
	}
}

// compileComparison builds the single-comparison hot path. With a
// pre-parsed numeric threshold the field is parsed as f64 and compared;
// rows whose field does not parse are rejected. Without one, equality is
// byte-exact and the ordering operators are undefined on strings, so they
// evaluate to false.
func compileComparison(e sqlparser.Comparison, h *header) (rowPredicate, error) {
	colIdx, ok := h.lookup(e.Column)
	if !ok {
		return nil, qerror.New(qerror.CodeColumnNotFound, "column %q not found in CSV header", e.Column)
	}
	op, ok := cmpOps[e.Operator]
	if !ok {
		return nil, qerror.New(qerror.CodeInvalidPredicate, "unknown comparison operator %q", e.Operator)
	}

	if e.IsNumeric {
		threshold := e.NumericValue
		return func(fields [][]byte) bool {
			if colIdx >= len(fields) {
				return false
			}
			v, err := strconv.ParseFloat(b2s(fields[colIdx]), 64)
			if err != nil {
				return false
			}
			switch op {
			case opEq:
				return v == threshold
			case opNe:
				return v != threshold
			case opLt:
				return v < threshold
			case opLe:
				return v <= threshold
			case opGt:
				return v > threshold
			case opGe:
				return v >= threshold
			}
			return false
		}, nil
	}

	literal := []byte(e.Value)
	switch op {
	case opEq:
		return func(fields [][]byte) bool {
			return colIdx < len(fields) && bytes.Equal(fields[colIdx], literal)
		}, nil
	case opNe:
		return func(fields [][]byte) bool {
			return colIdx < len(fields) && !bytes.Equal(fields[colIdx], literal)
		}, nil
	default:
		// Ordering comparisons against a non-numeric literal are
		// undefined; they match nothing.
		return func([][]byte) bool { return false }, nil
	}
}

// validateColumns walks the expression and checks every referenced column
// resolves, without compiling. No query path calls it; compilePredicate
// resolves columns itself as it compiles.
func validateColumns(expr sqlparser.Expression, h *header) error {
	switch e := expr.(type) {
	case sqlparser.BinaryExpr:
		if err := validateColumns(e.Left, h); err != nil {
			return err
		}
		return validateColumns(e.Right, h)
	case sqlparser.UnaryExpr:
		return validateColumns(e.Expr, h)
	case sqlparser.Comparison:
		if _, ok := h.lookup(e.Column); !ok {
			return qerror.New(qerror.CodeColumnNotFound, "column %q not found in CSV header", e.Column)
		}
		return nil
	}
	return qerror.New(qerror.CodeInvalidPredicate, "unknown predicate node %T", expr)
}

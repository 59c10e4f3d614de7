package ql

import (
	"fmt"
	"strings"
)

// DuckDBEncoder renders filter ASTs to DuckDB SQL.
//
// Map columns use subscript access, JSON columns and scalar columns
// presumed to hold stringified JSON use json_extract_string with a JSONPath
// built from the nested path. The contains operators lower both sides and
// test instr.
type DuckDBEncoder struct {
	cols Columns
}

// NewDuckDBEncoder creates a DuckDB encoder for the given column type
// metadata. A nil Columns treats every column as scalar.
func NewDuckDBEncoder(cols Columns) *DuckDBEncoder {
	return &DuckDBEncoder{cols: cols}
}

// Encode renders the WHERE body and projection list.
func (e *DuckDBEncoder) Encode(node Node, projection []FieldRef) (*ParsedQuery, error) {
	pq := &ParsedQuery{DefaultProjection: len(projection) == 0}

	if node != nil {
		where, err := e.visit(node)
		if err != nil {
			return nil, err
		}
		pq.Where = where
	}

	for _, f := range projection {
		expr, err := e.columnExpr(f)
		if err != nil {
			return nil, err
		}
		col := ProjectedColumn{SQL: expr}
		if f.IsNested() {
			col.Alias = pathAlias(f)
		}
		pq.Columns = append(pq.Columns, col)
	}

	return pq, nil
}

func (e *DuckDBEncoder) visit(node Node) (string, error) {
	switch n := node.(type) {
	case *Expression:
		return e.encodeCondition(n)
	case *Logical:
		return e.encodeChildren(n.Children, " "+string(n.Op)+" ")
	case *Group:
		return e.encodeChildren(n.Children, " AND ")
	default:
		return "", fmt.Errorf("unsupported AST node %T", node)
	}
}

func (e *DuckDBEncoder) encodeChildren(children []Node, joiner string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		s, err := e.visit(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func (e *DuckDBEncoder) encodeCondition(expr *Expression) (string, error) {
	column, err := e.columnExpr(expr.Key)
	if err != nil {
		return "", err
	}

	if expr.Value.Kind == ValueNull {
		switch expr.Op {
		case OpEquals:
			return "(" + column + " IS NULL)", nil
		case OpNotEquals:
			return "(" + column + " IS NOT NULL)", nil
		default:
			return "", fmt.Errorf("operator %q cannot compare %s against null", expr.Op, expr.Key)
		}
	}

	switch expr.Op {
	case OpContains, OpNotContains:
		// instr works on text, so the needle always renders as a string.
		needle := duckQuoteLiteral(e.valueText(expr.Value))
		cmp := " > 0)"
		if expr.Op == OpNotContains {
			cmp = " = 0)"
		}
		return "(instr(lower(" + column + "), lower(" + needle + "))" + cmp, nil
	case OpEquals, OpNotEquals, OpGT, OpLT, OpGTE, OpLTE:
		literal, err := e.literal(expr.Value)
		if err != nil {
			return "", err
		}
		return "(" + column + " " + string(expr.Op) + " " + literal + ")", nil
	default:
		return "", fmt.Errorf("unknown operator %q", expr.Op)
	}
}

func (e *DuckDBEncoder) columnExpr(f FieldRef) (string, error) {
	ident := duckQuoteIdentifier(unquoteSegment(f.Base))
	if !f.IsNested() {
		return ident, nil
	}

	switch e.cols.typeOf(unquoteSegment(f.Base)) {
	case ColumnMap:
		return ident + "[" + duckQuoteLiteral(mapKey(f.Path)) + "]", nil
	case ColumnJSON, ColumnScalar:
		return "json_extract_string(" + ident + ", " + duckQuoteLiteral(jsonPath(f.Path)) + ")", nil
	default:
		return "", fmt.Errorf("unrecognized column type tag %d for column %q", e.cols.typeOf(unquoteSegment(f.Base)), f.Base)
	}
}

func (e *DuckDBEncoder) literal(v Value) (string, error) {
	switch v.Kind {
	case ValueString:
		return duckQuoteLiteral(v.Str), nil
	case ValueNumber:
		return formatNumber(v.Num), nil
	case ValueBool:
		if v.Bool {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return "", fmt.Errorf("unsupported value kind %d", v.Kind)
	}
}

// valueText renders a non-null value as plain text for string contexts.
func (e *DuckDBEncoder) valueText(v Value) string {
	switch v.Kind {
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Str
	}
}

// jsonPath builds a JSONPath from the nested path segments.
func jsonPath(path []string) string {
	segs := make([]string, 0, len(path)+1)
	segs = append(segs, "$")
	for _, s := range path {
		segs = append(segs, unquoteSegment(s))
	}
	return strings.Join(segs, ".")
}

// duckEscapeString escapes single quotes in a string value for DuckDB SQL,
// which treats backslashes literally inside single-quoted strings.
func duckEscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// duckQuoteLiteral returns a DuckDB string literal with proper escaping.
func duckQuoteLiteral(s string) string {
	return "'" + duckEscapeString(s) + "'"
}

// duckQuoteIdentifier returns a double-quoted identifier if quoting is
// needed.
func duckQuoteIdentifier(name string) string {
	if duckNeedsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// duckNeedsQuoting reports whether an identifier needs quoting.
func duckNeedsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isASCIILetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isASCIILetter(c) && !isASCIIDigit(c) && c != '_' {
			return true
		}
	}

	// Reserved words (simplified list).
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "IN", "IS", "LIKE",
		"BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY",
		"GROUP", "HAVING", "LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT",
		"ALL", "DISTINCT", "VALUES", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP":
		return true
	}

	return false
}

// isASCIILetter returns true if c is an ASCII letter.
func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isASCIIDigit returns true if c is an ASCII digit.
func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

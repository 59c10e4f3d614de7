package ql

import (
	"strconv"
	"strings"
)

// ColumnType tags how a backing store column is accessed in generated SQL.
type ColumnType int

const (
	// ColumnScalar is a plain column. Nested paths against a scalar column
	// presume it holds stringified JSON.
	ColumnScalar ColumnType = iota
	// ColumnMap is a key/value map column accessed by subscript.
	ColumnMap
	// ColumnJSON is a JSON column accessed by JSON string extraction.
	ColumnJSON
)

// Columns maps column names to their type tags. Columns absent from the map
// fall back to scalar semantics. A nil Columns is a valid empty schema.
type Columns map[string]ColumnType

func (c Columns) typeOf(name string) ColumnType {
	if c == nil {
		return ColumnScalar
	}
	return c[name]
}

// ProjectedColumn is one rendered projection entry. Alias is empty when the
// column expression needs no aliasing.
type ProjectedColumn struct {
	SQL   string
	Alias string
}

// ParsedQuery is the rendered output of an encoder.
type ParsedQuery struct {
	// Where is the filter condition body, without the WHERE keyword.
	// Empty when the query has no filter expression.
	Where string

	// Columns is the explicit projection from the pipe field list.
	Columns []ProjectedColumn

	// DefaultProjection is true when no pipe field list was supplied and
	// all columns should be projected.
	DefaultProjection bool
}

// Encoder renders a filter AST and projection into one SQL dialect.
// Implementations are pure: safe for concurrent use across compiles.
type Encoder interface {
	// Encode renders the WHERE body and projection list. The node may be
	// nil for an empty filter. No partial SQL is ever returned: any
	// rendering problem fails the whole query.
	Encode(node Node, projection []FieldRef) (*ParsedQuery, error)
}

// escapeIdentifier quotes an identifier with backticks, doubling any
// backticks it contains.
func escapeIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// escapeStringLiteral escapes a string for embedding in a single-quoted SQL
// literal.
func escapeStringLiteral(s string) string {
	r := strings.ReplaceAll(s, `\`, `\\`)
	r = strings.ReplaceAll(r, "'", "''")
	r = strings.ReplaceAll(r, "\x00", `\0`)
	r = strings.ReplaceAll(r, "\r", `\r`)
	r = strings.ReplaceAll(r, "\n", `\n`)
	return r
}

// quoteStringLiteral returns a single-quoted SQL string literal.
func quoteStringLiteral(s string) string {
	return "'" + escapeStringLiteral(s) + "'"
}

// formatNumber renders a number in canonical decimal form, never scientific
// notation.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// mapKey joins a nested path back into the single dotted map key used for
// subscript access, stripping segment quotes.
func mapKey(path []string) string {
	segs := make([]string, len(path))
	for i, s := range path {
		segs[i] = unquoteSegment(s)
	}
	return strings.Join(segs, ".")
}

// pathAlias derives a stable projection alias from a nested reference:
// base and path segments joined by underscores.
func pathAlias(f FieldRef) string {
	parts := make([]string, 0, len(f.Path)+1)
	parts = append(parts, unquoteSegment(f.Base))
	for _, s := range f.Path {
		parts = append(parts, unquoteSegment(s))
	}
	return strings.Join(parts, "_")
}

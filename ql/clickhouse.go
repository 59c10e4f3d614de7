package ql

import (
	"fmt"
	"strings"
)

// ClickHouseEncoder renders filter ASTs to ClickHouse SQL.
//
// Nested references render by column type: map columns use subscript access
// with the dot-joined path as the key, JSON columns and scalar columns
// presumed to hold stringified JSON use JSONExtractString. The contains
// operators use positionCaseInsensitive.
type ClickHouseEncoder struct {
	cols Columns
}

// NewClickHouseEncoder creates a ClickHouse encoder for the given column
// type metadata. A nil Columns treats every column as scalar.
func NewClickHouseEncoder(cols Columns) *ClickHouseEncoder {
	return &ClickHouseEncoder{cols: cols}
}

// Encode renders the WHERE body and projection list.
func (e *ClickHouseEncoder) Encode(node Node, projection []FieldRef) (*ParsedQuery, error) {
	pq := &ParsedQuery{DefaultProjection: len(projection) == 0}

	if node != nil {
		where, err := e.visit(node)
		if err != nil {
			return nil, err
		}
		pq.Where = where
	}

	for _, f := range projection {
		col, err := e.projectColumn(f)
		if err != nil {
			return nil, err
		}
		pq.Columns = append(pq.Columns, col)
	}

	return pq, nil
}

func (e *ClickHouseEncoder) visit(node Node) (string, error) {
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

func (e *ClickHouseEncoder) encodeChildren(children []Node, joiner string) (string, error) {
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

func (e *ClickHouseEncoder) encodeCondition(expr *Expression) (string, error) {
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

	literal, err := e.literal(expr.Value)
	if err != nil {
		return "", err
	}

	switch expr.Op {
	case OpContains:
		return "(positionCaseInsensitive(" + column + ", " + literal + ") > 0)", nil
	case OpNotContains:
		return "(positionCaseInsensitive(" + column + ", " + literal + ") = 0)", nil
	case OpEquals, OpNotEquals, OpGT, OpLT, OpGTE, OpLTE:
		return "(" + column + " " + string(expr.Op) + " " + literal + ")", nil
	default:
		return "", fmt.Errorf("unknown operator %q", expr.Op)
	}
}

// columnExpr renders the accessor for a field reference.
func (e *ClickHouseEncoder) columnExpr(f FieldRef) (string, error) {
	ident := escapeIdentifier(unquoteSegment(f.Base))
	if !f.IsNested() {
		return ident, nil
	}

	switch e.cols.typeOf(unquoteSegment(f.Base)) {
	case ColumnMap:
		return ident + "['" + escapeStringLiteral(mapKey(f.Path)) + "']", nil
	case ColumnJSON, ColumnScalar:
		// Scalar columns holding stringified JSON use the same extraction.
		args := make([]string, 0, len(f.Path)+1)
		args = append(args, ident)
		for _, seg := range f.Path {
			args = append(args, quoteStringLiteral(unquoteSegment(seg)))
		}
		return "JSONExtractString(" + strings.Join(args, ", ") + ")", nil
	default:
		return "", fmt.Errorf("unrecognized column type tag %d for column %q", e.cols.typeOf(unquoteSegment(f.Base)), f.Base)
	}
}

func (e *ClickHouseEncoder) literal(v Value) (string, error) {
	switch v.Kind {
	case ValueString:
		return quoteStringLiteral(v.Str), nil
	case ValueNumber:
		return formatNumber(v.Num), nil
	case ValueBool:
		if v.Bool {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("unsupported value kind %d", v.Kind)
	}
}

func (e *ClickHouseEncoder) projectColumn(f FieldRef) (ProjectedColumn, error) {
	expr, err := e.columnExpr(f)
	if err != nil {
		return ProjectedColumn{}, err
	}
	if !f.IsNested() {
		return ProjectedColumn{SQL: expr}, nil
	}
	return ProjectedColumn{SQL: expr, Alias: pathAlias(f)}, nil
}

package ql

import (
	"fmt"
	"strings"
)

// LogsQLEncoder renders filter ASTs to VictoriaLogs LogsQL filters instead
// of SQL. AND chains join with spaces (the LogsQL default), OR chains join
// with "or" inside parentheses. ParsedQuery.Where holds the LogsQL filter
// and projection entries carry plain dotted field names.
type LogsQLEncoder struct{}

// NewLogsQLEncoder creates a LogsQL encoder. LogsQL resolves field types
// itself, so no column metadata is needed.
func NewLogsQLEncoder() *LogsQLEncoder {
	return &LogsQLEncoder{}
}

// Encode renders the filter and projection field list.
func (e *LogsQLEncoder) Encode(node Node, projection []FieldRef) (*ParsedQuery, error) {
	pq := &ParsedQuery{DefaultProjection: len(projection) == 0}

	if node != nil {
		where, err := e.visit(node)
		if err != nil {
			return nil, err
		}
		pq.Where = where
	}

	for _, f := range projection {
		pq.Columns = append(pq.Columns, ProjectedColumn{SQL: e.fieldName(f)})
	}

	return pq, nil
}

func (e *LogsQLEncoder) visit(node Node) (string, error) {
	switch n := node.(type) {
	case *Expression:
		return e.encodeCondition(n)
	case *Logical:
		joiner := " "
		if n.Op == BoolOr {
			joiner = " or "
		}
		return e.encodeChildren(n.Children, joiner)
	case *Group:
		return e.encodeChildren(n.Children, " ")
	default:
		return "", fmt.Errorf("unsupported AST node %T", node)
	}
}

func (e *LogsQLEncoder) encodeChildren(children []Node, joiner string) (string, error) {
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

func (e *LogsQLEncoder) encodeCondition(expr *Expression) (string, error) {
	key := e.fieldName(expr.Key)
	value := e.formatValue(expr.Value)

	switch expr.Op {
	case OpEquals:
		return key + ":=" + value, nil
	case OpNotEquals:
		return key + ":!=" + value, nil
	case OpContains:
		return key + ":~" + value, nil
	case OpNotContains:
		return key + ":!~" + value, nil
	case OpGT:
		return key + ":>" + value, nil
	case OpLT:
		return key + ":<" + value, nil
	case OpGTE:
		return key + ":>=" + value, nil
	case OpLTE:
		return key + ":<=" + value, nil
	default:
		return "", fmt.Errorf("unknown operator %q", expr.Op)
	}
}

// fieldName renders the dotted field reference with segment quotes stripped.
func (e *LogsQLEncoder) fieldName(f FieldRef) string {
	parts := make([]string, 0, len(f.Path)+1)
	parts = append(parts, unquoteSegment(f.Base))
	for _, s := range f.Path {
		parts = append(parts, unquoteSegment(s))
	}
	return strings.Join(parts, ".")
}

func (e *LogsQLEncoder) formatValue(v Value) string {
	switch v.Kind {
	case ValueNull:
		return `""`
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		if logsqlNeedsQuoting(v.Str) {
			return `"` + logsqlEscapeString(v.Str) + `"`
		}
		return v.Str
	}
}

func logsqlNeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \"'():|\\\n\r\t")
}

func logsqlEscapeString(s string) string {
	r := strings.ReplaceAll(s, `\`, `\\`)
	r = strings.ReplaceAll(r, `"`, `\"`)
	r = strings.ReplaceAll(r, "\n", `\n`)
	r = strings.ReplaceAll(r, "\r", `\r`)
	r = strings.ReplaceAll(r, "\t", `\t`)
	return r
}

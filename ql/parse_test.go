package ql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseQuery(t *testing.T, input string) ParseResult {
	t.Helper()
	return Parse(Tokenize(input))
}

func TestParseSimpleCondition(t *testing.T) {
	res := parseQuery(t, `level="error"`)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := &Expression{
		Key:   FieldRef{Base: "level"},
		Op:    OpEquals,
		Value: String("error"),
	}
	if diff := cmp.Diff(want, res.AST); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlattensSameOperatorChain(t *testing.T) {
	res := parseQuery(t, `a=1 and b=2 and c=3`)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	logical, ok := res.AST.(*Logical)
	if !ok {
		t.Fatalf("expected *Logical root, got %T", res.AST)
	}
	if logical.Op != BoolAnd {
		t.Errorf("expected AND, got %s", logical.Op)
	}
	if len(logical.Children) != 3 {
		t.Errorf("expected one 3-child node, got %d children", len(logical.Children))
	}
	for _, child := range logical.Children {
		if _, ok := child.(*Expression); !ok {
			t.Errorf("expected flat Expression children, got %T", child)
		}
	}
}

func TestParseMixedOperatorsLeftAssociative(t *testing.T) {
	res := parseQuery(t, `a=1 and b=2 or c=3`)

	want := &Logical{
		Op: BoolOr,
		Children: []Node{
			&Logical{
				Op: BoolAnd,
				Children: []Node{
					&Expression{Key: FieldRef{Base: "a"}, Op: OpEquals, Value: Number(1)},
					&Expression{Key: FieldRef{Base: "b"}, Op: OpEquals, Value: Number(2)},
				},
			},
			&Expression{Key: FieldRef{Base: "c"}, Op: OpEquals, Value: Number(3)},
		},
	}
	if diff := cmp.Diff(want, res.AST); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGroupWithSingleChildIsTransparent(t *testing.T) {
	bare := parseQuery(t, `a=1`)
	wrapped := parseQuery(t, `(a=1)`)

	if diff := cmp.Diff(bare.AST, wrapped.AST); diff != "" {
		t.Errorf("parens around one condition must be transparent (-bare +wrapped):\n%s", diff)
	}
	if _, ok := wrapped.AST.(*Group); ok {
		t.Errorf("single-child Group must never be constructed")
	}
}

func TestParseGroupedSiblings(t *testing.T) {
	res := parseQuery(t, `(a=1 b=2)`)

	if len(res.Errors) != 0 {
		t.Fatalf("juxtaposition inside parens is grammar, not recovery: %v", res.Errors)
	}
	group, ok := res.AST.(*Group)
	if !ok {
		t.Fatalf("expected *Group, got %T", res.AST)
	}
	if len(group.Children) != 2 {
		t.Errorf("expected 2 sibling children, got %d", len(group.Children))
	}
}

func TestParseGroupedDisjunction(t *testing.T) {
	res := parseQuery(t, `a=1 and (b=2 or c=3)`)

	want := &Logical{
		Op: BoolAnd,
		Children: []Node{
			&Expression{Key: FieldRef{Base: "a"}, Op: OpEquals, Value: Number(1)},
			&Logical{
				Op: BoolOr,
				Children: []Node{
					&Expression{Key: FieldRef{Base: "b"}, Op: OpEquals, Value: Number(2)},
					&Expression{Key: FieldRef{Base: "c"}, Op: OpEquals, Value: Number(3)},
				},
			},
		},
	}
	if diff := cmp.Diff(want, res.AST); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMissingBooleanOperatorRecovery(t *testing.T) {
	explicit := parseQuery(t, `a=1 and b=2`)
	implicit := parseQuery(t, `a=1 b=2`)

	if diff := cmp.Diff(explicit.AST, implicit.AST); diff != "" {
		t.Errorf("juxtaposed AST must match explicit AND (-explicit +implicit):\n%s", diff)
	}
	if len(explicit.Errors) != 0 {
		t.Errorf("explicit form must carry no diagnostics: %v", explicit.Errors)
	}
	if len(implicit.Errors) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", implicit.Errors)
	}
	d := implicit.Errors[0]
	if d.Code != ErrMissingBooleanOperator {
		t.Errorf("expected %s, got %s", ErrMissingBooleanOperator, d.Code)
	}
	if d.Pos == nil || *d.Pos != 4 {
		t.Errorf("expected diagnostic at offset 4, got %v", d.Pos)
	}
}

func TestParseProjection(t *testing.T) {
	res := parseQuery(t, `level="error" | timestamp attrs.user level`)

	want := []FieldRef{
		{Base: "timestamp"},
		{Base: "attrs", Path: []string{"user"}},
		{Base: "level"},
	}
	if diff := cmp.Diff(want, res.Projection); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}
	if res.AST == nil {
		t.Errorf("filter before the pipe must still parse")
	}
}

func TestParseProjectionOnly(t *testing.T) {
	res := parseQuery(t, `| timestamp level`)

	if res.AST != nil {
		t.Errorf("expected no AST, got %T", res.AST)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
	if len(res.Projection) != 2 {
		t.Errorf("expected 2 projection fields, got %v", res.Projection)
	}
}

func TestParseEmptyInput(t *testing.T) {
	res := parseQuery(t, "")

	if res.AST != nil || len(res.Errors) != 0 {
		t.Errorf("empty input must yield no AST and no errors, got %+v", res)
	}
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"truncated condition", `a=`, ErrUnexpectedEnd},
		{"operator only", `a`, ErrUnexpectedEnd},
		{"missing operator", `a 1 2`, ErrExpectedOperator},
		{"unterminated string", `a="x`, ErrUnterminatedString},
		{"unknown operator", `a == 1`, ErrUnknownOperator},
		{"unbalanced open", `(a=1`, ErrExpectedClosingParen},
		{"stray close", `a=1)`, ErrUnexpectedToken},
		{"empty group", `()`, ErrUnexpectedToken},
		{"dangling boolean", `a=1 and`, ErrUnexpectedEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseQuery(t, tt.input)
			if res.AST != nil {
				t.Errorf("fatal parse must yield no AST, got %T", res.AST)
			}
			if len(res.Errors) == 0 {
				t.Fatalf("expected a diagnostic")
			}
			last := res.Errors[len(res.Errors)-1]
			if last.Code != tt.code {
				t.Errorf("expected code %s, got %s (%s)", tt.code, last.Code, last.Message)
			}
			if last.Pos == nil {
				t.Errorf("fatal diagnostics must carry a position")
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	res := parseQuery(t, `msg="oops`)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if res.Errors[0].Pos == nil || *res.Errors[0].Pos != 4 {
		t.Errorf("expected position 4 (the opening quote), got %v", res.Errors[0].Pos)
	}
}

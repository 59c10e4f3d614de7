package ql

import "strings"

// TokenType identifies the category of a lexical token.
type TokenType string

const (
	TokenKey      TokenType = "key"
	TokenOperator TokenType = "operator"
	TokenValue    TokenType = "value"
	TokenBool     TokenType = "bool"
	TokenParen    TokenType = "paren"
	TokenPipe     TokenType = "pipe"
)

// Token is a single lexical token produced by Tokenize.
// Pos is the rune offset of the token's first character in the input;
// it is carried through parsing so diagnostics can point back at the source.
type Token struct {
	Type   TokenType
	Value  string
	Pos    int
	Quoted bool

	// Incomplete marks a quoted value whose closing quote was missing.
	// The tokenizer never fails; rejection is deferred to the parser.
	Incomplete bool
}

// Operator is a comparison operator in a filter condition.
type Operator string

const (
	OpEquals      Operator = "="
	OpNotEquals   Operator = "!="
	OpContains    Operator = "~"
	OpNotContains Operator = "!~"
	OpGT          Operator = ">"
	OpLT          Operator = "<"
	OpGTE         Operator = ">="
	OpLTE         Operator = "<="
)

// BoolOperator combines filter conditions.
type BoolOperator string

const (
	BoolAnd BoolOperator = "AND"
	BoolOr  BoolOperator = "OR"
)

// ParseOperator converts operator text to an Operator.
// Returns ok=false for text outside the closed operator set.
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "=":
		return OpEquals, true
	case "!=":
		return OpNotEquals, true
	case "~":
		return OpContains, true
	case "!~":
		return OpNotContains, true
	case ">":
		return OpGT, true
	case "<":
		return OpLT, true
	case ">=":
		return OpGTE, true
	case "<=":
		return OpLTE, true
	default:
		return "", false
	}
}

// ParseBoolOperator converts boolean keyword text to a BoolOperator.
// The surface syntax is case-insensitive.
func ParseBoolOperator(s string) (BoolOperator, bool) {
	switch strings.ToLower(s) {
	case "and":
		return BoolAnd, true
	case "or":
		return BoolOr, true
	default:
		return "", false
	}
}

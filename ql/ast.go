package ql

// Node is the interface implemented by all filter AST node types.
// The set of implementations is closed: Expression, Logical, and Group.
type Node interface {
	nodeMarker()
}

// Expression is a leaf condition: key OPERATOR value.
type Expression struct {
	Key   FieldRef
	Op    Operator
	Value Value
}

func (*Expression) nodeMarker() {}

// Logical combines two or more children with a single boolean operator.
// Adjacent same-operator chains are always flattened into one n-ary node;
// a Logical never holds fewer than two children.
type Logical struct {
	Op       BoolOperator
	Children []Node
}

func (*Logical) nodeMarker() {}

// Group is an explicitly parenthesized sequence of sibling expressions,
// combined with an implicit AND. A Group with exactly one child is never
// constructed: the parser returns the child itself instead.
type Group struct {
	Children []Node
}

func (*Group) nodeMarker() {}

// Error codes reported in ParseError.Code.
const (
	ErrUnterminatedString     = "UNTERMINATED_STRING"
	ErrUnexpectedEnd          = "UNEXPECTED_END"
	ErrUnexpectedToken        = "UNEXPECTED_TOKEN"
	ErrExpectedOperator       = "EXPECTED_OPERATOR"
	ErrExpectedValue          = "EXPECTED_VALUE"
	ErrExpectedClosingParen   = "EXPECTED_CLOSING_PAREN"
	ErrUnknownOperator        = "UNKNOWN_OPERATOR"
	ErrUnknownBooleanOperator = "UNKNOWN_BOOLEAN_OPERATOR"
	ErrMissingBooleanOperator = "MISSING_BOOLEAN_OPERATOR"
	ErrGenerationFailed       = "GENERATION_FAILED"
)

// ParseError is a diagnostic produced while compiling a query.
// Pos, when present, is the rune offset of the offending token.
type ParseError struct {
	Code    string
	Message string
	Pos     *int
}

func (e *ParseError) Error() string { return e.Message }

func errorAt(code, message string, pos int) ParseError {
	return ParseError{Code: code, Message: message, Pos: &pos}
}

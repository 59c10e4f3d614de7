package ql

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueNull
)

// Value is the typed literal of a filter condition. It is a closed tagged
// union: exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// String returns a Value holding s.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Number returns a Value holding n.
func Number(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// Bool returns a Value holding b.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Null returns the null Value.
func Null() Value { return Value{Kind: ValueNull} }

// maxSafeInteger is the largest integer a float64 represents exactly.
// Integers beyond it stay strings so no precision is lost in generated SQL.
const maxSafeInteger = 1<<53 - 1

// Coerce maps literal text and its quoting flag to a typed Value.
// It never fails: any literal that matches no other rule falls back to a
// string. A quoted literal is always a string regardless of its shape.
func Coerce(text string, quoted bool) Value {
	if quoted {
		return String(text)
	}

	switch text {
	case "null", "NULL":
		return Null()
	case "true", "TRUE":
		return Bool(true)
	case "false", "FALSE":
		return Bool(false)
	}

	if isDecimalLiteral(text) {
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return Number(n)
		}
		return String(text)
	}

	if isIntegerLiteral(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n > maxSafeInteger || n < -maxSafeInteger {
			// Exact integer does not survive a float64 round trip.
			return String(text)
		}
		return Number(float64(n))
	}

	// A stray matching pair of quote characters is stripped.
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if first == last && (first == '"' || first == '\'') {
			return String(text[1 : len(text)-1])
		}
	}

	return String(text)
}

// isIntegerLiteral reports whether s is an optional minus sign followed by
// one or more digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimalLiteral reports whether s is an optional minus sign, digits,
// a dot, and digits.
func isDecimalLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	return isIntegerLiteral(s[:dot]) && isIntegerLiteral(s[dot+1:])
}

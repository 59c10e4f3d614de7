package ql

import (
	"strings"
	"unicode"
)

// operatorChars are the characters that can start or extend an operator.
var operatorChars = map[rune]bool{
	'=': true,
	'!': true,
	'~': true,
	'>': true,
	'<': true,
}

// isKeyChar reports whether r can be part of an unquoted key or value run.
func isKeyChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == ':' || r == '-'
}

// tokenBuilder accumulates a multi-character token during scanning.
type tokenBuilder struct {
	typ TokenType
	sb  strings.Builder
	pos int
}

func (tb *tokenBuilder) build() Token {
	return Token{Type: tb.typ, Value: tb.sb.String(), Pos: tb.pos}
}

// couldBeKey reports whether a quote at the current position starts a quoted
// key segment rather than a value literal. Quotes after an operator are
// always values.
func couldBeKey(tokens []Token, current *tokenBuilder) bool {
	if len(tokens) == 0 {
		return true
	}
	last := tokens[len(tokens)-1]
	if last.Type == TokenBool || last.Type == TokenParen || last.Type == TokenPipe {
		return true
	}
	return current == nil && last.Type != TokenOperator
}

// scanFieldRun consumes a key or unquoted value run starting at start,
// including dotted and quoted path segments. Quote characters are kept in
// the returned text; ParseFieldRef and the encoders deal with them later.
// The run ends at whitespace, an operator character, a parenthesis, or a
// pipe outside of a quoted segment.
func scanFieldRun(runes []rune, start int) (value string, end int, hasQuoted bool) {
	var sb strings.Builder
	var quote rune

	i := start
	for i < len(runes) {
		r := runes[i]
		if quote != 0 {
			sb.WriteRune(r)
			if r == quote {
				quote = 0
				hasQuoted = true
			}
			i++
			continue
		}
		switch {
		case r == '"' || r == '\'':
			quote = r
			sb.WriteRune(r)
			i++
		case isKeyChar(r):
			sb.WriteRune(r)
			i++
		case unicode.IsSpace(r) || operatorChars[r] || r == '(' || r == ')' || r == '|':
			return sb.String(), i, hasQuoted
		default:
			sb.WriteRune(r)
			i++
		}
	}
	return sb.String(), i, hasQuoted
}

// Tokenize converts a filter query string into its token sequence. It never
// fails: malformed input (an unterminated quote, stray characters) becomes a
// best-effort token and rejection is left to the parser or the generator.
func Tokenize(input string) []Token {
	runes := []rune(input)
	var tokens []Token
	var current *tokenBuilder

	push := func() {
		if current != nil {
			tokens = append(tokens, current.build())
			current = nil
		}
	}

	for i := 0; i < len(runes); i++ {
		char := runes[i]

		// Quoted value literal with backslash escapes.
		if (char == '"' || char == '\'') && !couldBeKey(tokens, current) {
			push()
			delim := char
			pos := i
			var sb strings.Builder
			escaped := false
			closed := false
			j := i + 1
			for ; j < len(runes); j++ {
				r := runes[j]
				if escaped {
					sb.WriteRune(r)
					escaped = false
					continue
				}
				if r == '\\' {
					escaped = true
					continue
				}
				if r == delim {
					closed = true
					break
				}
				sb.WriteRune(r)
			}
			if closed {
				tokens = append(tokens, Token{Type: TokenValue, Value: sb.String(), Pos: pos, Quoted: true})
				i = j
				continue
			}
			// Missing closing quote: keep what we saw, let the parser reject it.
			tokens = append(tokens, Token{Type: TokenValue, Value: sb.String(), Pos: pos, Incomplete: true})
			break
		}

		// Boolean keywords, matched as whole words only.
		if unicode.IsLetter(char) {
			wordEnd := i
			for wordEnd < len(runes) && unicode.IsLetter(runes[wordEnd]) {
				wordEnd++
			}
			word := string(runes[i:wordEnd])
			if _, ok := ParseBoolOperator(word); ok && wordBoundary(runes, i-1) && wordBoundary(runes, wordEnd) {
				push()
				tokens = append(tokens, Token{Type: TokenBool, Value: strings.ToLower(word), Pos: i})
				i = wordEnd - 1
				continue
			}
		}

		// Key and unquoted value runs, including dotted/quoted paths.
		if isKeyChar(char) || ((char == '"' || char == '\'') && couldBeKey(tokens, current)) {
			if current != nil && current.typ == TokenValue {
				current.sb.WriteRune(char)
				continue
			}
			push()
			value, end, hasQuoted := scanFieldRun(runes, i)
			tokens = append(tokens, Token{Type: TokenKey, Value: value, Pos: i, Quoted: hasQuoted})
			i = end - 1
			continue
		}

		if unicode.IsSpace(char) {
			push()
			continue
		}

		if char == '(' || char == ')' {
			push()
			tokens = append(tokens, Token{Type: TokenParen, Value: string(char), Pos: i})
			continue
		}

		// The first top-level pipe switches to projection-field tokenization.
		if char == '|' {
			push()
			tokens = append(tokens, Token{Type: TokenPipe, Value: "|", Pos: i})
			tokens = append(tokens, tokenizeProjection(runes, i+1)...)
			return tokens
		}

		// Operators, longest match first: !=, !~, >=, <= before the
		// single-character forms.
		if operatorChars[char] {
			push()
			op := string(char)
			pos := i
			if i+1 < len(runes) {
				next := runes[i+1]
				if next == '=' || (char == '!' && next == '~') {
					op += string(next)
					i++
				}
			}
			tokens = append(tokens, Token{Type: TokenOperator, Value: op, Pos: pos})
			continue
		}

		// Any other character joins the current value run.
		if current == nil {
			current = &tokenBuilder{typ: TokenValue, pos: i}
		}
		current.sb.WriteRune(char)
	}

	push()
	return tokens
}

// wordBoundary reports whether position i is a valid boundary for a boolean
// keyword: the edge of the input, whitespace, an operator character, a
// parenthesis, or a pipe.
func wordBoundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	r := runes[i]
	return unicode.IsSpace(r) || operatorChars[r] || r == '(' || r == ')' || r == '|'
}

// tokenizeProjection splits everything after the pipe into
// whitespace-separated field reference tokens.
func tokenizeProjection(runes []rune, start int) []Token {
	var tokens []Token

	i := start
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		pos := i
		var sb strings.Builder
		var quote rune
		hasQuoted := false
		for i < len(runes) {
			r := runes[i]
			if quote != 0 {
				sb.WriteRune(r)
				if r == quote {
					quote = 0
					hasQuoted = true
				}
				i++
				continue
			}
			if unicode.IsSpace(r) {
				break
			}
			if r == '"' || r == '\'' {
				quote = r
			}
			sb.WriteRune(r)
			i++
		}
		tokens = append(tokens, Token{Type: TokenKey, Value: sb.String(), Pos: pos, Quoted: hasQuoted})
	}
	return tokens
}

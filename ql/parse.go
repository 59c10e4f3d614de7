package ql

// ParseResult is the outcome of parsing a token sequence.
//
// AST is nil for empty input and after a fatal error. Diagnostics and the
// best-effort AST travel together so callers (an editor's live validation,
// for instance) can render both at once; nothing is ever thrown.
type ParseResult struct {
	AST        Node
	Projection []FieldRef
	Errors     []ParseError
}

// Parse builds a filter AST from the token sequence produced by Tokenize.
func Parse(tokens []Token) ParseResult {
	if len(tokens) == 0 {
		return ParseResult{}
	}

	// Everything after the first pipe is the projection field list.
	var projection []FieldRef
	filterTokens := tokens
	for i, t := range tokens {
		if t.Type == TokenPipe {
			filterTokens = tokens[:i]
			for _, ft := range tokens[i+1:] {
				projection = append(projection, ParseFieldRef(ft.Value))
			}
			break
		}
	}

	if len(filterTokens) == 0 {
		return ParseResult{Projection: projection}
	}

	p := &parser{tokens: filterTokens}
	ast := p.parseExpression(false)

	if ast != nil && !p.fatal && p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		p.fatalError(ErrUnexpectedToken, "Unexpected token: "+t.Value, t.Pos)
	}

	if p.fatal {
		return ParseResult{Projection: projection, Errors: p.errors}
	}
	return ParseResult{AST: ast, Projection: projection, Errors: p.errors}
}

type parser struct {
	tokens []Token
	pos    int
	errors []ParseError
	fatal  bool
}

func (p *parser) peek() *Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

// next consumes the current token. Running out of tokens is a fatal error
// positioned just past the last-seen token.
func (p *parser) next() *Token {
	if p.pos >= len(p.tokens) {
		p.fatalError(ErrUnexpectedEnd, "Unexpected end of query", p.endPos())
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) endPos() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Pos + len([]rune(last.Value))
}

func (p *parser) fatalError(code, message string, pos int) {
	p.fatal = true
	p.errors = append(p.errors, errorAt(code, message, pos))
}

// parseExpression parses primary (BOOLEAN primary)* with left-associative
// chaining. Same-operator chains flatten into one n-ary Logical node.
//
// When a key follows a completed expression without a boolean keyword, the
// parse does not abort: outside a group it records a diagnostic and carries
// on as if AND had been written; inside a group it stops so the group can
// collect the next expression as a sibling child.
func (p *parser) parseExpression(inGroup bool) Node {
	left := p.parsePrimary(inGroup)
	if left == nil {
		return nil
	}

	for {
		t := p.peek()
		if t == nil || (t.Type == TokenParen && t.Value == ")") {
			break
		}

		var op BoolOperator
		switch t.Type {
		case TokenBool:
			p.pos++
			b, ok := ParseBoolOperator(t.Value)
			if !ok {
				// Unreachable with the tokenizer's closed keyword set.
				p.fatalError(ErrUnknownBooleanOperator, "Unknown boolean operator: "+t.Value, t.Pos)
				return nil
			}
			op = b
		case TokenKey, TokenValue, TokenParen:
			if inGroup {
				return left
			}
			p.errors = append(p.errors, errorAt(ErrMissingBooleanOperator,
				"Missing boolean operator (and/or) before '"+t.Value+"'; assuming AND", t.Pos))
			op = BoolAnd
		default:
			p.fatalError(ErrUnexpectedToken, "Unexpected token: "+t.Value, t.Pos)
			return nil
		}

		right := p.parsePrimary(inGroup)
		if right == nil {
			return nil
		}

		if l, ok := left.(*Logical); ok && l.Op == op {
			l.Children = append(l.Children, right)
			continue
		}
		left = &Logical{Op: op, Children: []Node{left, right}}
	}

	return left
}

func (p *parser) parsePrimary(inGroup bool) Node {
	t := p.peek()
	if t == nil {
		p.fatalError(ErrUnexpectedEnd, "Unexpected end of query", p.endPos())
		return nil
	}

	if t.Type == TokenParen && t.Value == "(" {
		return p.parseGroup()
	}
	if t.Type == TokenKey || t.Type == TokenValue {
		return p.parseCondition()
	}

	p.fatalError(ErrUnexpectedToken, "Unexpected token: "+t.Value, t.Pos)
	return nil
}

// parseGroup parses '(' expression+ ')'. Sibling expressions inside the
// parens combine with an implicit AND. Parens around a single expression
// are transparent: the child replaces the group.
func (p *parser) parseGroup() Node {
	p.pos++ // consume '('

	var children []Node
	for {
		t := p.peek()
		if t == nil {
			p.fatalError(ErrExpectedClosingParen, "Expected closing parenthesis", p.endPos())
			return nil
		}
		if t.Type == TokenParen && t.Value == ")" {
			p.pos++
			if len(children) == 0 {
				p.fatalError(ErrUnexpectedToken, "Unexpected token: )", t.Pos)
				return nil
			}
			break
		}
		expr := p.parseExpression(true)
		if expr == nil {
			return nil
		}
		children = append(children, expr)
	}

	if len(children) == 1 {
		return children[0]
	}
	return &Group{Children: children}
}

// parseCondition parses a leaf: key OPERATOR value.
func (p *parser) parseCondition() Node {
	keyTok := p.next()
	if keyTok == nil {
		return nil
	}
	if keyTok.Incomplete {
		p.fatalError(ErrUnterminatedString, "Unterminated string literal; missing closing quote", keyTok.Pos)
		return nil
	}
	key := ParseFieldRef(keyTok.Value)

	opTok := p.next()
	if opTok == nil {
		return nil
	}
	if opTok.Type != TokenOperator {
		p.fatalError(ErrExpectedOperator, "Expected operator after field name, got: "+opTok.Value, opTok.Pos)
		return nil
	}
	op, ok := ParseOperator(opTok.Value)
	if !ok {
		// Compound runs like "==" slip through tokenization; reject here.
		p.fatalError(ErrUnknownOperator, "Unknown operator: "+opTok.Value, opTok.Pos)
		return nil
	}

	valTok := p.next()
	if valTok == nil {
		return nil
	}
	if valTok.Incomplete {
		p.fatalError(ErrUnterminatedString, "Unterminated string literal; missing closing quote", valTok.Pos)
		return nil
	}
	if valTok.Type != TokenValue && valTok.Type != TokenKey {
		p.fatalError(ErrExpectedValue, "Expected value after operator, got: "+valTok.Value, valTok.Pos)
		return nil
	}

	return &Expression{
		Key:   key,
		Op:    op,
		Value: Coerce(valTok.Value, valTok.Quoted),
	}
}

// Package parser builds syntax trees from tokens. ParseCSS reads plain
// CSS into the output tree; LessParser reads LESS into the LESS tree.
package parser

import (
	"io"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/lexer"
	"bennypowers.dev/lessc/internal/token"
)

// cssParser holds the productions shared by both dialects. It looks at
// one token at a time and aborts with a bailout panic on the first error.
type cssParser struct {
	tokenizer *lexer.Tokenizer

	// skippable decides which comments skipWhitespace may drop. The CSS
	// dialect drops all of them; LESS keeps block comments so they can
	// become statements.
	skippable func(token.Token) bool
}

func skipAllComments(token.Token) bool { return true }

func (p *cssParser) tok() token.Token {
	return p.tokenizer.Token()
}

func (p *cssParser) typ() token.Type {
	return p.tokenizer.Type()
}

func (p *cssParser) next() token.Type {
	typ, err := p.tokenizer.ReadNextToken()
	if err != nil {
		panic(bailout{err})
	}
	return typ
}

func (p *cssParser) fail(expected string) {
	panic(bailout{NewParseError(p.tok(), expected)})
}

func (p *cssParser) expect(typ token.Type, expected string) {
	if p.typ() != typ {
		p.fail(expected)
	}
}

// skipWhitespace drops whitespace and the comments the dialect allows
func (p *cssParser) skipWhitespace() {
	for {
		switch p.typ() {
		case token.Whitespace:
		case token.Comment:
			if !p.skippable(p.tok()) {
				return
			}
		default:
			return
		}
		p.next()
	}
}

// parseWhitespace consumes whitespace and comments inside a token span.
// Comments are dropped and the run becomes a single space.
func (p *cssParser) parseWhitespace(tokens *token.List) bool {
	if !p.tok().IsWhitespace() {
		return false
	}
	space := token.Space.At(p.tok().Location)
	seen := false
	for p.tok().IsWhitespace() {
		if p.typ() == token.Whitespace {
			seen = true
		}
		p.next()
	}
	if seen {
		*tokens = append(*tokens, space)
	}
	return true
}

// parseAny consumes one value-like token or a parenthesized or bracketed
// group, and the whitespace after it.
func (p *cssParser) parseAny(tokens *token.List) bool {
	switch p.typ() {
	case token.Identifier, token.Number, token.Percentage, token.Dimension,
		token.String, token.URL, token.Hash, token.Colon, token.Comma, token.Other:
		*tokens = append(*tokens, p.tok())
		p.next()

	case token.ParenOpen:
		p.parseGroup(tokens, token.ParenClose, "')'")

	case token.BracketOpen:
		p.parseGroup(tokens, token.BracketClose, "']'")

	default:
		return false
	}
	p.parseWhitespace(tokens)
	return true
}

func (p *cssParser) parseGroup(tokens *token.List, closer token.Type, expected string) {
	*tokens = append(*tokens, p.tok())
	p.next()
	p.parseWhitespace(tokens)
	for p.parseAny(tokens) || p.parseUnused(tokens) {
	}
	p.expect(closer, expected)
	*tokens = append(*tokens, p.tok())
	p.next()
}

// parseUnused consumes tokens that are only legal inside groups and blocks
func (p *cssParser) parseUnused(tokens *token.List) bool {
	switch p.typ() {
	case token.BraceOpen:
		return p.parseBlock(tokens)
	case token.AtKeyword, token.Delimiter:
		*tokens = append(*tokens, p.tok())
		p.next()
		p.parseWhitespace(tokens)
		return true
	}
	return false
}

// parseBlock consumes a balanced {...} block
func (p *cssParser) parseBlock(tokens *token.List) bool {
	if p.typ() != token.BraceOpen {
		return false
	}
	*tokens = append(*tokens, p.tok())
	p.next()
	p.parseWhitespace(tokens)
	for p.parseAny(tokens) || p.parseUnused(tokens) {
	}
	p.expect(token.BraceClose, "'}'")
	*tokens = append(*tokens, p.tok())
	p.next()
	p.parseWhitespace(tokens)
	return true
}

// parseValue consumes a declaration or variable value
func (p *cssParser) parseValue(tokens *token.List) bool {
	start := len(*tokens)
	for {
		switch {
		case p.parseAny(tokens), p.parseBlock(tokens):
		case p.typ() == token.AtKeyword:
			*tokens = append(*tokens, p.tok())
			p.next()
			p.parseWhitespace(tokens)
		default:
			return len(*tokens) > start
		}
	}
}

// parseProperty consumes a property name
func (p *cssParser) parseProperty(tokens *token.List) bool {
	if p.typ() != token.Identifier {
		return false
	}
	*tokens = append(*tokens, p.tok())
	p.next()
	return true
}

// ParseCSS reads a plain CSS stylesheet. Comments are dropped.
func ParseCSS(r io.Reader, source string) (ss *ast.Stylesheet, err error) {
	tz, err := lexer.New(r, source, lexer.ModeCSS)
	if err != nil {
		return nil, err
	}
	p := &cssParser{tokenizer: tz, skippable: skipAllComments}
	defer recoverError(&err)

	ss = &ast.Stylesheet{}
	p.next()
	p.skipWhitespace()
	ss.Statements = p.parseCSSStatements(false)
	return ss, nil
}

func (p *cssParser) parseCSSStatements(inBlock bool) []ast.Statement {
	var stmts []ast.Statement
	for {
		switch p.typ() {
		case token.EOF:
			if inBlock {
				p.fail("'}'")
			}
			return stmts
		case token.BraceClose:
			if inBlock {
				return stmts
			}
			p.fail("a statement")
		case token.Delimiter:
			p.next()
			p.skipWhitespace()
		case token.AtKeyword:
			stmts = append(stmts, p.parseCSSAtRule())
		default:
			stmts = append(stmts, p.parseCSSRuleset())
		}
	}
}

func (p *cssParser) parseCSSAtRule() ast.Statement {
	keyword := p.tok()
	p.next()
	p.skipWhitespace()

	var rule token.List
	for p.parseAny(&rule) {
	}
	if isConditionalGroup(keyword.Text) && p.typ() == token.BraceOpen {
		p.next()
		p.skipWhitespace()
		mq := &ast.MediaQuery{Selector: mediaSelector(keyword, rule)}
		mq.Statements = p.parseCSSStatements(true)
		p.next()
		p.skipWhitespace()
		return mq
	}
	if !p.parseBlock(&rule) {
		if p.typ() != token.Delimiter && p.typ() != token.EOF {
			p.fail("';' or a block")
		}
		p.next()
	}
	p.skipWhitespace()
	return &ast.AtRule{Keyword: keyword, Rule: rule.Trim()}
}

func (p *cssParser) parseCSSRuleset() ast.Statement {
	var selector token.List
	for p.parseAny(&selector) {
	}
	if len(selector) == 0 {
		p.fail("a selector")
	}
	p.expect(token.BraceOpen, "a declaration block ('{...}') following selector")
	p.next()
	p.skipWhitespace()

	rs := &ast.Ruleset{Selector: selector.Trim()}
	for {
		if p.typ() == token.Delimiter {
			p.next()
			p.skipWhitespace()
			continue
		}
		var property token.List
		if !p.parseProperty(&property) {
			break
		}
		p.skipWhitespace()
		p.expect(token.Colon, "':'")
		p.next()
		p.skipWhitespace()
		var value token.List
		if !p.parseValue(&value) {
			p.fail("a value")
		}
		rs.Statements = append(rs.Statements, &ast.Declaration{Property: property[0], Value: value.Trim()})
	}
	p.expect(token.BraceClose, "'}'")
	p.next()
	p.skipWhitespace()
	return rs
}

// isConditionalGroup reports whether an at-rule nests rulesets the way
// @media does
func isConditionalGroup(keyword string) bool {
	switch strings.ToLower(keyword) {
	case "@media", "@supports", "@container", "@document", "@-moz-document":
		return true
	}
	return false
}

// mediaSelector builds `@media <query>` from the keyword and query tokens
func mediaSelector(keyword token.Token, query token.List) token.List {
	sel := token.List{keyword}
	if q := query.Trim(); len(q) > 0 {
		sel = append(sel, token.Space.At(keyword.Location))
		sel = append(sel, q...)
	}
	return sel
}

package parser

import (
	"io"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/lexer"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/token"
)

// Options configures a LessParser
type Options struct {
	// Resolver opens imported files. Defaults to OSResolver.
	Resolver FileResolver
	// IncludePaths are searched when an import is not found next to the
	// importing file.
	IncludePaths []string
	// Sources is shared with every parser created for imports. A new list
	// is created when nil.
	Sources *Sources
}

// sheet is a container statements can be added to
type sheet interface {
	ast.Container
	Add(ast.Statement)
	PutVariable(string, token.List)
}

// LessParser builds a LESS tree from a token stream
type LessParser struct {
	cssParser
	opts      Options
	reference bool
	// root receives the statements of imported files
	root *ast.LessStylesheet
}

// NewLessParser creates a parser reading from t
func NewLessParser(t *lexer.Tokenizer, opts Options) *LessParser {
	if opts.Resolver == nil {
		opts.Resolver = OSResolver{}
	}
	if opts.Sources == nil {
		opts.Sources = NewSources()
	}
	p := &LessParser{opts: opts}
	p.tokenizer = t
	p.skippable = func(t token.Token) bool { return t.IsLineComment() }
	return p
}

// Sources returns the shared list of parsed files
func (p *LessParser) Sources() *Sources {
	return p.opts.Sources
}

// Parse reads the whole input into ss
func (p *LessParser) Parse(ss *ast.LessStylesheet) (err error) {
	defer recoverError(&err)
	p.root = ss
	p.parseStylesheet(ss)
	return nil
}

// Parse reads LESS source from r into a new stylesheet
func Parse(r io.Reader, source string, opts Options) (*ast.LessStylesheet, error) {
	tz, err := lexer.New(r, source, lexer.ModeLess)
	if err != nil {
		return nil, err
	}
	p := NewLessParser(tz, opts)
	p.opts.Sources.Add(source)
	ss := ast.NewLessStylesheet()
	if err := p.Parse(ss); err != nil {
		return nil, err
	}
	return ss, nil
}

func (p *LessParser) parseStylesheet(target sheet) {
	log.Debug("Parsing %s", p.tokenizer.Source())
	p.next()
	p.skipWhitespace()
	p.parseStatements(target, false)
	log.Debug("Finished parsing %s", p.tokenizer.Source())
}

// parseStatements reads top-level statements until end of input or,
// inside a media block, until the closing brace.
func (p *LessParser) parseStatements(target sheet, inBlock bool) {
	for {
		switch p.typ() {
		case token.EOF:
			if inBlock {
				p.fail("'}'")
			}
			return
		case token.BraceClose:
			if inBlock {
				return
			}
			p.fail("a statement")
		case token.Comment:
			p.parseComment(target)
		case token.Delimiter:
			p.next()
			p.skipWhitespace()
		case token.AtKeyword:
			p.parseAtRuleOrVariable(target)
		default:
			if !p.parseStatement(target) {
				p.fail("a statement")
			}
		}
	}
}

func (p *LessParser) parseComment(target sheet) {
	if !p.reference {
		target.Add(&ast.Comment{Token: p.tok()})
	}
	p.next()
	p.skipWhitespace()
}

// parseStatement reads a ruleset or, failing that, a mixin call
func (p *LessParser) parseStatement(target sheet) bool {
	var selector token.List
	if !p.parseSelector(&selector) {
		return false
	}
	if p.parseRuleset(target, selector) {
		return true
	}
	if p.parseMixin(target, selector) {
		return true
	}
	panic(bailout{NewParseError(selector.Front(), "a declaration block ('{...}') following selector")})
}

// parseMixin reads a mixin call at the top level
func (p *LessParser) parseMixin(target sheet, selector token.List) bool {
	if p.typ() != token.Delimiter && p.typ() != token.EOF && p.typ() != token.BraceClose {
		return false
	}
	m, ok := ast.ParseMixinCall(selector)
	if !ok {
		return false
	}
	if p.typ() == token.Delimiter {
		p.next()
		p.skipWhitespace()
	}
	m.Reference = p.reference
	log.Debug("Mixin call %s", selector)
	target.Add(m)
	return true
}

// parseAtRuleOrVariable reads a variable, @media, @import or any other
// at-rule
func (p *LessParser) parseAtRuleOrVariable(target sheet) {
	keyword := p.tok()
	p.next()
	p.skipWhitespace()

	if p.parseVariable(target, keyword) {
		return
	}

	switch name := strings.ToLower(keyword.Text); {
	case name == "@import":
		p.parseImport(target, keyword)
	case isConditionalGroup(name):
		p.parseLessMediaQuery(target, keyword)
	default:
		var rule token.List
		for p.parseAny(&rule) || p.parseAtKeyword(&rule) {
		}
		if !p.parseBlock(&rule) {
			switch p.typ() {
			case token.Delimiter:
				p.next()
			case token.EOF, token.BraceClose:
			default:
				p.fail("';' or a block")
			}
		}
		p.skipWhitespace()
		log.Debug("At-rule %s %s", keyword.Text, rule)
		target.Add(&ast.LessAtRule{Keyword: keyword, Rule: rule.Trim(), Reference: p.reference})
	}
}

func (p *LessParser) parseAtKeyword(tokens *token.List) bool {
	if p.typ() != token.AtKeyword {
		return false
	}
	*tokens = append(*tokens, p.tok())
	p.next()
	p.parseWhitespace(tokens)
	return true
}

// parseVariable reads `: value;` after a variable's keyword
func (p *LessParser) parseVariable(target sheet, keyword token.Token) bool {
	if p.typ() != token.Colon {
		return false
	}
	p.next()
	p.skipWhitespace()

	var value token.List
	if !p.parseValue(&value) {
		p.fail("value for variable")
	}
	switch p.typ() {
	case token.Delimiter:
		p.next()
		p.skipWhitespace()
	case token.BraceClose, token.EOF:
	default:
		p.fail("delimiter (';') at end of variable declaration")
	}
	log.Debug("Variable %s: %s", keyword.Text, value)
	target.PutVariable(keyword.Text, value.Trim())
	return true
}

// parseSelector reads selector tokens up to a block, a delimiter or the
// end of input
func (p *LessParser) parseSelector(selector *token.List) bool {
	if !p.parseAny(selector) && !p.parseSelectorVariable(selector) {
		return false
	}
	for p.parseAny(selector) || p.parseSelectorVariable(selector) {
	}
	*selector = selector.RTrim()
	return true
}

// parseSelectorVariable reads the `{name}` half of an `@{name}`
// interpolation, whose `@` is already on the selector
func (p *LessParser) parseSelectorVariable(selector *token.List) bool {
	if p.typ() != token.BraceOpen || !selector.Back().IsOther("@") {
		return false
	}
	*selector = append(*selector, p.tok())
	p.next()
	p.expect(token.Identifier, "identifier in selector variable")
	*selector = append(*selector, p.tok())
	p.next()
	p.expect(token.BraceClose, "closing brace")
	*selector = append(*selector, p.tok())
	p.next()
	p.parseWhitespace(selector)
	return true
}

// parseRuleset reads `{ statements }` for selector and adds the ruleset
// to parent
func (p *LessParser) parseRuleset(parent sheet, selector token.List) bool {
	if p.typ() != token.BraceOpen {
		return false
	}
	p.next()
	p.skipWhitespace()

	rs := ast.NewLessRuleset(selector, parent)
	rs.Reference = p.reference
	log.Debug("Ruleset %s", rs.Selector)
	p.parseRulesetStatements(rs)

	p.expect(token.BraceClose, "end of declaration block ('}')")
	p.next()
	p.skipWhitespace()
	parent.Add(rs)
	return true
}

// parseRulesetStatements reads the body of a ruleset. A statement that
// turns out to be followed by a block is the selector of a nested
// ruleset.
func (p *LessParser) parseRulesetStatements(rs sheet) {
	for {
		switch p.typ() {
		case token.Comment:
			p.parseComment(rs)
		case token.Delimiter:
			p.next()
			p.skipWhitespace()
		case token.AtKeyword:
			keyword := p.tok()
			p.next()
			p.skipWhitespace()
			if p.parseVariable(rs, keyword) {
				continue
			}
			if isConditionalGroup(keyword.Text) {
				p.parseMediaQueryRuleset(rs, keyword)
				continue
			}
			panic(bailout{NewParseError(keyword, "Variable declaration after keyword.")})
		default:
			stmt := p.parseRulesetStatement()
			if stmt == nil {
				return
			}
			if p.typ() == token.BraceOpen {
				p.parseRuleset(rs, stmt.Tokens)
				continue
			}
			rs.Add(stmt)
		}
	}
}

// parseMediaQueryRuleset reads a conditional group nested in a ruleset
func (p *LessParser) parseMediaQueryRuleset(parent sheet, keyword token.Token) {
	query := p.parseMediaQuery(keyword)
	p.expect(token.BraceOpen, "'{'")
	p.next()
	p.skipWhitespace()

	mq := ast.NewMediaQueryRuleset(query, parent)
	mq.Reference = p.reference
	log.Debug("Nested media query %s", query)
	p.parseRulesetStatements(mq)

	p.expect(token.BraceClose, "end of media query block ('}')")
	p.next()
	p.skipWhitespace()
	parent.Add(mq)
}

// parseLessMediaQuery reads a top-level conditional group
func (p *LessParser) parseLessMediaQuery(parent sheet, keyword token.Token) {
	query := p.parseMediaQuery(keyword)
	p.expect(token.BraceOpen, "'{'")
	p.next()
	p.skipWhitespace()

	mq := ast.NewLessMediaQuery(query, parent)
	mq.Reference = p.reference
	log.Debug("Media query %s", query)
	p.parseStatements(mq, true)

	p.next()
	p.skipWhitespace()
	parent.Add(mq)
}

// parseMediaQuery reads the query after @media. Variables such as
// `@media @phone` are kept for the processor.
func (p *LessParser) parseMediaQuery(keyword token.Token) token.List {
	var query token.List
	for p.parseAny(&query) || p.parseAtKeyword(&query) {
	}
	return mediaSelector(keyword, query)
}

// parseProperty reads a property name, which may contain @{name}
// interpolations
func (p *LessParser) parseProperty(tokens *token.List) bool {
	start := len(*tokens)
	for {
		switch {
		case p.cssParser.parseProperty(tokens):
		case p.tok().IsOther("@"):
			*tokens = append(*tokens, p.tok())
			p.next()
			if !p.parseSelectorVariable(tokens) {
				p.fail("'{' after '@'")
			}
		default:
			return len(*tokens) > start
		}
	}
}

// parseRulesetStatement captures a statement without deciding whether
// it is a declaration, a mixin call or a nested selector. It returns nil
// when nothing could be read.
func (p *LessParser) parseRulesetStatement() *ast.UnprocessedStatement {
	var tokens token.List
	p.parseProperty(&tokens)
	propertyIndex := len(tokens)
	p.parseWhitespace(&tokens)
	p.parseSelector(&tokens)
	tokens = tokens.RTrim()
	if len(tokens) == 0 {
		return nil
	}
	if propertyIndex > len(tokens) {
		propertyIndex = len(tokens)
	}

	stmt := &ast.UnprocessedStatement{Tokens: tokens, PropertyIndex: propertyIndex}
	if p.typ() == token.BraceOpen {
		return stmt
	}

	p.parseValue(&stmt.Tokens)
	stmt.Tokens = stmt.Tokens.RTrim()
	if p.typ() == token.Delimiter {
		p.next()
	}
	p.skipWhitespace()
	return stmt
}

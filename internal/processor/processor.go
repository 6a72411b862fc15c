// Package processor turns a LESS tree into plain CSS: it resolves
// variables, expands mixins, evaluates expressions and flattens nested
// rules.
package processor

import (
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/collections"
	"bennypowers.dev/lessc/internal/lexer"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/token"
	"bennypowers.dev/lessc/internal/value"
)

// MathMode decides when `/` divides
type MathMode int

const (
	// MathParensDivision divides only inside parentheses, so `16px/1.5`
	// stays a font shorthand
	MathParensDivision MathMode = iota
	// MathAlways divides wherever `/` appears between operands
	MathAlways
)

// ParseMathMode maps "parens-division" or "always" to a MathMode
func ParseMathMode(s string) (MathMode, bool) {
	switch strings.ToLower(s) {
	case "", "parens-division", "parens":
		return MathParensDivision, true
	case "always":
		return MathAlways, true
	}
	return MathParensDivision, false
}

func (m MathMode) String() string {
	if m == MathAlways {
		return "always"
	}
	return "parens-division"
}

// Options configures a Processor
type Options struct {
	Units value.UnitPolicy
	Math  MathMode
	// StripComments drops block comments instead of copying them
	StripComments bool
	// Globals are visible everywhere and overridden by the stylesheet
	Globals ast.VariableMap
	// ModifyVars override the stylesheet's root variables
	ModifyVars ast.VariableMap
}

// Processor evaluates one stylesheet. It is not safe for concurrent use;
// create one per compilation.
type Processor struct {
	opts Options
	// expanding holds the mixins currently being expanded
	expanding collections.Set[*ast.LessRuleset]
}

// New creates a processor
func New(opts Options) *Processor {
	return &Processor{opts: opts, expanding: collections.NewSet[*ast.LessRuleset]()}
}

// context is the position of a statement in the output
type context struct {
	scope *scope
	// selector is the qualified selector of the enclosing ruleset, nil
	// at the top level
	selector []token.List
	// media is the enclosing conditional group, nil outside one
	media token.List
	// hoist receives conditional groups joined with the enclosing one
	hoist *[]ast.Statement
	// important marks declarations produced by `.m() !important`
	important bool
	// expanding is set inside a mixin body, where reference rulesets
	// produce output
	expanding bool
}

func (c *context) with(fn func(*context)) *context {
	n := *c
	fn(&n)
	return &n
}

// block collects the output of one ruleset body: its declarations and
// the statements that follow it
type block struct {
	decls []ast.Statement
	after []ast.Statement
}

func hasDeclarations(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if _, ok := s.(*ast.Declaration); ok {
			return true
		}
	}
	return false
}

// Process evaluates ss and returns the flattened CSS tree
func (p *Processor) Process(ss *ast.LessStylesheet) (*ast.Stylesheet, error) {
	globals := newScope(p.opts.Globals, nil, nil)
	rootVars := ast.VariableMap{}
	for k, v := range ss.Variables {
		rootVars[k] = v
	}
	for k, v := range p.opts.ModifyVars {
		rootVars[k] = v
	}
	root := newScope(rootVars, ss, globals)

	var hoisted []ast.Statement
	ctx := &context{scope: root, hoist: &hoisted}
	b := &block{}
	if err := p.statements(ss.Statements, ctx, b); err != nil {
		return nil, err
	}
	if len(b.decls) > 0 {
		log.Warn("%s: declarations outside of a ruleset are ignored", b.decls[0].Pos())
	}

	out := &ast.Stylesheet{}
	out.Add(b.after...)
	out.Add(hoisted...)
	return out, nil
}

func (p *Processor) statements(stmts []ast.Statement, ctx *context, b *block) error {
	for _, stmt := range stmts {
		if err := p.statement(stmt, ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) statement(stmt ast.Statement, ctx *context, b *block) error {
	switch s := stmt.(type) {
	case *ast.Comment:
		if p.opts.StripComments {
			return nil
		}
		if ctx.selector != nil {
			b.decls = append(b.decls, s)
		} else {
			b.after = append(b.after, s)
		}
	case *ast.Raw:
		b.after = append(b.after, s)
	case *ast.UnprocessedStatement:
		return p.unprocessed(s, ctx, b)
	case *ast.Mixin:
		if s.Reference && !ctx.expanding {
			return nil
		}
		return p.expand(s, ctx, b)
	case *ast.MediaQueryRuleset:
		if s.Reference && !ctx.expanding {
			return nil
		}
		return p.media(s.Selector, &s.LessRuleset, ctx, b)
	case *ast.LessRuleset:
		return p.ruleset(s, ctx, b)
	case *ast.LessMediaQuery:
		if s.Reference && !ctx.expanding {
			return nil
		}
		return p.media(s.Selector, s, ctx, b)
	case *ast.LessAtRule:
		if s.Reference && !ctx.expanding {
			return nil
		}
		return p.atRule(s, ctx, b)
	default:
		log.Debug("%s: skipping %T", stmt.Pos(), stmt)
	}
	return nil
}

// unprocessed resolves a ruleset statement into a declaration or a
// mixin call
func (p *Processor) unprocessed(s *ast.UnprocessedStatement, ctx *context, b *block) error {
	if s.IsDeclaration() {
		d, err := p.declaration(s, ctx)
		if err != nil || d == nil {
			return err
		}
		b.decls = append(b.decls, d)
		return nil
	}
	m, ok := ast.ParseMixinCall(s.Tokens)
	if !ok {
		return NewError(s.Pos(), ErrStatement, "expected a declaration or a mixin call, found %q", s.Tokens.String())
	}
	return p.expand(m, ctx, b)
}

// declaration evaluates a property and its value. It returns nil when
// the value evaluates to nothing, as an empty @rest... argument does.
func (p *Processor) declaration(s *ast.UnprocessedStatement, ctx *context) (*ast.Declaration, error) {
	e := &evaluator{p: p, scope: ctx.scope}
	prop, err := e.interpolate(s.Property())
	if err != nil {
		return nil, err
	}
	property := prop[0]
	if len(prop) > 1 {
		property = token.New(token.Identifier, prop.String(), prop.Location())
	}

	r, err := e.eval(s.Value())
	if err != nil {
		return nil, err
	}
	val := r.Tokens
	if len(val.Trim()) == 0 && len(s.Value().Trim()) > 0 {
		log.Debug("%s: dropping %s, its value is empty", s.Pos(), property.Text)
		return nil, nil
	}
	if ctx.important && !isImportant(val) {
		loc := val.Location()
		val = append(val.Clone(), token.Space.At(loc), token.New(token.Other, "!", loc), token.New(token.Identifier, "important", loc))
	}
	return &ast.Declaration{Property: property, Value: val}, nil
}

func isImportant(val token.List) bool {
	val = val.RTrim()
	n := len(val)
	return n >= 2 && val[n-1].Is(token.Identifier, "important") && val[n-2].IsOther("!")
}

// ruleset emits a ruleset and, after it, its nested rules
func (p *Processor) ruleset(rs *ast.LessRuleset, ctx *context, b *block) error {
	if rs.Parametric || (rs.Reference && !ctx.expanding) {
		return nil
	}
	sc := ctx.scope.child(rs)
	sel, err := (&evaluator{p: p, scope: sc}).interpolate(rs.Selector)
	if err != nil {
		return err
	}
	groups := combine(ctx.selector, selectorGroups(sel))
	log.Debug("Processing ruleset %s", joinSelector(groups))

	child := &block{}
	if err := p.statements(rs.Statements, ctx.with(func(c *context) {
		c.scope = sc
		c.selector = groups
	}), child); err != nil {
		return err
	}
	if hasDeclarations(child.decls) {
		b.after = append(b.after, &ast.Ruleset{Selector: joinSelector(groups), Statements: child.decls})
	}
	b.after = append(b.after, child.after...)
	return nil
}

// media emits a conditional group. Inside a ruleset its declarations
// apply to the ruleset's selector; inside another group of the same kind
// the conditions are joined.
func (p *Processor) media(selector token.List, c ast.Container, ctx *context, b *block) error {
	sc := ctx.scope.child(c)
	e := &evaluator{p: p, scope: sc}
	cond, err := e.substitute(selector[1:], false)
	if err != nil {
		return err
	}
	query := append(token.List{selector[0]}, cond...)

	target := &b.after
	if ctx.media != nil {
		if joined, ok := joinQueries(ctx.media, query); ok {
			query = joined
			target = ctx.hoist
		}
	}
	log.Debug("Processing media query %s", query)

	var hoisted []ast.Statement
	mb := &block{}
	if err := p.statements(c.Body(), ctx.with(func(n *context) {
		n.scope = sc
		n.media = query
		n.hoist = &hoisted
	}), mb); err != nil {
		return err
	}

	var stmts []ast.Statement
	if ctx.selector != nil && hasDeclarations(mb.decls) {
		stmts = append(stmts, &ast.Ruleset{Selector: joinSelector(ctx.selector), Statements: mb.decls})
	}
	stmts = append(stmts, mb.after...)
	if len(stmts) > 0 {
		*target = append(*target, &ast.MediaQuery{Selector: query, Statements: stmts})
	}
	*target = append(*target, hoisted...)
	return nil
}

// atRule copies an at-rule with its variables replaced
func (p *Processor) atRule(a *ast.LessAtRule, ctx *context, b *block) error {
	rule, err := (&evaluator{p: p, scope: ctx.scope}).substitute(a.Rule, true)
	if err != nil {
		return err
	}
	b.after = append(b.after, &ast.AtRule{Keyword: a.Keyword, Rule: rule})
	return nil
}

// Variables lexes name/value pairs into a variable map. Names get a
// leading @ when they lack one.
func Variables(vars map[string]string, source string) (ast.VariableMap, error) {
	out := ast.VariableMap{}
	for name, src := range vars {
		tz := lexer.NewString(src, source, lexer.ModeLess)
		var tokens token.List
		for {
			typ, err := tz.ReadNextToken()
			if err != nil {
				return nil, err
			}
			if typ == token.EOF {
				break
			}
			if typ == token.Comment {
				continue
			}
			tokens = append(tokens, tz.Token())
		}
		if !strings.HasPrefix(name, "@") {
			name = "@" + name
		}
		out[name] = tokens.CollapseWhitespace()
	}
	return out, nil
}

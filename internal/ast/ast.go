// Package ast holds the syntax trees produced by the parser and consumed
// by the processor and the writer.
//
// There are two trees. The LESS tree (LessStylesheet, LessRuleset,
// UnprocessedStatement, Mixin, ...) is what the parser builds; the plain
// CSS tree (Stylesheet, Ruleset, Declaration, ...) is what the processor
// emits. Every container owns its statements in source order.
package ast

import (
	"bennypowers.dev/lessc/internal/token"
)

// Statement is any node that can appear in a statement list
type Statement interface {
	Pos() token.Location
}

// Stylesheet is the root of the plain CSS tree
type Stylesheet struct {
	Statements []Statement
}

// Add appends statements in order
func (s *Stylesheet) Add(stmts ...Statement) {
	s.Statements = append(s.Statements, stmts...)
}

// Ruleset is a selector with declarations and comments
type Ruleset struct {
	Selector   token.List
	Statements []Statement
}

func (r *Ruleset) Pos() token.Location { return r.Selector.Location() }

// Declarations returns the declarations, skipping comments
func (r *Ruleset) Declarations() []*Declaration {
	var out []*Declaration
	for _, s := range r.Statements {
		if d, ok := s.(*Declaration); ok {
			out = append(out, d)
		}
	}
	return out
}

// Declaration is `property:value`
type Declaration struct {
	Property token.Token
	Value    token.List
}

func (d *Declaration) Pos() token.Location { return d.Property.Location }

// AtRule is `@keyword rule;` or `@keyword rule{...}` kept as raw tokens
type AtRule struct {
	Keyword token.Token
	Rule    token.List
}

func (a *AtRule) Pos() token.Location { return a.Keyword.Location }

// HasBlock reports whether the rule ends in a {...} block
func (a *AtRule) HasBlock() bool {
	return a.Rule.Trim().Back().Type == token.BraceClose
}

// MediaQuery is a conditional group at-rule containing rulesets
type MediaQuery struct {
	Selector   token.List
	Statements []Statement
}

func (m *MediaQuery) Pos() token.Location { return m.Selector.Location() }

// Comment is a block comment kept between statements
type Comment struct {
	token.Token
}

func (c *Comment) Pos() token.Location { return c.Location }

// Raw is text copied to the output unchanged, such as an inline import
type Raw struct {
	Text string
	token.Location
}

func (r *Raw) Pos() token.Location { return r.Location }

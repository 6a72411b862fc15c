package ast

import (
	"bennypowers.dev/lessc/internal/token"
)

// VariableMap binds variable names, including the leading @, to their
// unevaluated values. Later bindings replace earlier ones.
type VariableMap map[string]token.List

// Container is a node that owns statements and a variable scope. Up
// returns the lexically enclosing container, or nil at the root.
type Container interface {
	Statement
	Body() []Statement
	Vars() VariableMap
	Up() Container
}

// LessStylesheet is the root of the LESS tree
type LessStylesheet struct {
	Statements []Statement
	Variables  VariableMap
}

// NewLessStylesheet returns an empty stylesheet
func NewLessStylesheet() *LessStylesheet {
	return &LessStylesheet{Variables: VariableMap{}}
}

func (s *LessStylesheet) Pos() token.Location {
	if len(s.Statements) == 0 {
		return token.Location{}
	}
	return s.Statements[0].Pos()
}

func (s *LessStylesheet) Body() []Statement { return s.Statements }
func (s *LessStylesheet) Vars() VariableMap { return s.Variables }
func (s *LessStylesheet) Up() Container     { return nil }

// Add appends a statement
func (s *LessStylesheet) Add(stmt Statement) {
	s.Statements = append(s.Statements, stmt)
}

// PutVariable binds name to value in this scope
func (s *LessStylesheet) PutVariable(name string, value token.List) {
	if s.Variables == nil {
		s.Variables = VariableMap{}
	}
	s.Variables[name] = value
}

// LessRuleset is a ruleset that may nest rules, bind variables and act as
// a mixin. When its selector is a signature such as `.m(@a; @b: 1)` it is
// Parametric and only ever used through calls.
type LessRuleset struct {
	Selector   token.List
	Statements []Statement
	Variables  VariableMap
	Parent     Container

	// Name is the selector without the parameter list
	Name       token.List
	Params     []Param
	Parametric bool
	Variadic   bool

	// Reference rulesets come from `@import (reference)` and are never
	// written out.
	Reference bool
}

// NewLessRuleset creates a ruleset inside parent
func NewLessRuleset(selector token.List, parent Container) *LessRuleset {
	r := &LessRuleset{Variables: VariableMap{}, Parent: parent}
	r.SetSelector(selector)
	return r
}

func (r *LessRuleset) Pos() token.Location { return r.Selector.Location() }
func (r *LessRuleset) Body() []Statement   { return r.Statements }
func (r *LessRuleset) Vars() VariableMap   { return r.Variables }
func (r *LessRuleset) Up() Container       { return r.Parent }

// Add appends a statement
func (r *LessRuleset) Add(stmt Statement) {
	r.Statements = append(r.Statements, stmt)
}

// PutVariable binds name to value in this scope
func (r *LessRuleset) PutVariable(name string, value token.List) {
	if r.Variables == nil {
		r.Variables = VariableMap{}
	}
	r.Variables[name] = value
}

// SetSelector stores the selector and, when it is a mixin signature,
// its parameters.
func (r *LessRuleset) SetSelector(selector token.List) {
	r.Selector = selector.Trim()
	r.Name = r.Selector
	r.Params = nil
	r.Parametric = false
	r.Variadic = false

	name, args, ok := splitCall(r.Selector)
	if !ok || !isSimpleMixinName(name) {
		return
	}
	r.Name = name
	r.Parametric = true
	r.Params, r.Variadic = parseParams(args)
}

// UnprocessedStatement is a token span inside a ruleset body that may be
// a declaration, a mixin call or, when followed by a block, a nested
// selector. Tokens[:PropertyIndex] is the property-like prefix.
type UnprocessedStatement struct {
	Tokens        token.List
	PropertyIndex int
}

func (u *UnprocessedStatement) Pos() token.Location { return u.Tokens.Location() }

// Property returns the property-like prefix
func (u *UnprocessedStatement) Property() token.List {
	return u.Tokens[:u.PropertyIndex]
}

// IsDeclaration reports whether the statement reads `property: value`
func (u *UnprocessedStatement) IsDeclaration() bool {
	if u.PropertyIndex == 0 {
		return false
	}
	return u.Tokens[u.PropertyIndex:].LTrim().Front().Type == token.Colon
}

// Value returns the tokens after the property's colon, trimmed
func (u *UnprocessedStatement) Value() token.List {
	rest := u.Tokens[u.PropertyIndex:].LTrim()
	if rest.Front().Type == token.Colon {
		rest = rest[1:]
	}
	return rest.Trim()
}

// LessAtRule is an at-rule other than a variable, @media or @import
type LessAtRule struct {
	Keyword   token.Token
	Rule      token.List
	Reference bool
}

func (a *LessAtRule) Pos() token.Location { return a.Keyword.Location }

// LessMediaQuery is a top-level conditional group such as @media. Its
// body is a stylesheet with its own variable scope.
type LessMediaQuery struct {
	Selector token.List
	LessStylesheet
	Parent    Container
	Reference bool
}

// NewLessMediaQuery creates a media query inside parent
func NewLessMediaQuery(selector token.List, parent Container) *LessMediaQuery {
	return &LessMediaQuery{
		Selector:       selector,
		LessStylesheet: LessStylesheet{Variables: VariableMap{}},
		Parent:         parent,
	}
}

func (m *LessMediaQuery) Pos() token.Location { return m.Selector.Location() }
func (m *LessMediaQuery) Up() Container       { return m.Parent }

// MediaQueryRuleset is a conditional group nested in a ruleset. Its
// declarations apply to the enclosing selector.
type MediaQueryRuleset struct {
	LessRuleset
}

// NewMediaQueryRuleset creates a nested media query inside parent
func NewMediaQueryRuleset(selector token.List, parent Container) *MediaQueryRuleset {
	return &MediaQueryRuleset{LessRuleset: LessRuleset{
		Selector:  selector,
		Name:      selector,
		Variables: VariableMap{},
		Parent:    parent,
	}}
}

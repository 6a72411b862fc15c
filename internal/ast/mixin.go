package ast

import (
	"strings"

	"bennypowers.dev/lessc/internal/token"
)

// Param is one entry of a mixin signature
type Param struct {
	// Name includes the leading @. It is empty for a pattern parameter.
	Name string
	// Default is the value used when the call leaves the parameter out
	Default token.List
	// Pattern is a literal the argument must equal, as in `.m(dark; @c)`
	Pattern token.List
	// Rest collects the remaining arguments, as in `@rest...`
	Rest bool
}

// Required reports whether a call must supply the parameter
func (p Param) Required() bool {
	return !p.Rest && p.Default == nil
}

// NamedArg is an `@name: value` argument
type NamedArg struct {
	Name  string
	Value token.List
}

// Mixin is a call such as `.m(1px; red) !important` or `#ns > .m;`
type Mixin struct {
	Name      token.List
	Path      []string
	Arguments []token.List
	Named     []NamedArg
	Important bool
	// Reference calls come from reference imports and produce no output
	Reference bool
}

func (m *Mixin) Pos() token.Location { return m.Name.Location() }

// Key is the normalized call path, e.g. "#ns.m"
func (m *Mixin) Key() string {
	return strings.Join(m.Path, "")
}

// ParseMixinCall interprets tokens as a mixin call. It reports false when
// the tokens are not a call.
func ParseMixinCall(tokens token.List) (*Mixin, bool) {
	tokens = tokens.Trim()
	m := &Mixin{}

	if n := len(tokens); n >= 2 && tokens[n-1].Is(token.Identifier, "important") {
		rest := tokens[:n-1].RTrim()
		if rest.Back().IsOther("!") {
			m.Important = true
			tokens = rest[:len(rest)-1].RTrim()
		}
	}

	if tokens.IndexType(token.ParenOpen) < 0 {
		m.Name = tokens
	} else {
		name, args, ok := splitCall(tokens)
		if !ok {
			return nil, false
		}
		m.Name = name
		for _, arg := range splitArgs(args) {
			if named, ok := namedArg(arg); ok {
				m.Named = append(m.Named, named)
				continue
			}
			m.Arguments = append(m.Arguments, arg)
		}
	}

	m.Path = MixinPath(m.Name)
	if m.Path == nil {
		return nil, false
	}
	return m, true
}

// MixinPath splits a selector such as `#ns > .m` into its class and id
// segments. It returns nil when the selector is not a plain mixin path.
func MixinPath(tokens token.List) []string {
	var path []string
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.IsWhitespace() || t.IsOther(">"):
		case t.Type == token.Hash:
			path = append(path, t.Text)
		case t.IsOther(".") && i+1 < len(tokens) && tokens[i+1].Type == token.Identifier:
			path = append(path, "."+tokens[i+1].Text)
			i++
		default:
			return nil
		}
	}
	return path
}

func isSimpleMixinName(tokens token.List) bool {
	return len(MixinPath(tokens)) == 1
}

// splitCall splits `name(args)` where the closing paren ends the list
func splitCall(tokens token.List) (name, args token.List, ok bool) {
	open := tokens.IndexType(token.ParenOpen)
	if open <= 0 {
		return nil, nil, false
	}
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			depth--
			if depth == 0 {
				if len(tokens[i+1:].Trim()) != 0 {
					return nil, nil, false
				}
				return tokens[:open].Trim(), tokens[open+1 : i], true
			}
		}
	}
	return nil, nil, false
}

// splitArgs separates arguments on `;` when the list has any, otherwise
// on `,`. Empty arguments are dropped.
func splitArgs(args token.List) []token.List {
	sep := token.Comma
	if args.IndexType(token.Delimiter) >= 0 {
		sep = token.Delimiter
	}
	var out []token.List
	for _, part := range args.Split(sep) {
		if part = part.Trim(); len(part) > 0 {
			out = append(out, part)
		}
	}
	return out
}

func namedArg(arg token.List) (NamedArg, bool) {
	if arg.Front().Type != token.AtKeyword {
		return NamedArg{}, false
	}
	rest := arg[1:].LTrim()
	if rest.Front().Type != token.Colon {
		return NamedArg{}, false
	}
	return NamedArg{Name: arg[0].Text, Value: rest[1:].Trim()}, true
}

func isEllipsis(l token.List) bool {
	return len(l) == 3 && l[0].IsOther(".") && l[1].IsOther(".") && l[2].IsOther(".")
}

func parseParams(args token.List) (params []Param, variadic bool) {
	for _, part := range splitArgs(args) {
		if isEllipsis(part) {
			variadic = true
			continue
		}
		if part.Front().Type != token.AtKeyword {
			params = append(params, Param{Pattern: part})
			continue
		}
		name := part[0].Text
		rest := part[1:].Trim()
		switch {
		case len(rest) == 0:
			params = append(params, Param{Name: name})
		case isEllipsis(rest):
			params = append(params, Param{Name: name, Rest: true})
			variadic = true
		case rest.Front().Type == token.Colon:
			params = append(params, Param{Name: name, Default: rest[1:].Trim()})
		default:
			params = append(params, Param{Pattern: part})
		}
	}
	return params, variadic
}

// MixinPaths returns every path under which the ruleset can be called.
// `.a, .b { }` answers to both `.a` and `.b`.
func (r *LessRuleset) MixinPaths() [][]string {
	if r.Parametric {
		return [][]string{MixinPath(r.Name)}
	}
	var out [][]string
	for _, group := range r.Selector.Split(token.Comma) {
		if p := MixinPath(group.Trim()); p != nil {
			out = append(out, p)
		}
	}
	return out
}

package processor

import (
	"slices"
	"sort"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/collections"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/token"
)

// call is a mixin call with its arguments evaluated in the caller scope
type call struct {
	*ast.Mixin
	args  []result
	named map[string]result
}

// expand inserts the output of every definition matching m. Declarations
// join the caller's block, nested rules follow it.
func (p *Processor) expand(m *ast.Mixin, ctx *context, b *block) error {
	c, err := p.evalCall(m, ctx.scope)
	if err != nil {
		return err
	}

	found := false
	for sc := ctx.scope; sc != nil; sc = sc.parent {
		if sc.node == nil {
			continue
		}
		candidates := findMixins(sc.node.Body(), m.Path)
		if len(candidates) == 0 {
			continue
		}
		found = true
		var matched bool
		for _, rs := range candidates {
			params, ok := bind(rs, c)
			if !ok {
				continue
			}
			matched = true
			if err := p.apply(rs, params, c, ctx, b); err != nil {
				return err
			}
		}
		if matched {
			return nil
		}
	}

	if found {
		return NewError(m.Pos(), ErrArguments, "no definition of %s accepts the arguments %s", m.Key(), describeArgs(c))
	}
	return NewError(m.Pos(), ErrUndefinedMixin, "mixin %s is undefined%s", m.Key(), didYouMean(m.Key(), mixinNames(ctx.scope)))
}

func (p *Processor) evalCall(m *ast.Mixin, sc *scope) (*call, error) {
	e := &evaluator{p: p, scope: sc}
	c := &call{Mixin: m, named: map[string]result{}}
	for _, arg := range m.Arguments {
		r, err := e.eval(arg)
		if err != nil {
			return nil, err
		}
		c.args = append(c.args, r)
	}
	for _, n := range m.Named {
		r, err := e.eval(n.Value)
		if err != nil {
			return nil, err
		}
		c.named[n.Name] = r
	}
	return c, nil
}

// apply expands one definition. The body sees its own variables, then
// the parameters, then the scopes it was defined in, then the caller's.
func (p *Processor) apply(rs *ast.LessRuleset, params *scope, c *call, ctx *context, b *block) error {
	if p.expanding.Has(rs) {
		return NewError(c.Pos(), ErrRecursion, "mixin %s calls itself", c.Key())
	}
	p.expanding.Add(rs)
	defer p.expanding.Remove(rs)
	log.Debug("Expanding mixin %s at %s", c.Key(), c.Pos())

	parent := ctx.scope
	var ancestors []ast.Container
	for up := rs.Up(); up != nil && up.Up() != nil; up = up.Up() {
		ancestors = append(ancestors, up)
	}
	for _, a := range slices.Backward(ancestors) {
		parent = newScope(a.Vars(), a, parent)
	}
	params.parent = parent
	body := newScope(rs.Variables, rs, params)

	return p.statements(rs.Statements, ctx.with(func(n *context) {
		n.scope = body
		n.important = ctx.important || c.Important
		n.expanding = true
	}), b)
}

// findMixins returns the rulesets in stmts answering to path, descending
// into namespaces
func findMixins(stmts []ast.Statement, path []string) []*ast.LessRuleset {
	var out []*ast.LessRuleset
	for _, stmt := range stmts {
		rs, ok := stmt.(*ast.LessRuleset)
		if !ok {
			continue
		}
		for _, p := range rs.MixinPaths() {
			switch {
			case slices.Equal(p, path):
				out = append(out, rs)
			case len(p) < len(path) && slices.Equal(p, path[:len(p)]):
				out = append(out, findMixins(rs.Statements, path[len(p):])...)
			}
		}
	}
	return out
}

// bind matches the call's arguments against the definition's parameters.
// It returns the parameter scope, or false when the definition does not
// accept the call.
func bind(rs *ast.LessRuleset, c *call) (*scope, bool) {
	params := newScope(nil, nil, nil)
	if !rs.Parametric {
		return params, len(c.args) == 0 && len(c.named) == 0
	}

	for name, r := range c.named {
		if !slices.ContainsFunc(rs.Params, func(p ast.Param) bool { return p.Name == name }) {
			return nil, false
		}
		params.values[name] = r
	}

	var all []token.List
	i := 0
	for _, p := range rs.Params {
		switch {
		case p.Rest:
			var rest []token.List
			for ; i < len(c.args); i++ {
				rest = append(rest, c.args[i].Tokens)
			}
			params.values[p.Name] = result{Tokens: token.Join(rest, token.Space)}
			all = append(all, rest...)
		case p.Pattern != nil:
			if i >= len(c.args) || c.args[i].Tokens.CollapseWhitespace().String() != p.Pattern.CollapseWhitespace().String() {
				return nil, false
			}
			all = append(all, c.args[i].Tokens)
			i++
		case hasValue(params, p.Name):
			all = append(all, params.values[p.Name].Tokens)
		case i < len(c.args):
			params.values[p.Name] = c.args[i]
			all = append(all, c.args[i].Tokens)
			i++
		case p.Default != nil:
			params.vars[p.Name] = p.Default
			all = append(all, token.List{token.New(token.AtKeyword, p.Name, p.Default.Location())})
		default:
			return nil, false
		}
	}
	if i < len(c.args) && !rs.Variadic {
		return nil, false
	}
	for ; i < len(c.args); i++ {
		all = append(all, c.args[i].Tokens)
	}
	params.vars["@arguments"] = token.Join(all, token.Space)
	return params, true
}

func hasValue(s *scope, name string) bool {
	_, ok := s.values[name]
	return ok
}

func describeArgs(c *call) string {
	var parts []token.List
	for _, a := range c.args {
		parts = append(parts, a.Tokens)
	}
	for _, n := range c.Named {
		parts = append(parts, append(token.List{token.Synthetic(token.AtKeyword, n.Name), token.Synthetic(token.Colon, ":"), token.Space}, c.named[n.Name].Tokens...))
	}
	return "(" + token.Join(parts, token.Synthetic(token.Delimiter, ";"), token.Space).String() + ")"
}

// mixinNames lists the mixin paths visible from s
func mixinNames(s *scope) []string {
	seen := collections.NewSet[string]()
	var walk func([]ast.Statement, string)
	walk = func(stmts []ast.Statement, prefix string) {
		for _, stmt := range stmts {
			rs, ok := stmt.(*ast.LessRuleset)
			if !ok {
				continue
			}
			for _, p := range rs.MixinPaths() {
				key := prefix + strings.Join(p, "")
				seen.Add(key)
				walk(rs.Statements, key)
			}
		}
	}
	for sc := s; sc != nil; sc = sc.parent {
		if sc.node != nil {
			walk(sc.node.Body(), "")
		}
	}
	names := seen.Members()
	sort.Strings(names)
	return names
}

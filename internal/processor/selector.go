package processor

import (
	"strings"

	"bennypowers.dev/lessc/internal/token"
)

// selectorGroups splits a selector on its top-level commas
func selectorGroups(sel token.List) []token.List {
	var groups []token.List
	for _, g := range sel.Split(token.Comma) {
		if g = g.CollapseWhitespace(); len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// combine qualifies every child group with every parent group. `&`
// stands for the parent; without it the child is a descendant.
func combine(parents, children []token.List) []token.List {
	if len(parents) == 0 {
		var out []token.List
		for _, c := range children {
			out = append(out, replaceParent(c, nil))
		}
		return out
	}
	var out []token.List
	for _, c := range children {
		for _, p := range parents {
			if hasParentRef(c) {
				out = append(out, replaceParent(c, p))
				continue
			}
			sel := p.Clone()
			sel = append(sel, token.Space.At(c.Front().Location))
			out = append(out, append(sel, c...))
		}
	}
	return out
}

func hasParentRef(sel token.List) bool {
	return sel.Index(func(t token.Token) bool { return t.IsOther("&") }) >= 0
}

func replaceParent(sel, parent token.List) token.List {
	var out token.List
	for _, t := range sel {
		if t.IsOther("&") {
			out = append(out, parent...)
			continue
		}
		out = append(out, t)
	}
	return out.Trim()
}

// joinSelector writes groups as one selector list
func joinSelector(groups []token.List) token.List {
	return token.Join(groups, token.Synthetic(token.Comma, ","), token.Space)
}

// joinQueries nests the conditions of inner inside outer. Queries of
// different kinds cannot be joined.
func joinQueries(outer, inner token.List) (token.List, bool) {
	if !strings.EqualFold(outer.Front().Text, inner.Front().Text) {
		return nil, false
	}
	cond := inner[1:].Trim()
	if len(cond) == 0 {
		return outer, true
	}
	out := outer.Clone()
	if len(outer.Trim()) > 1 {
		loc := cond.Front().Location
		out = append(out, token.Space.At(loc), token.New(token.Identifier, "and", loc), token.Space.At(loc))
	} else {
		out = append(out, token.Space)
	}
	return append(out, cond...), true
}

package processor

import (
	"sort"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/collections"
	"bennypowers.dev/lessc/internal/token"
	"bennypowers.dev/lessc/internal/value"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// result is an evaluated value. Value is set when the tokens form a
// single expression.
type result struct {
	Tokens token.List
	Value  value.Value
}

// text is the result as it reads inside an interpolation
func (r result) text() string {
	if s, ok := r.Value.(*value.String); ok {
		return s.Text
	}
	return r.Tokens.String()
}

// scope is one link of the variable lookup chain. Variables are
// evaluated lazily, in the scope that binds them, and cached.
type scope struct {
	vars   ast.VariableMap
	values map[string]result
	// node is searched for mixin definitions; nil for scopes that only
	// bind variables
	node   ast.Container
	parent *scope

	evaluating collections.Set[string]
}

func newScope(vars ast.VariableMap, node ast.Container, parent *scope) *scope {
	if vars == nil {
		vars = ast.VariableMap{}
	}
	return &scope{
		vars:       vars,
		values:     map[string]result{},
		node:       node,
		parent:     parent,
		evaluating: collections.NewSet[string](),
	}
}

// child opens the scope of a container nested in s
func (s *scope) child(c ast.Container) *scope {
	return newScope(c.Vars(), c, s)
}

// find returns the innermost scope binding name
func (s *scope) find(name string) *scope {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.values[name]; ok {
			return sc
		}
		if _, ok := sc.vars[name]; ok {
			return sc
		}
	}
	return nil
}

// names lists every variable visible from s
func (s *scope) names() []string {
	seen := collections.NewSet[string]()
	for sc := s; sc != nil; sc = sc.parent {
		for n := range sc.vars {
			seen.Add(n)
		}
		for n := range sc.values {
			seen.Add(n)
		}
	}
	names := seen.Members()
	sort.Strings(names)
	return names
}

// suggest picks the candidate closest to name, or "" when none is close
func suggest(name string, candidates []string) string {
	best, bestScore := "", -1
	for _, c := range candidates {
		if c == name {
			continue
		}
		score := fuzzy.RankMatchNormalizedFold(name, c)
		if score < 0 {
			score = fuzzy.RankMatchNormalizedFold(c, name)
		}
		if score < 0 {
			if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d <= 2 {
				score = d
			}
		}
		if score >= 0 && (bestScore < 0 || score < bestScore) {
			best, bestScore = c, score
		}
	}
	return best
}

// didYouMean formats a suggestion for an error message
func didYouMean(name string, candidates []string) string {
	if s := suggest(name, candidates); s != "" {
		return " (did you mean " + s + "?)"
	}
	return ""
}

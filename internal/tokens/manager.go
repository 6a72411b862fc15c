package tokens

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/lessc/internal/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Manager holds design tokens loaded from token files and exposes them as
// LESS variables.
//
// Tokens are keyed by variable name, so two files with different prefixes
// may define the same path. A later token with the same variable name
// replaces the earlier one but keeps its position.
type Manager struct {
	tokens map[string]*Token
	order  []string
	// byPath indexes tokens by dotted path for alias resolution
	byPath map[string][]*Token
	parser *Parser
	mu     sync.RWMutex
}

// NewManager creates a new token manager with an empty token registry.
func NewManager() *Manager {
	return &Manager{
		tokens: map[string]*Token{},
		byPath: map[string][]*Token{},
		parser: NewParser(),
	}
}

// Add adds or updates a token in the manager
func (m *Manager) Add(token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	if len(token.Path) == 0 {
		return fmt.Errorf("token %q has no path", token.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := token.VariableName()
	if _, exists := m.tokens[key]; !exists {
		m.order = append(m.order, key)
	}
	m.tokens[key] = token
	path := strings.Join(token.Path, ".")
	m.byPath[path] = append(m.byPath[path], token)
	return nil
}

// Get retrieves a token by variable name ("@ds-color-primary"), dotted
// path ("color.primary") or hyphenated name ("color-primary"). Returns the
// most recently loaded match.
func (m *Manager) Get(nameOrPath string) *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if token, ok := m.tokens[nameOrPath]; ok {
		return token
	}
	if found := m.byPath[nameOrPath]; len(found) > 0 {
		return found[len(found)-1]
	}
	name := strings.TrimPrefix(strings.ReplaceAll(nameOrPath, ".", "-"), "@")
	for _, key := range slices.Backward(m.order) {
		if token := m.tokens[key]; token.Name == name {
			return token
		}
	}
	return nil
}

// All returns the tokens in load order
func (m *Manager) All() []*Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]*Token, 0, len(m.order))
	for _, key := range m.order {
		tokens = append(tokens, m.tokens[key])
	}
	return tokens
}

// Count returns the number of tokens
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tokens)
}

// Clear removes all tokens
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = map[string]*Token{}
	m.byPath = map[string][]*Token{}
	m.order = nil
}

// Load loads every token file in order
func (m *Manager) Load(files ...TokenFile) error {
	for _, file := range files {
		if _, err := m.LoadFile(file); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads the tokens of one file, or of every file matching
// file.Path when it is a doublestar pattern. It returns the number of
// tokens added.
func (m *Manager) LoadFile(file TokenFile) (int, error) {
	paths := []string{file.Path}
	if strings.ContainsAny(file.Path, "*?[{") {
		matches, err := doublestar.FilepathGlob(file.Path)
		if err != nil {
			return 0, fmt.Errorf("invalid token file pattern %s: %w", file.Path, err)
		}
		if len(matches) == 0 {
			log.Warn("no token files match %s", file.Path)
		}
		paths = matches
	}

	count := 0
	for _, path := range paths {
		f := file
		f.Path = path
		tokens, err := m.parser.ParseFile(f)
		if err != nil {
			return count, err
		}
		for _, token := range tokens {
			if err := m.Add(token); err != nil {
				return count, err
			}
			count++
		}
		log.Debug("loaded %d tokens from %s", len(tokens), path)
	}
	return count, nil
}

// resolve finds the token an alias in from names, preferring tokens from
// the same file
func (m *Manager) resolve(from *Token, path string) *Token {
	found := m.byPath[path]
	for _, token := range slices.Backward(found) {
		if token.FilePath == from.FilePath {
			return token
		}
	}
	if len(found) > 0 {
		return found[len(found)-1]
	}
	return nil
}

// suggest returns the closest known token path as an alias, or ""
func (m *Manager) suggest(path string) string {
	candidates := make([]string, 0, len(m.byPath))
	for p := range m.byPath {
		candidates = append(candidates, p)
	}
	ranks := fuzzy.RankFindNormalizedFold(path, candidates)
	if len(ranks) == 0 {
		best, bestDistance := "", 3
		for _, c := range candidates {
			if d := fuzzy.LevenshteinDistance(path, c); d < bestDistance || (d == bestDistance && c < best) {
				best, bestDistance = c, d
			}
		}
		if best == "" {
			return ""
		}
		return "{" + best + "}"
	}
	slices.SortFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return strings.Compare(a.Target, b.Target)
	})
	return "{" + ranks[0].Target + "}"
}

// Variables renders every token as LESS value source keyed by variable
// name without the leading @. Aliases become variable references. Tokens
// whose value has no single CSS form are left out.
func (m *Manager) Variables() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vars := make(map[string]string, len(m.tokens))
	g := newGraph()
	for _, key := range m.order {
		token := m.tokens[key]
		r := &renderer{m: m, tok: token}
		css, err := r.render(token.Value, token.Type)
		if err != nil {
			return nil, err
		}
		if css == "" {
			log.Debug("token %s has no CSS value, skipping", token.Reference())
			continue
		}
		if token.Deprecated {
			msg := "token " + token.Reference() + " is deprecated"
			if token.DeprecationMessage != "" {
				msg += ": " + token.DeprecationMessage
			}
			log.Warn("%s", msg)
		}
		g.add(key, r.deps...)
		vars[strings.TrimPrefix(key, "@")] = css
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, NewCircularReferenceError("", cycle)
	}
	return vars, nil
}

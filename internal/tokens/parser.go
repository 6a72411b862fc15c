package tokens

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	"bennypowers.dev/asimonim/schema"
	asimonimToken "bennypowers.dev/asimonim/token"
	"bennypowers.dev/lessc/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parser handles parsing DTCG-compliant JSON, JSONC and YAML token files
type Parser struct {
	dtcg asimonimParser.Parser
}

// NewParser creates a new token parser
func NewParser() *Parser {
	return &Parser{dtcg: asimonimParser.NewJSONParser()}
}

// ParseFile reads and parses the token file at file.Path
func (p *Parser) ParseFile(file TokenFile) ([]*Token, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file.Path, err)
	}
	return p.Parse(data, file)
}

// Parse decodes data as YAML when file.Path ends in .yaml or .yml and as
// JSON with comments otherwise. Groups are merged along their $extends
// before the tokens are extracted, sorted by name.
func (p *Parser) Parse(data []byte, file TokenFile) ([]*Token, error) {
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, NewParseError(file.Path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, NewParseError(file.Path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	version := detectSchema(raw)
	if err := resolveExtends(raw, file.Path); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, NewParseError(file.Path, err)
	}

	parsed, err := p.dtcg.Parse(normalized, asimonimParser.Options{
		Prefix:        file.Prefix,
		SchemaVersion: version.dtcg(),
		GroupMarkers:  file.GroupMarkers,
	})
	if err != nil {
		return nil, NewParseError(file.Path, err)
	}

	list := make([]*Token, 0, len(parsed))
	for _, t := range parsed {
		list = append(list, convert(t, raw, file, version))
	}
	slices.SortFunc(list, func(a, b *Token) int {
		return strings.Compare(a.Name, b.Name)
	})
	log.Debug("parsed %d tokens from %s (schema %s)", len(list), file.Path, version)
	return list, nil
}

// convert copies a parsed token into the compiler's form. Group $type is
// inherited when the token has none of its own.
func convert(t *asimonimToken.Token, raw map[string]any, file TokenFile, version Schema) *Token {
	path := tokenPath(t, file, version)
	var value any = t.Value
	if t.RawValue != nil {
		value = t.RawValue
	}
	tok := &Token{
		Name:               strings.Join(path, "-"),
		Path:               path,
		Value:              value,
		Type:               t.Type,
		Description:        t.Description,
		Deprecated:         t.Deprecated,
		DeprecationMessage: t.DeprecationMessage,
		FilePath:           file.Path,
		Prefix:             file.Prefix,
		Schema:             version,
	}
	if t.SchemaVersion == schema.V2025_10 {
		tok.Schema = V2025_10
	}
	if tok.Type == "" {
		tok.Type = inheritedType(raw, path)
	}
	return tok
}

// tokenPath returns the token's group path without a trailing $root or
// group marker key
func tokenPath(t *asimonimToken.Token, file TokenFile, version Schema) []string {
	path := slices.Clone(t.Path)
	if len(path) == 0 {
		path = strings.Split(t.Name, "-")
	}
	if n := len(path); n > 1 {
		last := path[n-1]
		if (version == V2025_10 && last == "$root") || slices.Contains(file.GroupMarkers, last) {
			path = path[:n-1]
		}
	}
	return path
}

// inheritedType walks the groups along path and returns the innermost
// $type
func inheritedType(raw map[string]any, path []string) string {
	typ := ""
	node := raw
	for _, key := range path {
		if t, ok := node["$type"].(string); ok {
			typ = t
		}
		child, ok := node[key].(map[string]any)
		if !ok {
			break
		}
		node = child
	}
	return typ
}

// detectSchema reads $schema when present and otherwise looks for
// features only the 2025.10 format has
func detectSchema(data map[string]any) Schema {
	if url, ok := data["$schema"].(string); ok {
		if strings.Contains(url, "2025.10") {
			return V2025_10
		}
		return Draft
	}
	if hasStructuredFeatures(data) {
		return V2025_10
	}
	return Draft
}

func hasStructuredFeatures(v any) bool {
	switch v := v.(type) {
	case map[string]any:
		for _, key := range []string{"$ref", "$extends", "$root", "colorSpace"} {
			if _, ok := v[key]; ok {
				return true
			}
		}
		for _, child := range v {
			if hasStructuredFeatures(child) {
				return true
			}
		}
	case []any:
		for _, child := range v {
			if hasStructuredFeatures(child) {
				return true
			}
		}
	}
	return false
}

// resolveExtends merges every group that names another in $extends with
// that group, parents first. Keys the extending group defines itself win.
// The $extends keys are removed.
func resolveExtends(raw map[string]any, filePath string) error {
	extends := map[string]string{}
	groups := map[string]map[string]any{}
	collectExtends(raw, nil, extends, groups)
	if len(extends) == 0 {
		return nil
	}

	g := newGraph()
	for child, parent := range extends {
		g.add(child, parent)
	}
	if cycle := g.findCycle(); cycle != nil {
		return NewCircularReferenceError(filePath, cycle)
	}
	for _, group := range g.sorted() {
		parent, ok := extends[group]
		if !ok {
			continue
		}
		source, ok := groups[parent]
		if !ok {
			log.Warn("%s: group %s extends unknown group %s", filePath, group, parent)
			continue
		}
		merge(groups[group], source)
	}
	return nil
}

func collectExtends(node map[string]any, path []string, extends map[string]string, groups map[string]map[string]any) {
	if _, isToken := node["$value"]; isToken {
		return
	}
	key := strings.Join(path, ".")
	groups[key] = node
	if ext, ok := node["$extends"]; ok {
		delete(node, "$extends")
		if target, ok := referencePath(ext); ok && len(path) > 0 {
			extends[key] = target
		}
	}
	for name, child := range node {
		if m, ok := child.(map[string]any); ok && !strings.HasPrefix(name, "$") {
			collectExtends(m, append(slices.Clone(path), name), extends, groups)
		}
	}
}

// merge copies what dst lacks from src. Nested groups are merged; tokens
// are replaced whole.
func merge(dst, src map[string]any) {
	for key, v := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = deepCopy(v)
			continue
		}
		d, dok := existing.(map[string]any)
		s, sok := v.(map[string]any)
		if dok && sok && !isToken(d) && !isToken(s) {
			merge(d, s)
		}
	}
}

func isToken(node map[string]any) bool {
	_, ok := node["$value"]
	return ok
}

func deepCopy(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := maps.Clone(v)
		for k, child := range out {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := slices.Clone(v)
		for i, child := range out {
			out[i] = deepCopy(child)
		}
		return out
	}
	return v
}

// referencePath returns the dotted token path named by a curly brace
// alias, a JSON pointer, or a {"$ref": pointer} object
func referencePath(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		if m := curlyBraceReference.FindStringSubmatch(v); m != nil && m[0] == v {
			return m[1], true
		}
		if strings.HasPrefix(v, "#/") {
			return pointerPath(v), true
		}
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			return pointerPath(ref), true
		}
	}
	return "", false
}

// pointerPath converts "#/color/base" to "color.base"
func pointerPath(pointer string) string {
	return strings.ReplaceAll(strings.TrimPrefix(pointer, "#/"), "/", ".")
}

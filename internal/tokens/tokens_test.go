package tokens_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/lessc/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftJSON = `{
  // brand palette
  "color": {
    "$type": "color",
    "base": {"$value": "#336699"},
    "link": {"$value": "{color.base}", "$description": "links"},
    "border": {"$value": "1px solid {color.base}"}
  },
  "space": {
    "small": {"$value": "4px", "$type": "dimension", "$deprecated": "use space.s"}
  }
}`

const structuredJSON = `{
  "$schema": "https://www.designtokens.org/schemas/2025.10/format.json",
  "color": {
    "$type": "color",
    "$root": {"$value": {"colorSpace": "srgb", "components": [1, 0, 0]}},
    "faded": {"$value": {"colorSpace": "srgb", "components": [0, 0, 1], "alpha": 0.5}},
    "accent": {"$value": {"colorSpace": "hsl", "components": [120, 100, 25]}},
    "wide": {"$value": {"colorSpace": "display-p3", "components": [1, 0.5, 0]}},
    "alias": {"$value": {"$ref": "#/color/accent"}}
  },
  "size": {"$type": "dimension", "$value": {"value": 1.5, "unit": "rem"}}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	p := tokens.NewParser()

	t.Run("draft json with comments", func(t *testing.T) {
		list, err := p.Parse([]byte(draftJSON), tokens.TokenFile{Path: "tokens.json", Prefix: "ds"})
		require.NoError(t, err)
		require.Len(t, list, 4)

		names := []string{}
		for _, tok := range list {
			names = append(names, tok.Name)
		}
		assert.Equal(t, []string{"color-base", "color-border", "color-link", "space-small"}, names)

		link := list[2]
		assert.Equal(t, []string{"color", "link"}, link.Path)
		assert.Equal(t, "color", link.Type, "type is inherited from the group")
		assert.Equal(t, "links", link.Description)
		assert.Equal(t, "{color.link}", link.Reference())
		assert.Equal(t, "@ds-color-link", link.VariableName())
		assert.Equal(t, tokens.Draft, link.Schema)

		small := list[3]
		assert.Equal(t, "dimension", small.Type)
		assert.True(t, small.Deprecated)
		assert.Equal(t, "use space.s", small.DeprecationMessage)
	})

	t.Run("yaml with group markers", func(t *testing.T) {
		data := "color:\n  _:\n    $value: red\n  light:\n    $value: pink\n"
		list, err := p.Parse([]byte(data), tokens.TokenFile{Path: "colors.yaml", GroupMarkers: []string{"_"}})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "color", list[0].Name)
		assert.Equal(t, "red", list[0].Value)
		assert.Equal(t, "color-light", list[1].Name)
	})

	t.Run("structured schema", func(t *testing.T) {
		list, err := p.Parse([]byte(structuredJSON), tokens.TokenFile{Path: "tokens.json"})
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, tokens.V2025_10, list[0].Schema)
		assert.Equal(t, "color", list[0].Name, "$root takes the group's name")
	})

	t.Run("duck typed schema", func(t *testing.T) {
		data := `{"color": {"$root": {"$value": "red"}}}`
		list, err := p.Parse([]byte(data), tokens.TokenFile{Path: "tokens.json"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tokens.V2025_10, list[0].Schema)
	})

	t.Run("extends", func(t *testing.T) {
		data := `{
  "base": {"a": {"$value": "1px"}, "b": {"$value": "2px"}},
  "theme": {"$extends": "{base}", "b": {"$value": "3px"}}
}`
		list, err := p.Parse([]byte(data), tokens.TokenFile{Path: "tokens.json"})
		require.NoError(t, err)
		values := map[string]any{}
		for _, tok := range list {
			values[tok.Name] = tok.Value
		}
		assert.Equal(t, map[string]any{
			"base-a":  "1px",
			"base-b":  "2px",
			"theme-a": "1px",
			"theme-b": "3px",
		}, values)
	})

	t.Run("extends merges nested groups", func(t *testing.T) {
		data := `{
  "base": {"$type": "dimension", "space": {"s": {"$value": "1px"}}},
  "theme": {"$extends": "{base}", "space": {"m": {"$value": "2px"}}}
}`
		list, err := p.Parse([]byte(data), tokens.TokenFile{Path: "tokens.json"})
		require.NoError(t, err)
		names := []string{}
		for _, tok := range list {
			names = append(names, tok.Name)
			assert.Equal(t, "dimension", tok.Type, tok.Name)
		}
		assert.Equal(t, []string{"base-space-s", "theme-space-m", "theme-space-s"}, names)
	})

	t.Run("extends cycle", func(t *testing.T) {
		data := `{
  "a": {"$extends": "{b}", "x": {"$value": "1"}},
  "b": {"$extends": "{a}", "y": {"$value": "2"}}
}`
		_, err := p.Parse([]byte(data), tokens.TokenFile{Path: "tokens.json"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, tokens.ErrCircularReference))
		assert.Contains(t, err.Error(), "a → b → a")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := p.Parse([]byte(`{"color": `), tokens.TokenFile{Path: "broken.json"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, tokens.ErrParse))
		assert.Contains(t, err.Error(), "broken.json")
	})
}

func TestVariableName(t *testing.T) {
	tests := []struct {
		name     string
		token    tokens.Token
		expected string
	}{
		{name: "no prefix", token: tokens.Token{Name: "color-primary"}, expected: "@color-primary"},
		{name: "prefix", token: tokens.Token{Name: "color-primary", Prefix: "ds"}, expected: "@ds-color-primary"},
		{name: "dotted prefix", token: tokens.Token{Name: "primary", Prefix: "my.brand"}, expected: "@my-brand-primary"},
		{name: "empty name", token: tokens.Token{Name: "", Prefix: "ds"}, expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.token.VariableName())
		})
	}
}

func loadString(t *testing.T, name, content string, file tokens.TokenFile) *tokens.Manager {
	t.Helper()
	dir := t.TempDir()
	file.Path = writeFile(t, dir, name, content)
	m := tokens.NewManager()
	_, err := m.LoadFile(file)
	require.NoError(t, err)
	return m
}

func TestManagerVariables(t *testing.T) {
	t.Run("aliases become variable references", func(t *testing.T) {
		m := loadString(t, "tokens.json", draftJSON, tokens.TokenFile{Prefix: "ds"})
		vars, err := m.Variables()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"ds-color-base":   "#336699",
			"ds-color-border": "1px solid @ds-color-base",
			"ds-color-link":   "@ds-color-base",
			"ds-space-small":  "4px",
		}, vars)
	})

	t.Run("structured values", func(t *testing.T) {
		m := loadString(t, "tokens.json", structuredJSON, tokens.TokenFile{})
		vars, err := m.Variables()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"color":        "#ff0000",
			"color-faded":  "rgba(0, 0, 255, 0.5)",
			"color-accent": "#008000",
			"color-wide":   "color(display-p3 1 0.5 0)",
			"color-alias":  "@color-accent",
			"size":         "1.5rem",
		}, vars)
	})

	t.Run("composite values", func(t *testing.T) {
		data := `{
  "font": {
    "$type": "fontFamily",
    "body": {"$value": ["Helvetica Neue", "sans-serif"]}
  },
  "ease": {"$type": "cubicBezier", "$value": [0.4, 0, 0.2, 1]},
  "ink": {"$value": "#000"},
  "shadow": {"$type": "shadow", "$value": {"offsetX": "0px", "offsetY": "1px", "blur": "2px", "spread": "0px", "color": "{ink}"}},
  "heading": {"$type": "typography", "$value": {"fontFamily": "serif", "fontSize": "2rem"}}
}`
		m := loadString(t, "tokens.json", data, tokens.TokenFile{})
		vars, err := m.Variables()
		require.NoError(t, err)
		assert.Equal(t, `"Helvetica Neue", sans-serif`, vars["font-body"])
		assert.Equal(t, "cubic-bezier(0.4, 0, 0.2, 1)", vars["ease"])
		assert.Equal(t, "0px 1px 2px 0px @ink", vars["shadow"])
		assert.NotContains(t, vars, "heading")
	})

	t.Run("unknown reference", func(t *testing.T) {
		data := `{"color": {"base": {"$value": "red"}, "link": {"$value": "{color.bsae}"}}}`
		m := loadString(t, "tokens.json", data, tokens.TokenFile{})
		_, err := m.Variables()
		require.Error(t, err)
		assert.True(t, errors.Is(err, tokens.ErrUnknownReference))

		var refErr *tokens.UnknownReferenceError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, "color.link", refErr.TokenPath)
		assert.Equal(t, "{color.bsae}", refErr.Reference)
		assert.Equal(t, "{color.base}", refErr.Suggestion)
	})

	t.Run("alias cycle", func(t *testing.T) {
		data := `{"a": {"$value": "{b}"}, "b": {"$value": "{a}"}}`
		m := loadString(t, "tokens.json", data, tokens.TokenFile{})
		_, err := m.Variables()
		require.Error(t, err)
		assert.True(t, errors.Is(err, tokens.ErrCircularReference))
	})
}

func TestManagerLoadFile(t *testing.T) {
	t.Run("glob pattern", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "tokens/color.json", `{"color": {"red": {"$value": "#f00"}}}`)
		writeFile(t, dir, "tokens/nested/space.yaml", "space:\n  s:\n    $value: 2px\n")
		writeFile(t, dir, "tokens/readme.md", "not tokens")

		m := tokens.NewManager()
		n, err := m.LoadFile(tokens.TokenFile{Path: filepath.Join(dir, "tokens", "**", "*.{json,yaml}")})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, m.Count())
	})

	t.Run("missing file", func(t *testing.T) {
		m := tokens.NewManager()
		_, err := m.LoadFile(tokens.TokenFile{Path: filepath.Join(t.TempDir(), "missing.json")})
		assert.Error(t, err)
	})

	t.Run("aliases prefer the same file", func(t *testing.T) {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.json", `{"ink": {"$value": "black"}}`)
		b := writeFile(t, dir, "b.json", `{"ink": {"$value": "navy"}, "text": {"$value": "{ink}"}}`)
		m := tokens.NewManager()
		require.NoError(t, m.Load(
			tokens.TokenFile{Path: a, Prefix: "a"},
			tokens.TokenFile{Path: b, Prefix: "b"},
		))
		vars, err := m.Variables()
		require.NoError(t, err)
		assert.Equal(t, "@b-ink", vars["b-text"])
		assert.Equal(t, "black", vars["a-ink"])
	})
}

func TestManagerGet(t *testing.T) {
	m := tokens.NewManager()
	require.NoError(t, m.Add(&tokens.Token{Name: "color-base", Path: []string{"color", "base"}, Prefix: "ds", Value: "red"}))
	require.Error(t, m.Add(nil))

	for _, key := range []string{"@ds-color-base", "color.base", "color-base"} {
		tok := m.Get(key)
		require.NotNil(t, tok, key)
		assert.Equal(t, "red", tok.Value)
	}
	assert.Nil(t, m.Get("color.missing"))
	assert.Len(t, m.All(), 1)

	m.Clear()
	assert.Equal(t, 0, m.Count())
}

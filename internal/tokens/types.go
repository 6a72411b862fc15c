package tokens

import (
	"strings"

	"bennypowers.dev/asimonim/schema"
)

// Schema identifies the DTCG format revision a token file follows
type Schema int

const (
	// Draft is the community group draft: string colors, group markers
	Draft Schema = iota
	// V2025_10 adds structured colors, $root, $ref and $extends
	V2025_10
)

func (s Schema) String() string {
	if s == V2025_10 {
		return "2025.10"
	}
	return "draft"
}

func (s Schema) dtcg() schema.Version {
	if s == V2025_10 {
		return schema.V2025_10
	}
	return schema.Draft
}

// Token represents a design token following the DTCG format
// See: https://design-tokens.github.io/community-group/format/
type Token struct {
	// Name is the hyphenated token path (e.g., "color-primary")
	Name string

	// Path is the token's position in its file (e.g., ["color", "primary"])
	Path []string

	// Value is the decoded $value: a string, number, list or object
	Value any

	// Type is the token's own or inherited $type
	Type string

	Description string

	// Deprecated is set by $deprecated; DeprecationMessage carries its text
	Deprecated         bool
	DeprecationMessage string

	// FilePath is the file this token was loaded from
	FilePath string

	// Prefix is prepended to the variable name
	Prefix string

	Schema Schema
}

// Reference returns the alias form other tokens use to point at this one,
// e.g. "{color.primary}"
func (t *Token) Reference() string {
	return "{" + strings.Join(t.Path, ".") + "}"
}

// VariableName returns the LESS variable this token is bound to, e.g.
// "@color-primary" or "@ds-color-primary"
func (t *Token) VariableName() string {
	if t.Name == "" {
		return ""
	}
	name := strings.ReplaceAll(t.Name, ".", "-")
	if t.Prefix != "" {
		return "@" + strings.ReplaceAll(t.Prefix, ".", "-") + "-" + name
	}
	return "@" + name
}

// TokenFile represents a design token file configuration
type TokenFile struct {
	// Path to the token file, or a doublestar pattern matching several
	Path string

	// Prefix for variables from this file
	Prefix string

	// GroupMarkers name draft-schema children that hold their group's own
	// value
	GroupMarkers []string
}

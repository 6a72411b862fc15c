// Package token defines the lexical units shared by the lexer, parser,
// processor and writer.
package token

import (
	"fmt"
	"strings"
)

// Type classifies a Token
type Type int

const (
	EOF Type = iota
	Identifier
	AtKeyword
	String
	URL
	Hash
	Number
	Percentage
	Dimension
	Delimiter // ;
	Colon
	Comma
	BraceOpen
	BraceClose
	ParenOpen
	ParenClose
	BracketOpen
	BracketClose
	Whitespace
	Comment
	Other
)

var typeNames = [...]string{
	EOF:          "end of input",
	Identifier:   "identifier",
	AtKeyword:    "at-keyword",
	String:       "string",
	URL:          "url",
	Hash:         "hash",
	Number:       "number",
	Percentage:   "percentage",
	Dimension:    "dimension",
	Delimiter:    "';'",
	Colon:        "':'",
	Comma:        "','",
	BraceOpen:    "'{'",
	BraceClose:   "'}'",
	ParenOpen:    "'('",
	ParenClose:   "')'",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Whitespace:   "whitespace",
	Comment:      "comment",
	Other:        "symbol",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Location points into a source file. Line and Column are 1-based and
// Column counts UTF-16 code units. A zero Line means the token was
// synthesized by the compiler.
type Location struct {
	Source string
	Line   int
	Column int
}

// IsValid reports whether the location refers to real source text
func (l Location) IsValid() bool {
	return l.Line > 0
}

func (l Location) String() string {
	src := l.Source
	if src == "" {
		src = "<input>"
	}
	if !l.IsValid() {
		return src
	}
	return fmt.Sprintf("%s:%d:%d", src, l.Line, l.Column)
}

// Token is the smallest lexical unit. Text holds the exact source
// spelling, so concatenating the Text of consecutive tokens reproduces
// the input.
type Token struct {
	Type Type
	Text string
	Location
}

// Space is the canonical single-space whitespace token
var Space = Token{Type: Whitespace, Text: " "}

// New creates a token at loc
func New(t Type, text string, loc Location) Token {
	return Token{Type: t, Text: text, Location: loc}
}

// Synthetic creates a token with no source location
func Synthetic(t Type, text string) Token {
	return Token{Type: t, Text: text}
}

func (t Token) String() string {
	return t.Text
}

// Is reports whether the token has the given type and text
func (t Token) Is(typ Type, text string) bool {
	return t.Type == typ && t.Text == text
}

// IsOther reports whether the token is the symbol text
func (t Token) IsOther(text string) bool {
	return t.Is(Other, text)
}

// IsWhitespace reports whether the token is whitespace or a comment
func (t Token) IsWhitespace() bool {
	return t.Type == Whitespace || t.Type == Comment
}

// IsLineComment reports whether the token is a // comment
func (t Token) IsLineComment() bool {
	return t.Type == Comment && strings.HasPrefix(t.Text, "//")
}

// Unquote returns the contents of a string token without its quotes.
// Escapes are left intact. Other tokens are returned unchanged.
func (t Token) Unquote() string {
	if t.Type != String || len(t.Text) < 2 {
		return t.Text
	}
	return t.Text[1 : len(t.Text)-1]
}

// Quote returns the quote character of a string token, or 0
func (t Token) Quote() byte {
	if t.Type != String || t.Text == "" {
		return 0
	}
	return t.Text[0]
}

// URLString returns the address inside a url(...) token, unquoted
func (t Token) URLString() string {
	if t.Type != URL {
		return t.Text
	}
	s := t.Text
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}

// At returns a copy of the token moved to loc
func (t Token) At(loc Location) Token {
	t.Location = loc
	return t
}

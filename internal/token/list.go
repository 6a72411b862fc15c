package token

import "strings"

// List is an ordered span of tokens such as a selector, a value or an
// at-rule prelude.
type List []Token

// String concatenates the text of every token
func (l List) String() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Clone returns an independent copy
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	return append(List(nil), l...)
}

// Front returns the first token, or an EOF token for an empty list
func (l List) Front() Token {
	if len(l) == 0 {
		return Token{Type: EOF}
	}
	return l[0]
}

// Back returns the last token, or an EOF token for an empty list
func (l List) Back() Token {
	if len(l) == 0 {
		return Token{Type: EOF}
	}
	return l[len(l)-1]
}

// LTrim drops leading whitespace and comments
func (l List) LTrim() List {
	i := 0
	for i < len(l) && l[i].IsWhitespace() {
		i++
	}
	return l[i:]
}

// RTrim drops trailing whitespace and comments
func (l List) RTrim() List {
	i := len(l)
	for i > 0 && l[i-1].IsWhitespace() {
		i--
	}
	return l[:i]
}

// Trim drops whitespace and comments at both ends
func (l List) Trim() List {
	return l.LTrim().RTrim()
}

// Location is the location of the first token
func (l List) Location() Location {
	return l.Front().Location
}

// Contains reports whether any token has the given type and text
func (l List) Contains(typ Type, text string) bool {
	for _, t := range l {
		if t.Is(typ, text) {
			return true
		}
	}
	return false
}

// ContainsType reports whether any token has the given type
func (l List) ContainsType(typ Type) bool {
	for _, t := range l {
		if t.Type == typ {
			return true
		}
	}
	return false
}

// Index returns the position of the first token at nesting depth zero
// for which match returns true, or -1.
func (l List) Index(match func(Token) bool) int {
	depth := 0
	for i, t := range l {
		if depth == 0 && match(t) {
			return i
		}
		switch t.Type {
		case ParenOpen, BracketOpen, BraceOpen:
			depth++
		case ParenClose, BracketClose, BraceClose:
			if depth > 0 {
				depth--
			}
		}
	}
	return -1
}

// IndexType returns the position of the first token of type typ at
// nesting depth zero, or -1.
func (l List) IndexType(typ Type) int {
	return l.Index(func(t Token) bool { return t.Type == typ })
}

// Split cuts the list at every depth-zero token of type sep. The
// separators are dropped; the parts are not trimmed.
func (l List) Split(sep Type) []List {
	var parts []List
	depth := 0
	start := 0
	for i, t := range l {
		switch t.Type {
		case ParenOpen, BracketOpen, BraceOpen:
			depth++
		case ParenClose, BracketClose, BraceClose:
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, l[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, l[start:])
}

// Splice returns a new list with l[i:j] replaced by repl
func (l List) Splice(i, j int, repl List) List {
	out := make(List, 0, len(l)-(j-i)+len(repl))
	out = append(out, l[:i]...)
	out = append(out, repl...)
	return append(out, l[j:]...)
}

// Join concatenates lists, inserting sep between them
func Join(lists []List, sep ...Token) List {
	var out List
	for i, l := range lists {
		if i > 0 {
			out = append(out, sep...)
		}
		out = append(out, l...)
	}
	return out
}

// CollapseWhitespace replaces every run of whitespace and comments with a
// single space and drops it at the ends.
func (l List) CollapseWhitespace() List {
	var out List
	pending := false
	for _, t := range l {
		if t.IsWhitespace() {
			pending = true
			continue
		}
		if pending && len(out) > 0 {
			out = append(out, Space)
		}
		pending = false
		out = append(out, t)
	}
	return out
}

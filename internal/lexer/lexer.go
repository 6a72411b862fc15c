// Package lexer turns LESS and CSS source text into tokens.
package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"bennypowers.dev/lessc/internal/position"
	"bennypowers.dev/lessc/internal/token"
)

// Mode selects the dialect the tokenizer recognizes
type Mode int

const (
	// ModeCSS tokenizes plain CSS
	ModeCSS Mode = iota
	// ModeLess additionally recognizes // line comments
	ModeLess
)

// ErrLexical is wrapped by every *Error
var ErrLexical = errors.New("lexical error")

// Error is a malformed token
type Error struct {
	token.Location
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrLexical
}

const eof = -1

// Tokenizer reads one token at a time. The current token stays
// available through Token and Type until the next ReadNextToken.
type Tokenizer struct {
	src    string
	source string
	mode   Mode
	pos    int
	cursor position.Cursor
	tok    token.Token
	prev   token.Type
}

// New reads all of r and returns a tokenizer positioned before the first
// token. source names the input in locations.
func New(r io.Reader, source string, mode Mode) (*Tokenizer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return NewString(string(b), source, mode), nil
}

// NewString returns a tokenizer over src
func NewString(src, source string, mode Mode) *Tokenizer {
	src = strings.TrimPrefix(src, "\ufeff")
	return &Tokenizer{
		src:    src,
		source: source,
		mode:   mode,
		cursor: position.NewCursor(),
		tok:    token.Token{Type: token.EOF, Location: token.Location{Source: source}},
		prev:   token.Whitespace,
	}
}

// Source is the name of the input
func (t *Tokenizer) Source() string {
	return t.source
}

// Token returns the current token
func (t *Tokenizer) Token() token.Token {
	return t.tok
}

// Type returns the type of the current token
func (t *Tokenizer) Type() token.Type {
	return t.tok.Type
}

// ReadNextToken advances to the next token and returns its type
func (t *Tokenizer) ReadNextToken() (token.Type, error) {
	loc := token.Location{Source: t.source, Line: t.cursor.Line, Column: t.cursor.Column + 1}
	start := t.pos

	typ, err := t.scan()
	if err != nil {
		return token.EOF, &Error{Location: loc, Message: err.Error()}
	}

	text := t.src[start:t.pos]
	t.cursor.Advance(text)
	t.tok = token.New(typ, text, loc)
	if typ != token.Whitespace && typ != token.Comment {
		t.prev = typ
	} else {
		t.prev = token.Whitespace
	}
	return typ, nil
}

func (t *Tokenizer) peekAt(offset int) rune {
	i := t.pos
	for ; offset > 0; offset-- {
		if i >= len(t.src) {
			return eof
		}
		_, size := utf8.DecodeRuneInString(t.src[i:])
		i += size
	}
	if i >= len(t.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(t.src[i:])
	return r
}

func (t *Tokenizer) peek() rune {
	return t.peekAt(0)
}

func (t *Tokenizer) next() rune {
	if t.pos >= len(t.src) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(t.src[t.pos:])
	t.pos += size
	return r
}

func (t *Tokenizer) scan() (token.Type, error) {
	r := t.peek()
	switch {
	case r == eof:
		return token.EOF, nil
	case isSpace(r):
		for isSpace(t.peek()) {
			t.next()
		}
		return token.Whitespace, nil
	case r == '/' && t.peekAt(1) == '*':
		return t.scanBlockComment()
	case r == '/' && t.peekAt(1) == '/' && t.mode == ModeLess:
		for c := t.peek(); c != eof && c != '\n'; c = t.peek() {
			t.next()
		}
		return token.Comment, nil
	case r == '"' || r == '\'':
		return t.scanString()
	case r == '@':
		t.next()
		if isNameStart(t.peek()) || (t.peek() == '-' && isNameStart(t.peekAt(1))) || t.peek() == '@' {
			// @@name stays one keyword so variable variables survive
			// whitespace handling.
			if t.peek() == '@' {
				t.next()
			}
			t.scanName()
			return token.AtKeyword, nil
		}
		return token.Other, nil
	case r == '#':
		t.next()
		if isNameChar(t.peek()) || t.peek() == '\\' {
			t.scanName()
			return token.Hash, nil
		}
		return token.Other, nil
	case t.startsNumber():
		return t.scanNumeric(), nil
	case t.startsIdentifier():
		start := t.pos
		t.scanName()
		if t.peek() == '(' && strings.EqualFold(t.src[start:t.pos], "url") {
			return t.scanURL()
		}
		return token.Identifier, nil
	}

	t.next()
	switch r {
	case ';':
		return token.Delimiter, nil
	case ':':
		return token.Colon, nil
	case ',':
		return token.Comma, nil
	case '{':
		return token.BraceOpen, nil
	case '}':
		return token.BraceClose, nil
	case '(':
		return token.ParenOpen, nil
	case ')':
		return token.ParenClose, nil
	case '[':
		return token.BracketOpen, nil
	case ']':
		return token.BracketClose, nil
	}
	return token.Other, nil
}

func (t *Tokenizer) scanBlockComment() (token.Type, error) {
	t.next()
	t.next()
	end := strings.Index(t.src[t.pos:], "*/")
	if end < 0 {
		t.pos = len(t.src)
		return token.EOF, errors.New("unterminated comment")
	}
	t.pos += end + 2
	return token.Comment, nil
}

func (t *Tokenizer) scanString() (token.Type, error) {
	quote := t.next()
	for {
		switch r := t.next(); r {
		case eof, '\n':
			return token.EOF, errors.New("unterminated string")
		case '\\':
			if t.next() == eof {
				return token.EOF, errors.New("unterminated string")
			}
		case quote:
			return token.String, nil
		}
	}
}

func (t *Tokenizer) scanURL() (token.Type, error) {
	t.next() // (
	for isSpace(t.peek()) {
		t.next()
	}
	if q := t.peek(); q == '"' || q == '\'' {
		if _, err := t.scanString(); err != nil {
			return token.EOF, err
		}
		for isSpace(t.peek()) {
			t.next()
		}
		if t.next() != ')' {
			return token.EOF, errors.New("unterminated url")
		}
		return token.URL, nil
	}
	for {
		switch r := t.next(); r {
		case eof:
			return token.EOF, errors.New("unterminated url")
		case '\\':
			t.next()
		case ')':
			return token.URL, nil
		}
	}
}

// startsNumber follows the CSS rule for number starts, except that a
// leading sign directly after an operand is left to the expression
// evaluator as an operator.
func (t *Tokenizer) startsNumber() bool {
	r := t.peek()
	switch {
	case isDigit(r):
		return true
	case r == '.':
		return isDigit(t.peekAt(1))
	case r == '-' || r == '+':
		if t.prev != token.Whitespace && t.prev != token.ParenOpen && t.prev != token.Comma &&
			t.prev != token.Colon && t.prev != token.Other && t.prev != token.BracketOpen {
			return false
		}
		if isDigit(t.peekAt(1)) {
			return true
		}
		return t.peekAt(1) == '.' && isDigit(t.peekAt(2))
	}
	return false
}

func (t *Tokenizer) scanNumeric() token.Type {
	if r := t.peek(); r == '-' || r == '+' {
		t.next()
	}
	for isDigit(t.peek()) {
		t.next()
	}
	if t.peek() == '.' && isDigit(t.peekAt(1)) {
		t.next()
		for isDigit(t.peek()) {
			t.next()
		}
	}
	switch {
	case t.peek() == '%':
		t.next()
		return token.Percentage
	case t.startsIdentifier():
		t.scanName()
		return token.Dimension
	}
	return token.Number
}

func (t *Tokenizer) startsIdentifier() bool {
	r := t.peek()
	switch {
	case isNameStart(r):
		return true
	case r == '\\':
		return t.peekAt(1) != '\n' && t.peekAt(1) != eof
	case r == '-':
		n := t.peekAt(1)
		return isNameStart(n) || n == '-' || (n == '\\' && t.peekAt(2) != eof)
	}
	return false
}

func (t *Tokenizer) scanName() {
	for {
		r := t.peek()
		switch {
		case isNameChar(r):
			t.next()
		case r == '\\' && t.peekAt(1) != eof && t.peekAt(1) != '\n':
			t.next()
			t.next()
		default:
			return
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r) || r == '-'
}

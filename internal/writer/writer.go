// Package writer serializes a plain CSS tree, optionally recording
// source map positions as it goes.
package writer

import (
	"io"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/position"
	"bennypowers.dev/lessc/internal/token"
)

// Format selects the output layout
type Format int

const (
	// FormatCompact writes `sel{prop:value;}` with no whitespace
	FormatCompact Format = iota
	// FormatPretty writes one declaration per line, indented
	FormatPretty
)

// ParseFormat maps "compact" or "pretty" to a Format
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "", "compact":
		return FormatCompact, true
	case "pretty":
		return FormatPretty, true
	}
	return FormatCompact, false
}

func (f Format) String() string {
	if f == FormatPretty {
		return "pretty"
	}
	return "compact"
}

// Mapper records that the output at generated came from original
type Mapper interface {
	WriteMapping(generated position.Cursor, original token.Location)
}

// Option configures a CSSWriter
type Option func(*CSSWriter)

// WithFormat sets the output layout
func WithFormat(f Format) Option {
	return func(w *CSSWriter) { w.format = f }
}

// WithMapper records source positions in m
func WithMapper(m Mapper) Option {
	return func(w *CSSWriter) { w.mapper = m }
}

// CSSWriter writes CSS. The first write error is kept and stops all
// further output.
type CSSWriter struct {
	out    io.Writer
	err    error
	cursor position.Cursor
	format Format
	mapper Mapper
	depth  int
	empty  bool
}

// NewCSSWriter creates a writer on out
func NewCSSWriter(out io.Writer, opts ...Option) *CSSWriter {
	w := &CSSWriter{out: out, cursor: position.NewCursor(), empty: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Err returns the first write error
func (w *CSSWriter) Err() error {
	return w.err
}

// Position is the line and UTF-16 column of the next byte written
func (w *CSSWriter) Position() position.Cursor {
	return w.cursor
}

func (w *CSSWriter) write(s string) {
	if w.err != nil || s == "" {
		return
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		w.err = err
		return
	}
	w.cursor.Advance(s)
	w.empty = false
}

func (w *CSSWriter) mapTo(loc token.Location) {
	if w.mapper != nil && loc.IsValid() {
		w.mapper.WriteMapping(w.cursor, loc)
	}
}

func (w *CSSWriter) pretty() bool {
	return w.format == FormatPretty
}

// startLine moves to a fresh indented line in pretty output
func (w *CSSWriter) startLine() {
	if !w.pretty() {
		return
	}
	if !w.empty {
		w.write("\n")
	}
	w.write(strings.Repeat("  ", w.depth))
}

func (w *CSSWriter) writeTokens(tokens token.List) {
	for _, t := range tokens {
		w.write(t.Text)
	}
}

// writeSelector maps the selector start and the start of every group
// after a comma
func (w *CSSWriter) writeSelector(selector token.List) {
	w.mapTo(selector.Front().Location)
	afterComma := false
	for _, t := range selector {
		if afterComma && !t.IsWhitespace() {
			loc := t.Location
			if !loc.IsValid() {
				loc = selector.Front().Location
			}
			w.mapTo(loc)
			afterComma = false
		}
		w.write(t.Text)
		if t.Type == token.Comma {
			afterComma = true
		}
	}
}

// writeValue maps the value start and every token that comes from a
// different file or line than the one before
func (w *CSSWriter) writeValue(value token.List) {
	if len(value) == 0 {
		return
	}
	last := value.Front().Location
	w.mapTo(last)
	for _, t := range value {
		if t.IsValid() && (t.Source != last.Source || t.Line != last.Line) {
			w.mapTo(t.Location)
			last = t.Location
		}
		w.write(t.Text)
	}
}

// WriteAtRule writes `@keyword rule;`, or `@keyword rule{...}` when the
// rule ends in a block
func (w *CSSWriter) WriteAtRule(keyword token.Token, rule token.List) {
	w.startLine()
	w.mapTo(keyword.Location)
	w.write(keyword.Text)
	rule = rule.Trim()
	if len(rule) > 0 {
		w.write(" ")
		w.mapTo(rule.Front().Location)
		w.writeTokens(rule)
	}
	if rule.Back().Type != token.BraceClose {
		w.write(";")
	}
}

// WriteRulesetStart writes the selector and opens the block
func (w *CSSWriter) WriteRulesetStart(selector token.List) {
	w.startLine()
	w.writeSelector(selector)
	if w.pretty() {
		w.write(" ")
	}
	w.write("{")
	w.depth++
}

// WriteRulesetEnd closes a ruleset block
func (w *CSSWriter) WriteRulesetEnd() {
	w.depth--
	w.startLine()
	w.write("}")
}

// WriteDeclaration writes `property:value`
func (w *CSSWriter) WriteDeclaration(property token.Token, value token.List) {
	w.startLine()
	w.mapTo(property.Location)
	w.write(property.Text)
	w.write(":")
	if w.pretty() {
		w.write(" ")
	}
	w.writeValue(value)
}

// WriteDeclarationDelimiter ends a declaration
func (w *CSSWriter) WriteDeclarationDelimiter() {
	w.write(";")
}

// WriteMediaQueryStart writes `@media query` and opens the block
func (w *CSSWriter) WriteMediaQueryStart(selector token.List) {
	w.WriteRulesetStart(selector)
}

// WriteMediaQueryEnd closes a media query block
func (w *CSSWriter) WriteMediaQueryEnd() {
	w.WriteRulesetEnd()
}

// WriteComment copies a block comment
func (w *CSSWriter) WriteComment(comment token.Token) {
	w.startLine()
	w.mapTo(comment.Location)
	w.write(comment.Text)
}

// WriteStylesheet writes every statement of ss
func (w *CSSWriter) WriteStylesheet(ss *ast.Stylesheet) error {
	w.writeStatements(ss.Statements)
	if w.pretty() && !w.empty {
		w.write("\n")
	}
	return w.err
}

func (w *CSSWriter) writeStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Ruleset:
			w.WriteRulesetStart(s.Selector)
			for _, inner := range s.Statements {
				switch d := inner.(type) {
				case *ast.Declaration:
					w.WriteDeclaration(d.Property, d.Value)
					w.WriteDeclarationDelimiter()
				case *ast.Comment:
					w.WriteComment(d.Token)
				}
			}
			w.WriteRulesetEnd()
		case *ast.MediaQuery:
			w.WriteMediaQueryStart(s.Selector)
			w.writeStatements(s.Statements)
			w.WriteMediaQueryEnd()
		case *ast.AtRule:
			w.WriteAtRule(s.Keyword, s.Rule)
		case *ast.Comment:
			w.WriteComment(s.Token)
		case *ast.Raw:
			w.startLine()
			w.mapTo(s.Location)
			w.write(s.Text)
		}
	}
}

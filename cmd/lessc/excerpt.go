package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bennypowers.dev/lessc/internal/lexer"
	"bennypowers.dev/lessc/internal/parser"
	"bennypowers.dev/lessc/internal/position"
	"bennypowers.dev/lessc/internal/processor"
	"bennypowers.dev/lessc/internal/token"
)

// errorLocation finds the source location an error points at
func errorLocation(err error) (token.Location, bool) {
	var perr *processor.Error
	if errors.As(err, &perr) && perr.Location.IsValid() {
		return perr.Location, true
	}
	var serr *parser.ParseError
	if errors.As(err, &serr) && serr.Token.Location.IsValid() {
		return serr.Token.Location, true
	}
	var ierr *parser.ImportError
	if errors.As(err, &ierr) && ierr.Location.IsValid() {
		return ierr.Location, true
	}
	var lerr *lexer.Error
	if errors.As(err, &lerr) && lerr.Location.IsValid() {
		return lerr.Location, true
	}
	return token.Location{}, false
}

// excerpt renders the line an error points at with a caret under the
// column. stdin holds the input when it was read from standard input.
// It returns "" when the source cannot be read.
func excerpt(err error, stdin []byte) string {
	loc, ok := errorLocation(err)
	if !ok {
		return ""
	}
	var src []byte
	if loc.Source == "stdin" {
		src = stdin
	} else if src, err = os.ReadFile(loc.Source); err != nil {
		return ""
	}
	lines := strings.Split(string(src), "\n")
	if loc.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[loc.Line-1], "\r")

	// columns count UTF-16 units from 1
	prefix := line[:position.UTF16ToByteOffset(line, loc.Column-1)]
	pad := strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		return ' '
	}, prefix)

	gutter := fmt.Sprintf("%d", loc.Line)
	return fmt.Sprintf("%s | %s\n%s | %s^\n", gutter, line, strings.Repeat(" ", len(gutter)), pad)
}

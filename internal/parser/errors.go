package parser

import (
	"errors"
	"fmt"

	"bennypowers.dev/lessc/internal/token"
)

// Sentinel errors for error type checking
var (
	// ErrParse indicates the token stream does not match the grammar
	ErrParse = errors.New("parse error")

	// ErrImport indicates an imported file could not be read
	ErrImport = errors.New("import error")
)

// ParseError is a grammar violation at Token
type ParseError struct {
	Token    token.Token
	Expected string
}

func (e *ParseError) Error() string {
	found := e.Token.Text
	if e.Token.Type == token.EOF {
		found = "end of file"
	}
	return fmt.Sprintf("%s: found %q when expecting %s", e.Token.Location, found, e.Expected)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a new parse error
func NewParseError(t token.Token, expected string) error {
	return &ParseError{Token: t, Expected: expected}
}

// ImportError is a missing or unreadable import
type ImportError struct {
	Path     string
	Location token.Location
	Err      error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("%s: cannot import %q", e.Location, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrImport}
	}
	return []error{ErrImport, e.Err}
}

// NewImportError creates a new import error
func NewImportError(path string, loc token.Location, err error) error {
	return &ImportError{Path: path, Location: loc, Err: err}
}

// bailout carries an error up the recursive descent to the public entry
// point, where it is recovered.
type bailout struct {
	err error
}

func recoverError(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}
	*errp = b.err
}

package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error type checking
var (
	// ErrParse indicates a token file is not valid JSON or YAML
	ErrParse = errors.New("cannot parse token file")

	// ErrUnknownReference indicates an alias names no loaded token
	ErrUnknownReference = errors.New("unknown token reference")

	// ErrCircularReference indicates aliases or $extends form a loop
	ErrCircularReference = errors.New("circular reference detected")
)

// ParseError represents a token file that could not be decoded
type ParseError struct {
	FilePath string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// NewParseError creates a new parse error
func NewParseError(filePath string, err error) error {
	return &ParseError{FilePath: filePath, Err: err}
}

// UnknownReferenceError represents an alias to a token that does not exist
type UnknownReferenceError struct {
	FilePath   string
	TokenPath  string
	Reference  string
	Suggestion string
}

func (e *UnknownReferenceError) Error() string {
	msg := fmt.Sprintf("token '%s' in %s references unknown token %s", e.TokenPath, e.FilePath, e.Reference)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownReferenceError) Unwrap() error {
	return ErrUnknownReference
}

// NewUnknownReferenceError creates a new unknown reference error
func NewUnknownReferenceError(filePath, tokenPath, reference, suggestion string) error {
	return &UnknownReferenceError{
		FilePath:   filePath,
		TokenPath:  tokenPath,
		Reference:  reference,
		Suggestion: suggestion,
	}
}

// CircularReferenceError represents a circular reference
type CircularReferenceError struct {
	FilePath       string
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	chain := strings.Join(e.ReferenceChain, " → ")
	if e.FilePath == "" {
		return fmt.Sprintf("circular reference detected: %s", chain)
	}
	return fmt.Sprintf("circular reference detected in %s: %s", e.FilePath, chain)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(filePath string, chain []string) error {
	return &CircularReferenceError{
		FilePath:       filePath,
		ReferenceChain: chain,
	}
}

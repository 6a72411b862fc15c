package processor

import (
	"errors"
	"fmt"

	"bennypowers.dev/lessc/internal/token"
)

// Sentinel errors for error type checking
var (
	// ErrUndefinedVariable indicates a reference to a variable no scope binds
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrUndefinedMixin indicates a call no ruleset answers to
	ErrUndefinedMixin = errors.New("undefined mixin")

	// ErrArguments indicates a mixin exists but none of its definitions
	// accept the call's arguments
	ErrArguments = errors.New("no matching mixin definition")

	// ErrRecursion indicates a variable or mixin that refers to itself
	ErrRecursion = errors.New("recursive reference")

	// ErrStatement indicates a ruleset statement that is neither a
	// declaration nor a mixin call
	ErrStatement = errors.New("invalid statement")
)

// Error is a processing failure at a source location
type Error struct {
	token.Location
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error at loc wrapping err
func NewError(loc token.Location, err error, format string, args ...interface{}) *Error {
	return &Error{Location: loc, Message: fmt.Sprintf(format, args...), Err: err}
}

// wrap attaches a location to err unless it already carries one
func wrap(loc token.Location, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Location: loc, Message: err.Error(), Err: err}
}

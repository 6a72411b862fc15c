// Package value implements the runtime values of LESS expressions and
// their arithmetic.
package value

import (
	"errors"
	"fmt"

	"bennypowers.dev/lessc/internal/token"
)

// Sentinel errors for error type checking
var (
	// ErrType indicates an operation between incompatible value types
	ErrType = errors.New("incompatible types")

	// ErrUnit indicates arithmetic between incompatible units
	ErrUnit = errors.New("incompatible units")

	// ErrDivide indicates division by zero
	ErrDivide = errors.New("division by zero")

	// ErrArgument indicates a function called with bad arguments
	ErrArgument = errors.New("invalid argument")
)

// Kind identifies the variant of a Value
type Kind int

const (
	KindBoolean Kind = iota
	KindString
	KindNumber
	KindColor
	KindKeyword
	KindList
	KindRaw
)

var kindNames = [...]string{"boolean", "string", "number", "color", "keyword", "list", "value"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Op is an arithmetic operator
type Op byte

const (
	OpAdd      Op = '+'
	OpSubtract Op = '-'
	OpMultiply Op = '*'
	OpDivide   Op = '/'
)

func (o Op) verb() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "compare"
}

// Value is a typed operand of an expression
type Value interface {
	Kind() Kind
	// Tokens serializes the value
	Tokens() token.List
	Add(Value) (Value, error)
	Subtract(Value) (Value, error)
	Multiply(Value) (Value, error)
	Divide(Value) (Value, error)
	// Compare orders two values, returning 0 when they are equal
	Compare(Value) (int, error)
}

// OperationError is a failed arithmetic operation
type OperationError struct {
	Op          Op
	Left, Right Value
	Err         error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("cannot %s %s %s and %s %s: %v",
		e.Op.verb(), e.Left.Kind(), Format(e.Left), e.Right.Kind(), Format(e.Right), e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op Op, l, r Value, err error) error {
	return &OperationError{Op: op, Left: l, Right: r, Err: err}
}

// Apply performs op on l and r
func Apply(op Op, l, r Value) (Value, error) {
	switch op {
	case OpAdd:
		return l.Add(r)
	case OpSubtract:
		return l.Subtract(r)
	case OpMultiply:
		return l.Multiply(r)
	case OpDivide:
		return l.Divide(r)
	}
	return nil, fmt.Errorf("unknown operator %q", byte(op))
}

// Format serializes v to text
func Format(v Value) string {
	return v.Tokens().String()
}

// FromToken turns a single token into a value. Tokens with no arithmetic
// meaning become Raw values.
func FromToken(t token.Token, units UnitPolicy) Value {
	switch t.Type {
	case token.Number, token.Percentage, token.Dimension:
		if n, ok := ParseNumber(t.Text, units); ok {
			return n
		}
	case token.Hash:
		if c, ok := ParseColor(t.Text); ok {
			return c
		}
	case token.String:
		return NewString(t.Unquote(), t.Quote())
	case token.Identifier:
		return &Keyword{Name: t.Text}
	}
	return &Raw{List: token.List{t}}
}

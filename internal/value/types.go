package value

import (
	"strings"

	"bennypowers.dev/lessc/internal/token"
	"github.com/mazznoer/csscolorparser"
)

// String is a quoted string, or an escaped one when Quote is 0
type String struct {
	Text  string
	Quote byte
}

// NewString creates a string with the given quote character
func NewString(text string, quote byte) *String {
	return &String{Text: text, Quote: quote}
}

func (s *String) Kind() Kind { return KindString }

func (s *String) String() string {
	if s.Quote == 0 {
		return s.Text
	}
	return string(s.Quote) + s.Text + string(s.Quote)
}

func (s *String) Tokens() token.List {
	if s.Quote == 0 {
		return token.List{token.Synthetic(token.Other, s.Text)}
	}
	return token.List{token.Synthetic(token.String, s.String())}
}

// Add concatenates. Strings absorb every other kind of value.
func (s *String) Add(other Value) (Value, error) {
	text := Format(other)
	if o, ok := other.(*String); ok {
		text = o.Text
	}
	return NewString(s.Text+text, s.Quote), nil
}

func (s *String) Subtract(other Value) (Value, error) {
	return nil, opError(OpSubtract, s, other, ErrType)
}

func (s *String) Multiply(other Value) (Value, error) {
	return nil, opError(OpMultiply, s, other, ErrType)
}

func (s *String) Divide(other Value) (Value, error) {
	return nil, opError(OpDivide, s, other, ErrType)
}

func (s *String) Compare(other Value) (int, error) {
	o := Format(other)
	if os, ok := other.(*String); ok {
		o = os.Text
	}
	return strings.Compare(s.Text, o), nil
}

// Boolean is the result of a comparison or an is* function
type Boolean struct {
	Value bool
}

// NewBoolean creates a boolean
func NewBoolean(b bool) *Boolean {
	return &Boolean{Value: b}
}

func (b *Boolean) Kind() Kind { return KindBoolean }

func (b *Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (b *Boolean) Tokens() token.List {
	return token.List{token.Synthetic(token.Identifier, b.String())}
}

// Add defers to a string operand and fails otherwise
func (b *Boolean) Add(other Value) (Value, error) {
	if s, ok := other.(*String); ok {
		return NewString(b.String()+s.Text, s.Quote), nil
	}
	return nil, opError(OpAdd, b, other, ErrType)
}

func (b *Boolean) Subtract(other Value) (Value, error) {
	return nil, opError(OpSubtract, b, other, ErrType)
}

func (b *Boolean) Multiply(other Value) (Value, error) {
	return nil, opError(OpMultiply, b, other, ErrType)
}

func (b *Boolean) Divide(other Value) (Value, error) {
	return nil, opError(OpDivide, b, other, ErrType)
}

// Compare only accepts booleans; false orders before true
func (b *Boolean) Compare(other Value) (int, error) {
	o, ok := other.(*Boolean)
	if !ok {
		return 0, opError('=', b, other, ErrType)
	}
	switch {
	case b.Value == o.Value:
		return 0, nil
	case !b.Value:
		return -1, nil
	}
	return 1, nil
}

// Keyword is a bare identifier such as `solid` or `red`
type Keyword struct {
	Name string
}

func (k *Keyword) Kind() Kind { return KindKeyword }

func (k *Keyword) Tokens() token.List {
	return token.List{token.Synthetic(token.Identifier, k.Name)}
}

// Color returns the named color the keyword spells, if any
func (k *Keyword) Color() (*Color, bool) {
	if isHex(k.Name) {
		return nil, false
	}
	c, err := csscolorparser.Parse(k.Name)
	if err != nil {
		return nil, false
	}
	return &Color{Color: c, Text: k.Name}, true
}

func (k *Keyword) arith(op Op, other Value) (Value, error) {
	if c, ok := k.Color(); ok {
		return c.arith(op, other)
	}
	if s, ok := other.(*String); ok && op == OpAdd {
		return NewString(k.Name+s.Text, s.Quote), nil
	}
	return nil, opError(op, k, other, ErrType)
}

func (k *Keyword) Add(other Value) (Value, error)      { return k.arith(OpAdd, other) }
func (k *Keyword) Subtract(other Value) (Value, error) { return k.arith(OpSubtract, other) }
func (k *Keyword) Multiply(other Value) (Value, error) { return k.arith(OpMultiply, other) }
func (k *Keyword) Divide(other Value) (Value, error)   { return k.arith(OpDivide, other) }

func (k *Keyword) Compare(other Value) (int, error) {
	if c, ok := k.Color(); ok {
		if _, isColor := other.(*Color); isColor {
			return c.Compare(other)
		}
	}
	return strings.Compare(k.Name, Format(other)), nil
}

// Raw is a span with no arithmetic meaning, such as url(...) or an
// unknown function call
type Raw struct {
	token.List
}

func (r *Raw) Kind() Kind         { return KindRaw }
func (r *Raw) Tokens() token.List { return r.List }
func (r *Raw) Add(o Value) (Value, error) {
	if s, ok := o.(*String); ok {
		return NewString(r.List.String()+s.Text, s.Quote), nil
	}
	return nil, opError(OpAdd, r, o, ErrType)
}
func (r *Raw) Subtract(o Value) (Value, error) { return nil, opError(OpSubtract, r, o, ErrType) }
func (r *Raw) Multiply(o Value) (Value, error) { return nil, opError(OpMultiply, r, o, ErrType) }
func (r *Raw) Divide(o Value) (Value, error)   { return nil, opError(OpDivide, r, o, ErrType) }
func (r *Raw) Compare(o Value) (int, error) {
	return strings.Compare(r.List.String(), Format(o)), nil
}

// List is a space or comma separated sequence of values
type List struct {
	Items []Value
	Comma bool
}

func (l *List) Kind() Kind { return KindList }

func (l *List) Tokens() token.List {
	var out token.List
	for i, item := range l.Items {
		if i > 0 {
			if l.Comma {
				out = append(out, token.Synthetic(token.Comma, ","))
			}
			out = append(out, token.Space)
		}
		out = append(out, item.Tokens()...)
	}
	return out
}

func (l *List) Add(o Value) (Value, error)      { return nil, opError(OpAdd, l, o, ErrType) }
func (l *List) Subtract(o Value) (Value, error) { return nil, opError(OpSubtract, l, o, ErrType) }
func (l *List) Multiply(o Value) (Value, error) { return nil, opError(OpMultiply, l, o, ErrType) }
func (l *List) Divide(o Value) (Value, error)   { return nil, opError(OpDivide, l, o, ErrType) }

func (l *List) Compare(o Value) (int, error) {
	return strings.Compare(Format(l), Format(o)), nil
}

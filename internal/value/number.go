package value

import (
	"math"
	"strconv"
	"strings"

	"bennypowers.dev/lessc/internal/token"
)

// Number is a number with an optional unit. Percentages use the unit "%".
type Number struct {
	Value float64
	Unit  string
	Units UnitPolicy
}

// NewNumber creates a number
func NewNumber(v float64, unit string, units UnitPolicy) *Number {
	return &Number{Value: v, Unit: unit, Units: units}
}

// ParseNumber reads "12", "-1.5em" or "50%"
func ParseNumber(s string, units UnitPolicy) (*Number, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return nil, false
	}
	return &Number{Value: v, Unit: s[end:], Units: units}, true
}

func (n *Number) Kind() Kind { return KindNumber }

// FormatNumber renders v rounded to 8 decimals without trailing zeros
func FormatNumber(v float64) string {
	v = math.Round(v*1e8) / 1e8
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (n *Number) String() string {
	return FormatNumber(n.Value) + n.Unit
}

func (n *Number) Tokens() token.List {
	typ := token.Number
	switch {
	case n.Unit == "%":
		typ = token.Percentage
	case n.Unit != "":
		typ = token.Dimension
	}
	return token.List{token.Synthetic(typ, n.String())}
}

// reconcile brings other into n's unit. The result unit is n's, or
// other's when n has none.
func (n *Number) reconcile(op Op, other *Number) (float64, string, error) {
	switch {
	case n.Unit == other.Unit:
		return other.Value, n.Unit, nil
	case n.Unit == "":
		return other.Value, other.Unit, nil
	case other.Unit == "":
		return other.Value, n.Unit, nil
	case n.Units == UnitsStrict:
		return 0, "", opError(op, n, other, ErrUnit)
	}
	v, ok := convertUnit(other.Value, other.Unit, n.Unit)
	if !ok {
		return 0, "", opError(op, n, other, ErrUnit)
	}
	return v, n.Unit, nil
}

func (n *Number) arith(op Op, other Value) (Value, error) {
	switch o := other.(type) {
	case *Number:
		v, unit, err := n.reconcile(op, o)
		if err != nil {
			return nil, err
		}
		var r float64
		switch op {
		case OpAdd:
			r = n.Value + v
		case OpSubtract:
			r = n.Value - v
		case OpMultiply:
			r = n.Value * v
		case OpDivide:
			if v == 0 {
				return nil, opError(op, n, other, ErrDivide)
			}
			r = n.Value / v
		}
		return &Number{Value: r, Unit: unit, Units: n.Units}, nil

	case *Color:
		if op == OpAdd || op == OpMultiply {
			return o.arith(op, n)
		}
	case *Keyword:
		if c, ok := o.Color(); ok && (op == OpAdd || op == OpMultiply) {
			return c.arith(op, n)
		}
	case *String:
		if op == OpAdd {
			return NewString(n.String()+o.Text, o.Quote), nil
		}
	}
	return nil, opError(op, n, other, ErrType)
}

func (n *Number) Add(other Value) (Value, error)      { return n.arith(OpAdd, other) }
func (n *Number) Subtract(other Value) (Value, error) { return n.arith(OpSubtract, other) }
func (n *Number) Multiply(other Value) (Value, error) { return n.arith(OpMultiply, other) }
func (n *Number) Divide(other Value) (Value, error)   { return n.arith(OpDivide, other) }

func (n *Number) Compare(other Value) (int, error) {
	o, ok := other.(*Number)
	if !ok {
		return 0, opError('=', n, other, ErrType)
	}
	v, _, err := n.reconcile('=', o)
	if err != nil {
		return 0, err
	}
	switch {
	case n.Value < v:
		return -1, nil
	case n.Value > v:
		return 1, nil
	}
	return 0, nil
}

// IsUnit reports whether the number has unit u, ignoring case
func (n *Number) IsUnit(u string) bool {
	return strings.EqualFold(n.Unit, u)
}

package value

import (
	"fmt"
	"math"
	"strings"

	"bennypowers.dev/lessc/internal/token"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Color is an RGBA color with channels in 0..1
type Color struct {
	csscolorparser.Color
	// Text is the source spelling, kept until the color is modified
	Text string
}

// ParseColor reads a hex color or any color csscolorparser understands
func ParseColor(s string) (*Color, bool) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return nil, false
	}
	return &Color{Color: c, Text: s}, true
}

// NewColor creates a color from 0..255 channels and a 0..1 alpha
func NewColor(r, g, b, a float64) *Color {
	return &Color{Color: csscolorparser.Color{
		R: clamp(r/255, 0, 1),
		G: clamp(g/255, 0, 1),
		B: clamp(b/255, 0, 1),
		A: clamp(a, 0, 1),
	}}
}

// FromHSL creates a color from hue in degrees and saturation, lightness
// and alpha in 0..1
func FromHSL(h, s, l, a float64) *Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp(s, 0, 1), clamp(l, 0, 1)).Clamped()
	return &Color{Color: csscolorparser.Color{R: c.R, G: c.G, B: c.B, A: clamp(a, 0, 1)}}
}

// HSL returns hue in degrees and saturation and lightness in 0..1
func (c *Color) HSL() (h, s, l float64) {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
}

// Channels returns red, green and blue in 0..255
func (c *Color) Channels() (r, g, b float64) {
	return c.R * 255, c.G * 255, c.B * 255
}

func (c *Color) Kind() Kind { return KindColor }

func (c *Color) String() string {
	if c.Text != "" {
		return c.Text
	}
	r, g, b := c.Channels()
	ri, gi, bi := int(math.Round(r)), int(math.Round(g)), int(math.Round(b))
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", ri, gi, bi, FormatNumber(c.A))
	}
	return fmt.Sprintf("#%02x%02x%02x", ri, gi, bi)
}

func (c *Color) Tokens() token.List {
	if c.Text != "" && !strings.HasPrefix(c.Text, "#") {
		return token.List{token.Synthetic(token.Identifier, c.Text)}
	}
	if c.Text != "" || c.A >= 1 {
		return token.List{token.Synthetic(token.Hash, c.String())}
	}
	r, g, b := c.Channels()
	num := func(v float64) token.Token { return token.Synthetic(token.Number, FormatNumber(math.Round(v))) }
	comma := token.Synthetic(token.Comma, ",")
	return token.List{
		token.Synthetic(token.Identifier, "rgba"),
		token.Synthetic(token.ParenOpen, "("),
		num(r), comma, token.Space,
		num(g), comma, token.Space,
		num(b), comma, token.Space,
		token.Synthetic(token.Number, FormatNumber(c.A)),
		token.Synthetic(token.ParenClose, ")"),
	}
}

func (c *Color) arith(op Op, other Value) (Value, error) {
	var or, og, ob float64
	switch o := other.(type) {
	case *Color:
		or, og, ob = o.Channels()
	case *Keyword:
		oc, ok := o.Color()
		if !ok {
			return nil, opError(op, c, other, ErrType)
		}
		or, og, ob = oc.Channels()
	case *Number:
		or, og, ob = o.Value, o.Value, o.Value
	case *String:
		if op == OpAdd {
			return NewString(c.String()+o.Text, o.Quote), nil
		}
		return nil, opError(op, c, other, ErrType)
	default:
		return nil, opError(op, c, other, ErrType)
	}

	r, g, b := c.Channels()
	apply := func(a, b float64) (float64, error) {
		switch op {
		case OpAdd:
			return a + b, nil
		case OpSubtract:
			return a - b, nil
		case OpMultiply:
			return a * b, nil
		}
		if b == 0 {
			return 0, opError(op, c, other, ErrDivide)
		}
		return a / b, nil
	}
	var err error
	if r, err = apply(r, or); err != nil {
		return nil, err
	}
	if g, err = apply(g, og); err != nil {
		return nil, err
	}
	if b, err = apply(b, ob); err != nil {
		return nil, err
	}
	return NewColor(r, g, b, c.A), nil
}

func (c *Color) Add(other Value) (Value, error)      { return c.arith(OpAdd, other) }
func (c *Color) Subtract(other Value) (Value, error) { return c.arith(OpSubtract, other) }
func (c *Color) Multiply(other Value) (Value, error) { return c.arith(OpMultiply, other) }
func (c *Color) Divide(other Value) (Value, error)   { return c.arith(OpDivide, other) }

func (c *Color) Compare(other Value) (int, error) {
	var o *Color
	switch v := other.(type) {
	case *Color:
		o = v
	case *Keyword:
		kc, ok := v.Color()
		if !ok {
			return 1, nil
		}
		o = kc
	default:
		return 0, opError('=', c, other, ErrType)
	}
	if c.Color.HexString() == o.Color.HexString() {
		return 0, nil
	}
	return 1, nil
}

// Luma is the relative luminance used by contrast()
func (c *Color) Luma() float64 {
	lin := func(v float64) float64 {
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return s != ""
}

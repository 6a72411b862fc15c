package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Func is a builtin function
type Func func(args []Value, units UnitPolicy) (Value, error)

var functions map[string]Func

func init() {
	functions = map[string]Func{
		"rgb":        rgb,
		"rgba":       rgb,
		"hsl":        hsl,
		"hsla":       hsl,
		"lighten":    adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l + amt }),
		"darken":     adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l - amt }),
		"saturate":   adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s + amt, l }),
		"desaturate": adjustHSL(func(h, s, l, amt float64) (float64, float64, float64) { return h, s - amt, l }),
		"spin":       spin,
		"fade":       adjustAlpha(func(_, amt float64) float64 { return amt }),
		"fadein":     adjustAlpha(func(a, amt float64) float64 { return a + amt }),
		"fadeout":    adjustAlpha(func(a, amt float64) float64 { return a - amt }),
		"mix":        mix,
		"greyscale":  greyscale,
		"contrast":   contrast,
		"red":        channel(func(c *Color) float64 { r, _, _ := c.Channels(); return r }, ""),
		"green":      channel(func(c *Color) float64 { _, g, _ := c.Channels(); return g }, ""),
		"blue":       channel(func(c *Color) float64 { _, _, b := c.Channels(); return b }, ""),
		"alpha":      channel(func(c *Color) float64 { return c.A }, ""),
		"hue":        channel(func(c *Color) float64 { h, _, _ := c.HSL(); return math.Round(h) }, ""),
		"saturation": channel(func(c *Color) float64 { _, s, _ := c.HSL(); return math.Round(s * 100) }, "%"),
		"lightness":  channel(func(c *Color) float64 { _, _, l := c.HSL(); return math.Round(l * 100) }, "%"),
		"percentage": percentage,
		"round":      round,
		"ceil":       mathFunc(math.Ceil),
		"floor":      mathFunc(math.Floor),
		"abs":        mathFunc(math.Abs),
		"sqrt":       mathFunc(math.Sqrt),
		"min":        extreme(-1),
		"max":        extreme(1),
		"unit":       unit,
		"e":          escapeString,
		"escape":     urlEscape,
		"iscolor":    is(func(v Value) bool { _, err := toColor(v); return err == nil }),
		"isnumber":   is(func(v Value) bool { return v.Kind() == KindNumber }),
		"isstring":   is(func(v Value) bool { return v.Kind() == KindString }),
		"iskeyword":  is(func(v Value) bool { return v.Kind() == KindKeyword }),
		"isurl": is(func(v Value) bool {
			return v.Kind() == KindRaw && strings.HasPrefix(strings.ToLower(Format(v)), "url(")
		}),
		"ispixel":      isUnit("px"),
		"ispercentage": isUnit("%"),
		"isem":         isUnit("em"),
		"isunit":       isunit,
	}
}

// Lookup returns the builtin named name, ignoring case
func Lookup(name string) (Func, bool) {
	f, ok := functions[strings.ToLower(name)]
	return f, ok
}

// Functions lists the builtin names in order
func Functions() []string {
	names := make([]string, 0, len(functions))
	for n := range functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func argError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}

func arity(args []Value, min, max int, name string) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return argError("%s expects %d arguments, got %d", name, min, len(args))
		}
		return argError("%s expects %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

func toColor(v Value) (*Color, error) {
	switch c := v.(type) {
	case *Color:
		return c, nil
	case *Keyword:
		if kc, ok := c.Color(); ok {
			return kc, nil
		}
	}
	return nil, argError("%s is not a color", Format(v))
}

func toNumber(v Value) (*Number, error) {
	if n, ok := v.(*Number); ok {
		return n, nil
	}
	return nil, argError("%s is not a number", Format(v))
}

// amount reads a percentage-like argument as a fraction: 10% and 10 are
// both 0.1
func amount(v Value) (float64, error) {
	n, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	return n.Value / 100, nil
}

// ratio reads an alpha, saturation or lightness argument: 50% is 0.5,
// plain numbers above 1 are read as percentages
func ratio(v Value) (float64, error) {
	n, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	if n.Unit == "%" || n.Value > 1 {
		return n.Value / 100, nil
	}
	return n.Value, nil
}

func byteChannel(v Value) (float64, error) {
	n, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	if n.Unit == "%" {
		return n.Value * 2.55, nil
	}
	return n.Value, nil
}

func rgb(args []Value, _ UnitPolicy) (Value, error) {
	if len(args) == 2 {
		c, err := toColor(args[0])
		if err != nil {
			return nil, err
		}
		a, err := ratio(args[1])
		if err != nil {
			return nil, err
		}
		r, g, b := c.Channels()
		return NewColor(r, g, b, a), nil
	}
	if err := arity(args, 3, 4, "rgb"); err != nil {
		return nil, err
	}
	var ch [3]float64
	for i := range ch {
		v, err := byteChannel(args[i])
		if err != nil {
			return nil, err
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) == 4 {
		var err error
		if a, err = ratio(args[3]); err != nil {
			return nil, err
		}
	}
	return NewColor(ch[0], ch[1], ch[2], a), nil
}

func hsl(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 3, 4, "hsl"); err != nil {
		return nil, err
	}
	h, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	s, err := ratio(args[1])
	if err != nil {
		return nil, err
	}
	l, err := ratio(args[2])
	if err != nil {
		return nil, err
	}
	a := 1.0
	if len(args) == 4 {
		if a, err = ratio(args[3]); err != nil {
			return nil, err
		}
	}
	return FromHSL(h.Value, s, l, a), nil
}

func adjustHSL(adjust func(h, s, l, amt float64) (float64, float64, float64)) Func {
	return func(args []Value, _ UnitPolicy) (Value, error) {
		if err := arity(args, 2, 2, "color adjustment"); err != nil {
			return nil, err
		}
		c, err := toColor(args[0])
		if err != nil {
			return nil, err
		}
		amt, err := amount(args[1])
		if err != nil {
			return nil, err
		}
		h, s, l := c.HSL()
		h, s, l = adjust(h, s, l, amt)
		return FromHSL(h, s, l, c.A), nil
	}
}

func spin(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 2, 2, "spin"); err != nil {
		return nil, err
	}
	c, err := toColor(args[0])
	if err != nil {
		return nil, err
	}
	deg, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	h, s, l := c.HSL()
	return FromHSL(h+deg.Value, s, l, c.A), nil
}

func adjustAlpha(adjust func(a, amt float64) float64) Func {
	return func(args []Value, _ UnitPolicy) (Value, error) {
		if err := arity(args, 2, 2, "fade"); err != nil {
			return nil, err
		}
		c, err := toColor(args[0])
		if err != nil {
			return nil, err
		}
		amt, err := amount(args[1])
		if err != nil {
			return nil, err
		}
		r, g, b := c.Channels()
		return NewColor(r, g, b, adjust(c.A, amt)), nil
	}
}

func mix(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 2, 3, "mix"); err != nil {
		return nil, err
	}
	c1, err := toColor(args[0])
	if err != nil {
		return nil, err
	}
	c2, err := toColor(args[1])
	if err != nil {
		return nil, err
	}
	p := 0.5
	if len(args) == 3 {
		if p, err = amount(args[2]); err != nil {
			return nil, err
		}
	}

	w := p*2 - 1
	a := c1.A - c2.A
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1

	r1, g1, b1 := c1.Channels()
	r2, g2, b2 := c2.Channels()
	return NewColor(r1*w1+r2*w2, g1*w1+g2*w2, b1*w1+b2*w2, c1.A*p+c2.A*(1-p)), nil
}

func greyscale(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 1, 1, "greyscale"); err != nil {
		return nil, err
	}
	c, err := toColor(args[0])
	if err != nil {
		return nil, err
	}
	h, _, l := c.HSL()
	return FromHSL(h, 0, l, c.A), nil
}

func contrast(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 1, 4, "contrast"); err != nil {
		return nil, err
	}
	c, err := toColor(args[0])
	if err != nil {
		return nil, err
	}
	dark, light := NewColor(0, 0, 0, 1), NewColor(255, 255, 255, 1)
	threshold := 0.43
	if len(args) > 1 {
		if dark, err = toColor(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if light, err = toColor(args[2]); err != nil {
			return nil, err
		}
	}
	if len(args) > 3 {
		if threshold, err = ratio(args[3]); err != nil {
			return nil, err
		}
	}
	if dark.Luma() > light.Luma() {
		dark, light = light, dark
	}
	if c.Luma() < threshold {
		return light, nil
	}
	return dark, nil
}

func channel(get func(*Color) float64, unit string) Func {
	return func(args []Value, units UnitPolicy) (Value, error) {
		if err := arity(args, 1, 1, "color channel"); err != nil {
			return nil, err
		}
		c, err := toColor(args[0])
		if err != nil {
			return nil, err
		}
		return NewNumber(get(c), unit, units), nil
	}
}

func percentage(args []Value, units UnitPolicy) (Value, error) {
	if err := arity(args, 1, 1, "percentage"); err != nil {
		return nil, err
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	return NewNumber(n.Value*100, "%", units), nil
}

func round(args []Value, units UnitPolicy) (Value, error) {
	if err := arity(args, 1, 2, "round"); err != nil {
		return nil, err
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	places := 0.0
	if len(args) == 2 {
		p, err := toNumber(args[1])
		if err != nil {
			return nil, err
		}
		places = p.Value
	}
	scale := math.Pow(10, places)
	return NewNumber(math.Round(n.Value*scale)/scale, n.Unit, units), nil
}

func mathFunc(f func(float64) float64) Func {
	return func(args []Value, units UnitPolicy) (Value, error) {
		if err := arity(args, 1, 1, "math function"); err != nil {
			return nil, err
		}
		n, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		return NewNumber(f(n.Value), n.Unit, units), nil
	}
}

func extreme(sign int) Func {
	return func(args []Value, _ UnitPolicy) (Value, error) {
		if len(args) == 0 {
			return nil, argError("min and max need at least one argument")
		}
		best, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := toNumber(a)
			if err != nil {
				return nil, err
			}
			c, err := n.Compare(best)
			if err != nil {
				return nil, err
			}
			if c*sign > 0 {
				best = n
			}
		}
		return best, nil
	}
}

func unit(args []Value, units UnitPolicy) (Value, error) {
	if err := arity(args, 1, 2, "unit"); err != nil {
		return nil, err
	}
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	u := ""
	if len(args) == 2 {
		switch a := args[1].(type) {
		case *String:
			u = a.Text
		default:
			u = Format(a)
		}
	}
	return NewNumber(n.Value, u, units), nil
}

func escapeString(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 1, 1, "e"); err != nil {
		return nil, err
	}
	if s, ok := args[0].(*String); ok {
		return NewString(s.Text, 0), nil
	}
	return NewString(Format(args[0]), 0), nil
}

var urlEscaper = strings.NewReplacer(
	" ", "%20", "=", "%3D", ":", "%3A", "#", "%23", ";", "%3B", "(", "%28", ")", "%29",
)

func urlEscape(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 1, 1, "escape"); err != nil {
		return nil, err
	}
	text := Format(args[0])
	if s, ok := args[0].(*String); ok {
		text = s.Text
	}
	return NewString(urlEscaper.Replace(text), 0), nil
}

func is(pred func(Value) bool) Func {
	return func(args []Value, _ UnitPolicy) (Value, error) {
		if err := arity(args, 1, 1, "type check"); err != nil {
			return nil, err
		}
		return NewBoolean(pred(args[0])), nil
	}
}

func isUnit(u string) Func {
	return is(func(v Value) bool {
		n, ok := v.(*Number)
		return ok && n.IsUnit(u)
	})
}

func isunit(args []Value, _ UnitPolicy) (Value, error) {
	if err := arity(args, 2, 2, "isunit"); err != nil {
		return nil, err
	}
	n, ok := args[0].(*Number)
	u := Format(args[1])
	if s, isStr := args[1].(*String); isStr {
		u = s.Text
	}
	return NewBoolean(ok && n.IsUnit(u)), nil
}

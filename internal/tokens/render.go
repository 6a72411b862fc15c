package tokens

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/lessc/internal/value"
	"github.com/lucasb-eyer/go-colorful"
)

// curlyBraceReference matches alias references: {token.reference.path}
var curlyBraceReference = regexp.MustCompile(`\{([^}]+)\}`)

// renderer turns token values into LESS value source. Aliases become
// variable references; deps collects the variables each value uses.
type renderer struct {
	m    *Manager
	tok  *Token
	deps []string
}

// render returns "" for composite values with no single CSS form, such
// as typography
func (r *renderer) render(v any, typ string) (string, error) {
	switch v := v.(type) {
	case string:
		return r.substitute(v)
	case float64:
		return value.FormatNumber(v), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []any:
		return r.list(v, typ)
	case map[string]any:
		return r.object(v, typ)
	}
	return "", nil
}

// substitute replaces every {path} alias with the variable of the token
// it names
func (r *renderer) substitute(s string) (string, error) {
	var err error
	out := curlyBraceReference.ReplaceAllStringFunc(s, func(match string) string {
		if err != nil {
			return match
		}
		var name string
		name, err = r.reference(curlyBraceReference.FindStringSubmatch(match)[1])
		return name
	})
	return out, err
}

func (r *renderer) reference(path string) (string, error) {
	target := r.m.resolve(r.tok, path)
	if target == nil {
		return "", NewUnknownReferenceError(r.tok.FilePath, strings.Join(r.tok.Path, "."), "{"+path+"}", r.m.suggest(path))
	}
	name := target.VariableName()
	r.deps = append(r.deps, name)
	return name, nil
}

func (r *renderer) list(items []any, typ string) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, err := r.render(item, typ)
		if err != nil {
			return "", err
		}
		if s == "" {
			return "", nil
		}
		if typ == "fontFamily" && strings.ContainsAny(s, " \t") && !strings.HasPrefix(s, "@") {
			s = strconv.Quote(s)
		}
		parts = append(parts, s)
	}
	if typ == "cubicBezier" {
		return "cubic-bezier(" + strings.Join(parts, ", ") + ")", nil
	}
	return strings.Join(parts, ", "), nil
}

func (r *renderer) object(obj map[string]any, typ string) (string, error) {
	if ref, ok := obj["$ref"].(string); ok {
		return r.reference(pointerPath(ref))
	}
	if _, ok := obj["colorSpace"]; ok {
		return colorCSS(obj), nil
	}
	if v, ok := obj["value"]; ok {
		if unit, ok := obj["unit"].(string); ok {
			n, err := r.render(v, "number")
			return n + unit, err
		}
	}
	switch {
	case typ == "shadow" || obj["offsetX"] != nil:
		return r.fields(obj, "inset", "offsetX", "offsetY", "blur", "spread", "color")
	case typ == "border" || (obj["width"] != nil && obj["style"] != nil):
		return r.fields(obj, "width", "style", "color")
	}
	return "", nil
}

// fields renders the named members of obj separated by spaces, skipping
// absent ones
func (r *renderer) fields(obj map[string]any, names ...string) (string, error) {
	var parts []string
	for _, name := range names {
		v, ok := obj[name]
		if !ok {
			continue
		}
		if name == "inset" {
			if b, _ := v.(bool); b {
				parts = append(parts, "inset")
			}
			continue
		}
		s, err := r.render(v, "")
		if err != nil {
			return "", err
		}
		if s == "" {
			return "", nil
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

// colorCSS renders a structured 2025.10 color. sRGB and HSL colors become
// hex or rgba() so color functions can operate on them; other spaces use
// their CSS function syntax.
func colorCSS(obj map[string]any) string {
	alpha := 1.0
	if a, ok := number(obj["alpha"]); ok {
		alpha = a
	}
	space := strings.ToLower(fmt.Sprint(obj["colorSpace"]))
	components, _ := obj["components"].([]any)

	if hex, ok := obj["hex"].(string); ok && hex != "" && alpha >= 1 {
		return hex
	}

	var c colorful.Color
	switch space {
	case "srgb":
		if len(components) < 3 {
			return ""
		}
		c = colorful.Color{R: component(components[0]), G: component(components[1]), B: component(components[2])}.Clamped()
	case "hsl":
		if len(components) < 3 {
			return ""
		}
		c = colorful.Hsl(component(components[0]), component(components[1])/100, component(components[2])/100).Clamped()
	default:
		return colorFunction(space, components, alpha)
	}

	if alpha >= 1 {
		return c.Hex()
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, value.FormatNumber(alpha))
}

func colorFunction(space string, components []any, alpha float64) string {
	if len(components) < 3 {
		return ""
	}
	parts := make([]string, 3)
	for i, comp := range components[:3] {
		if s, ok := comp.(string); ok {
			parts[i] = s // "none"
		} else {
			parts[i] = value.FormatNumber(component(comp))
		}
	}
	fn := space + "("
	switch space {
	case "hwb":
		parts[1] += "%"
		parts[2] += "%"
	case "oklch", "oklab", "lch", "lab":
	default:
		fn = "color(" + space + " "
	}
	out := fn + strings.Join(parts, " ")
	if alpha < 1 {
		out += " / " + value.FormatNumber(alpha)
	}
	return out + ")"
}

// component converts a color component to float64. The "none" keyword
// counts as zero.
func component(v any) float64 {
	f, _ := number(v)
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

package processor

import (
	"errors"
	"regexp"
	"strings"

	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/token"
	"bennypowers.dev/lessc/internal/value"
)

// substitute-only functions whose arguments are plain CSS
var cssFunctions = map[string]bool{
	"calc": true,
	"var":  true,
	"env":  true,
	"attr": true,
}

var interpolation = regexp.MustCompile(`@\{([\w-]+)\}`)

// evaluator evaluates value expressions in one scope
type evaluator struct {
	p     *Processor
	scope *scope
}

// variable resolves a variable reference. `@@name` names the variable
// whose name is the value of @name.
func (e *evaluator) variable(at token.Token) (result, error) {
	name := at.Text
	if strings.HasPrefix(name, "@@") {
		inner, err := e.lookup("@"+name[2:], at)
		if err != nil {
			return result{}, err
		}
		name = "@" + inner.text()
	}
	return e.lookup(name, at)
}

// lookup finds name in the scope chain and evaluates it in the scope
// that binds it
func (e *evaluator) lookup(name string, at token.Token) (result, error) {
	def := e.scope.find(name)
	if def == nil {
		return result{}, NewError(at.Location, ErrUndefinedVariable,
			"variable %s is undefined%s", name, didYouMean(name, e.scope.names()))
	}
	if r, ok := def.values[name]; ok {
		return r, nil
	}
	if def.evaluating.Has(name) {
		return result{}, NewError(at.Location, ErrRecursion, "recursive variable definition for %s", name)
	}
	def.evaluating.Add(name)
	defer def.evaluating.Remove(name)

	log.Debug("Evaluating %s", name)
	r, err := (&evaluator{p: e.p, scope: def}).eval(def.vars[name])
	if err != nil {
		return result{}, err
	}
	def.values[name] = r
	return r, nil
}

// interpolate replaces `@{name}` in token sequences, strings and urls
func (e *evaluator) interpolate(tokens token.List) (token.List, error) {
	var out token.List
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.IsOther("@") && i+3 < len(tokens) &&
			tokens[i+1].Type == token.BraceOpen &&
			tokens[i+2].Type == token.Identifier &&
			tokens[i+3].Type == token.BraceClose {
			r, err := e.lookup("@"+tokens[i+2].Text, tokens[i+2])
			if err != nil {
				return nil, err
			}
			out = append(out, token.New(token.Identifier, r.text(), t.Location))
			i += 3
			continue
		}
		if (t.Type == token.String || t.Type == token.URL) && strings.Contains(t.Text, "@{") {
			text, err := e.interpolateText(t)
			if err != nil {
				return nil, err
			}
			t.Text = text
		}
		out = append(out, t)
	}
	return out, nil
}

func (e *evaluator) interpolateText(t token.Token) (string, error) {
	var err error
	text := interpolation.ReplaceAllStringFunc(t.Text, func(m string) string {
		if err != nil {
			return m
		}
		var r result
		r, err = e.lookup("@"+m[2:len(m)-1], t)
		return r.text()
	})
	return text, err
}

// substitute interpolates tokens and replaces variable references with
// their values without evaluating arithmetic. With lenient set, unknown
// at-keywords are kept, so nested at-rules survive.
func (e *evaluator) substitute(tokens token.List, lenient bool) (token.List, error) {
	tokens, err := e.interpolate(tokens)
	if err != nil {
		return nil, err
	}
	var out token.List
	for _, t := range tokens {
		if t.Type != token.AtKeyword {
			out = append(out, t)
			continue
		}
		r, err := e.variable(t)
		if err != nil {
			if lenient && errors.Is(err, ErrUndefinedVariable) {
				out = append(out, t)
				continue
			}
			return nil, err
		}
		out = append(out, r.Tokens...)
	}
	return out, nil
}

// eval evaluates a value: every space or comma separated expression is
// computed, literals with no operator are kept as written
func (e *evaluator) eval(tokens token.List) (result, error) {
	return e.evalDepth(tokens, 0)
}

func (e *evaluator) evalDepth(tokens token.List, depth int) (result, error) {
	tokens, err := e.interpolate(tokens.Trim())
	if err != nil {
		return result{}, err
	}

	var (
		out      token.List
		single   value.Value
		operands int
		others   bool
	)
	for i := 0; i < len(tokens); {
		t := tokens[i]
		if t.IsWhitespace() {
			if len(out) > 0 && !out.Back().IsWhitespace() {
				out = append(out, token.Space.At(t.Location))
			}
			i++
			continue
		}

		x := &expression{e: e, tokens: tokens, pos: i, depth: depth}
		v, ok, err := x.parse()
		if err != nil {
			return result{}, err
		}
		if !ok {
			out = append(out, t)
			others = true
			i++
			continue
		}

		operands++
		single = v
		switch {
		case x.ops == 0 && x.literal:
			out = append(out, tokens[i:x.pos]...)
		case x.ops == 0 && x.variable != nil:
			out = append(out, x.variable...)
		default:
			out = append(out, relocate(v.Tokens(), t.Location)...)
		}
		i = x.pos
	}

	r := result{Tokens: out.RTrim()}
	if operands == 1 && !others {
		r.Value = single
	}
	return r, nil
}

// relocate gives synthesized tokens the location of the expression that
// produced them
func relocate(tokens token.List, loc token.Location) token.List {
	out := tokens.Clone()
	for i := range out {
		if !out[i].IsValid() {
			out[i].Location = loc
		}
	}
	return out
}

// toValue turns an evaluated result into an operand
func toValue(r result) value.Value {
	if r.Value != nil {
		return r.Value
	}
	return &value.Raw{List: r.Tokens}
}

// expression parses and computes one operand expression
type expression struct {
	e      *evaluator
	tokens token.List
	pos    int
	depth  int

	// ops counts applied operators
	ops int
	// literal is set when the expression is a single literal token
	literal bool
	// variable holds the value of an expression that is a lone variable
	variable token.List
}

func (x *expression) peek() token.Token {
	if x.pos < len(x.tokens) {
		return x.tokens[x.pos]
	}
	return token.Token{Type: token.EOF}
}

func (x *expression) peekAt(offset int) token.Token {
	if x.pos+offset < len(x.tokens) {
		return x.tokens[x.pos+offset]
	}
	return token.Token{Type: token.EOF}
}

func (x *expression) skipSpace() {
	for x.pos < len(x.tokens) && x.tokens[x.pos].IsWhitespace() {
		x.pos++
	}
}

func (x *expression) units() value.UnitPolicy {
	return x.e.p.opts.Units
}

// parse reads `term (('+'|'-') term)*`
func (x *expression) parse() (value.Value, bool, error) {
	l, ok, err := x.term()
	if !ok || err != nil {
		return nil, ok, err
	}
	for {
		save := x.pos
		x.skipSpace()
		op := x.peek()
		if !op.IsOther("+") && !op.IsOther("-") {
			x.pos = save
			return l, true, nil
		}
		x.pos++
		x.skipSpace()
		r, ok, err := x.term()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			x.pos = save
			return l, true, nil
		}
		if l, err = x.apply(op, l, r); err != nil {
			return nil, false, err
		}
	}
}

// term reads `unary (('*'|'/') unary)*`. Outside parentheses `/` is a
// separator unless every division is computed.
func (x *expression) term() (value.Value, bool, error) {
	l, ok, err := x.unary()
	if !ok || err != nil {
		return nil, ok, err
	}
	for {
		save := x.pos
		x.skipSpace()
		op := x.peek()
		divide := op.IsOther("/") && (x.depth > 0 || x.e.p.opts.Math == MathAlways)
		if !op.IsOther("*") && !divide {
			x.pos = save
			return l, true, nil
		}
		x.pos++
		x.skipSpace()
		r, ok, err := x.unary()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			x.pos = save
			return l, true, nil
		}
		if l, err = x.apply(op, l, r); err != nil {
			return nil, false, err
		}
	}
}

func (x *expression) apply(op token.Token, l, r value.Value) (value.Value, error) {
	x.ops++
	x.literal = false
	v, err := value.Apply(value.Op(op.Text[0]), l, r)
	if err != nil {
		return nil, wrap(op.Location, err)
	}
	return v, nil
}

// unary reads an optional minus in front of a variable, a group or a
// function call
func (x *expression) unary() (value.Value, bool, error) {
	if t := x.peek(); t.IsOther("-") {
		next := x.peekAt(1)
		if next.Type == token.AtKeyword || next.Type == token.ParenOpen ||
			(next.Type == token.Identifier && x.peekAt(2).Type == token.ParenOpen) {
			x.pos++
			v, ok, err := x.primary()
			if !ok || err != nil {
				x.pos--
				return nil, ok, err
			}
			v, err = x.apply(token.New(token.Other, "*", t.Location), v, value.NewNumber(-1, "", x.units()))
			return v, err == nil, err
		}
	}
	return x.primary()
}

func (x *expression) primary() (value.Value, bool, error) {
	t := x.peek()
	switch t.Type {
	case token.Number, token.Percentage, token.Dimension:
		x.pos++
		x.literal = x.ops == 0
		return value.FromToken(t, x.units()), true, nil

	case token.Hash:
		c, ok := value.ParseColor(t.Text)
		if !ok {
			return nil, false, nil
		}
		x.pos++
		x.literal = x.ops == 0
		return c, true, nil

	case token.String:
		x.pos++
		x.literal = x.ops == 0
		return value.NewString(t.Unquote(), t.Quote()), true, nil

	case token.AtKeyword:
		r, err := x.e.variable(t)
		if err != nil {
			return nil, false, err
		}
		x.pos++
		x.variable = r.Tokens
		return toValue(r), true, nil

	case token.ParenOpen:
		return x.group()

	case token.Identifier:
		if x.peekAt(1).Type == token.ParenOpen {
			return x.call()
		}
		x.pos++
		x.literal = x.ops == 0
		return &value.Keyword{Name: t.Text}, true, nil

	case token.Other:
		if t.Text == "~" && x.peekAt(1).Type == token.String {
			x.pos += 2
			return value.NewString(x.tokens[x.pos-1].Unquote(), 0), true, nil
		}
	}
	return nil, false, nil
}

// group reads a parenthesized expression. Anything that is not one
// expression, such as a media feature, is left for the caller to copy.
func (x *expression) group() (value.Value, bool, error) {
	start := x.pos
	x.pos++
	x.depth++
	x.skipSpace()
	v, ok, err := x.parse()
	x.depth--
	if err != nil {
		return nil, false, err
	}
	x.skipSpace()
	if !ok || x.peek().Type != token.ParenClose {
		x.pos = start
		return nil, false, nil
	}
	x.pos++
	x.literal = false
	x.variable = nil
	return v, true, nil
}

// closing returns the index of the paren matching the one at open
func closing(tokens token.List, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// call evaluates `name(args)`. Builtins compute a value; any other
// function, or a builtin whose arguments do not fit, is written out with
// its arguments evaluated.
func (x *expression) call() (value.Value, bool, error) {
	name := x.peek()
	end := closing(x.tokens, x.pos+1)
	if end < 0 {
		return nil, false, nil
	}
	args := x.tokens[x.pos+2 : end]
	x.pos = end + 1
	x.literal = false
	x.variable = nil

	e := x.e
	if fn, ok := value.Lookup(name.Text); ok {
		var vals []value.Value
		fits := true
		for _, arg := range args.Split(token.Comma) {
			r, err := e.evalDepth(arg, 1)
			if err != nil {
				return nil, false, err
			}
			if r.Value == nil {
				fits = false
				break
			}
			vals = append(vals, r.Value)
		}
		if fits {
			v, err := fn(vals, x.units())
			if err == nil {
				return v, true, nil
			}
			log.Debug("%s: %s(%s) left as written: %v", name.Location, name.Text, args, err)
		}
	}

	inner, err := e.cssArguments(name.Text, args)
	if err != nil {
		return nil, false, err
	}
	raw := token.List{name, token.New(token.ParenOpen, "(", name.Location)}
	raw = append(raw, inner...)
	raw = append(raw, token.New(token.ParenClose, ")", x.tokens[end].Location))
	return &value.Raw{List: raw}, true, nil
}

// cssArguments evaluates the arguments of a function the compiler does
// not implement. Arithmetic that does not compute is kept as written.
func (e *evaluator) cssArguments(name string, args token.List) (token.List, error) {
	if cssFunctions[strings.ToLower(name)] {
		return e.substitute(args, false)
	}
	r, err := e.eval(args)
	if err == nil {
		return r.Tokens, nil
	}
	if errors.Is(err, value.ErrUnit) || errors.Is(err, value.ErrType) {
		return e.substitute(args, false)
	}
	return nil, err
}

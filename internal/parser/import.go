package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/lexer"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/token"
)

// ImportOptions are the keywords of `@import (...)`
type ImportOptions struct {
	Reference bool
	Inline    bool
	Less      bool
	CSS       bool
	Once      bool
	Multiple  bool
	Optional  bool
}

// parseImportOptions reads a parenthesized option list
func (p *LessParser) parseImportOptions() ImportOptions {
	var opts ImportOptions
	if p.typ() != token.ParenOpen {
		return opts
	}
	p.next()
	p.skipWhitespace()
	for p.typ() != token.ParenClose {
		p.expect(token.Identifier, "import option")
		switch strings.ToLower(p.tok().Text) {
		case "reference":
			opts.Reference = true
		case "inline":
			opts.Inline = true
		case "less":
			opts.Less = true
		case "css":
			opts.CSS = true
		case "once":
			opts.Once = true
		case "multiple":
			opts.Multiple = true
		case "optional":
			opts.Optional = true
		default:
			p.fail("one of reference, inline, less, css, once, multiple or optional")
		}
		p.next()
		p.skipWhitespace()
		if p.typ() == token.Comma {
			p.next()
			p.skipWhitespace()
		}
	}
	p.next()
	p.skipWhitespace()
	return opts
}

// parseImport reads the rest of an @import statement
func (p *LessParser) parseImport(target sheet, keyword token.Token) {
	opts := p.parseImportOptions()

	if p.typ() != token.URL && p.typ() != token.String {
		p.fail("string or url")
	}
	file := p.tok()
	p.next()
	p.skipWhitespace()

	// trailing media query, only meaningful for CSS imports
	var media token.List
	for p.parseAny(&media) {
	}
	switch p.typ() {
	case token.Delimiter:
		p.next()
	case token.EOF, token.BraceClose:
	default:
		p.fail("delimiter (';') at end of @import")
	}
	p.skipWhitespace()

	if !p.importFile(target, file, opts) {
		rule := token.List{file}
		if m := media.Trim(); len(m) > 0 {
			rule = append(append(rule, token.Space), m...)
		}
		target.Add(&ast.LessAtRule{Keyword: keyword, Rule: rule, Reference: p.reference})
	}
}

// importFile includes the file named by t. It returns false when the
// import must stay a literal CSS @import.
func (p *LessParser) importFile(target sheet, t token.Token, opts ImportOptions) bool {
	var name string
	switch t.Type {
	case token.URL:
		name = t.URLString()
	case token.String:
		name = t.Unquote()
	default:
		return false
	}
	name = p.interpolate(name)

	bare := name
	if i := strings.IndexAny(bare, "?#"); i >= 0 {
		bare = bare[:i]
	}
	remote := strings.HasPrefix(bare, "http://") || strings.HasPrefix(bare, "https://") || strings.HasPrefix(bare, "//")
	isCSS := opts.CSS || (!opts.Less && (strings.HasSuffix(bare, ".css") || remote))
	if remote || (isCSS && !opts.Inline) {
		log.Debug("Keeping CSS import %s", name)
		return false
	}

	switch {
	case opts.Less && filepath.Ext(bare) == "":
		bare += ".less"
	case !opts.Less && !isCSS && !strings.HasSuffix(bare, ".less"):
		bare += ".less"
	}

	candidates := p.candidates(bare)
	if isGlob(bare) {
		matched := false
		for _, c := range candidates {
			matches, err := p.opts.Resolver.Glob(c)
			if err != nil {
				panic(bailout{NewImportError(bare, t.Location, err)})
			}
			sort.Strings(matches)
			for _, m := range matches {
				p.include(target, m, t, opts)
				matched = true
			}
			if matched {
				break
			}
		}
		if !matched && !opts.Optional {
			panic(bailout{NewImportError(bare, t.Location, fs.ErrNotExist)})
		}
		return true
	}

	for _, c := range candidates {
		if !opts.Multiple && p.opts.Sources.Has(c) {
			log.Debug("Skipping %s, already imported", c)
			return true
		}
		if p.include(target, c, t, opts) {
			return true
		}
	}
	if opts.Optional {
		log.Debug("Optional import %s not found", bare)
		return true
	}
	panic(bailout{NewImportError(candidates[0], t.Location, fs.ErrNotExist)})
}

// candidates lists where an import may live: next to the importing file,
// then under each include path.
func (p *LessParser) candidates(name string) []string {
	if filepath.IsAbs(name) {
		return []string{filepath.Clean(name)}
	}
	var out []string
	if dir := filepath.Dir(p.tokenizer.Source()); dir != "." && strings.ContainsAny(p.tokenizer.Source(), `/\`) {
		out = append(out, filepath.Join(dir, name))
	} else {
		out = append(out, filepath.Clean(name))
	}
	for _, inc := range p.opts.IncludePaths {
		out = append(out, filepath.Join(inc, name))
	}
	return out
}

// include opens file and parses it into target. It returns false when
// the file does not exist.
func (p *LessParser) include(target sheet, file string, t token.Token, opts ImportOptions) bool {
	if !opts.Multiple && p.opts.Sources.Has(file) {
		log.Debug("Skipping %s, already imported", file)
		return true
	}
	r, err := p.opts.Resolver.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		panic(bailout{NewImportError(file, t.Location, err)})
	}
	defer r.Close()
	p.opts.Sources.Add(file)
	log.Debug("Importing %s", file)

	if opts.Inline {
		b, err := io.ReadAll(r)
		if err != nil {
			panic(bailout{NewImportError(file, t.Location, err)})
		}
		if !p.reference && !opts.Reference {
			target.Add(&ast.Raw{Text: string(b), Location: t.Location})
		}
		return true
	}

	tz, err := lexer.New(r, file, lexer.ModeLess)
	if err != nil {
		panic(bailout{NewImportError(file, t.Location, err)})
	}
	child := NewLessParser(tz, p.opts)
	child.reference = p.reference || opts.Reference
	child.root = p.root
	child.parseStylesheet(target)
	return true
}

// interpolate replaces @{name} in an import path with variables already
// bound at the top level
func (p *LessParser) interpolate(name string) string {
	if p.root == nil || !strings.Contains(name, "@{") {
		return name
	}
	var b strings.Builder
	for {
		i := strings.Index(name, "@{")
		if i < 0 {
			break
		}
		j := strings.IndexByte(name[i:], '}')
		if j < 0 {
			break
		}
		b.WriteString(name[:i])
		key := "@" + name[i+2:i+j]
		if v, ok := p.root.Variables[key]; ok && len(v) > 0 {
			b.WriteString(v.Front().Unquote())
			if len(v) > 1 {
				b.WriteString(v[1:].String())
			}
		} else {
			panic(bailout{NewParseError(p.tok(), fmt.Sprintf("variable %s in import path to be defined", key))})
		}
		name = name[i+j+1:]
	}
	b.WriteString(name)
	return b.String()
}

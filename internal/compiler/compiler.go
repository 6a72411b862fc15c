// Package compiler runs the parse, process and write stages that turn a
// LESS stylesheet into CSS.
package compiler

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"strings"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/config"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/parser"
	"bennypowers.dev/lessc/internal/processor"
	"bennypowers.dev/lessc/internal/tokens"
	"bennypowers.dev/lessc/internal/writer"
	"github.com/davecgh/go-spew/spew"
)

// Options configures one compilation
type Options struct {
	// Resolver opens the input and imported files. Defaults to the local
	// file system.
	Resolver     parser.FileResolver
	IncludePaths []string

	// Processor carries the unit policy, math mode and comment handling.
	// Its Globals and ModifyVars are built from the fields below.
	Processor processor.Options
	Format    writer.Format

	// GlobalVars and ModifyVars map variable names, with or without the
	// leading @, to LESS value source
	GlobalVars map[string]string
	ModifyVars map[string]string

	// Tokens are design token files whose tokens become global variables.
	// GlobalVars win over tokens of the same name.
	Tokens []tokens.TokenFile

	// SourceMap enables source map generation. OutputFile names the CSS
	// file in the map; SourceMapURL, when set, is linked from the CSS.
	SourceMap    bool
	OutputFile   string
	SourceMapURL string
}

// FromConfig builds compile options from a loaded configuration
func FromConfig(cfg *config.Config) (Options, error) {
	popts, err := cfg.ProcessorOptions()
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		IncludePaths: cfg.IncludePaths,
		Processor:    popts,
		Format:       cfg.WriterFormat(),
		GlobalVars:   cfg.GlobalVars,
		ModifyVars:   cfg.ModifyVars,
		SourceMap:    cfg.SourceMap || cfg.SourceMapURL != "",
		SourceMapURL: cfg.SourceMapURL,
	}
	for _, t := range cfg.Tokens {
		opts.Tokens = append(opts.Tokens, tokens.TokenFile{
			Path:         t.Path,
			Prefix:       t.Prefix,
			GroupMarkers: t.GroupMarkers,
		})
	}
	return opts, nil
}

// Result is the output of a compilation
type Result struct {
	CSS string
	// SourceMap is the v3 source map JSON, nil unless requested
	SourceMap []byte
	// Imports lists the imported files in the order they were first read,
	// without the input file
	Imports []string
}

// Compile compiles the file at path
func Compile(path string, opts Options) (*Result, error) {
	if opts.Resolver == nil {
		opts.Resolver = parser.OSResolver{}
	}
	r, err := opts.Resolver.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer r.Close()
	return CompileReader(r, path, opts)
}

// CompileString compiles src. source names it in locations and resolves
// relative imports.
func CompileString(src, source string, opts Options) (*Result, error) {
	return CompileReader(strings.NewReader(src), source, opts)
}

// CompileReader compiles the stylesheet read from r
func CompileReader(r io.Reader, source string, opts Options) (*Result, error) {
	log.Info("Compiling %s", source)

	popts := opts.Processor
	globals, err := globalVariables(opts)
	if err != nil {
		return nil, err
	}
	popts.Globals = globals
	if popts.ModifyVars, err = processor.Variables(opts.ModifyVars, "modify-vars"); err != nil {
		return nil, err
	}

	sources := parser.NewSources()
	ss, err := parser.Parse(r, source, parser.Options{
		Resolver:     opts.Resolver,
		IncludePaths: opts.IncludePaths,
		Sources:      sources,
	})
	if err != nil {
		return nil, err
	}

	out, err := processor.New(popts).Process(ss)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	wopts := []writer.Option{writer.WithFormat(opts.Format)}
	var sm *writer.SourceMapWriter
	if opts.SourceMap {
		sm = writer.NewSourceMapWriter(opts.OutputFile)
		wopts = append(wopts, writer.WithMapper(sm))
	}
	if err := writer.NewCSSWriter(&buf, wopts...).WriteStylesheet(out); err != nil {
		return nil, err
	}

	res := &Result{Imports: sources.Files()[1:]}
	if sm != nil {
		if res.SourceMap, err = sm.MarshalJSON(); err != nil {
			return nil, err
		}
		if opts.SourceMapURL != "" {
			if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
				buf.WriteByte('\n')
			}
			buf.WriteString(writer.SourceMappingComment(opts.SourceMapURL))
			buf.WriteByte('\n')
		}
	}
	res.CSS = buf.String()
	log.Info("Compiled %s with %d imports", source, len(res.Imports))
	return res, nil
}

// globalVariables merges design tokens and explicit global variables
func globalVariables(opts Options) (ast.VariableMap, error) {
	vars := map[string]string{}
	if len(opts.Tokens) > 0 {
		m := tokens.NewManager()
		if err := m.Load(opts.Tokens...); err != nil {
			return nil, err
		}
		tokenVars, err := m.Variables()
		if err != nil {
			return nil, err
		}
		log.Debug("Loaded %d design tokens", len(tokenVars))
		maps.Copy(vars, tokenVars)
	}
	for name, v := range opts.GlobalVars {
		vars[strings.TrimPrefix(name, "@")] = v
	}
	return processor.Variables(vars, "globals")
}

// Parse parses the file at path and its imports without evaluating them
func Parse(path string, opts Options) (*ast.LessStylesheet, error) {
	if opts.Resolver == nil {
		opts.Resolver = parser.OSResolver{}
	}
	r, err := opts.Resolver.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer r.Close()
	return ParseReader(r, path, opts)
}

// ParseReader parses the stylesheet read from r and its imports
func ParseReader(r io.Reader, source string, opts Options) (*ast.LessStylesheet, error) {
	return parser.Parse(r, source, parser.Options{
		Resolver:     opts.Resolver,
		IncludePaths: opts.IncludePaths,
	})
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpAST writes a readable dump of a parsed or processed tree
func DumpAST(w io.Writer, tree any) {
	dumper.Fdump(w, tree)
}

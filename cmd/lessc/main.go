package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/lessc/internal/compiler"
	"bennypowers.dev/lessc/internal/config"
	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/version"
)

const usage = `usage: lessc [flags] input.less [output.css]

Compiles a LESS stylesheet to CSS. Use - as input to read stdin.
Without an output file the CSS is written to stdout.

flags:
`

// listFlag collects every occurrence of a repeatable flag
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// varsFlag collects name=value pairs
type varsFlag map[string]string

func (v varsFlag) String() string { return fmt.Sprint(map[string]string(v)) }

func (v varsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = value
	return nil
}

type options struct {
	includes     listFlag
	tokenFiles   listFlag
	globalVars   varsFlag
	modifyVars   varsFlag
	output       string
	configFile   string
	format       string
	units        string
	math         string
	tokensPrefix string
	sourceMap    bool
	sourceMapURL string
	stripComment bool
	dumpAST      bool
	verbose      bool
	version      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	opts := options{globalVars: varsFlag{}, modifyVars: varsFlag{}}
	fs := flag.NewFlagSet("lessc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.Var(&opts.includes, "I", "include path for imports (repeatable)")
	fs.Var(&opts.tokenFiles, "tokens", "design token file or glob (repeatable)")
	fs.Var(opts.globalVars, "global-var", "global variable name=value (repeatable)")
	fs.Var(opts.modifyVars, "modify-var", "override root variable name=value (repeatable)")
	fs.StringVar(&opts.output, "o", "", "output file")
	fs.StringVar(&opts.configFile, "config", "", "config file (default: search the working directory)")
	fs.StringVar(&opts.format, "format", "", "output format: compact or pretty")
	fs.StringVar(&opts.units, "units", "", "unit policy: convert or strict")
	fs.StringVar(&opts.math, "math", "", "division: parens-division or always")
	fs.StringVar(&opts.tokensPrefix, "tokens-prefix", "", "variable prefix for -tokens files")
	fs.BoolVar(&opts.sourceMap, "source-map", false, "write a source map next to the output")
	fs.StringVar(&opts.sourceMapURL, "source-map-url", "", "URL of the source map in the CSS")
	fs.BoolVar(&opts.stripComment, "strip-comments", false, "drop block comments")
	fs.BoolVar(&opts.dumpAST, "dump-ast", false, "print the parsed tree and exit")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintln(stdout, version.Banner())
		if opts.verbose {
			for k, v := range version.GetBuildInfo() {
				fmt.Fprintf(stdout, "  %s: %s\n", k, v)
			}
		}
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 || len(rest) > 2 {
		fs.Usage()
		return 2
	}
	input := rest[0]
	if len(rest) == 2 {
		if opts.output != "" {
			fmt.Fprintln(stderr, "lessc: output given twice")
			return 2
		}
		opts.output = rest[1]
	}

	var data []byte
	if input == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			fmt.Fprintf(stderr, "lessc: %v\n", err)
			return 1
		}
	}
	if err := compile(input, opts, fs, bytes.NewReader(data), stdout); err != nil {
		fmt.Fprintf(stderr, "lessc: %v\n", err)
		fmt.Fprint(stderr, excerpt(err, data))
		return 1
	}
	return 0
}

func loadConfig(opts options, fs *flag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, _, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = opts.format
		case "units":
			cfg.Units = opts.units
		case "math":
			cfg.Math = opts.math
		case "source-map":
			cfg.SourceMap = opts.sourceMap
		case "source-map-url":
			cfg.SourceMapURL = opts.sourceMapURL
		case "strip-comments":
			cfg.KeepComments = !opts.stripComment
		case "v":
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	cfg.IncludePaths = append(cfg.IncludePaths, opts.includes...)
	for _, path := range opts.tokenFiles {
		cfg.Tokens = append(cfg.Tokens, config.TokenFileSpec{Path: path, Prefix: opts.tokensPrefix})
	}
	if cfg.GlobalVars == nil {
		cfg.GlobalVars = map[string]string{}
	}
	for k, v := range opts.globalVars {
		cfg.GlobalVars[k] = v
	}
	if cfg.ModifyVars == nil {
		cfg.ModifyVars = map[string]string{}
	}
	for k, v := range opts.modifyVars {
		cfg.ModifyVars[k] = v
	}
	return cfg, cfg.Validate()
}

func compile(input string, opts options, fs *flag.FlagSet, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(opts, fs)
	if err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	copts, err := compiler.FromConfig(cfg)
	if err != nil {
		return err
	}

	if opts.dumpAST {
		var r io.Reader = stdin
		source := "stdin"
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()
			r, source = f, input
		}
		ss, err := compiler.ParseReader(r, source, copts)
		if err != nil {
			return err
		}
		compiler.DumpAST(stdout, ss)
		return nil
	}

	mapFile := ""
	if copts.SourceMap {
		if opts.output == "" {
			log.Warn("source map needs an output file, skipping it")
			copts.SourceMap = false
		} else {
			mapFile = opts.output + ".map"
			copts.OutputFile = filepath.Base(opts.output)
			if copts.SourceMapURL == "" {
				copts.SourceMapURL = filepath.Base(mapFile)
			}
		}
	}

	var res *compiler.Result
	if input == "-" {
		res, err = compiler.CompileReader(stdin, "stdin", copts)
	} else {
		res, err = compiler.Compile(input, copts)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = io.WriteString(stdout, res.CSS)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(res.CSS), 0o644); err != nil {
		return err
	}
	if mapFile != "" {
		return os.WriteFile(mapFile, res.SourceMap, 0o644)
	}
	return nil
}

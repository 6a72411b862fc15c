package compiler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"bennypowers.dev/lessc/internal/compiler"
	"bennypowers.dev/lessc/internal/config"
	"bennypowers.dev/lessc/internal/parser"
	"bennypowers.dev/lessc/internal/processor"
	"bennypowers.dev/lessc/internal/tokens"
	"bennypowers.dev/lessc/internal/value"
	"bennypowers.dev/lessc/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func compileFS(t *testing.T, fsys fstest.MapFS, entry string, opts compiler.Options) (*compiler.Result, error) {
	t.Helper()
	opts.Resolver = parser.FSResolver{FS: fsys}
	return compiler.Compile(entry, opts)
}

func compileString(t *testing.T, src string, opts compiler.Options) string {
	t.Helper()
	opts.Resolver = parser.FSResolver{FS: fstest.MapFS{}}
	res, err := compiler.CompileString(src, "main.less", opts)
	require.NoError(t, err)
	return res.CSS
}

func TestScoping(t *testing.T) {
	src := `@x: 1; .a { @x: 2; .b { width: @x; } } .c { width: @x; }`
	assert.Equal(t, `.a .b{width:2;}.c{width:1;}`, compileString(t, src, compiler.Options{}))
}

func TestMixinExpansion(t *testing.T) {
	src := `.m(@c) { color: @c; } .a { .m(red); width: 1px; }`
	assert.Equal(t, `.a{color:red;width:1px;}`, compileString(t, src, compiler.Options{}))
}

func TestFlatteningOrder(t *testing.T) {
	src := `.a { x: 1; .b { y: 2; } z: 3; .c { w: 4; } }`
	assert.Equal(t, `.a{x:1;z:3;}.a .b{y:2;}.a .c{w:4;}`, compileString(t, src, compiler.Options{}))
}

func TestValueArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		units value.UnitPolicy
		want  string
		err   error
	}{
		{name: "same unit", src: `.a { w: 1px + 2px; }`, want: `.a{w:3px;}`},
		{name: "converted unit", src: `.a { w: 1px + 1in; }`, want: `.a{w:97px;}`},
		{name: "strict unit", src: `.a { w: 1px + 1in; }`, units: value.UnitsStrict, err: value.ErrUnit},
		{name: "incompatible unit", src: `.a { w: 1px + 1s; }`, err: value.ErrUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := compiler.Options{
				Resolver:  parser.FSResolver{FS: fstest.MapFS{}},
				Processor: processor.Options{Units: tt.units},
			}
			res, err := compiler.CompileString(tt.src, "main.less", opts)
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.CSS)
		})
	}
}

func TestImports(t *testing.T) {
	fsys := fstest.MapFS{
		"main.less": file(`@import "a"; @import "b"; .main { x: @x; }`),
		"a.less":    file(`@x: 1px; .a { x: @x; }`),
		"b.less":    file(`@import "a"; .b { x: 2; }`),
	}
	res, err := compileFS(t, fsys, "main.less", compiler.Options{})
	require.NoError(t, err)
	assert.Equal(t, `.a{x:1px;}.b{x:2;}.main{x:1px;}`, res.CSS)
	assert.Equal(t, []string{"a.less", "b.less"}, res.Imports)
	assert.Nil(t, res.SourceMap)
}

func TestReferenceImport(t *testing.T) {
	fsys := fstest.MapFS{
		"main.less": file(`@import (reference) "lib"; .a { .m; }`),
		"lib.less":  file(`/* c */ .m { x: 1; } @font-face { y: 2; } .m;`),
	}
	res, err := compileFS(t, fsys, "main.less", compiler.Options{})
	require.NoError(t, err)
	assert.Equal(t, `.a{x:1;}`, res.CSS)
}

func TestMissingInput(t *testing.T) {
	_, err := compileFS(t, fstest.MapFS{}, "nope.less", compiler.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.less")
}

func TestErrorsCarryLocation(t *testing.T) {
	fsys := fstest.MapFS{
		"main.less": file(`@import "vars";` + "\n.a { color: @colr; }"),
		"vars.less": file(`@color: red;`),
	}
	_, err := compileFS(t, fsys, "main.less", compiler.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, processor.ErrUndefinedVariable))
	assert.Contains(t, err.Error(), "main.less:2:13: variable @colr is undefined (did you mean @color?)")
}

func TestCSSRoundTrip(t *testing.T) {
	css := `.a{color:red;}.b .c, .d > .e{margin:0 auto;}@media print{.f{x:1;}}`
	assert.Equal(t, css, compileString(t, css, compiler.Options{}))
}

func TestIdempotence(t *testing.T) {
	src := `
@c: red;
.a {
  color: @c;
  .b { width: (10px / 2); }
  @media screen { height: 1px; }
}`
	first := compileString(t, src, compiler.Options{})
	assert.Equal(t, `.a{color:red;}.a .b{width:5px;}@media screen{.a{height:1px;}}`, first)
	assert.Equal(t, first, compileString(t, first, compiler.Options{}))
}

func TestPrettyFormat(t *testing.T) {
	css := compileString(t, `.a { .b { color: red; } }`, compiler.Options{Format: writer.FormatPretty})
	assert.Equal(t, ".a .b {\n  color: red;\n}\n", css)
}

func TestSourceMap(t *testing.T) {
	res, err := compiler.CompileString(".a{x:1;}", "main.less", compiler.Options{
		Resolver:     parser.FSResolver{FS: fstest.MapFS{}},
		SourceMap:    true,
		OutputFile:   "main.css",
		SourceMapURL: "main.css.map",
	})
	require.NoError(t, err)
	assert.Equal(t, ".a{x:1;}\n/*# sourceMappingURL=main.css.map */\n", res.CSS)

	var sm struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(res.SourceMap, &sm))
	assert.Equal(t, 3, sm.Version)
	assert.Equal(t, "main.css", sm.File)
	assert.Equal(t, []string{"main.less"}, sm.Sources)
	assert.Equal(t, "AAAA,GAAG,EAAE", sm.Mappings)
}

func TestGlobalsAndTokens(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{
  "color": {
    "base": {"$value": "#336699"},
    "link": {"$value": "{color.base}"},
    "border": {"$value": "1px solid {color.base}"}
  },
  "space": {"$value": "4px"}
}`), 0o644))

	opts := compiler.Options{
		Tokens:     []tokens.TokenFile{{Path: tokenFile, Prefix: "ds"}},
		GlobalVars: map[string]string{"@ds-space": "8px"},
		ModifyVars: map[string]string{"width": "10px"},
	}
	src := `@width: 1px; .btn { color: @ds-color-link; border: @ds-color-border; padding: @ds-space; width: @width; }`
	assert.Equal(t,
		`.btn{color:#336699;border:1px solid #336699;padding:8px;width:10px;}`,
		compileString(t, src, opts))
}

func TestTokenErrors(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"a": {"$value": "{missing}"}}`), 0o644))

	_, err := compiler.CompileString(`.a { x: 1; }`, "main.less", compiler.Options{
		Resolver: parser.FSResolver{FS: fstest.MapFS{}},
		Tokens:   []tokens.TokenFile{{Path: tokenFile}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tokens.ErrUnknownReference))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Format = "pretty"
	cfg.Units = "strict"
	cfg.KeepComments = false
	cfg.SourceMapURL = "out.css.map"
	cfg.IncludePaths = []string{"/lib"}
	cfg.Tokens = []config.TokenFileSpec{{Path: "/t.json", Prefix: "ds", GroupMarkers: []string{"_"}}}

	opts, err := compiler.FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, writer.FormatPretty, opts.Format)
	assert.Equal(t, value.UnitsStrict, opts.Processor.Units)
	assert.True(t, opts.Processor.StripComments)
	assert.True(t, opts.SourceMap)
	assert.Equal(t, []string{"/lib"}, opts.IncludePaths)
	assert.Equal(t, []tokens.TokenFile{{Path: "/t.json", Prefix: "ds", GroupMarkers: []string{"_"}}}, opts.Tokens)

	cfg.Math = "sometimes"
	_, err = compiler.FromConfig(cfg)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestDumpAST(t *testing.T) {
	fsys := fstest.MapFS{"main.less": file(`.a { x: 1; }`)}
	ss, err := compiler.Parse("main.less", compiler.Options{Resolver: parser.FSResolver{FS: fsys}})
	require.NoError(t, err)

	var buf bytes.Buffer
	compiler.DumpAST(&buf, ss)
	assert.Contains(t, buf.String(), "LessRuleset")
	assert.NotContains(t, buf.String(), "0xc")
}

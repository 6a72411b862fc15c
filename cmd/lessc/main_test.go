package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileToFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.less", `@c: red; .a { color: @c; }`)
	out := filepath.Join(dir, "out.css")

	res := runCLI(t, "", in, out)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	css, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `.a{color:red;}`, string(css))
}

func TestStdinToStdout(t *testing.T) {
	res := runCLI(t, `.a { .b { x: 1; } }`, "-format", "pretty", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, ".a .b {\n  x: 1;\n}\n", res.stdout)
}

func TestVariablesFromFlags(t *testing.T) {
	res := runCLI(t, `@w: 1px; .a { color: @brand; width: @w; }`,
		"-global-var", "brand=blue", "-modify-var", "w=2px", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `.a{color:blue;width:2px;}`, res.stdout)
}

func TestErrorWritesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.less", `.a { color: @nope; }`)
	out := filepath.Join(dir, "out.css")

	res := runCLI(t, "", "-o", out, in)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "lessc: ")
	assert.Contains(t, res.stderr, "in.less:1:13: variable @nope is undefined")
	assert.NoFileExists(t, out)
}

func TestErrorExcerpt(t *testing.T) {
	res := runCLI(t, "@a: 1;\n.a {\tcolor: @nope; }", "-")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "stdin:2:13: variable @nope is undefined\n")
	assert.Contains(t, res.stderr, "2 | .a {\tcolor: @nope; }\n  |     \t       ^\n")
}

func TestErrorExcerptLexical(t *testing.T) {
	res := runCLI(t, `.a { content: "oops; }`, "-")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "stdin:1:15: unterminated string\n")
	assert.Contains(t, res.stderr, "1 | .a { content: \"oops; }\n  | "+strings.Repeat(" ", 14)+"^\n")
}

func TestErrorExcerptImport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.less", ".a { x: 1; }\n@import \"missing\";\n")

	res := runCLI(t, "", in)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "in.less:2:9: cannot import")
	assert.Contains(t, res.stderr, "2 | @import \"missing\";\n  | "+strings.Repeat(" ", 8)+"^\n")
}

func TestSourceMapFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.less", `.a { x: 1; }`)
	out := filepath.Join(dir, "out.css")

	res := runCLI(t, "", "-source-map", in, out)
	require.Equal(t, 0, res.code, res.stderr)

	css, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ".a{x:1;}\n/*# sourceMappingURL=out.css.map */\n", string(css))

	sm, err := os.ReadFile(out + ".map")
	require.NoError(t, err)
	assert.Contains(t, string(sm), `"file":"out.css"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "build.yaml", "format: pretty\nglobalVars:\n  c: green\n")
	res := runCLI(t, `.a { color: @c; }`, "-config", cfg, "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, ".a {\n  color: green;\n}\n", res.stdout)

	res = runCLI(t, `.a { color: @c; }`, "-config", cfg, "-format", "compact", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, ".a{color:green;}", res.stdout)
}

func TestDumpAST(t *testing.T) {
	res := runCLI(t, `.a { x: 1; }`, "-dump-ast", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "LessRuleset")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: nil},
		{name: "too many arguments", args: []string{"a", "b", "c"}},
		{name: "bad variable", args: []string{"-global-var", "oops", "-"}},
		{name: "unknown flag", args: []string{"-nope", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, 2, res.code)
			assert.NotEmpty(t, res.stderr)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	res := runCLI(t, `.a { x: 1; }`, "-format", "fancy", "-")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `invalid format "fancy"`)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "-version")
	require.Equal(t, 0, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "lessc "))
}

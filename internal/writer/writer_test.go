package writer_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/lessc/internal/ast"
	"bennypowers.dev/lessc/internal/parser"
	"bennypowers.dev/lessc/internal/position"
	"bennypowers.dev/lessc/internal/token"
	"bennypowers.dev/lessc/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSS(t *testing.T, src string) *ast.Stylesheet {
	t.Helper()
	ss, err := parser.ParseCSS(strings.NewReader(src), "test.css")
	require.NoError(t, err)
	return ss
}

func write(t *testing.T, ss *ast.Stylesheet, opts ...writer.Option) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, writer.NewCSSWriter(&buf, opts...).WriteStylesheet(ss))
	return buf.String()
}

func TestCompactRoundTrip(t *testing.T) {
	tests := []string{
		".a{color:red;}",
		".a, .b > .c{margin:0 auto;padding:1px 2px;}",
		`@import "a.css";`,
		"@media screen and (min-width: 10px){.a{color:red;}}",
		"@font-face {font-family:x;}",
		`a[href^="http"]:hover{background:url(a.png) no-repeat;}`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, src, write(t, parseCSS(t, src)))
		})
	}
}

func TestCompactNormalizesWhitespace(t *testing.T) {
	ss := parseCSS(t, ".a   .b  {\n  color :  red ;\n  margin: 0   auto\n}\n")
	assert.Equal(t, ".a .b{color:red;margin:0 auto;}", write(t, ss))
}

func TestPretty(t *testing.T) {
	ss := parseCSS(t, ".a{color:red;width:1px;}@media print{.b{x:1;}}@charset \"utf-8\";")
	want := `.a {
  color: red;
  width: 1px;
}
@media print {
  .b {
    x: 1;
  }
}
@charset "utf-8";
`
	assert.Equal(t, want, write(t, ss, writer.WithFormat(writer.FormatPretty)))
}

func TestComments(t *testing.T) {
	ss := &ast.Stylesheet{}
	ss.Add(
		&ast.Comment{Token: token.Synthetic(token.Comment, "/* top */")},
		&ast.Ruleset{
			Selector: token.List{token.Synthetic(token.Identifier, "p")},
			Statements: []ast.Statement{
				&ast.Comment{Token: token.Synthetic(token.Comment, "/* inner */")},
				&ast.Declaration{
					Property: token.Synthetic(token.Identifier, "x"),
					Value:    token.List{token.Synthetic(token.Number, "1")},
				},
			},
		},
		&ast.Raw{Text: ".raw{}"},
	)
	assert.Equal(t, "/* top */p{/* inner */x:1;}.raw{}", write(t, ss))
}

func TestParseFormat(t *testing.T) {
	f, ok := writer.ParseFormat("Pretty")
	assert.True(t, ok)
	assert.Equal(t, writer.FormatPretty, f)
	_, ok = writer.ParseFormat("minified")
	assert.False(t, ok)
}

type failingWriter struct{}

var errDisk = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errDisk }

func TestWriteErrorIsSticky(t *testing.T) {
	w := writer.NewCSSWriter(failingWriter{})
	err := w.WriteStylesheet(parseCSS(t, ".a{x:1;}.b{y:2;}"))
	assert.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, w.Err(), errDisk)
}

type recorder struct {
	generated []position.Cursor
	original  []token.Location
}

func (r *recorder) WriteMapping(gen position.Cursor, orig token.Location) {
	r.generated = append(r.generated, gen)
	r.original = append(r.original, orig)
}

func TestMappingPoints(t *testing.T) {
	rec := &recorder{}
	write(t, parseCSS(t, ".a{color:red;}"), writer.WithMapper(rec))

	require.Len(t, rec.generated, 3)
	assert.Equal(t, []position.Cursor{{Line: 1, Column: 0}, {Line: 1, Column: 3}, {Line: 1, Column: 9}}, rec.generated)
	assert.Equal(t, 1, rec.original[0].Column, "selector")
	assert.Equal(t, 4, rec.original[1].Column, "property")
	assert.Equal(t, 10, rec.original[2].Column, "value")
}

func TestMappingAfterSelectorComma(t *testing.T) {
	rec := &recorder{}
	write(t, parseCSS(t, ".a,\n.b{x:1;}"), writer.WithMapper(rec))

	require.GreaterOrEqual(t, len(rec.original), 2)
	assert.Equal(t, token.Location{Source: "test.css", Line: 2, Column: 1}, rec.original[1])
}

func TestMappingWhereValueChangesLine(t *testing.T) {
	rec := &recorder{}
	write(t, parseCSS(t, ".a{font:12px\n  serif;}"), writer.WithMapper(rec))

	last := rec.original[len(rec.original)-1]
	assert.Equal(t, 2, last.Line)
}

func TestSourceMapEncoding(t *testing.T) {
	sm := writer.NewSourceMapWriter("out.css")
	loc := func(line, col int) token.Location { return token.Location{Source: "a.less", Line: line, Column: col} }
	sm.WriteMapping(position.Cursor{Line: 1, Column: 0}, loc(1, 1))
	sm.WriteMapping(position.Cursor{Line: 1, Column: 3}, loc(1, 4))
	sm.WriteMapping(position.Cursor{Line: 1, Column: 9}, loc(1, 10))
	sm.WriteMapping(position.Cursor{Line: 2, Column: 0}, loc(3, 1))

	assert.Equal(t, "AAAA,GAAG,MAAM;AAET", sm.EncodeMappings())
	assert.Equal(t, []string{"a.less"}, sm.Sources())
}

func TestSourceMapJSON(t *testing.T) {
	sm := writer.NewSourceMapWriter("out.css")
	sm.WriteMapping(position.Cursor{Line: 1, Column: 0}, token.Location{Source: "a.less", Line: 1, Column: 1})
	sm.WriteMapping(position.Cursor{Line: 1, Column: 16}, token.Location{Source: "b.less", Line: 1, Column: 1})

	var buf bytes.Buffer
	_, err := sm.WriteTo(&buf)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(3), got["version"])
	assert.Equal(t, "out.css", got["file"])
	assert.Equal(t, []interface{}{"a.less", "b.less"}, got["sources"])
	assert.Equal(t, "AAAA,gBCAA", got["mappings"])
}

func TestWriterWithSourceMap(t *testing.T) {
	sm := writer.NewSourceMapWriter("out.css")
	write(t, parseCSS(t, ".a{x:1;}"), writer.WithMapper(sm))
	assert.Equal(t, "AAAA,GAAG,EAAE", sm.EncodeMappings())
}

func TestSourceMappingComment(t *testing.T) {
	assert.Equal(t, "/*# sourceMappingURL=out.css.map */", writer.SourceMappingComment("out.css.map"))
}

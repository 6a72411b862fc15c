package token_test

import (
	"testing"

	"bennypowers.dev/lessc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(s string) token.Token { return token.Synthetic(token.Identifier, s) }
func other(s string) token.Token { return token.Synthetic(token.Other, s) }

var (
	ws    = token.Space
	comma = token.Synthetic(token.Comma, ",")
)

func TestLocationString(t *testing.T) {
	assert.Equal(t, "a.less:3:7", token.Location{Source: "a.less", Line: 3, Column: 7}.String())
	assert.Equal(t, "<input>:1:1", token.Location{Line: 1, Column: 1}.String())
	assert.Equal(t, "a.less", token.Location{Source: "a.less"}.String())
}

func TestTokenHelpers(t *testing.T) {
	t.Run("Unquote", func(t *testing.T) {
		s := token.Synthetic(token.String, `"a\"b"`)
		assert.Equal(t, `a\"b`, s.Unquote())
		assert.Equal(t, byte('"'), s.Quote())
		assert.Equal(t, "red", ident("red").Unquote())
	})

	t.Run("URLString", func(t *testing.T) {
		for _, text := range []string{`url(a.less)`, `url("a.less")`, `url( 'a.less' )`} {
			assert.Equal(t, "a.less", token.Synthetic(token.URL, text).URLString(), text)
		}
	})

	t.Run("line comments", func(t *testing.T) {
		assert.True(t, token.Synthetic(token.Comment, "// x").IsLineComment())
		assert.False(t, token.Synthetic(token.Comment, "/* x */").IsLineComment())
	})
}

func TestListTrim(t *testing.T) {
	l := token.List{ws, token.Synthetic(token.Comment, "/**/"), ident("a"), ws, ident("b"), ws}
	assert.Equal(t, "a b ", l.LTrim().String())
	assert.Equal(t, " /**/a b", l.RTrim().String())
	assert.Equal(t, "a b", l.Trim().String())
	assert.Empty(t, token.List{ws, ws}.Trim())
}

func TestListFrontBack(t *testing.T) {
	var empty token.List
	assert.Equal(t, token.EOF, empty.Front().Type)
	assert.Equal(t, token.EOF, empty.Back().Type)

	l := token.List{ident("a"), ident("b")}
	assert.Equal(t, "a", l.Front().Text)
	assert.Equal(t, "b", l.Back().Text)
}

func TestListSplit(t *testing.T) {
	// a, f(b, c), d
	l := token.List{
		ident("a"), comma, ws, ident("f"), token.Synthetic(token.ParenOpen, "("),
		ident("b"), comma, ident("c"), token.Synthetic(token.ParenClose, ")"), comma, ident("d"),
	}
	parts := l.Split(token.Comma)
	require.Len(t, parts, 3)
	assert.Equal(t, "a", parts[0].String())
	assert.Equal(t, " f(b,c)", parts[1].String())
	assert.Equal(t, "d", parts[2].String())
}

func TestListIndex(t *testing.T) {
	l := token.List{token.Synthetic(token.ParenOpen, "("), other("+"), token.Synthetic(token.ParenClose, ")"), other("+")}
	assert.Equal(t, 3, l.Index(func(t token.Token) bool { return t.IsOther("+") }))
	assert.Equal(t, -1, l.IndexType(token.Colon))
}

func TestListSplice(t *testing.T) {
	l := token.List{ident("a"), ident("b"), ident("c")}
	out := l.Splice(1, 2, token.List{ident("x"), ident("y")})
	assert.Equal(t, "axyc", out.String())
	assert.Equal(t, "abc", l.String(), "original is untouched")
}

func TestJoin(t *testing.T) {
	out := token.Join([]token.List{{ident("a")}, {ident("b")}}, comma, ws)
	assert.Equal(t, "a, b", out.String())
}

func TestCollapseWhitespace(t *testing.T) {
	l := token.List{ws, ident("a"), ws, token.Synthetic(token.Comment, "/* x */"), ws, ident("b"), ws}
	assert.Equal(t, "a b", l.CollapseWhitespace().String())
}

func TestClone(t *testing.T) {
	l := token.List{ident("a")}
	c := l.Clone()
	c[0] = ident("b")
	assert.Equal(t, "a", l.String())
	assert.Nil(t, token.List(nil).Clone())
}

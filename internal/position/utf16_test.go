package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF16ToByteOffset(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		utf16Col   int
		expectByte int
	}{
		{name: "empty string", s: "", utf16Col: 0, expectByte: 0},
		{name: "ASCII only", s: ".a{color:red}", utf16Col: 3, expectByte: 3},
		{name: "beyond end", s: ".a", utf16Col: 100, expectByte: 2},
		{
			name:       "emoji in string value",
			s:          `content:"👍"`,
			utf16Col:   11, // 9 + 2 (👍)
			expectByte: 13, // 9 + 4
		},
		{
			name:       "CJK selector",
			s:          ".颜色{}",
			utf16Col:   3,
			expectByte: 7,
		},
		{
			name:       "inside surrogate pair clamps to rune start",
			s:          "👍a",
			utf16Col:   1,
			expectByte: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectByte, UTF16ToByteOffset(tt.s, tt.utf16Col))
		})
	}
}

func TestRuneLength(t *testing.T) {
	assert.Equal(t, 1, RuneLength('c'))
	assert.Equal(t, 1, RuneLength('颜'))
	assert.Equal(t, 2, RuneLength('👍'))
	assert.Equal(t, 1, RuneLength(-1))
}

func TestCursor(t *testing.T) {
	t.Run("starts on line one", func(t *testing.T) {
		c := NewCursor()
		assert.Equal(t, Cursor{Line: 1, Column: 0}, c)
	})

	t.Run("advances columns in UTF-16 units", func(t *testing.T) {
		c := NewCursor()
		c.Advance(".a👍{")
		assert.Equal(t, 1, c.Line)
		assert.Equal(t, 5, c.Column)
	})

	t.Run("newline resets column", func(t *testing.T) {
		c := NewCursor()
		c.Advance(".a{\n  color:red;\n}")
		assert.Equal(t, 3, c.Line)
		assert.Equal(t, 1, c.Column)
	})
}

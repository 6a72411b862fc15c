package position

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 code unit offset to a byte offset in a string.
// Source map columns use UTF-16 code units, but Go strings are UTF-8 byte sequences.
// Characters above U+FFFF count as 2 UTF-16 units.
func UTF16ToByteOffset(s string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}

	units := 0
	byteOffset := 0

	for byteOffset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 byte; treat as single unit and advance by 1 byte
			byteOffset++
			units++
			continue
		}

		runeUTF16Len := utf16.RuneLen(r)

		// If target falls within a surrogate pair, clamp to the start of the rune
		if runeUTF16Len == 2 && units+1 == utf16Col {
			break
		}

		units += runeUTF16Len
		byteOffset += size
	}

	return byteOffset
}

// RuneLength is the number of UTF-16 code units r occupies. Invalid runes
// count as one unit.
func RuneLength(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Cursor is a line/column position over text that is fed to it in order.
// Line is 1-based; Column is the 0-based UTF-16 offset into the line.
type Cursor struct {
	Line   int
	Column int
}

// NewCursor returns a cursor at the start of the first line.
func NewCursor() Cursor {
	return Cursor{Line: 1}
}

// Advance moves the cursor past s.
func (c *Cursor) Advance(s string) {
	for _, r := range s {
		c.AdvanceRune(r)
	}
}

// AdvanceRune moves the cursor past a single rune.
func (c *Cursor) AdvanceRune(r rune) {
	if r == '\n' {
		c.Line++
		c.Column = 0
		return
	}
	c.Column += RuneLength(r)
}

// Package column translates between byte offsets and visual columns on a
// buffer line, under a configurable tabstop and variable-width codepoints.
package column

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/asdlei99/kakoune/internal/buffer"
)

// EndOfLine is a sentinel byte offset addressing everything up to and
// including the line's trailing newline.
const EndOfLine = math.MaxInt

// ColumnOf returns the visual column of the byte offset at.Col on line
// at.Line. A tab advances to the next multiple of tabstop; every other
// codepoint advances by its display width. Offsets past the end of the
// line are legal and yield the line's total visual length.
func ColumnOf(b *buffer.Buffer, tabstop int, at buffer.Coord) int {
	if tabstop < 1 {
		tabstop = 1
	}
	line := b.Line(at.Line)

	col := 0
	for i := 0; i < len(line) && at.Col > i; {
		if line[i] == '\t' {
			col = (col/tabstop + 1) * tabstop
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		col += codepointWidth(r)
		i += size
	}
	return col
}

// Length returns the visual length of a line, trailing newline included.
func Length(b *buffer.Buffer, tabstop, line int) int {
	return ColumnOf(b, tabstop, buffer.Coord{Line: line, Col: EndOfLine})
}

// OffsetOf returns the byte offset of the first position on the line whose
// accumulated column reaches or exceeds column. A target column interior to
// a tab expansion or a multi-column codepoint resolves to the offset before
// that character; such columns are not independently addressable.
func OffsetOf(b *buffer.Buffer, tabstop, line, column int) int {
	if tabstop < 1 {
		tabstop = 1
	}
	text := b.Line(line)

	col := 0
	i := 0
	for i < len(text) && column > col {
		if text[i] == '\t' {
			next := (col/tabstop + 1) * tabstop
			if next > column { // the target column was in the tab
				break
			}
			col = next
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		w := codepointWidth(r)
		if col+w > column { // the target column was in the char
			break
		}
		col += w
		i += size
	}
	return i
}

// StringWidth measures the display width of s with tabs expanded from
// column 0. Non-tab runs are measured per grapheme cluster, so combining
// sequences and emoji count as their cluster width rather than a sum of
// codepoint widths.
func StringWidth(s string, tabstop int) int {
	if tabstop < 1 {
		tabstop = 1
	}

	col := 0
	for len(s) > 0 {
		tab := strings.IndexByte(s, '\t')
		if tab < 0 {
			return col + uniseg.StringWidth(s)
		}
		col += uniseg.StringWidth(s[:tab])
		col = (col/tabstop + 1) * tabstop
		s = s[tab+1:]
	}
	return col
}

// codepointWidth returns the display width of a single codepoint: 0, 1 or 2.
// The newline counts as one column, giving the end-of-line position a
// column of its own.
func codepointWidth(r rune) int {
	if r == '\n' {
		return 1
	}
	return runewidth.RuneWidth(r)
}

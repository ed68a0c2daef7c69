package column

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/asdlei99/kakoune/internal/buffer"
)

func bufWith(t *testing.T, content string) *buffer.Buffer {
	t.Helper()
	return buffer.New("test", buffer.FlagNone, []byte(content), time.Time{})
}

func TestColumnOfTabAtLineStart(t *testing.T) {
	b := bufWith(t, "\tx\n")

	if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: 0}); got != 0 {
		t.Errorf("column at offset 0 = %d, want 0", got)
	}
	if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: 1}); got != 4 {
		t.Errorf("column after tab = %d, want 4", got)
	}
}

func TestColumnOfTabAfterChar(t *testing.T) {
	b := bufWith(t, "a\tb\n")

	tests := []struct {
		offset, want int
	}{
		{0, 0}, // before 'a'
		{1, 1}, // at the tab
		{2, 4}, // after the tab, at 'b'
		{3, 5}, // after 'b'
	}
	for _, tt := range tests {
		if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: tt.offset}); got != tt.want {
			t.Errorf("ColumnOf(offset %d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestColumnOfTabNotAtMultiple(t *testing.T) {
	// A tab at column 5 advances to column 8, not 5+8.
	b := bufWith(t, "hello\tx\n")

	if got := ColumnOf(b, 8, buffer.Coord{Line: 0, Col: 6}); got != 8 {
		t.Errorf("column after tab = %d, want 8", got)
	}
}

func TestColumnOfWideCodepoints(t *testing.T) {
	b := bufWith(t, "日本x\n")

	// Each CJK codepoint is 3 bytes wide and 2 columns wide.
	tests := []struct {
		offset, want int
	}{
		{0, 0},
		{3, 2},
		{6, 4},
		{7, 5},
	}
	for _, tt := range tests {
		if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: tt.offset}); got != tt.want {
			t.Errorf("ColumnOf(offset %d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestColumnOfZeroWidthCombining(t *testing.T) {
	// "e" followed by U+0301 combining acute: the mark adds no columns.
	b := bufWith(t, "éx\n")

	if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: 3}); got != 1 {
		t.Errorf("column after combining mark = %d, want 1", got)
	}
}

func TestColumnOfPastEndIsLineLength(t *testing.T) {
	b := bufWith(t, "ab\tc\n")

	want := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: EndOfLine})
	if got := ColumnOf(b, 4, buffer.Coord{Line: 0, Col: 9999}); got != want {
		t.Errorf("past-end column = %d, want %d", got, want)
	}
	if got := Length(b, 4, 0); got != want {
		t.Errorf("Length = %d, want %d", got, want)
	}
	// "ab" (2) + tab to 4 + "c" (1) + newline (1).
	if want != 6 {
		t.Errorf("line length = %d, want 6", want)
	}
}

func TestColumnOfMonotonic(t *testing.T) {
	lines := []string{
		"a\tb\tc\n",
		"\t\t\n",
		"日本語 text\tmore\n",
		"é\tx\n",
		"plain ascii line\n",
	}
	for _, line := range lines {
		b := bufWith(t, line)
		for _, tabstop := range []int{1, 2, 4, 8} {
			prev := 0
			for off := 0; off <= len(line); off++ {
				col := ColumnOf(b, tabstop, buffer.Coord{Line: 0, Col: off})
				if col < prev {
					t.Errorf("line %q tabstop %d: column decreased at offset %d (%d < %d)",
						line, tabstop, off, col, prev)
				}
				prev = col
			}
		}
	}
}

func TestOffsetOfInverseOnBoundaries(t *testing.T) {
	lines := []string{
		"a\tb\n",
		"日本x\n",
		"ab\tcd\tef\n",
	}
	for _, line := range lines {
		b := bufWith(t, line)
		for _, tabstop := range []int{2, 4, 8} {
			// Walk codepoint starts; each is a boundary offset.
			for off := 0; off < len(line); {
				col := ColumnOf(b, tabstop, buffer.Coord{Line: 0, Col: off})
				if got := OffsetOf(b, tabstop, 0, col); got != off {
					t.Errorf("line %q tabstop %d: OffsetOf(ColumnOf(%d)=%d) = %d",
						line, tabstop, off, col, got)
				}
				if line[off] == '\t' {
					off++
				} else {
					_, size := utf8.DecodeRuneInString(line[off:])
					off += size
				}
			}
		}
	}
}

func TestOffsetOfInsideTabRoundsDown(t *testing.T) {
	b := bufWith(t, "a\tb\n")

	// Columns 2 and 3 are interior to the tab expansion; they resolve to
	// the offset before the tab.
	for _, col := range []int{2, 3} {
		if got := OffsetOf(b, 4, 0, col); got != 1 {
			t.Errorf("OffsetOf(col %d) = %d, want 1", col, got)
		}
	}
	if got := OffsetOf(b, 4, 0, 4); got != 2 {
		t.Errorf("OffsetOf(col 4) = %d, want 2", got)
	}
}

func TestOffsetOfInsideWideCharRoundsDown(t *testing.T) {
	b := bufWith(t, "日x\n")

	if got := OffsetOf(b, 4, 0, 1); got != 0 {
		t.Errorf("OffsetOf(col 1) = %d, want 0", got)
	}
	if got := OffsetOf(b, 4, 0, 2); got != 3 {
		t.Errorf("OffsetOf(col 2) = %d, want 3", got)
	}
}

func TestOffsetOfBeyondLine(t *testing.T) {
	b := bufWith(t, "ab\n")

	if got := OffsetOf(b, 4, 0, 100); got != 3 {
		t.Errorf("OffsetOf(col 100) = %d, want line length 3", got)
	}
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		s       string
		tabstop int
		want    int
	}{
		{"abc", 4, 3},
		{"\tx", 4, 5},
		{"a\tb", 4, 5},
		{"日本", 4, 4},
		{"é", 4, 1}, // one grapheme cluster, one column
		{"", 4, 0},
	}
	for _, tt := range tests {
		if got := StringWidth(tt.s, tt.tabstop); got != tt.want {
			t.Errorf("StringWidth(%q, %d) = %d, want %d", tt.s, tt.tabstop, got, tt.want)
		}
	}
}

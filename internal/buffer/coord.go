package buffer

import "fmt"

// Coord addresses a position in a buffer as a line index and a byte offset
// within that line. Both are zero-based. The byte offset may equal the line
// length only for the past-the-end coordinate of the last line.
type Coord struct {
	Line int
	Col  int
}

// String returns the coordinate in "line.col" form, 1-based, the notation
// used for hook payloads.
func (c Coord) String() string {
	return fmt.Sprintf("%d.%d", c.Line+1, c.Col+1)
}

// Compare orders coordinates by line, then byte offset.
// Returns -1, 0 or 1.
func (c Coord) Compare(o Coord) int {
	switch {
	case c.Line < o.Line:
		return -1
	case c.Line > o.Line:
		return 1
	case c.Col < o.Col:
		return -1
	case c.Col > o.Col:
		return 1
	default:
		return 0
	}
}

// Less reports whether c is strictly before o.
func (c Coord) Less(o Coord) bool {
	return c.Compare(o) < 0
}

package buffer

import (
	"fmt"
	"strings"
	"time"

	"github.com/asdlei99/kakoune/internal/hook"
)

// Buffer is line-oriented mutable text addressed by Coord. Content always
// ends with a trailing newline: the buffer holds at least one line and every
// line ends with '\n'.
//
// Buffers are not safe for concurrent use. All mutation happens on the
// event loop goroutine.
type Buffer struct {
	name    string
	lines   []string
	flags   Flags
	modTime time.Time
	values  ValueStore
	hooks   *hook.Registry
}

// New creates a buffer seeded with data. A zero modTime means the buffer has
// no file modification time (new files, fifos).
func New(name string, flags Flags, data []byte, modTime time.Time) *Buffer {
	return &Buffer{
		name:    name,
		lines:   parseLines(string(data)),
		flags:   flags,
		modTime: modTime,
	}
}

// Name returns the buffer name.
func (b *Buffer) Name() string { return b.name }

// Flags returns the current flag set.
func (b *Buffer) Flags() Flags { return b.flags }

// SetFlags replaces the flag set.
func (b *Buffer) SetFlags(f Flags) { b.flags = f }

// ModTime returns the recorded file modification time.
// The zero time means none.
func (b *Buffer) ModTime() time.Time { return b.modTime }

// Values returns the buffer's keyed value store.
func (b *Buffer) Values() *ValueStore { return &b.values }

// SetHooks attaches the hook registry RunHook dispatches into.
func (b *Buffer) SetHooks(r *hook.Registry) { b.hooks = r }

// RunHook runs the named hook in this buffer's context.
func (b *Buffer) RunHook(name, param string) {
	if b.hooks == nil {
		return
	}
	b.hooks.Run(hook.Event{Hook: name, Param: param, Buffer: b.name})
}

// Read access

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns line i including its trailing newline.
func (b *Buffer) Line(i int) string {
	b.assert(i >= 0 && i < len(b.lines), "line %d out of range", i)
	return b.lines[i]
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "")
}

// TextRange returns the content of [begin, end).
func (b *Buffer) TextRange(begin, end Coord) string {
	b.assertPos(begin)
	b.assert(begin.Compare(end) <= 0, "range %v..%v inverted", begin, end)

	if begin == end {
		return ""
	}
	endLine, endCol := end.Line, end.Col
	if end == b.EndCoord() {
		endLine = len(b.lines) - 1
		endCol = len(b.lines[endLine])
	}
	if begin.Line == endLine {
		return b.lines[begin.Line][begin.Col:endCol]
	}

	var sb strings.Builder
	sb.WriteString(b.lines[begin.Line][begin.Col:])
	for i := begin.Line + 1; i < endLine; i++ {
		sb.WriteString(b.lines[i])
	}
	sb.WriteString(b.lines[endLine][:endCol])
	return sb.String()
}

// Coordinate arithmetic

// EndCoord returns the past-the-end coordinate, just after the final newline.
func (b *Buffer) EndCoord() Coord {
	last := len(b.lines) - 1
	return Coord{Line: last, Col: len(b.lines[last])}
}

// BackCoord returns the coordinate of the last byte, the final newline.
func (b *Buffer) BackCoord() Coord {
	last := len(b.lines) - 1
	return Coord{Line: last, Col: len(b.lines[last]) - 1}
}

// Next returns the coordinate one byte after c, clamped to EndCoord.
func (b *Buffer) Next(c Coord) Coord {
	b.assertPos(c)
	if c.Col+1 < len(b.lines[c.Line]) {
		return Coord{Line: c.Line, Col: c.Col + 1}
	}
	if c.Line == len(b.lines)-1 {
		return b.EndCoord()
	}
	return Coord{Line: c.Line + 1, Col: 0}
}

// Mutation

// Insert inserts text at coordinate at and returns the range it now
// occupies. Inserting at EndCoord appends; appended content that does not
// end in a newline gets one, preserving the trailing-newline invariant.
func (b *Buffer) Insert(at Coord, text string) (begin, end Coord) {
	b.assertPos(at)
	if text == "" {
		return at, at
	}

	if at == b.EndCoord() {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		begin = Coord{Line: len(b.lines), Col: 0}
		b.lines = append(b.lines, parseLines(text)...)
		return begin, advance(begin, text)
	}

	line := b.lines[at.Line]
	content := line[:at.Col] + text + line[at.Col:]
	b.lines = splice(b.lines, at.Line, 1, parseLines(content))
	return at, advance(at, text)
}

// Erase removes the bytes in [begin, end). Erasing a trailing newline
// re-establishes the invariant on the new last line; erasing everything
// leaves the single empty line.
func (b *Buffer) Erase(begin, end Coord) {
	b.assertPos(begin)
	b.assert(begin.Compare(end) <= 0, "range %v..%v inverted", begin, end)
	if begin == end {
		return
	}

	endLine, endCol := end.Line, end.Col
	if end == b.EndCoord() {
		endLine = len(b.lines) - 1
		endCol = len(b.lines[endLine])
	}

	content := b.lines[begin.Line][:begin.Col] + b.lines[endLine][endCol:]
	var replacement []string
	if content != "" {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		replacement = parseLines(content)
	}
	b.lines = splice(b.lines, begin.Line, endLine-begin.Line+1, replacement)
	if len(b.lines) == 0 {
		b.lines = []string{"\n"}
	}
}

// Reload replaces the buffer content and modification time wholesale,
// leaving flags untouched.
func (b *Buffer) Reload(data []byte, modTime time.Time) {
	b.lines = parseLines(string(data))
	b.modTime = modTime
}

// assertPos panics if c is neither a valid byte position nor EndCoord.
func (b *Buffer) assertPos(c Coord) {
	if c == b.EndCoord() {
		return
	}
	b.assert(c.Line >= 0 && c.Line < len(b.lines), "line %d out of range", c.Line)
	b.assert(c.Col >= 0 && c.Col < len(b.lines[c.Line]),
		"column %d out of range on line %d", c.Col, c.Line)
}

func (b *Buffer) assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("buffer %q: %s", b.name, fmt.Sprintf(format, args...)))
	}
}

// parseLines splits content into lines, each keeping its newline.
// Content without a trailing newline gets one; empty content becomes the
// single empty line.
func parseLines(content string) []string {
	if content == "" {
		return []string{"\n"}
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	split := strings.SplitAfter(content, "\n")
	return split[:len(split)-1]
}

// advance returns the coordinate just past text inserted at from.
func advance(from Coord, text string) Coord {
	lastNL := strings.LastIndexByte(text, '\n')
	if lastNL < 0 {
		return Coord{Line: from.Line, Col: from.Col + len(text)}
	}
	return Coord{
		Line: from.Line + strings.Count(text, "\n"),
		Col:  len(text) - lastNL - 1,
	}
}

// splice replaces count lines starting at index with replacement.
func splice(lines []string, index, count int, replacement []string) []string {
	out := make([]string, 0, len(lines)-count+len(replacement))
	out = append(out, lines[:index]...)
	out = append(out, replacement...)
	out = append(out, lines[index+count:]...)
	return out
}

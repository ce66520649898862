// Package source reads survey files into memory and walks them line by line.
package source

// Cursor is a forward read position over an immutable slice of lines.
// Running out of input is reported by Next and Done rather than by an empty
// slice, so callers can tell a missing terminator from a clean end.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor returns a cursor positioned before the first line.
func NewCursor(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// Next returns the next line and advances. ok is false at end of input.
func (c *Cursor) Next() (line string, ok bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line = c.lines[c.pos]
	c.pos++
	return line, true
}

// Peek returns the next line without advancing.
func (c *Cursor) Peek() (line string, ok bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

// Done reports whether all lines have been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.lines)
}

// Line returns the 1-based number of the line most recently returned by
// Next, or 0 before the first call.
func (c *Cursor) Line() int {
	return c.pos
}

// Pos returns the index of the next line to be read.
func (c *Cursor) Pos() int {
	return c.pos
}

// Seek moves the cursor so that the next line read is lines[pos]. Positions
// outside the input are clamped.
func (c *Cursor) Seek(pos int) {
	switch {
	case pos < 0:
		pos = 0
	case pos > len(c.lines):
		pos = len(c.lines)
	}
	c.pos = pos
}

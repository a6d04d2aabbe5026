package nesting

import (
	"sort"
	"strings"
)

// Position is a 0-based line and byte column.
type Position struct {
	Line int
	Col  int
}

// TextDocument is an immutable line index over a source text.
type TextDocument struct {
	text   string
	starts []int // byte offset of each line start
}

// NewTextDocument indexes the line starts of text.
func NewTextDocument(text string) *TextDocument {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &TextDocument{text: text, starts: starts}
}

// Text returns the whole document.
func (d *TextDocument) Text() string {
	return d.text
}

// LineCount returns the number of lines. An empty document has one line.
func (d *TextDocument) LineCount() int {
	return len(d.starts)
}

// LineOf returns the line containing offset. Offsets past the end map to
// the last line.
func (d *TextDocument) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	// First line start greater than offset, minus one.
	return sort.SearchInts(d.starts, offset+1) - 1
}

// LineStart returns the offset of the first byte of line.
func (d *TextDocument) LineStart(line int) int {
	line = d.clampLine(line)
	return d.starts[line]
}

// LineEnd returns the offset just before the line's terminating newline,
// or the end of the text for the last line.
func (d *TextDocument) LineEnd(line int) int {
	line = d.clampLine(line)
	if line+1 < len(d.starts) {
		return d.starts[line+1] - 1
	}
	return len(d.text)
}

// Line returns the text of one line without its newline.
func (d *TextDocument) Line(line int) string {
	return d.text[d.LineStart(line):d.LineEnd(line)]
}

// Offset converts a position to a byte offset, clamping the column to the
// line length.
func (d *TextDocument) Offset(line, col int) int {
	start := d.LineStart(line)
	end := d.LineEnd(line)
	if col < 0 {
		col = 0
	}
	return min(start+col, end)
}

// Position converts an offset to a line and column.
func (d *TextDocument) Position(offset int) Position {
	offset = max(0, min(offset, len(d.text)))
	line := d.LineOf(offset)
	return Position{Line: line, Col: offset - d.starts[line]}
}

// Indent returns the width in bytes of the leading spaces and tabs of line.
func (d *TextDocument) Indent(line int) int {
	l := d.Line(line)
	return len(l) - len(strings.TrimLeft(l, " \t"))
}

func (d *TextDocument) clampLine(line int) int {
	return max(0, min(line, len(d.starts)-1))
}

package nesting

// Point is a visual coordinate, in whatever unit the host renders with
// (pixels in a GUI, cells in a terminal).
type Point struct {
	X, Y int
}

// Lines is the line/offset mapping of a document.
type Lines interface {
	LineOf(offset int) int
	LineStart(line int) int
	Indent(line int) int
}

// View maps document offsets to visual positions during one paint call.
type View interface {
	Lines
	OffsetToPoint(offset int) Point
	LineHeight() int
}

// Canvas is the drawing primitive the guide painter needs.
type Canvas interface {
	DrawLine(from, to Point, c Color)
}

// PaintFunc draws a custom highlight. It is invoked by the rendering sink
// for every paint pass with the view current at that moment.
type PaintFunc func(view View, canvas Canvas)

// Guide describes a vertical guide line in visual coordinates.
type Guide struct {
	Top    Point
	Bottom Point
	Color  Color
}

// GuideFor computes the guide line of a block spanning span. The line sits
// at the column of the first non-blank character of the block's first line
// and runs from just below that line to the top of the block's last line.
// It reports false when the block starts and ends on the same line.
func GuideFor(view View, span Span, color Color) (Guide, bool) {
	startLine := view.LineOf(span.Start)
	endLine := view.LineOf(span.End)
	if startLine >= endLine {
		return Guide{}, false
	}

	lineStart := view.LineStart(startLine)
	x := view.OffsetToPoint(lineStart + view.Indent(startLine)).X
	top := view.OffsetToPoint(lineStart).Y + view.LineHeight()
	bottom := view.OffsetToPoint(view.LineStart(endLine)).Y

	return Guide{
		Top:    Point{X: x, Y: top},
		Bottom: Point{X: x, Y: bottom},
		Color:  color,
	}, true
}

// GuidePainter returns a PaintFunc that draws the guide line of span.
func GuidePainter(span Span, color Color) PaintFunc {
	return func(view View, canvas Canvas) {
		g, ok := GuideFor(view, span, color)
		if !ok {
			return
		}
		canvas.DrawLine(g.Top, g.Bottom, g.Color)
	}
}

// CellView is a View over a TextDocument that lays text out on a fixed
// grid: one column per byte (tabs expand to tabWidth) and one row per line.
type CellView struct {
	*TextDocument
	TabWidth int
}

// OffsetToPoint returns the cell of offset.
func (v CellView) OffsetToPoint(offset int) Point {
	pos := v.Position(offset)
	line := v.Line(pos.Line)
	x := 0
	for i := 0; i < pos.Col && i < len(line); i++ {
		if line[i] == '\t' && v.TabWidth > 0 {
			x += v.TabWidth - x%v.TabWidth
			continue
		}
		x++
	}
	return Point{X: x, Y: pos.Line}
}

// LineHeight is one row.
func (v CellView) LineHeight() int {
	return 1
}

package main

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jward/rainbow/nesting"
)

const guideRune = "│"

type cell struct {
	ch      string
	color   nesting.Color
	colored bool
}

// screen is a terminal rendering of one document: one row per line, one
// cell per character with tabs expanded. It implements nesting.Canvas so
// guide painters can draw into it.
type screen struct {
	lines *nesting.TextDocument
	view  nesting.CellView
	rows  [][]cell
	// cellOf maps each line's byte column to its cell index.
	cellOf [][]int
}

var _ nesting.Canvas = (*screen)(nil)

func newScreen(lines *nesting.TextDocument, tabWidth int) *screen {
	s := &screen{
		lines: lines,
		view:  nesting.CellView{TextDocument: lines, TabWidth: tabWidth},
	}
	for i := 0; i < lines.LineCount(); i++ {
		text := lines.Line(i)
		row := make([]cell, 0, len(text))
		index := make([]int, len(text)+1)
		for b := 0; b < len(text); {
			index[b] = len(row)
			if text[b] == '\t' && tabWidth > 0 {
				for pad := tabWidth - len(row)%tabWidth; pad > 0; pad-- {
					row = append(row, cell{ch: " "})
				}
				b++
				continue
			}
			r, size := utf8.DecodeRuneInString(text[b:])
			for k := 1; k < size; k++ {
				index[b+k] = len(row)
			}
			row = append(row, cell{ch: string(r)})
			b += size
		}
		index[len(text)] = len(row)
		s.rows = append(s.rows, row)
		s.cellOf = append(s.cellOf, index)
	}
	return s
}

// colorAt colors the character starting at offset.
func (s *screen) colorAt(offset int, c nesting.Color) {
	pos := s.lines.Position(offset)
	if pos.Line >= len(s.rows) || pos.Col >= len(s.cellOf[pos.Line]) {
		return
	}
	idx := s.cellOf[pos.Line][pos.Col]
	if idx >= len(s.rows[pos.Line]) {
		return
	}
	s.rows[pos.Line][idx].color = c
	s.rows[pos.Line][idx].colored = true
}

// DrawLine draws a vertical guide from from.Y up to, but not including,
// to.Y. Only blank cells are overwritten.
func (s *screen) DrawLine(from, to nesting.Point, c nesting.Color) {
	for y := from.Y; y < to.Y && y < len(s.rows); y++ {
		if y < 0 {
			continue
		}
		for len(s.rows[y]) <= from.X {
			s.rows[y] = append(s.rows[y], cell{ch: " "})
		}
		if s.rows[y][from.X].ch == " " {
			s.rows[y][from.X] = cell{ch: guideRune, color: c, colored: true}
		}
	}
}

// render writes the screen, styling colored cells with lipgloss.
func (s *screen) render(w io.Writer) error {
	var sb strings.Builder
	for _, row := range s.rows {
		for _, c := range row {
			if !c.colored {
				sb.WriteString(c.ch)
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color.Hex())).Render(c.ch))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, strings.TrimRight(sb.String(), " \n")+"\n")
	return err
}

// colorBrackets colors every bracket leaf under root.
func colorBrackets(s *screen, c *nesting.Classifier, root nesting.Node) int {
	n := 0
	nesting.Leaves(root, func(leaf nesting.Node) {
		if cl, ok := c.Classify(leaf); ok {
			s.colorAt(cl.Span.Start, cl.Color)
			n++
		}
	})
	return n
}

// paintSink is a nesting.RenderSink that keeps the registered paint
// callbacks until they are removed and replays them onto a screen.
type paintSink struct {
	mu     sync.Mutex
	next   int
	paints map[int]nesting.PaintFunc
}

var _ nesting.RenderSink = (*paintSink)(nil)

func newPaintSink() *paintSink {
	return &paintSink{paints: make(map[int]nesting.PaintFunc)}
}

func (p *paintSink) AddRangeHighlight(_ nesting.Span, paint nesting.PaintFunc) nesting.Highlight {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	p.paints[p.next] = paint
	return paintHandle{sink: p, id: p.next}
}

// Len returns the number of live highlights.
func (p *paintSink) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paints)
}

func (p *paintSink) paint(s *screen) {
	p.mu.Lock()
	paints := make([]nesting.PaintFunc, 0, len(p.paints))
	for _, fn := range p.paints {
		paints = append(paints, fn)
	}
	p.mu.Unlock()
	for _, fn := range paints {
		fn(s.view, s)
	}
}

type paintHandle struct {
	sink *paintSink
	id   int
}

func (h paintHandle) Remove() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	delete(h.sink.paints, h.id)
}

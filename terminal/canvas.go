// Package terminal runs a net in a terminal with tcell.
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Glyphs used for strokes thinner and wider than two units.
const (
	ThinGlyph  = '·'
	ThickGlyph = '#'
)

// DefaultScale is the number of simulation units per cell.
// Cells are about twice as tall as they are wide.
var DefaultScale = r2.Vec{X: 8, Y: 16}

// A Canvas is a LineEmitter rasterizing segments onto a grid of cells.
type Canvas struct {
	Scale r2.Vec // simulation units per cell

	w, h    int
	cells   []rune
	pending [][4]int // segments in cell coordinates, x0 y0 x1 y1
	pen     [2]int
}

// NewCanvas returns a blank canvas of w by h cells.
func NewCanvas(w, h int, scale r2.Vec) *Canvas {
	c := &Canvas{Scale: scale}
	c.Resize(w, h)
	return c
}

// Resize changes the size of the canvas and clears it.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.w, c.h = w, h
	c.cells = make([]rune, w*h)
	c.Clear()
}

// Size returns the size of the canvas in cells.
func (c *Canvas) Size() (w, h int) {
	return c.w, c.h
}

// Cell returns the glyph at (x, y), a space if blank or out of bounds.
func (c *Canvas) Cell(x, y int) rune {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return ' '
	}
	return c.cells[y*c.w+x]
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = ' '
	}
}

// BeginFrame starts a new path.
func (c *Canvas) BeginFrame() {
	c.pending = c.pending[:0]
}

// MoveTo lifts the pen to (x, y).
func (c *Canvas) MoveTo(x, y float64) {
	c.pen[0], c.pen[1] = c.ToCell(r2.Vec{X: x, Y: y})
}

// LineTo adds a segment from the pen to (x, y).
func (c *Canvas) LineTo(x, y float64) {
	cx, cy := c.ToCell(r2.Vec{X: x, Y: y})
	c.pending = append(c.pending, [4]int{c.pen[0], c.pen[1], cx, cy})
	c.pen = [2]int{cx, cy}
}

// StrokeAll rasterizes the path.
func (c *Canvas) StrokeAll(lineWidth float64) {
	g := ThinGlyph
	if lineWidth >= 2 {
		g = ThickGlyph
	}
	for _, s := range c.pending {
		c.line(s[0], s[1], s[2], s[3], g)
	}
	c.pending = c.pending[:0]
}

// ToCell returns the cell containing the simulation position p.
// Non-finite coordinates map far outside the canvas.
func (c *Canvas) ToCell(p r2.Vec) (x, y int) {
	return toInt(p.X / c.Scale.X), toInt(p.Y / c.Scale.Y)
}

// ToSim returns the simulation position of the center of cell (x, y).
func (c *Canvas) ToSim(x, y int) r2.Vec {
	return r2.Vec{X: (float64(x) + 0.5) * c.Scale.X, Y: (float64(y) + 0.5) * c.Scale.Y}
}

// toInt floors f, saturating instead of overflowing.
func toInt(f float64) int {
	const lim = 1 << 30
	switch {
	case math.IsNaN(f) || f < -lim:
		return -lim
	case f > lim:
		return lim
	}
	return int(math.Floor(f))
}

// line draws a segment with Bresenham's algorithm, clipping cells outside the canvas.
func (c *Canvas) line(x0, y0, x1, y1 int, g rune) {
	// skip segments entirely on one side of the canvas
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= c.w && x1 >= c.w) || (y0 >= c.h && y1 >= c.h) {
		return
	}
	dx, dy := abs(x1-x0), -abs(y1-y0)
	if lim := 8 * (c.w + c.h); dx > lim || -dy > lim {
		// a point thrown far away; not worth walking
		return
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < c.w && y0 >= 0 && y0 < c.h {
			c.cells[y0*c.w+x0] = g
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Blit copies the canvas to the screen with the given style.
func Blit(s tcell.Screen, c *Canvas, style tcell.Style) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			s.SetContent(x, y, c.cells[y*c.w+x], nil, style)
		}
	}
}

package verletnet

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// NewNet builds a net on a regular grid.
// The first row is pinned. Every point is linked to the point above it,
// and to the point on its left unless it belongs to the StrandRows top rows.
func NewNet(par Params) *Net {
	w, h := par.Cols+1, par.Rows+1
	n := &Net{
		Params: par,
		Points: make([]Point, 0, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := r2.Vec{
				X: par.Origin.X + float64(x)*par.Spacing,
				Y: par.Origin.Y + float64(y)*par.Spacing,
			}
			n.Points = append(n.Points, NewPoint(pos))
			i := len(n.Points) - 1

			if x > 0 && y >= par.StrandRows {
				n.Attach(i, i-1)
			}
			if y == 0 {
				n.Points[i].Pin()
			}
			if y > 0 {
				n.Attach(i, i-w)
			}
		}
	}
	return n
}

// Index returns the handle of the point in column x and row y.
func (n *Net) Index(x, y int) int {
	return y*(n.Params.Cols+1) + x
}

// Constraints returns the total number of constraints.
func (n *Net) Constraints() int {
	var c int
	for _, p := range n.Points {
		c += len(p.Constraints)
	}
	return c
}

// Pinned returns the number of pinned points.
func (n *Net) Pinned() int {
	var c int
	for _, p := range n.Points {
		if p.Pinned {
			c++
		}
	}
	return c
}

// Segments returns the visual footprint of every constraint.
func (n *Net) Segments() []Segment {
	s := make([]Segment, 0, n.Constraints())
	for _, p := range n.Points {
		for _, c := range p.Constraints {
			s = append(s, c.Segment(n.Points))
		}
	}
	return s
}

// Motion returns the largest distance travelled by a point during the last step.
// It is zero before the first step.
func (n *Net) Motion() float64 {
	return n.motion
}

// Positions returns the current position of every point.
func (n *Net) Positions() []r2.Vec {
	pos := make([]r2.Vec, len(n.Points))
	for i, p := range n.Points {
		pos[i] = p.Pos
	}
	return pos
}

// SetPositions moves every point to the given position, at rest.
func (n *Net) SetPositions(pos []r2.Vec) error {
	if len(pos) != len(n.Points) {
		return fmt.Errorf("verletnet: %d positions for %d points", len(pos), len(n.Points))
	}
	for i := range n.Points {
		n.Points[i].Pos, n.Points[i].Prev = pos[i], pos[i]
	}
	return nil
}

// Reset rebuilds the net from its parameters, keeping its logger.
func (n *Net) Reset() {
	l := n.Logger
	*n = *NewNet(n.Params)
	n.Logger = l
}

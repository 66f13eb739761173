package verletnet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// A Segment is the visual footprint of a constraint.
type Segment [2]r2.Vec

// A Point is a mass of the net.
// Its velocity is implicit in the difference between Pos and Prev.
type Point struct {
	Pos   r2.Vec // current position
	Prev  r2.Vec // position at the previous step
	Force r2.Vec // force accumulated for the next step, reset after integration

	Pinned bool   // whether the point is fixed
	PinPos r2.Vec // fixed position, meaningful only if Pinned

	// Constraints are the links attached by this point, in attachment order.
	Constraints []Constraint
}

// NewPoint returns a point at rest at pos.
func NewPoint(pos r2.Vec) Point {
	return Point{Pos: pos, Prev: pos}
}

// AddForce accumulates a force to be applied at the next integration.
func (p *Point) AddForce(fx, fy float64) {
	p.Force.X += fx
	p.Force.Y += fy
}

// Pin fixes the point at its current position.
// Pinning an already pinned point keeps the original pin.
func (p *Point) Pin() {
	if p.Pinned {
		return
	}
	p.Pinned = true
	p.PinPos = p.Pos
}

// Integrate advances the point by one step given the squared time step.
// It reports false if the step produced a non-finite position,
// in which case the point stays where it was, at rest.
func (p *Point) Integrate(in Input, par Params, delta2 float64) bool {
	if p.Pinned {
		p.Pos, p.Prev = p.PinPos, p.PinPos
		p.Force = r2.Vec{}
		return true
	}

	// pointer influence
	d := r2.Norm(r2.Sub(p.Pos, in.Pos))
	switch {
	case in.Down && d < par.InfluenceRadius:
		// remember having moved along with the pointer
		p.Prev = r2.Sub(p.Pos, r2.Sub(in.Pos, in.Prev))
	case in.Cut && d < par.CutRadius:
		p.Constraints = p.Constraints[:0]
	}

	p.AddForce(0, par.Gravity)

	next := r2.Add(p.Pos, r2.Add(
		r2.Scale(par.Friction, r2.Sub(p.Pos, p.Prev)),
		r2.Scale(delta2, p.Force),
	))
	p.Force = r2.Vec{}

	if !finite(next) {
		p.Prev = p.Pos
		return false
	}
	p.Prev, p.Pos = p.Pos, next
	return true
}

// finite reports whether both coordinates of v are finite.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// A Constraint limits the distance between two points to Length.
// It resists stretching but not compression.
type Constraint struct {
	P1, P2 int     // indices of the linked points
	Length float64 // rest length
}

// Resolve moves the linked points closer if they are farther apart than the rest length.
// It reports whether the constraint tore, i.e. tear is positive and the
// distance exceeds it, in which case no correction is applied.
func (c Constraint) Resolve(points []Point, tear float64) (torn bool) {
	p1, p2 := &points[c.P1], &points[c.P2]
	delta := r2.Sub(p1.Pos, p2.Pos)
	dist := r2.Norm(delta)

	// coincident points would divide by zero below
	if dist == 0 || !(dist > c.Length) {
		return false
	}
	if tear > 0 && dist > tear {
		return true
	}

	// an overflowed distance has no usable direction
	if math.IsInf(dist, 0) {
		return false
	}

	diff := (c.Length - dist) / dist
	mul := diff * 0.5 * (1 - c.Length/dist)
	step := r2.Scale(mul, delta)

	pos1, pos2 := p1.Pos, p2.Pos
	switch {
	case p1.Pinned && p2.Pinned:
		return false
	case p1.Pinned:
		pos2 = r2.Sub(pos2, r2.Scale(2, step))
	case p2.Pinned:
		pos1 = r2.Add(pos1, r2.Scale(2, step))
	default:
		pos1 = r2.Add(pos1, step)
		pos2 = r2.Sub(pos2, step)
	}
	if !finite(pos1) || !finite(pos2) {
		return false
	}
	p1.Pos, p2.Pos = pos1, pos2
	return false
}

// EmitLine passes the segment of the constraint to e.
func (c Constraint) EmitLine(points []Point, e LineEmitter) {
	a, b := points[c.P1].Pos, points[c.P2].Pos
	e.MoveTo(a.X, a.Y)
	e.LineTo(b.X, b.Y)
}

// Segment returns the visual footprint of the constraint.
func (c Constraint) Segment(points []Point) Segment {
	return Segment{points[c.P1].Pos, points[c.P2].Pos}
}

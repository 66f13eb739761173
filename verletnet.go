// Package verletnet animates a net of mass points hanging under gravity.
//
// Points are laid out on a regular grid whose top row is pinned.
// Neighbouring points are linked by distance constraints that resist
// stretching but not compression. Each step relaxes the constraints a
// fixed number of times, then advances every point with Verlet
// integration. A pointer can drag the net or cut through it.
package verletnet

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Delta is the nominal duration of a frame in seconds.
// Drivers pass it to Step regardless of the wall-clock time elapsed.
const Delta = 1.0 / 60

// Params contains the tunable constants of a net.
type Params struct {
	// Accuracy is the number of constraint relaxation passes per step.
	// Higher values give a stiffer, more rope-like net.
	Accuracy int

	Gravity  float64 // downward force added to every free point each step
	Friction float64 // damping of the implicit velocity, 1 means none

	Cols    int     // number of grid cells across (Cols+1 points per row)
	Rows    int     // number of grid cells down (Rows+1 rows of points)
	Spacing float64 // distance between neighbouring points, also the rest length
	Origin  r2.Vec  // position of the top left point

	// StrandRows is the number of top rows built without horizontal links.
	StrandRows int

	InfluenceRadius float64 // pointer drag radius
	CutRadius       float64 // pointer cut radius

	// TearDistance is the stretch at which a constraint breaks.
	// Zero disables tearing.
	TearDistance float64

	LineWidth float64 // stroke width requested from the renderer
}

// DefaultParams are the default parameters.
var DefaultParams = Params{
	Accuracy:        5,
	Gravity:         1200,
	Friction:        0.99,
	Cols:            6,
	Rows:            8,
	Spacing:         50,
	Origin:          r2.Vec{X: 250, Y: 20},
	StrandRows:      2,
	InfluenceRadius: 20,
	CutRadius:       5,
	TearDistance:    0,
	LineWidth:       1,
}

// Validate reports the first parameter that cannot describe a net.
func (p Params) Validate() error {
	switch {
	case p.Accuracy < 1:
		return fmt.Errorf("verletnet: accuracy must be at least 1, got %d", p.Accuracy)
	case p.Cols < 1 || p.Rows < 1:
		return fmt.Errorf("verletnet: grid must be at least 1x1, got %dx%d", p.Cols, p.Rows)
	case p.StrandRows < 0:
		return fmt.Errorf("verletnet: strand rows must not be negative, got %d", p.StrandRows)
	case !(p.Spacing > 0) || math.IsInf(p.Spacing, 0):
		return fmt.Errorf("verletnet: spacing must be positive and finite, got %g", p.Spacing)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"gravity", p.Gravity},
		{"friction", p.Friction},
		{"influence radius", p.InfluenceRadius},
		{"cut radius", p.CutRadius},
		{"tear distance", p.TearDistance},
		{"line width", p.LineWidth},
		{"origin x", p.Origin.X},
		{"origin y", p.Origin.Y},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("verletnet: %s must be finite, got %g", f.name, f.v)
		}
	}
	switch {
	case p.Friction < 0 || p.Friction > 1:
		return fmt.Errorf("verletnet: friction must be within [0, 1], got %g", p.Friction)
	case p.InfluenceRadius < 0 || p.CutRadius < 0:
		return fmt.Errorf("verletnet: pointer radii must not be negative")
	case p.TearDistance < 0:
		return fmt.Errorf("verletnet: tear distance must not be negative, got %g", p.TearDistance)
	case p.TearDistance > 0 && p.TearDistance <= p.Spacing:
		return fmt.Errorf("verletnet: tear distance %g must exceed spacing %g", p.TearDistance, p.Spacing)
	}
	return nil
}

// Input is a snapshot of the pointer taken between two steps.
type Input struct {
	Pos  r2.Vec // current pointer position
	Prev r2.Vec // pointer position at the previous step
	Down bool   // drag button held
	Cut  bool   // cut button held
}

// Moved returns a copy of the input whose pointer moved to pos.
func (in Input) Moved(pos r2.Vec) Input {
	in.Prev, in.Pos = in.Pos, pos
	return in
}

// A LineEmitter receives the line segments of a frame.
// Clear and BeginFrame are called once at the start of a frame,
// then MoveTo and LineTo once per constraint, then StrokeAll.
type LineEmitter interface {
	Clear()
	BeginFrame()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	StrokeAll(lineWidth float64)
}

// A Net contains all the state and parameters of a simulation.
type Net struct {
	Params Params

	// Points is the arena of points in row-major order.
	// Constraints refer to points by their index in this slice.
	Points []Point

	// Frame is the number of steps run so far.
	Frame int

	// Logger receives reports of numeric failures. Nil is silent.
	Logger *log.Logger

	last   []r2.Vec // positions at the start of the last step
	motion float64  // largest displacement during the last step
}

// Step runs a single simulation step of duration delta.
func (n *Net) Step(delta float64, in Input, e LineEmitter) {
	n.last = n.last[:0]
	for _, p := range n.Points {
		n.last = append(n.last, p.Pos)
	}

	for k := 0; k < n.Params.Accuracy; k++ {
		for i := range n.Points {
			n.ResolveConstraints(i)
		}
	}

	e.Clear()
	e.BeginFrame()
	var bad int
	delta2 := delta * delta
	for i := range n.Points {
		if !n.Points[i].Integrate(in, n.Params, delta2) {
			bad++
		}
		n.EmitLines(i, e)
	}
	e.StrokeAll(n.Params.LineWidth)
	n.Frame++

	n.motion = 0
	for i, p := range n.Points {
		if d := r2.Norm(r2.Sub(p.Pos, n.last[i])); d > n.motion {
			n.motion = d
		}
	}

	if bad > 0 && n.Logger != nil {
		n.Logger.Printf("verletnet: frame %d: %d point(s) left non-finite state, kept last position", n.Frame, bad)
	}
}

// Draw emits the current segments as a frame without advancing the simulation.
func (n *Net) Draw(e LineEmitter) {
	e.Clear()
	e.BeginFrame()
	for i := range n.Points {
		n.EmitLines(i, e)
	}
	e.StrokeAll(n.Params.LineWidth)
}

// Attach links point i to point j with a constraint whose rest length is the spacing.
func (n *Net) Attach(i, j int) {
	p := &n.Points[i]
	p.Constraints = append(p.Constraints, Constraint{P1: i, P2: j, Length: n.Params.Spacing})
}

// Detach removes the c-th constraint of point i, keeping the order of the others.
func (n *Net) Detach(i, c int) {
	p := &n.Points[i]
	p.Constraints = append(p.Constraints[:c], p.Constraints[c+1:]...)
}

// ResolveConstraints relaxes every constraint attached to point i in attachment order.
// Constraints that tear are detached.
func (n *Net) ResolveConstraints(i int) {
	p := &n.Points[i]
	if p.Pinned {
		p.Pos = p.PinPos
		return
	}
	for c := 0; c < len(p.Constraints); {
		if p.Constraints[c].Resolve(n.Points, n.Params.TearDistance) {
			n.Detach(i, c)
			continue
		}
		c++
	}
}

// EmitLines emits a segment for every constraint attached to point i.
func (n *Net) EmitLines(i int, e LineEmitter) {
	for _, c := range n.Points[i].Constraints {
		c.EmitLine(n.Points, e)
	}
}

package verletnet

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func testParams() Params {
	par := DefaultParams
	par.Cols, par.Rows, par.Spacing = 6, 8, 50
	return par
}

func TestNewNetTopology(t *testing.T) {
	n := NewNet(testParams())

	if got, want := len(n.Points), 7*9; got != want {
		t.Fatalf("points = %d, want %d", got, want)
	}
	if got, want := n.Pinned(), 7; got != want {
		t.Fatalf("pinned = %d, want %d", got, want)
	}
	// vertical: 7 columns x 8 links, horizontal: 6 links x 7 rows below the strands
	if got, want := n.Constraints(), 7*8+6*7; got != want {
		t.Fatalf("constraints = %d, want %d", got, want)
	}

	for x := 0; x <= 6; x++ {
		if !n.Points[n.Index(x, 0)].Pinned {
			t.Fatalf("top row point %d is not pinned", x)
		}
	}
	for i, p := range n.Points[7:] {
		if p.Pinned {
			t.Fatalf("point %d below the top row is pinned", i+7)
		}
		var vertical bool
		for _, c := range p.Constraints {
			if c.P2 == c.P1-7 {
				vertical = true
			}
			if c.Length != 50 {
				t.Fatalf("rest length = %f, want 50", c.Length)
			}
		}
		if !vertical {
			t.Fatalf("point %d has no vertical constraint", i+7)
		}
	}

	// rows 0 and 1 are strands without horizontal links
	if got := len(n.Points[n.Index(3, 1)].Constraints); got != 1 {
		t.Fatalf("strand point has %d constraints, want 1", got)
	}
	// left link is attached before the link above
	cs := n.Points[n.Index(3, 2)].Constraints
	if len(cs) != 2 || cs[0].P2 != n.Index(2, 2) || cs[1].P2 != n.Index(3, 1) {
		t.Fatalf("unexpected attachment order %+v", cs)
	}

	p := n.Points[n.Index(2, 3)].Pos
	if want := (r2.Vec{X: 250 + 2*50, Y: 20 + 3*50}); p != want {
		t.Fatalf("point (2,3) at %v, want %v", p, want)
	}
}

func TestNewNetStrandRows(t *testing.T) {
	par := testParams()
	par.StrandRows = 0
	n := NewNet(par)
	if got, want := n.Constraints(), 7*8+6*9; got != want {
		t.Fatalf("constraints = %d, want %d", got, want)
	}
}

func TestPinnedPointsStayPinned(t *testing.T) {
	n := NewNet(testParams())
	for i := range n.Points[:7] {
		n.Points[i].Pos = r2.Vec{X: -1000, Y: 1000}
		n.Points[i].AddForce(500, 500)
	}
	in := Input{Pos: n.Points[0].PinPos, Prev: r2.Vec{}, Down: true}

	for i := range n.Points[:7] {
		n.ResolveConstraints(i)
		if p := n.Points[i]; p.Pos != p.PinPos {
			t.Fatalf("after resolve, pinned point %d at %v, want %v", i, p.Pos, p.PinPos)
		}
		n.Points[i].Pos = r2.Vec{X: 3, Y: 4}
		n.Points[i].Integrate(in, n.Params, Delta*Delta)
		if p := n.Points[i]; p.Pos != p.PinPos {
			t.Fatalf("after integrate, pinned point %d at %v, want %v", i, p.Pos, p.PinPos)
		}
	}

	for k := 0; k < 50; k++ {
		n.Step(Delta, in, Discard)
	}
	for i := range n.Points[:7] {
		if p := n.Points[i]; p.Pos != p.PinPos {
			t.Fatalf("after steps, pinned point %d at %v, want %v", i, p.Pos, p.PinPos)
		}
	}
}

func TestPinIsIdempotent(t *testing.T) {
	p := NewPoint(r2.Vec{X: 1, Y: 2})
	p.Pin()
	p.Pos = r2.Vec{X: 5, Y: 5}
	p.Pin()
	if p.PinPos != (r2.Vec{X: 1, Y: 2}) {
		t.Fatalf("second pin moved the pin to %v", p.PinPos)
	}
}

func TestResolveConverges(t *testing.T) {
	for _, d := range []float64{50.5, 60, 100, 400} {
		points := []Point{NewPoint(r2.Vec{}), NewPoint(r2.Vec{X: d * 0.6, Y: d * 0.8})}
		c := Constraint{P1: 0, P2: 1, Length: 50}
		for k := 0; k < 20; k++ {
			before := r2.Norm(r2.Sub(points[0].Pos, points[1].Pos))
			mid := r2.Scale(0.5, r2.Add(points[0].Pos, points[1].Pos))
			c.Resolve(points, 0)
			after := r2.Norm(r2.Sub(points[0].Pos, points[1].Pos))
			if !(after < before) || !(after > 50) {
				t.Fatalf("d=%f pass %d: distance %f -> %f, want strictly between 50 and %f", d, k, before, after, before)
			}
			if m := r2.Scale(0.5, r2.Add(points[0].Pos, points[1].Pos)); r2.Norm(r2.Sub(m, mid)) > 1e-9 {
				t.Fatalf("d=%f pass %d: midpoint moved from %v to %v", d, k, mid, m)
			}
		}
	}
}

func TestResolveWithinRestLengthIsNoop(t *testing.T) {
	cases := [][2]r2.Vec{
		{{X: 0, Y: 0}, {X: 50, Y: 0}},
		{{X: 1.1, Y: 2.3}, {X: 20.7, Y: -4.9}},
		{{X: 7, Y: 7}, {X: 7, Y: 7}}, // coincident
	}
	for _, tc := range cases {
		points := []Point{NewPoint(tc[0]), NewPoint(tc[1])}
		c := Constraint{P1: 0, P2: 1, Length: 50}
		if c.Resolve(points, 60) {
			t.Fatalf("%v: constraint tore", tc)
		}
		if points[0].Pos != tc[0] || points[1].Pos != tc[1] {
			t.Fatalf("%v: points moved to %v %v", tc, points[0].Pos, points[1].Pos)
		}
	}
}

func TestResolvePinnedEndpoint(t *testing.T) {
	points := []Point{NewPoint(r2.Vec{}), NewPoint(r2.Vec{X: 0, Y: 80})}
	points[0].Pin()
	c := Constraint{P1: 1, P2: 0, Length: 50}
	c.Resolve(points, 0)

	if points[0].Pos != (r2.Vec{}) {
		t.Fatalf("pinned point moved to %v", points[0].Pos)
	}
	// the free point absorbs the whole correction: 80 + (50-80)(1-50/80)
	if got, want := points[1].Pos.Y, 80-30*(1-50.0/80); math.Abs(got-want) > 1e-9 {
		t.Fatalf("free point y = %f, want %f", got, want)
	}
	if points[1].Pos.X != 0 {
		t.Fatalf("free point left the connecting axis: %v", points[1].Pos)
	}
}

func TestResolvePinnedFirstEndpoint(t *testing.T) {
	points := []Point{NewPoint(r2.Vec{}), NewPoint(r2.Vec{X: 0, Y: 80})}
	points[0].Pin()
	c := Constraint{P1: 0, P2: 1, Length: 50}
	c.Resolve(points, 0)

	if points[0].Pos != (r2.Vec{}) {
		t.Fatalf("pinned point moved to %v", points[0].Pos)
	}
	if got, want := points[1].Pos.Y, 80-30*(1-50.0/80); math.Abs(got-want) > 1e-9 {
		t.Fatalf("free point y = %f, want %f", got, want)
	}
	if points[1].Pos.X != 0 {
		t.Fatalf("free point left the connecting axis: %v", points[1].Pos)
	}
}

func TestResolveBothPinned(t *testing.T) {
	points := []Point{NewPoint(r2.Vec{}), NewPoint(r2.Vec{X: 80})}
	points[0].Pin()
	points[1].Pin()
	Constraint{P1: 1, P2: 0, Length: 50}.Resolve(points, 0)
	if points[0].Pos != (r2.Vec{}) || points[1].Pos != (r2.Vec{X: 80}) {
		t.Fatalf("pinned points moved to %v %v", points[0].Pos, points[1].Pos)
	}
}

func TestResolveTears(t *testing.T) {
	par := testParams()
	par.TearDistance = 60
	n := &Net{Params: par, Points: []Point{NewPoint(r2.Vec{}), NewPoint(r2.Vec{X: 100})}}
	n.Attach(1, 0)
	n.ResolveConstraints(1)
	if got := n.Constraints(); got != 0 {
		t.Fatalf("constraints after tear = %d, want 0", got)
	}
	if n.Points[1].Pos != (r2.Vec{X: 100}) {
		t.Fatalf("torn constraint still corrected the point: %v", n.Points[1].Pos)
	}
}

func TestDetachKeepsOrder(t *testing.T) {
	n := NewNet(testParams())
	i := n.Index(3, 3)
	n.Attach(i, n.Index(3, 4))
	n.Detach(i, 0)
	cs := n.Points[i].Constraints
	if len(cs) != 2 || cs[0].P2 != n.Index(3, 2) || cs[1].P2 != n.Index(3, 4) {
		t.Fatalf("unexpected constraints after detach %+v", cs)
	}
}

func TestFreeFall(t *testing.T) {
	par := testParams()
	delta2 := Delta * Delta

	par.Friction = 1
	p := NewPoint(r2.Vec{})
	var last float64
	for k := 0; k < 100; k++ {
		y := p.Pos.Y
		p.Integrate(Input{}, par, delta2)
		d := p.Pos.Y - y
		if !(d > last) {
			t.Fatalf("friction 1, step %d: displacement %f not greater than %f", k, d, last)
		}
		if p.Force != (r2.Vec{}) {
			t.Fatalf("force not reset after integration: %v", p.Force)
		}
		last = d
	}

	par.Friction = 0.9
	terminal := par.Gravity * delta2 / (1 - par.Friction)
	p = NewPoint(r2.Vec{})
	last = 0
	for k := 0; k < 500; k++ {
		y := p.Pos.Y
		p.Integrate(Input{}, par, delta2)
		d := p.Pos.Y - y
		if d < last || d > terminal+1e-9 {
			t.Fatalf("friction 0.9, step %d: displacement %f outside [%f, %f]", k, d, last, terminal)
		}
		last = d
	}
	if math.Abs(last-terminal) > 1e-6 {
		t.Fatalf("terminal step = %f, want %f", last, terminal)
	}
}

func TestDragFollowsPointer(t *testing.T) {
	par := testParams()
	for _, move := range []r2.Vec{{X: 15}, {X: -8, Y: -12}, {X: 3, Y: 30}} {
		p := NewPoint(r2.Vec{X: 100, Y: 100})
		in := Input{Prev: r2.Sub(p.Pos, move), Pos: p.Pos, Down: true}
		start := p.Pos
		p.Integrate(in, par, Delta*Delta)
		d := r2.Sub(p.Pos, start)
		if cos := r2.Dot(d, move) / (r2.Norm(d) * r2.Norm(move)); cos < 0.95 {
			t.Fatalf("pointer moved %v, point moved %v", move, d)
		}
	}

	// out of reach
	p := NewPoint(r2.Vec{X: 100, Y: 100})
	in := Input{Prev: r2.Vec{X: 100, Y: 200}, Pos: r2.Vec{X: 150, Y: 200}, Down: true}
	p.Integrate(in, par, Delta*Delta)
	if p.Pos.X != 100 {
		t.Fatalf("point outside influence radius moved sideways to %v", p.Pos)
	}
}

func TestCutDropsConstraints(t *testing.T) {
	n := NewNet(testParams())
	i := n.Index(3, 4)
	in := Input{Pos: n.Points[i].Pos, Prev: n.Points[i].Pos, Cut: true}
	before := n.Constraints()
	n.Step(Delta, in, Discard)
	if got, want := n.Constraints(), before-2; got != want {
		t.Fatalf("constraints after cut = %d, want %d", got, want)
	}
	if len(n.Points[i].Constraints) != 0 {
		t.Fatalf("cut point kept %d constraints", len(n.Points[i].Constraints))
	}
}

func TestNonFinitePointIsKept(t *testing.T) {
	var buf bytes.Buffer
	n := NewNet(testParams())
	n.Logger = log.New(&buf, "", 0)
	i := n.Index(2, 5)
	pos := n.Points[i].Pos
	n.Points[i].AddForce(math.Inf(1), 0)
	n.Step(Delta, Input{}, Discard)

	if p := n.Points[i]; !finite(p.Pos) || !finite(p.Prev) {
		t.Fatalf("point state became non-finite: %+v", p)
	}
	if p := n.Points[i]; r2.Norm(r2.Sub(p.Pos, pos)) > 50 {
		t.Fatalf("point jumped from %v to %v", pos, p.Pos)
	}
	if !strings.Contains(buf.String(), "non-finite") {
		t.Fatalf("expected a log line, got %q", buf.String())
	}
	for _, p := range n.Points {
		if !finite(p.Pos) {
			t.Fatalf("non-finite position spread to %+v", p)
		}
	}
}

func TestOverflowedDistanceIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	n := &Net{Params: testParams(), Points: []Point{
		NewPoint(r2.Vec{X: -1e308}),
		NewPoint(r2.Vec{X: 1e308}),
	}}
	n.Logger = log.New(&buf, "", 0)
	n.Attach(1, 0)

	if n.Points[1].Constraints[0].Resolve(n.Points, 0) {
		t.Fatal("constraint tore without a tear distance")
	}
	if n.Points[0].Pos.X != -1e308 || n.Points[1].Pos.X != 1e308 {
		t.Fatalf("points moved to %v %v", n.Points[0].Pos, n.Points[1].Pos)
	}

	for k := 0; k < 10; k++ {
		n.Step(Delta, Input{}, Discard)
	}
	for i, p := range n.Points {
		if !finite(p.Pos) || !finite(p.Prev) {
			t.Fatalf("point %d became non-finite: pos=%v prev=%v", i, p.Pos, p.Prev)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}

func TestStepEmitsFrame(t *testing.T) {
	n := NewNet(testParams())
	var r Recorder
	n.Step(Delta, Input{}, &r)
	if got, want := len(r.Segments), n.Constraints(); got != want {
		t.Fatalf("segments = %d, want %d", got, want)
	}
	if r.Strokes != 1 || r.Width != n.Params.LineWidth {
		t.Fatalf("strokes = %d width = %f, want 1 and %f", r.Strokes, r.Width, n.Params.LineWidth)
	}
	if n.Frame != 1 {
		t.Fatalf("frame = %d, want 1", n.Frame)
	}
	want := n.Segments()
	for i, s := range r.Segments {
		if s != want[i] {
			t.Fatalf("segment %d = %v, want %v", i, s, want[i])
		}
	}

	n.Draw(&r)
	if r.Strokes != 2 || len(r.Segments) != len(want) {
		t.Fatalf("draw emitted %d segments in stroke %d", len(r.Segments), r.Strokes)
	}
}

func TestNetSettles(t *testing.T) {
	n := NewNet(testParams())
	start := n.Positions()
	for k := 0; k < 5000; k++ {
		n.Step(Delta, Input{}, Discard)
	}
	for i, p := range n.Points {
		if p.Pinned {
			continue
		}
		if !(p.Pos.Y > start[i].Y) {
			t.Fatalf("point %d did not sag: y %f -> %f", i, start[i].Y, p.Pos.Y)
		}
	}
	if m := n.Motion(); m > 1e-3 {
		t.Fatalf("net still moving %f per step after 5000 steps", m)
	}
	n.Step(Delta, Input{}, Discard)
	if m := n.Motion(); m > 1e-3 {
		t.Fatalf("net moved %f on a further step", m)
	}
}

func TestSetPositions(t *testing.T) {
	n := NewNet(testParams())
	pos := n.Positions()
	pos[10].Y += 7
	if err := n.SetPositions(pos); err != nil {
		t.Fatal(err)
	}
	if p := n.Points[10]; p.Pos != pos[10] || p.Prev != pos[10] {
		t.Fatalf("point 10 = %+v, want at rest at %v", p, pos[10])
	}
	if err := n.SetPositions(pos[:3]); err == nil {
		t.Fatal("expected an error for a short position slice")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultParams.Validate(); err != nil {
		t.Fatalf("default params: %v", err)
	}
	bad := []func(*Params){
		func(p *Params) { p.Accuracy = 0 },
		func(p *Params) { p.Cols = 0 },
		func(p *Params) { p.Spacing = 0 },
		func(p *Params) { p.Spacing = math.Inf(1) },
		func(p *Params) { p.Gravity = math.NaN() },
		func(p *Params) { p.Friction = -0.5 },
		func(p *Params) { p.Friction = 1.5 },
		func(p *Params) { p.CutRadius = -1 },
		func(p *Params) { p.TearDistance = 10 },
		func(p *Params) { p.StrandRows = -1 },
	}
	for i, f := range bad {
		p := DefaultParams
		f(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected an error for %+v", i, p)
		}
	}
}

func TestReset(t *testing.T) {
	var buf bytes.Buffer
	n := NewNet(testParams())
	n.Logger = log.New(&buf, "", 0)
	start := n.Positions()
	for k := 0; k < 10; k++ {
		n.Step(Delta, Input{}, Discard)
	}
	n.Reset()
	if n.Frame != 0 || n.Motion() != 0 || n.Logger == nil {
		t.Fatalf("reset kept frame %d motion %f logger %v", n.Frame, n.Motion(), n.Logger)
	}
	for i, p := range n.Positions() {
		if p != start[i] {
			t.Fatalf("point %d at %v after reset, want %v", i, p, start[i])
		}
	}
}

package verletnet

import "gonum.org/v1/gonum/spatial/r2"

// Discard is a LineEmitter that draws nothing.
var Discard LineEmitter = discard{}

type discard struct{}

func (discard) Clear()              {}
func (discard) BeginFrame()         {}
func (discard) MoveTo(x, y float64) {}
func (discard) LineTo(x, y float64) {}
func (discard) StrokeAll(float64)   {}

// A Recorder is a LineEmitter that keeps the segments of the last frame.
type Recorder struct {
	Segments []Segment
	Width    float64 // line width of the last stroke
	Strokes  int     // number of frames stroked

	pen r2.Vec
}

// Clear forgets the segments of the previous frame.
func (r *Recorder) Clear() {
	r.Segments = r.Segments[:0]
}

// BeginFrame does nothing; Clear already starts a new frame.
func (r *Recorder) BeginFrame() {}

// MoveTo lifts the pen to (x, y).
func (r *Recorder) MoveTo(x, y float64) {
	r.pen = r2.Vec{X: x, Y: y}
}

// LineTo records a segment from the pen to (x, y) and moves the pen there.
func (r *Recorder) LineTo(x, y float64) {
	to := r2.Vec{X: x, Y: y}
	r.Segments = append(r.Segments, Segment{r.pen, to})
	r.pen = to
}

// StrokeAll ends the frame.
func (r *Recorder) StrokeAll(lineWidth float64) {
	r.Width = lineWidth
	r.Strokes++
}

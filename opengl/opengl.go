//go:build !nogl
// +build !nogl

package opengl

import (
	"fmt"
	"unsafe"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.1/glfw"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Width  int    // window width in simulation units
	Height int    // window height in simulation units
	Title  string // window title

	// Step advances the simulation by one frame and draws it on e.
	Step func(in verletnet.Input, e verletnet.LineEmitter)

	// Reset rebuilds the simulation. It may be nil.
	Reset func()

	ForcePause bool // step manually only?

	MaxSegments int // capacity of the vertex buffer, grown on demand
}

// Run runs an interactive simulation in an OpenGL window until it is closed.
func Run(n *verletnet.Net, conf *Config) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	title := conf.Title
	if title == "" {
		title = "Verletnet"
	}
	w, err := glfw.CreateWindow(conf.Width, conf.Height, title, nil, nil)
	if err != nil {
		return err
	}
	w.MakeContextCurrent()

	// one step per display refresh
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return err
	}

	fw, fh := w.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fw), int32(fh))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.LINE_SMOOTH)
	gl.ClearColor(0, 0, 0, 1)

	size := conf.MaxSegments
	if size < 1 {
		size = n.Constraints()
	}
	l, err := newLines(size)
	if err != nil {
		return err
	}
	l.setViewport(viewport{{0, 0}, {float32(conf.Width), float32(conf.Height)}})

	// pointer state, sampled once per frame
	var cursor r2.Vec
	var down, cut bool
	w.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		cursor = r2.Vec{X: x, Y: y}
	})
	w.SetMouseButtonCallback(func(w *glfw.Window, b glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
		switch b {
		case glfw.MouseButtonLeft:
			down = action == glfw.Press
		case glfw.MouseButtonRight:
			cut = action == glfw.Press
		}
	})

	var quit, step bool
	pause := conf.ForcePause
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			quit = true
		}
		if key == glfw.KeySpace && action == glfw.Press && !conf.ForcePause {
			pause = !pause
		}
		if key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat) {
			if pause {
				pause = false
				step = true
			}
		}
		if key == glfw.KeyR && action == glfw.Press && conf.Reset != nil {
			conf.Reset()
		}
	})

	x, y := w.GetCursorPos()
	cursor = r2.Vec{X: x, Y: y}
	in := verletnet.Input{Pos: cursor, Prev: cursor}
	for !(quit || w.ShouldClose()) {
		in = in.Moved(cursor)
		in.Down, in.Cut = down, cut
		if step {
			pause = true
			step = false
			conf.Step(in, l)
		} else if !pause {
			conf.Step(in, l)
		} else {
			n.Draw(l)
		}
		w.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// A viewport is a rectangle delimiting the area of simulation space shown on screen.
// The first point is the top left corner, the second point is the bottom right corner.
type viewport [2]struct{ X, Y float32 }

// lines is a LineEmitter drawing segments with OpenGL.
type lines struct {
	vao  uint32 // vertex array object
	vbo  uint32 // vertex buffer object
	prog uint32
	uni  struct {
		vp    int32 // viewport
		color int32 // stroke color
	}

	cap   int       // capacity of vbo in segments
	verts []float32 // pending vertices, two per segment
	pen   [2]float32
}

// Clear clears the frame buffer.
func (l *lines) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// BeginFrame starts a new path.
func (l *lines) BeginFrame() {
	l.verts = l.verts[:0]
}

// MoveTo lifts the pen to (x, y).
func (l *lines) MoveTo(x, y float64) {
	l.pen = [2]float32{float32(x), float32(y)}
}

// LineTo adds a segment from the pen to (x, y).
func (l *lines) LineTo(x, y float64) {
	to := [2]float32{float32(x), float32(y)}
	l.verts = append(l.verts, l.pen[0], l.pen[1], to[0], to[1])
	l.pen = to
}

// StrokeAll uploads the path and draws it.
// Only unit width is available in a core profile, so lineWidth sets the opacity.
func (l *lines) StrokeAll(lineWidth float64) {
	alpha := float32(lineWidth)
	if alpha > 1 || alpha <= 0 {
		alpha = 1
	}
	gl.UseProgram(l.prog)
	gl.Uniform4f(l.uni.color, 1, 1, 1, alpha)
	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)

	segs := len(l.verts) / 4
	if segs > l.cap {
		l.resize(2 * segs)
	}
	if segs > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(l.verts)*4, gl.Ptr(l.verts))
		gl.DrawArrays(gl.LINES, 0, int32(2*segs))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// setViewport sends the new viewport to OpenGL.
func (l *lines) setViewport(vp viewport) {
	gl.UseProgram(l.prog)
	gl.Uniform2fv(l.uni.vp, 2, &vp[0].X)
}

// resize reallocates the vertex buffer for n segments, the buffer must be bound.
func (l *lines) resize(n int) {
	l.cap = n
	gl.BufferData(gl.ARRAY_BUFFER, 2*n*int(unsafe.Sizeof([2]float32{})), nil, gl.STREAM_DRAW)
}

// newLines compiles shaders and initializes the line buffers.
func newLines(maxSegments int) (*lines, error) {
	l := new(lines)

	var err error
	l.prog, err = makeProg([]shader{
		{"Vertex", "line.vert", gl.CreateShader(gl.VERTEX_SHADER)},
		{"Fragment", "line.frag", gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	l.uni.vp = gl.GetUniformLocation(l.prog, gl.Str("vp\x00"))
	l.uni.color = gl.GetUniformLocation(l.prog, gl.Str("color\x00"))

	gl.GenVertexArrays(1, &l.vao)
	gl.BindVertexArray(l.vao)

	gl.GenBuffers(1, &l.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	l.resize(maxSegments)

	// attribute location is specified in the shader with layout(location=0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, int32(unsafe.Sizeof([2]float32{})), nil)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	l.verts = make([]float32, 0, 4*maxSegments)

	return l, nil
}

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	path   string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var fail bool
	for _, s := range shaders {
		src := sources[s.path] + "\x00"
		str, free := gl.Strs(src)
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			fmt.Printf("### %s shader compilation error: %s ###\n\n%s\n\n", s.name, s.path, gl.GoStr(&log[0]))
			fail = true
			gl.DeleteShader(s.shader)
		}
	}
	if fail {
		return 0, fmt.Errorf("opengl: GLSL errors")
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status != gl.TRUE {
		return 0, fmt.Errorf("opengl: failed to link program")
	}
	for _, s := range shaders {
		gl.DeleteShader(s.shader)
	}

	return prog, nil
}

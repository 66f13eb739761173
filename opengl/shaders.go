//go:build !nogl
// +build !nogl

package opengl

// sources maps shader names to their GLSL source.
var sources = map[string]string{
	"line.vert": `#version 330 core

// vp[0] is the top left corner, vp[1] the bottom right corner
uniform vec2 vp[2];

layout(location = 0) in vec2 pos;

void main() {
	vec2 p = (pos - vp[0]) / (vp[1] - vp[0]);
	gl_Position = vec4(2.0 * p.x - 1.0, 1.0 - 2.0 * p.y, 0.0, 1.0);
}
`,
	"line.frag": `#version 330 core

uniform vec4 color;

out vec4 frag;

void main() {
	frag = color;
}
`,
}

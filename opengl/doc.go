// Package opengl runs a net interactively in an OpenGL window.
//
// The left mouse button drags the net, the right button cuts it.
// Space pauses and resumes, right arrow steps once while paused,
// R rebuilds the net and Esc quits.
//
// Build with the nogl tag to drop the OpenGL and GLFW dependencies.
package opengl

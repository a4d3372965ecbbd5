package shader

import (
	_ "embed"
)

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// The lens fragment shader is written against WebGL2 (GLSL ES 3.00) and is
// translated to the host dialect before compiling. It derives uv from
// gl_FragCoord so it does not depend on the vertex stage's varyings, whose
// names the translator may rewrite.
//
//go:embed glsl/lens.frag
var lensFragmentSource string

// The lens vertex stage draws the full-screen quad; attribute 0 carries the
// clip-space corners.
//
//go:embed glsl/lens.vert
var lensVertexSource string

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

func GetBlitFragmentShader(isGLES bool) string {
	if isGLES {
		return blitFragmentShaderSourceGLES
	}
	return blitFragmentShaderSourceGL
}

// LensVertexShader returns the embedded WebGL2 lens vertex shader.
func LensVertexShader() string {
	return lensVertexSource
}

// LensFragmentShader returns the embedded WebGL2 lens fragment shader.
func LensFragmentShader() string {
	return lensFragmentSource
}

// Uniform names every lens fragment shader must declare.
const (
	UniformResolution = "u_resolution"
	UniformTime       = "u_time"
	UniformMouse      = "u_mouse"
	UniformTexture    = "u_texture"
)

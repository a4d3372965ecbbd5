package renderer

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	graphics "github.com/richinsley/golens/graphics"
	inputs "github.com/richinsley/golens/inputs"
	shader "github.com/richinsley/golens/shader"
)

var glInitOnce sync.Once

type Renderer struct {
	context           graphics.Context
	quadVAO           uint32
	quadVBO           uint32
	scene             *Scene
	sceneHidden       bool
	offscreenRenderer *OffscreenRenderer
	blitProgram       uint32
	width             int
	height            int
	recordMode        bool
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// NewRenderer prepares the GL resources shared by every scene: the full
// screen quad, the blit program and the offscreen target. In record mode the
// offscreen target keeps width x height; otherwise it follows the framebuffer.
func NewRenderer(ctx graphics.Context, width, height int, recordMode bool) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		width:      width,
		height:     height,
		recordMode: recordMode,
	}

	// Make the context current BEFORE initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	r.blitProgram, err = newProgram(shader.GenerateVertexShader(r.isGLES()), shader.GetBlitFragmentShader(r.isGLES()))
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}

	w, h := r.renderSize()
	r.offscreenRenderer, err = NewOffscreenRenderer(w, h)
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
	}

	return r, nil
}

func (r *Renderer) isGLES() bool {
	return r.context != nil && r.context.IsGLES()
}

// SetScene replaces the active scene, destroying the previous one. A nil scene
// leaves the renderer clearing frames without drawing the lens.
func (r *Renderer) SetScene(s *Scene) {
	if r.scene != nil && r.scene != s {
		r.scene.Destroy()
	}
	r.scene = s
}

// ToggleScene hides or shows the lens surface without unloading it.
func (r *Renderer) ToggleScene() {
	r.sceneHidden = !r.sceneHidden
}

// SceneVisible reports whether frames draw the lens surface.
func (r *Renderer) SceneVisible() bool {
	return r.scene != nil && !r.sceneHidden
}

func (r *Renderer) Shutdown() {
	// The context itself is shut down by its owner.
	r.SetScene(nil)
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
	}
	if r.offscreenRenderer != nil {
		r.offscreenRenderer.Destroy()
	}
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}

func (r *Renderer) renderSize() (int, int) {
	if r.recordMode || r.context == nil {
		return r.width, r.height
	}
	return r.context.GetFramebufferSize()
}

// RenderFrame draws one frame into the offscreen target. The resolution
// uniform is always the size of that target.
func (r *Renderer) RenderFrame(u inputs.Uniforms) {
	renderWidth, renderHeight := r.renderSize()
	if !r.recordMode {
		// Follow window resizes.
		r.offscreenRenderer.Resize(renderWidth, renderHeight)
	}
	u.Resolution[0] = float32(renderWidth)
	u.Resolution[1] = float32(renderHeight)

	gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreenRenderer.fbo)
	gl.Viewport(0, 0, int32(renderWidth), int32(renderHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.SceneVisible() {
		r.scene.draw(r.quadVAO, u)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Run is the interactive loop. Cursor and resize events reach state through
// the window callbacks; each frame renders a snapshot of it.
func (r *Renderer) Run(state *inputs.State) {
	startTime := r.context.Time()
	var frameCount int32 = 0

	for !r.context.ShouldClose() {
		currentTime := r.context.Time() - startTime
		r.RenderFrame(state.Snapshot(currentTime, frameCount))

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.UseProgram(r.blitProgram)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.offscreenRenderer.textureID)
		gl.BindVertexArray(r.quadVAO)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		gl.BindTexture(gl.TEXTURE_2D, 0)

		r.context.EndFrame()
		frameCount++
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}

package renderer

import (
	"context"
	"fmt"
	"image"
	"log"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/golens/inputs"
	"github.com/richinsley/golens/shader"
	xlate "github.com/richinsley/golens/translator"
	gst "github.com/richinsley/goshadertranslator"
)

// Scene is the lens surface: the translated lens program and the texture it
// refracts.
type Scene struct {
	Origin        string
	program       uint32
	texture       inputs.IChannel
	resolutionLoc int32
	timeLoc       int32
	mouseLoc      int32
	textureLoc    int32
}

// Destroy releases all OpenGL resources used by the scene.
func (s *Scene) Destroy() {
	if s == nil {
		return
	}
	log.Printf("Destroying scene: %s", s.Origin)
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.program != 0 {
		gl.DeleteProgram(s.program)
	}
}

// LoadScene loads the vertex and fragment sources from provider, translates
// both from WebGL2 to the host dialect, links them and uploads img as the lens
// texture. Nothing is left allocated on failure.
func (r *Renderer) LoadScene(ctx context.Context, provider shader.Provider, img *image.RGBA, params inputs.TextureParams) (*Scene, error) {
	sources, err := provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shader sources: %w", err)
	}

	outputFormat := gst.OutputFormatGLSL410
	if r.isGLES() {
		outputFormat = gst.OutputFormatESSL
	}
	translator, err := xlate.GetTranslator()
	if err != nil {
		return nil, err
	}
	vsShader, err := translator.TranslateShader(sources.Vertex, "vertex", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("vertex shader translation failed: %w", err)
	}
	fsShader, err := translator.TranslateShader(sources.Fragment, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	scene := &Scene{Origin: sources.Origin}
	scene.program, err = newProgram(vsShader.Code, fsShader.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	// The translator may rename uniforms; look them up by their mapped names.
	uniformMap := fsShader.Variables
	lookup := func(name string) int32 {
		if v, ok := uniformMap[name]; ok {
			return gl.GetUniformLocation(scene.program, gl.Str(v.MappedName+"\x00"))
		}
		return -1
	}
	scene.resolutionLoc = lookup(shader.UniformResolution)
	scene.timeLoc = lookup(shader.UniformTime)
	scene.mouseLoc = lookup(shader.UniformMouse)
	scene.textureLoc = lookup(shader.UniformTexture)
	if scene.textureLoc < 0 {
		scene.Destroy()
		return nil, fmt.Errorf("shader %s does not sample %s", sources.Origin, shader.UniformTexture)
	}

	texture, err := inputs.NewImageChannel(img, params)
	if err != nil {
		scene.Destroy()
		return nil, fmt.Errorf("failed to upload lens texture: %w", err)
	}
	scene.texture = texture

	res := scene.texture.ChannelRes()
	log.Printf("Successfully loaded scene: %s (texture %.0fx%.0f)", scene.Origin, res[0], res[1])
	return scene, nil
}

func (s *Scene) draw(quadVAO uint32, u inputs.Uniforms) {
	gl.UseProgram(s.program)
	if s.resolutionLoc != -1 {
		gl.Uniform2f(s.resolutionLoc, u.Resolution.X(), u.Resolution.Y())
	}
	if s.timeLoc != -1 {
		gl.Uniform1f(s.timeLoc, u.Time)
	}
	if s.mouseLoc != -1 {
		gl.Uniform2f(s.mouseLoc, u.Mouse.X(), u.Mouse.Y())
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.texture.GetTextureID())
	gl.Uniform1i(s.textureLoc, 0)

	gl.BindVertexArray(quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
}

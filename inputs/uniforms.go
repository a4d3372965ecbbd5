package inputs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/golens/lens"
	"github.com/soypat/glgl/math/ms2"
)

// Uniforms holds the per-frame shader inputs. It is passed by value into the
// render call; nothing keeps a reference to it.
type Uniforms struct {
	// Resolution of the render target in pixels.
	Resolution mgl32.Vec2
	// Mouse in UV space, Y measured from the bottom.
	Mouse mgl32.Vec2
	Time  float32
	Frame int32
}

// Lens converts u for the CPU lens evaluator.
func (u Uniforms) Lens() lens.Uniforms {
	return lens.Uniforms{
		Resolution: ms2.Vec{X: u.Resolution.X(), Y: u.Resolution.Y()},
		Mouse:      ms2.Vec{X: u.Mouse.X(), Y: u.Mouse.Y()},
		Time:       u.Time,
	}
}

// IChannel is a texture input bound to a sampler uniform.
type IChannel interface {
	// GetTextureID returns the OpenGL texture ID that should be bound.
	GetTextureID() uint32

	// ChannelRes returns the resolution of the input channel as a vec3.
	ChannelRes() [3]float32

	// Destroy releases any resources held by the channel.
	Destroy()
}

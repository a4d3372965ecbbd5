// Package lens implements the magnifying lens effect as a pure per-pixel
// function. It is the CPU twin of the embedded lens fragment shader and uses
// the same constants and single-precision math.
package lens

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// Params holds the lens constants. Distances are in aspect-corrected UV units,
// where the viewport height spans 1.
type Params struct {
	// Size is the squircle radius of the lens.
	Size float32
	// Exponent is the squircle exponent n in (|x|^n + |y|^n)^(1/n).
	Exponent float32
	// EdgeSoftness is the half width of the smoothstep band around the lens boundary.
	EdgeSoftness float32
	// WarpStrength scales how far samples are pulled toward the lens center.
	WarpStrength float32
	// BorderThickness is the width of the bright rim inside the boundary.
	BorderThickness    float32
	RefractionStrength float32
	ChromaticStrength  float32
	// Sheen is how far the rim is blended toward white.
	Sheen float32
}

// DefaultParams are the constants compiled into the embedded GLSL lens shader.
var DefaultParams = Params{
	Size:               0.25,
	Exponent:           4,
	EdgeSoftness:       0.01,
	WarpStrength:       0.6,
	BorderThickness:    0.02,
	RefractionStrength: 0.03,
	ChromaticStrength:  0.3,
	Sheen:              0.2,
}

// Uniforms are the per-frame inputs of the lens.
type Uniforms struct {
	// Resolution of the viewport in pixels.
	Resolution ms2.Vec
	// Mouse is the lens center in UV space, Y measured from the bottom.
	Mouse ms2.Vec
	// Time in seconds since start. The lens does not animate with it.
	Time float32
}

// Aspect returns the viewport width over height. A degenerate viewport
// (minimized window) yields 1.
func (u Uniforms) Aspect() float32 {
	if u.Resolution.Y <= 0 || u.Resolution.X <= 0 {
		return 1
	}
	return u.Resolution.X / u.Resolution.Y
}

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// RGBA8 quantizes c to 8 bits per channel.
func (c Color) RGBA8() color.RGBA {
	return color.RGBA{R: quantize(c.R), G: quantize(c.G), B: quantize(c.B), A: quantize(c.A)}
}

func (c Color) rgb() ms3.Vec { return ms3.Vec{X: c.R, Y: c.G, Z: c.B} }

func quantize(v float32) uint8 {
	return uint8(ms1.Clamp(v, 0, 1)*255 + 0.5)
}

// Sampler looks up a texture at a UV coordinate, (0,0) being the bottom-left
// corner. Implementations must be safe for concurrent reads.
type Sampler interface {
	Sample(uv ms2.Vec) Color
}

// SquircleDistance is the signed distance-like field of a squircle of radius
// size and exponent n centered at the origin. Negative inside, zero on the
// boundary.
func SquircleDistance(p ms2.Vec, size, n float32) float32 {
	sum := math32.Pow(math32.Abs(p.X), n) + math32.Pow(math32.Abs(p.Y), n)
	return math32.Pow(sum, 1/n) - size
}

// Locate returns the position of uv relative to the lens center after aspect
// correction, and its squircle distance.
func (p Params) Locate(uv ms2.Vec, u Uniforms) (rel ms2.Vec, dist float32) {
	aspect := ms2.Vec{X: u.Aspect(), Y: 1}
	rel = ms2.Sub(ms2.MulElem(uv, aspect), ms2.MulElem(u.Mouse, aspect))
	return rel, SquircleDistance(rel, p.Size, p.Exponent)
}

// Mask is 1 well inside the lens, 0 outside and smooth across
// [-EdgeSoftness, EdgeSoftness].
func (p Params) Mask(dist float32) float32 {
	return 1 - ms1.SmoothStep(-p.EdgeSoftness, p.EdgeSoftness, dist)
}

// Warp is the magnification falloff: 1 at the center, 0 at radial >= Size.
func (p Params) Warp(radial float32) float32 {
	// Squircle corners reach radial > Size while the mask is still positive.
	// Unclamped, the squared falloff would rise again there.
	f := 1 - ms1.Clamp(radial/p.Size, 0, 1)
	return f * f
}

// WarpedUV pulls uv toward mouse proportionally to warp and WarpStrength.
func (p Params) WarpedUV(uv, mouse ms2.Vec, warp float32) ms2.Vec {
	return ms2.Add(mouse, ms2.Scale(1-warp*p.WarpStrength, ms2.Sub(uv, mouse)))
}

// Shade computes the output color of the fragment at uv. The result is always
// opaque.
func (p Params) Shade(uv ms2.Vec, u Uniforms, tex Sampler) Color {
	raw := tex.Sample(uv)
	raw.A = 1
	rel, dist := p.Locate(uv, u)
	mask := p.Mask(dist)
	if mask <= 0 {
		return raw
	}

	radial := ms2.Norm(rel)
	warp := p.Warp(radial)
	normal := ms2.Scale(1-warp, unit(rel))
	refract := ms2.Scale(p.RefractionStrength*mask, normal)
	base := p.WarpedUV(uv, u.Mouse, warp)

	c := ms3.Vec{
		X: tex.Sample(ms2.Add(base, ms2.Scale(1+p.ChromaticStrength, refract))).R,
		Y: tex.Sample(ms2.Add(base, refract)).G,
		Z: tex.Sample(ms2.Add(base, ms2.Scale(1-p.ChromaticStrength, refract))).B,
	}

	border := ms1.SmoothStep(p.Size-p.BorderThickness, p.Size, radial)
	c = mix(c, ms3.Vec{X: 1, Y: 1, Z: 1}, p.Sheen*border)
	c = mix(raw.rgb(), c, mask)
	return Color{R: c.X, G: c.Y, B: c.Z, A: 1}
}

// unit normalizes v. The zero vector has no direction and maps to itself.
func unit(v ms2.Vec) ms2.Vec {
	n := ms2.Norm(v)
	if n == 0 {
		return ms2.Vec{}
	}
	return ms2.Scale(1/n, v)
}

func mix(x, y ms3.Vec, a float32) ms3.Vec {
	return ms3.InterpElem(x, y, ms3.Vec{X: a, Y: a, Z: a})
}

package inputs

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/richinsley/golens/lens"
	"github.com/soypat/glgl/math/ms2"
)

// TextureParams selects texture wrapping ("clamp", "repeat") and filtering
// ("linear", "nearest", "mipmap"). Empty values mean clamp and linear, as for
// a WebGL texture.
type TextureParams struct {
	Wrap   string
	Filter string
}

// ImageSampler samples an RGBA image the way the GPU samples the uploaded
// texture: v = 0 is the bottom row. It implements lens.Sampler and is safe for
// concurrent use.
type ImageSampler struct {
	img     *image.RGBA
	w, h    int
	repeat  bool
	nearest bool
}

// NewImageSampler wraps img, whose row 0 is the top of the picture.
func NewImageSampler(img *image.RGBA, params TextureParams) *ImageSampler {
	return &ImageSampler{
		img:     img,
		w:       img.Bounds().Dx(),
		h:       img.Bounds().Dy(),
		repeat:  params.Wrap == "repeat",
		nearest: params.Filter == "nearest",
	}
}

func (s *ImageSampler) Sample(uv ms2.Vec) lens.Color {
	if s.w == 0 || s.h == 0 {
		return lens.Color{A: 1}
	}
	// Continuous texel coordinates with texel centers on integers.
	x := uv.X*float32(s.w) - 0.5
	y := (1-uv.Y)*float32(s.h) - 0.5
	if s.nearest {
		return s.texel(int(math32.Floor(x+0.5)), int(math32.Floor(y+0.5)))
	}
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	c00 := s.texel(ix, iy)
	c10 := s.texel(ix+1, iy)
	c01 := s.texel(ix, iy+1)
	c11 := s.texel(ix+1, iy+1)
	return lerp(lerp(c00, c10, fx), lerp(c01, c11, fx), fy)
}

func (s *ImageSampler) texel(x, y int) lens.Color {
	x = s.wrap(x, s.w)
	y = s.wrap(y, s.h)
	off := s.img.PixOffset(s.img.Rect.Min.X+x, s.img.Rect.Min.Y+y)
	px := s.img.Pix[off : off+4 : off+4]
	return lens.Color{
		R: float32(px[0]) / 255,
		G: float32(px[1]) / 255,
		B: float32(px[2]) / 255,
		A: float32(px[3]) / 255,
	}
}

func (s *ImageSampler) wrap(i, n int) int {
	if s.repeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return min(max(i, 0), n-1)
}

func lerp(a, b lens.Color, t float32) lens.Color {
	return lens.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

package lens

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/soypat/glgl/math/ms2"
	"golang.org/x/sync/errgroup"
)

// Evaluator shades batches of UV coordinates with fixed parameters, uniforms
// and texture.
type Evaluator struct {
	Params   Params
	Uniforms Uniforms
	Texture  Sampler
}

// Evaluate writes the shaded color of uvs[i] to dst[i]. userData may carry a
// Sampler that replaces Texture for this call; other values are ignored.
func (e *Evaluator) Evaluate(uvs []ms2.Vec, dst []Color, userData any) error {
	if len(dst) < len(uvs) {
		return fmt.Errorf("destination buffer (%d) shorter than positions (%d)", len(dst), len(uvs))
	}
	tex := e.Texture
	if s, ok := userData.(Sampler); ok {
		tex = s
	}
	if tex == nil {
		return errors.New("nil texture sampler")
	}
	for i, uv := range uvs {
		dst[i] = e.Params.Shade(uv, e.Uniforms, tex)
	}
	return nil
}

// PixelUV returns the UV coordinate of the center of pixel (x, y) of a w×h
// image whose row 0 is the top row.
func PixelUV(x, y, w, h int) ms2.Vec {
	return ms2.Vec{
		X: (float32(x) + 0.5) / float32(w),
		Y: 1 - (float32(y)+0.5)/float32(h),
	}
}

// Render shades every pixel of dst. The resolution uniform is taken from the
// size of dst. Rows are evaluated concurrently by up to workers goroutines;
// workers <= 0 uses GOMAXPROCS.
func Render(ctx context.Context, dst *image.RGBA, p Params, u Uniforms, tex Sampler, workers int) error {
	bb := dst.Bounds()
	w, h := bb.Dx(), bb.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	u.Resolution = ms2.Vec{X: float32(w), Y: float32(h)}
	eval := &Evaluator{Params: p, Uniforms: u, Texture: tex}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j := 0; j < h; j++ {
		row := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			uvs := make([]ms2.Vec, w)
			colors := make([]Color, w)
			for i := range uvs {
				uvs[i] = PixelUV(i, row, w, h)
			}
			if err := eval.Evaluate(uvs, colors, nil); err != nil {
				return fmt.Errorf("row %d: %w", row, err)
			}
			off := dst.PixOffset(bb.Min.X, bb.Min.Y+row)
			for i, c := range colors {
				c8 := c.RGBA8()
				px := dst.Pix[off+4*i : off+4*i+4 : off+4*i+4]
				px[0], px[1], px[2], px[3] = c8.R, c8.G, c8.B, c8.A
			}
			return nil
		})
	}
	return g.Wait()
}

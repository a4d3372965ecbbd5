package inputs

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	// Blank imports for image decoders so image.Decode can handle them.
	_ "image/jpeg"
	_ "image/png"

	api "github.com/richinsley/golens/api"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// LoadImage loads a texture from a file path or an http(s) URL.
func LoadImage(ctx context.Context, src string, useCache bool) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("no texture given")
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return api.FetchImage(ctx, src, useCache)
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", src, err)
	}
	return img, nil
}

// FitImage converts img to RGBA with its origin at (0,0). When maxDim > 0 and
// either side is larger, the image is scaled down to fit, keeping its aspect.
func FitImage(img image.Image, maxDim int) *image.RGBA {
	bb := img.Bounds()
	w, h := bb.Dx(), bb.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		scale := float64(maxDim) / float64(max(w, h))
		nw := max(1, int(float64(w)*scale+0.5))
		nh := max(1, int(float64(h)*scale+0.5))
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bb, draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, bb.Min, draw.Src)
	return dst
}

package inputs

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/golens/lens"
	"github.com/soypat/glgl/math/ms2"
)

func TestStateCursorFlipsY(t *testing.T) {
	s := NewState(800, 600)
	if got := s.Mouse(); got != (mgl32.Vec2{0.5, 0.5}) {
		t.Fatalf("default mouse = %v", got)
	}
	tests := []struct {
		x, y float64
		want mgl32.Vec2
	}{
		{0, 0, mgl32.Vec2{0, 1}},
		{400, 300, mgl32.Vec2{0.5, 0.5}},
		{800, 600, mgl32.Vec2{1, 0}},
		{200, 450, mgl32.Vec2{0.25, 0.25}},
		{-50, 900, mgl32.Vec2{0, 0}},
	}
	for _, tc := range tests {
		s.SetCursor(tc.x, tc.y, 800, 600)
		if got := s.Mouse(); !got.ApproxEqual(tc.want) {
			t.Errorf("SetCursor(%v,%v) mouse = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
	// A minimized window reports a zero size; keep the last position.
	s.SetCursor(10, 10, 0, 0)
	if got := s.Mouse(); !got.ApproxEqual(mgl32.Vec2{0, 0}) {
		t.Errorf("zero-size window moved the mouse to %v", got)
	}
}

func TestStateResizeAndSnapshot(t *testing.T) {
	s := NewState(800, 600)
	s.Resize(1024, 768)
	s.SetMouse(mgl32.Vec2{0.2, 0.8})
	u := s.Snapshot(1.5, 7)
	if u.Resolution != (mgl32.Vec2{1024, 768}) {
		t.Errorf("resolution = %v", u.Resolution)
	}
	if u.Mouse != (mgl32.Vec2{0.2, 0.8}) || u.Time != 1.5 || u.Frame != 7 {
		t.Errorf("snapshot = %+v", u)
	}
	// Snapshots are values: later events do not reach them.
	s.Resize(10, 10)
	if u.Resolution != (mgl32.Vec2{1024, 768}) {
		t.Error("snapshot changed after resize")
	}
	lu := u.Lens()
	if lu.Resolution != (ms2.Vec{X: 1024, Y: 768}) || lu.Mouse != (ms2.Vec{X: 0.2, Y: 0.8}) {
		t.Errorf("lens uniforms = %+v", lu)
	}
}

func TestParseMouse(t *testing.T) {
	m, err := ParseMouse(" 0.25, 0.75")
	if err != nil {
		t.Fatal(err)
	}
	if m != (mgl32.Vec2{0.25, 0.75}) {
		t.Errorf("got %v", m)
	}
	for _, bad := range []string{"", "0.5", "a,b", "0.5,1.5", "1,2,3"} {
		if _, err := ParseMouse(bad); err == nil {
			t.Errorf("ParseMouse(%q) succeeded", bad)
		}
	}
}

func TestOrbit(t *testing.T) {
	o := Orbit{Center: mgl32.Vec2{0.5, 0.5}, Radius: 0.2, Period: 4}
	tests := []struct {
		t    float64
		want mgl32.Vec2
	}{
		{0, mgl32.Vec2{0.7, 0.5}},
		{1, mgl32.Vec2{0.5, 0.7}},
		{2, mgl32.Vec2{0.3, 0.5}},
		{4, mgl32.Vec2{0.7, 0.5}},
	}
	for _, tc := range tests {
		if got := o.At(tc.t); !got.ApproxEqualThreshold(tc.want, 1e-5) {
			t.Errorf("At(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
	if got := (Orbit{Center: mgl32.Vec2{0.5, 0.5}, Radius: 0.1}).At(3); !got.ApproxEqual(mgl32.Vec2{0.6, 0.5}) {
		t.Errorf("zero period orbit = %v", got)
	}
	if got := Static(mgl32.Vec2{0.1, 0.9}).At(math.Pi); got != (mgl32.Vec2{0.1, 0.9}) {
		t.Errorf("static = %v", got)
	}
}

// checker returns a 2x2 image: red top-left, green top-right, blue
// bottom-left, white bottom-right.
func checker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func near(a, b lens.Color) bool {
	const tol = 1e-5
	return math32.Abs(a.R-b.R) < tol && math32.Abs(a.G-b.G) < tol &&
		math32.Abs(a.B-b.B) < tol && math32.Abs(a.A-b.A) < tol
}

func TestImageSamplerOrientation(t *testing.T) {
	s := NewImageSampler(checker(), TextureParams{})
	tests := []struct {
		uv   ms2.Vec
		want lens.Color
	}{
		{ms2.Vec{X: 0.25, Y: 0.75}, lens.Color{R: 1, A: 1}},             // top-left texel center
		{ms2.Vec{X: 0.75, Y: 0.75}, lens.Color{G: 1, A: 1}},             // top-right
		{ms2.Vec{X: 0.25, Y: 0.25}, lens.Color{B: 1, A: 1}},             // bottom-left
		{ms2.Vec{X: 0.75, Y: 0.25}, lens.Color{R: 1, G: 1, B: 1, A: 1}}, // bottom-right
		{ms2.Vec{X: -3, Y: 5}, lens.Color{R: 1, A: 1}},                  // clamped to top-left
		{ms2.Vec{X: 0.5, Y: 0.75}, lens.Color{R: 0.5, G: 0.5, A: 1}},    // halfway between top texels
	}
	for _, tc := range tests {
		if got := s.Sample(tc.uv); !near(got, tc.want) {
			t.Errorf("Sample(%v) = %+v, want %+v", tc.uv, got, tc.want)
		}
	}
}

func TestImageSamplerRepeatAndNearest(t *testing.T) {
	s := NewImageSampler(checker(), TextureParams{Wrap: "repeat", Filter: "nearest"})
	tests := []struct {
		uv   ms2.Vec
		want lens.Color
	}{
		{ms2.Vec{X: 1.25, Y: 0.75}, lens.Color{R: 1, A: 1}},
		{ms2.Vec{X: -0.25, Y: 0.75}, lens.Color{G: 1, A: 1}},
		{ms2.Vec{X: 0.3, Y: -0.75}, lens.Color{B: 1, A: 1}},
		{ms2.Vec{X: 0.49, Y: 0.74}, lens.Color{R: 1, A: 1}},
	}
	for _, tc := range tests {
		if got := s.Sample(tc.uv); !near(got, tc.want) {
			t.Errorf("Sample(%v) = %+v, want %+v", tc.uv, got, tc.want)
		}
	}
}

func TestVflip(t *testing.T) {
	got := vflip(checker())
	if c := got.RGBAAt(0, 0); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("flipped top-left = %v", c)
	}
	if c := got.RGBAAt(1, 1); c != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("flipped bottom-right = %v", c)
	}
}

func TestFitImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 410, 210))
	fit := FitImage(src, 100)
	if fit.Bounds() != image.Rect(0, 0, 100, 50) {
		t.Errorf("fit bounds = %v", fit.Bounds())
	}
	same := FitImage(src, 0)
	if same.Bounds() != image.Rect(0, 0, 400, 200) {
		t.Errorf("unscaled bounds = %v", same.Bounds())
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "background.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checker()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(context.Background(), path, false)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := LoadImage(context.Background(), filepath.Join(dir, "missing.jpg"), false); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadImage(context.Background(), "", false); err == nil {
		t.Error("expected error for empty source")
	}
	bad := filepath.Join(dir, "bad.jpg")
	os.WriteFile(bad, []byte("nope"), 0644)
	if _, err := LoadImage(context.Background(), bad, false); err == nil {
		t.Error("expected decode error")
	}
}

package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	encoder "github.com/richinsley/golens/encoder"
	inputs "github.com/richinsley/golens/inputs"
	lens "github.com/richinsley/golens/lens"
)

type collector struct {
	frames []*encoder.Frame
	fail   error
}

func (c *collector) WriteFrame(f *encoder.Frame) error {
	if c.fail != nil {
		return c.fail
	}
	c.frames = append(c.frames, f)
	return nil
}

type mouseLog struct {
	uniforms []inputs.Uniforms
}

func (m *mouseLog) RenderRGBA(u inputs.Uniforms) ([]byte, error) {
	m.uniforms = append(m.uniforms, u)
	return []byte{byte(len(m.uniforms))}, nil
}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		o    RecordOptions
		want int
	}{
		{RecordOptions{FPS: 30, Duration: 2}, 60},
		{RecordOptions{FPS: 24, Duration: 0.5}, 12},
		{RecordOptions{FPS: 0, Duration: 2}, 0},
		{RecordOptions{FPS: 60, Duration: -1}, 0},
	}
	for _, tc := range tests {
		if got := tc.o.TotalFrames(); got != tc.want {
			t.Errorf("%+v.TotalFrames() = %d, want %d", tc.o, got, tc.want)
		}
	}
}

func TestRecordFollowsPath(t *testing.T) {
	o := RecordOptions{Width: 64, Height: 32, FPS: 4, Duration: 1}
	path := inputs.Orbit{Center: mgl32.Vec2{0.5, 0.5}, Radius: 0.25, Period: 1}
	src := &mouseLog{}
	sink := &collector{}
	if err := Record(context.Background(), o, path, src, sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.frames) != 4 || len(src.uniforms) != 4 {
		t.Fatalf("got %d frames, %d renders", len(sink.frames), len(src.uniforms))
	}
	for i, u := range src.uniforms {
		if sink.frames[i].PTS != int64(i) || u.Frame != int32(i) {
			t.Errorf("frame %d: pts %d, uniform frame %d", i, sink.frames[i].PTS, u.Frame)
		}
		if u.Resolution != (mgl32.Vec2{64, 32}) {
			t.Errorf("frame %d resolution = %v", i, u.Resolution)
		}
		if want := path.At(float64(i) / 4); !u.Mouse.ApproxEqualThreshold(want, 1e-5) {
			t.Errorf("frame %d mouse = %v, want %v", i, u.Mouse, want)
		}
	}
	if src.uniforms[2].Time != 0.5 {
		t.Errorf("frame 2 time = %v", src.uniforms[2].Time)
	}
}

func TestRecordStopsOnSinkError(t *testing.T) {
	full := errors.New("disk full")
	o := RecordOptions{Width: 4, Height: 4, FPS: 10, Duration: 1}
	src := &mouseLog{}
	err := Record(context.Background(), o, inputs.Static{0.5, 0.5}, src, &collector{fail: full})
	if !errors.Is(err, full) {
		t.Fatalf("Record() = %v", err)
	}
	if len(src.uniforms) != 1 {
		t.Errorf("rendered %d frames after the sink failed", len(src.uniforms))
	}
}

func TestRecordNothing(t *testing.T) {
	if err := Record(context.Background(), RecordOptions{FPS: 30}, inputs.Static{}, &mouseLog{}, &collector{}); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestCPUSourceFrames(t *testing.T) {
	tex := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			tex.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	src := &CPUSource{
		Params:  lens.DefaultParams,
		Texture: inputs.NewImageSampler(tex, inputs.TextureParams{}),
		Width:   16,
		Height:  12,
		Workers: 2,
	}
	o := RecordOptions{Width: 16, Height: 12, FPS: 2, Duration: 1}
	sink := &collector{}
	if err := Record(context.Background(), o, inputs.Static{0.5, 0.5}, src, sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.frames) != 2 {
		t.Fatalf("got %d frames", len(sink.frames))
	}
	for _, f := range sink.frames {
		if len(f.Pixels) != 16*12*4 {
			t.Fatalf("frame %d has %d bytes", f.PTS, len(f.Pixels))
		}
		for i := 3; i < len(f.Pixels); i += 4 {
			if f.Pixels[i] != 255 {
				t.Fatalf("frame %d alpha at %d = %d", f.PTS, i, f.Pixels[i])
			}
		}
	}
}

func TestFlipRows(t *testing.T) {
	pix := []byte{
		1, 1,
		2, 2,
		3, 3,
	}
	flipRows(pix, 2, 3)
	want := []byte{3, 3, 2, 2, 1, 1}
	for i := range want {
		if pix[i] != want[i] {
			t.Fatalf("flipped = %v, want %v", pix, want)
		}
	}
}

func TestToggleScene(t *testing.T) {
	r := &Renderer{}
	if r.SceneVisible() {
		t.Fatal("renderer without a scene reports it visible")
	}
	r.scene = &Scene{Origin: "embedded"}
	if !r.SceneVisible() {
		t.Fatal("loaded scene not visible")
	}
	r.ToggleScene()
	if r.SceneVisible() {
		t.Fatal("scene still visible after toggle")
	}
	r.ToggleScene()
	if !r.SceneVisible() {
		t.Fatal("scene hidden after second toggle")
	}
}

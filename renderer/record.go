package renderer

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"

	encoder "github.com/richinsley/golens/encoder"
	inputs "github.com/richinsley/golens/inputs"
	lens "github.com/richinsley/golens/lens"
)

type RecordOptions struct {
	Width    int
	Height   int
	FPS      int
	Duration float64
}

func (o RecordOptions) TotalFrames() int {
	if o.FPS <= 0 || o.Duration <= 0 {
		return 0
	}
	return int(math.Round(o.Duration * float64(o.FPS)))
}

// FrameSource renders one frame of top-down RGBA pixels for u.
type FrameSource interface {
	RenderRGBA(u inputs.Uniforms) ([]byte, error)
}

// FrameSink consumes encoded frames; *encoder.Encoder is one.
type FrameSink interface {
	WriteFrame(f *encoder.Frame) error
}

// RenderRGBA renders u offscreen and reads the result back.
func (r *Renderer) RenderRGBA(u inputs.Uniforms) ([]byte, error) {
	r.RenderFrame(u)
	return r.offscreenRenderer.ReadRGBA(nil)
}

// Still renders a single frame into an image.
func (r *Renderer) Still(u inputs.Uniforms) (*image.RGBA, error) {
	pix, err := r.RenderRGBA(u)
	if err != nil {
		return nil, err
	}
	w, h := r.offscreenRenderer.width, r.offscreenRenderer.height
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

// CPUSource evaluates the lens on the CPU with lens.Render.
type CPUSource struct {
	Ctx     context.Context
	Params  lens.Params
	Texture lens.Sampler
	Width   int
	Height  int
	Workers int
}

func (s *CPUSource) RenderRGBA(u inputs.Uniforms) ([]byte, error) {
	img, err := s.Image(u)
	if err != nil {
		return nil, err
	}
	return img.Pix, nil
}

// Image renders u into a new image of the source's size.
func (s *CPUSource) Image(u inputs.Uniforms) (*image.RGBA, error) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	if err := lens.Render(ctx, img, s.Params, u.Lens(), s.Texture, s.Workers); err != nil {
		return nil, err
	}
	return img, nil
}

// Record is the producer side of recording: it renders every frame of the
// fixed timeline, moving the lens along path, and hands the pixels to sink.
func Record(ctx context.Context, o RecordOptions, path inputs.MousePath, src FrameSource, sink FrameSink) error {
	totalFrames := o.TotalFrames()
	if totalFrames == 0 {
		return fmt.Errorf("nothing to record: %gs at %d fps", o.Duration, o.FPS)
	}
	log.Printf("Recording %d frames...", totalFrames)
	timeStep := 1.0 / float64(o.FPS)

	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		currentTime := float64(i) * timeStep
		state := inputs.NewState(o.Width, o.Height)
		state.SetMouse(path.At(currentTime))

		pixels, err := src.RenderRGBA(state.Snapshot(currentTime, int32(i)))
		if err != nil {
			return fmt.Errorf("failed to render frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(&encoder.Frame{Pixels: pixels, PTS: int64(i)}); err != nil {
			return err
		}
	}
	return nil
}

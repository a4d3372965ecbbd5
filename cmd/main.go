package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	encoder "github.com/richinsley/golens/encoder"
	glfwcontext "github.com/richinsley/golens/glfwcontext"
	graphics "github.com/richinsley/golens/graphics"
	headless "github.com/richinsley/golens/headless"
	inputs "github.com/richinsley/golens/inputs"
	lens "github.com/richinsley/golens/lens"
	options "github.com/richinsley/golens/options"
	renderer "github.com/richinsley/golens/renderer"
	shader "github.com/richinsley/golens/shader"
)

func init() {
	runtime.LockOSThread()
}

const defaultTexture = "background.jpg"

func newOptions(fs *flag.FlagSet) *options.LensOptions {
	return &options.LensOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", "window", "Mode: window, record or still"),
		Backend:    fs.String("backend", "gpu", "Renderer for record and still: gpu or cpu"),
		Headless:   fs.Bool("headless", false, "Use an EGL context instead of a hidden window for gpu record and still (Linux)"),
		Texture:    fs.String("texture", "", "Background texture file or URL (default GOLENS_TEXTURE env var, then "+defaultTexture+")"),
		Shaders:    fs.String("shaders", "embedded", "Shader source: embedded, a directory, or an http(s) base URL"),
		UseCache:   fs.Bool("cache", true, "Cache downloaded textures"),
		MaxTexture: fs.Int("maxtex", 4096, "Scale textures down to at most this many pixels per side (0 disables)"),
		Wrap:       fs.String("wrap", "clamp", "Texture wrap: clamp or repeat"),
		Filter:     fs.String("filter", "linear", "Texture filter: linear, nearest or mipmap"),
		Width:      fs.Int("width", 1280, "Width of the window or output"),
		Height:     fs.Int("height", 720, "Height of the window or output"),
		Mouse:      fs.String("mouse", "", "Fixed lens center x,y in UV space for record and still"),
		Orbit:      fs.Float64("orbit", 0.2, "Radius of the lens orbit when recording without -mouse"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "", "Output file (default output.mp4 or lens.png)"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec: h264 or hevc"),
		HWAccel:    fs.Bool("hwaccel", false, "Use the platform hardware video encoder"),
		Workers:    fs.Int("workers", runtime.NumCPU(), "Goroutines for the cpu backend"),
	}
}

// resolve fills in defaults that depend on other options and the environment.
func resolve(opts *options.LensOptions) error {
	if *opts.Texture == "" {
		*opts.Texture = os.Getenv("GOLENS_TEXTURE")
	}
	if *opts.Texture == "" {
		*opts.Texture = defaultTexture
	}
	if *opts.OutputFile == "" {
		switch *opts.Mode {
		case "record":
			*opts.OutputFile = "output.mp4"
		case "still":
			*opts.OutputFile = "lens.png"
		}
	}
	switch *opts.Mode {
	case "window", "record", "still":
	default:
		return fmt.Errorf("unknown mode %q", *opts.Mode)
	}
	switch *opts.Backend {
	case "gpu", "cpu":
	default:
		return fmt.Errorf("unknown backend %q", *opts.Backend)
	}
	if *opts.Width <= 0 || *opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *opts.Width, *opts.Height)
	}
	if *opts.Mouse != "" {
		if _, err := inputs.ParseMouse(*opts.Mouse); err != nil {
			return err
		}
	}
	return nil
}

// mousePath scripts the lens when there is no cursor: a fixed point from
// -mouse, otherwise one orbit around the center per recording.
func mousePath(opts *options.LensOptions) inputs.MousePath {
	if *opts.Mouse != "" {
		m, err := inputs.ParseMouse(*opts.Mouse)
		if err == nil {
			return inputs.Static(m)
		}
	}
	return inputs.Orbit{Center: mgl32.Vec2{0.5, 0.5}, Radius: float32(*opts.Orbit), Period: *opts.Duration}
}

func textureParams(opts *options.LensOptions) inputs.TextureParams {
	return inputs.TextureParams{Wrap: *opts.Wrap, Filter: *opts.Filter}
}

func loadTexture(ctx context.Context, opts *options.LensOptions) (*image.RGBA, error) {
	img, err := inputs.LoadImage(ctx, *opts.Texture, *opts.UseCache)
	if err != nil {
		return nil, err
	}
	return inputs.FitImage(img, *opts.MaxTexture), nil
}

// loadScene builds the lens surface. Failures are reported to the caller,
// which decides whether running without it is acceptable.
func loadScene(ctx context.Context, r *renderer.Renderer, opts *options.LensOptions) (*renderer.Scene, error) {
	tex, err := loadTexture(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.LoadScene(ctx, shader.NewProvider(*opts.Shaders), tex, textureParams(opts))
}

func cpuSource(ctx context.Context, opts *options.LensOptions) (*renderer.CPUSource, error) {
	tex, err := loadTexture(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &renderer.CPUSource{
		Ctx:     ctx,
		Params:  lens.DefaultParams,
		Texture: inputs.NewImageSampler(tex, textureParams(opts)),
		Width:   *opts.Width,
		Height:  *opts.Height,
		Workers: *opts.Workers,
	}, nil
}

func runWindow(ctx context.Context, opts *options.LensOptions) {
	state := inputs.NewState(*opts.Width, *opts.Height)
	win, err := glfwcontext.New(opts, true, state)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer win.Shutdown()

	r, err := renderer.NewRenderer(win, *opts.Width, *opts.Height, false)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	scene, err := loadScene(ctx, r, opts)
	if err != nil {
		log.Printf("Warning: Failed to create lens surface, not added to scene: %v", err)
	} else {
		r.SetScene(scene)
	}

	win.RegisterKeyCallback(glfw.KeySpace, func() {
		r.ToggleScene()
		log.Printf("Lens visible: %v", r.SceneVisible())
	})
	win.RegisterKeyCallback(glfw.KeyP, func() {
		m := state.Mouse()
		log.Printf("Lens center: %.4f,%.4f", m.X(), m.Y())
	})

	log.Println("Starting interactive render loop (space toggles the lens, P prints its center)...")
	r.Run(state)
}

// offscreenContext returns the GL context for offscreen rendering: an EGL
// pbuffer with -headless, otherwise a hidden GLFW window.
func offscreenContext(opts *options.LensOptions) (graphics.Context, error) {
	if *opts.Headless {
		return headless.NewHeadless(*opts.Width, *opts.Height)
	}
	return glfwcontext.New(opts, false, nil)
}

// offscreenRenderer opens an offscreen context for a GPU renderer with a
// loaded scene. The returned func releases both.
func offscreenRenderer(ctx context.Context, opts *options.LensOptions) (*renderer.Renderer, func()) {
	win, err := offscreenContext(opts)
	if err != nil {
		log.Fatalf("Failed to create offscreen context: %v", err)
	}
	r, err := renderer.NewRenderer(win, *opts.Width, *opts.Height, true)
	if err != nil {
		win.Shutdown()
		log.Fatalf("Failed to create renderer: %v", err)
	}
	scene, err := loadScene(ctx, r, opts)
	if err != nil {
		r.Shutdown()
		win.Shutdown()
		log.Fatalf("Failed to create lens surface: %v", err)
	}
	r.SetScene(scene)
	return r, func() {
		r.Shutdown()
		win.Shutdown()
	}
}

func runRecord(ctx context.Context, opts *options.LensOptions) error {
	var src renderer.FrameSource
	if *opts.Backend == "cpu" {
		cpu, err := cpuSource(ctx, opts)
		if err != nil {
			return err
		}
		src = cpu
	} else {
		r, release := offscreenRenderer(ctx, opts)
		defer release()
		src = r
	}

	enc, err := encoder.New(encoder.Options{
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		OutputFile: *opts.OutputFile,
		FFMPEGPath: *opts.FFMPEGPath,
		Codec:      *opts.Codec,
		HWAccel:    *opts.HWAccel,
	})
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	ro := renderer.RecordOptions{Width: *opts.Width, Height: *opts.Height, FPS: *opts.FPS, Duration: *opts.Duration}
	recErr := renderer.Record(ctx, ro, mousePath(opts), src, enc)
	if err := enc.Close(); err != nil && recErr == nil {
		recErr = err
	}
	return recErr
}

func runStill(ctx context.Context, opts *options.LensOptions) error {
	state := inputs.NewState(*opts.Width, *opts.Height)
	if m, err := inputs.ParseMouse(*opts.Mouse); err == nil {
		state.SetMouse(m)
	}
	u := state.Snapshot(0, 0)

	var img *image.RGBA
	var err error
	if *opts.Backend == "cpu" {
		var cpu *renderer.CPUSource
		if cpu, err = cpuSource(ctx, opts); err != nil {
			return err
		}
		img, err = cpu.Image(u)
	} else {
		r, release := offscreenRenderer(ctx, opts)
		defer release()
		img, err = r.Still(u)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(*opts.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *opts.OutputFile, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", *opts.OutputFile, err)
	}
	return f.Close()
}

func main() {
	opts := newOptions(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("golens: liquid glass lens viewer/recorder")
		flag.PrintDefaults()
		return
	}
	if err := resolve(opts); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	offscreen := *opts.Mode != "window"
	needsGLFW := !offscreen || (*opts.Backend == "gpu" && !*opts.Headless)
	if needsGLFW {
		if err := glfwcontext.InitGraphics(); err != nil {
			log.Fatalf("Failed to initialize graphics: %v", err)
		}
		defer glfwcontext.TerminateGraphics()
	}

	switch *opts.Mode {
	case "window":
		runWindow(ctx, opts)
	case "record":
		log.Println("Starting offscreen render loop...")
		if err := runRecord(ctx, opts); err != nil {
			log.Fatalf("Recording failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	case "still":
		if err := runStill(ctx, opts); err != nil {
			log.Fatalf("Rendering still failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	}
}

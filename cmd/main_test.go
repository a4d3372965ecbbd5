package main

import (
	"flag"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	inputs "github.com/richinsley/golens/inputs"
	options "github.com/richinsley/golens/options"
)

func parse(t *testing.T, args ...string) *options.LensOptions {
	t.Helper()
	fs := flag.NewFlagSet("golens", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := newOptions(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return opts
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv("GOLENS_TEXTURE", "background.jpg")

	opts := parse(t, "-mode", "record")
	if err := resolve(opts); err != nil {
		t.Fatal(err)
	}
	if *opts.Texture != "background.jpg" {
		t.Errorf("texture = %q", *opts.Texture)
	}
	if *opts.OutputFile != "output.mp4" {
		t.Errorf("output = %q", *opts.OutputFile)
	}

	opts = parse(t, "-mode", "still", "-texture", "other.png", "-output", "x.png")
	if err := resolve(opts); err != nil {
		t.Fatal(err)
	}
	if *opts.Texture != "other.png" || *opts.OutputFile != "x.png" {
		t.Errorf("texture %q output %q", *opts.Texture, *opts.OutputFile)
	}

	opts = parse(t, "-mode", "still")
	resolve(opts)
	if *opts.OutputFile != "lens.png" {
		t.Errorf("still output = %q", *opts.OutputFile)
	}
}

func TestResolveTextureFallback(t *testing.T) {
	t.Setenv("GOLENS_TEXTURE", "")

	opts := parse(t)
	if err := resolve(opts); err != nil {
		t.Fatal(err)
	}
	if *opts.Texture != "background.jpg" {
		t.Errorf("texture = %q, want background.jpg", *opts.Texture)
	}

	opts = parse(t, "-texture", "https://example.com/bg.webp")
	resolve(opts)
	if *opts.Texture != "https://example.com/bg.webp" {
		t.Errorf("flag texture replaced by %q", *opts.Texture)
	}
}

func TestResolveRejects(t *testing.T) {
	for _, args := range [][]string{
		{"-mode", "stream"},
		{"-backend", "vulkan"},
		{"-width", "0"},
		{"-mouse", "2,2"},
	} {
		if err := resolve(parse(t, args...)); err == nil {
			t.Errorf("resolve(%v) succeeded", args)
		}
	}
}

func TestMousePath(t *testing.T) {
	opts := parse(t, "-mouse", "0.3,0.6")
	if got := mousePath(opts).At(5); got != (mgl32.Vec2{0.3, 0.6}) {
		t.Errorf("fixed mouse = %v", got)
	}

	opts = parse(t, "-orbit", "0.1", "-duration", "2")
	p, ok := mousePath(opts).(inputs.Orbit)
	if !ok {
		t.Fatalf("path = %T, want inputs.Orbit", mousePath(opts))
	}
	if p.Radius != 0.1 || p.Period != 2 || p.Center != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("orbit = %+v", p)
	}
}

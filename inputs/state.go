package inputs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// State is the single owned mutable input state of the render loop. Event
// handlers write to it and the loop reads one Uniforms snapshot per frame.
// Window callbacks run on the render thread, so it is not locked.
type State struct {
	mouse      mgl32.Vec2
	resolution mgl32.Vec2
}

// NewState returns a state with the lens centered on a width×height viewport.
func NewState(width, height int) *State {
	return &State{
		mouse:      mgl32.Vec2{0.5, 0.5},
		resolution: mgl32.Vec2{float32(width), float32(height)},
	}
}

// SetCursor records a cursor position given in window coordinates (origin at
// the top-left) for a window of the given size. The mouse is stored in UV
// space with Y flipped and clamped to [0,1].
func (s *State) SetCursor(x, y float64, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	u := mgl32.Clamp(float32(x/float64(width)), 0, 1)
	v := mgl32.Clamp(float32(1-y/float64(height)), 0, 1)
	s.mouse = mgl32.Vec2{u, v}
}

// SetMouse places the lens center directly in UV space.
func (s *State) SetMouse(m mgl32.Vec2) {
	s.mouse = m
}

// Resize records a new framebuffer size in pixels.
func (s *State) Resize(width, height int) {
	s.resolution = mgl32.Vec2{float32(width), float32(height)}
}

func (s *State) Mouse() mgl32.Vec2      { return s.mouse }
func (s *State) Resolution() mgl32.Vec2 { return s.resolution }

// Snapshot returns the uniforms for one frame.
func (s *State) Snapshot(time float64, frame int32) Uniforms {
	return Uniforms{
		Resolution: s.resolution,
		Mouse:      s.mouse,
		Time:       float32(time),
		Frame:      frame,
	}
}

// ParseMouse parses "x,y" in UV space.
func ParseMouse(v string) (mgl32.Vec2, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return mgl32.Vec2{}, fmt.Errorf("mouse position %q: want x,y", v)
	}
	var m mgl32.Vec2
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("mouse position %q: %w", v, err)
		}
		if f < 0 || f > 1 {
			return mgl32.Vec2{}, fmt.Errorf("mouse position %q: coordinates must be in [0,1]", v)
		}
		m[i] = float32(f)
	}
	return m, nil
}

package inputs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MousePath scripts the mouse for offscreen rendering, where there is no
// cursor.
type MousePath interface {
	At(t float64) mgl32.Vec2
}

// Static keeps the lens in one place.
type Static mgl32.Vec2

func (s Static) At(float64) mgl32.Vec2 { return mgl32.Vec2(s) }

// Orbit moves the lens counter-clockwise on a circle, one turn per Period
// seconds, starting at angle 0.
type Orbit struct {
	Center mgl32.Vec2
	Radius float32
	Period float64
}

func (o Orbit) At(t float64) mgl32.Vec2 {
	if o.Period <= 0 {
		return o.Center.Add(mgl32.Vec2{o.Radius, 0})
	}
	s, c := math.Sincos(2 * math.Pi * t / o.Period)
	return o.Center.Add(mgl32.Vec2{float32(c), float32(s)}.Mul(o.Radius))
}

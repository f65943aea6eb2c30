// Package coords maps magnet positions between the stored normalized space
// and the two rendering surfaces: the 3D kitchen scene and the 2D DOM
// fridge door.
//
// Normalized space is centered on the door: X grows to the right, Y grows
// upward. The server stores normalized values verbatim; surfaces clamp and
// convert on their side.
package coords

import (
	"math"
	"math/rand/v2"
)

// Initial placement range in normalized units.
const (
	PlacementX = 100.0
	PlacementY = 150.0
)

// Point is a 2D position. Its meaning (normalized, scene units or pixels)
// depends on who produced it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both components are real numbers.
func (p Point) Finite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Bounds is an axis-aligned rectangle, inclusive on all edges.
type Bounds struct {
	Min Point
	Max Point
}

// Contains reports whether p lies within b.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Clamp returns the point of b nearest to p.
func (b Bounds) Clamp(p Point) Point {
	return Point{
		X: math.Max(b.Min.X, math.Min(b.Max.X, p.X)),
		Y: math.Max(b.Min.Y, math.Min(b.Max.Y, p.Y)),
	}
}

// Surface converts between a rendering surface and normalized space.
// Normalize and Denormalize are exact inverses; Clamp keeps a surface
// position inside Bounds.
type Surface interface {
	Normalize(p Point) Point
	Denormalize(n Point) Point
	Clamp(p Point) Point
	Bounds() Bounds
}

// Persist is the only way a surface position becomes a stored value.
func Persist(s Surface, p Point) Point {
	return s.Normalize(s.Clamp(p))
}

// Radians converts a stored rotation to radians for rendering.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts a rendered rotation back to the stored unit.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// RandomPlacement picks a normalized position inside the placement range
// and a tilt in [-maxTilt, maxTilt] degrees.
func RandomPlacement(rng *rand.Rand, maxTilt float64) (Point, float64) {
	p := Point{
		X: (rng.Float64()*2 - 1) * PlacementX,
		Y: (rng.Float64()*2 - 1) * PlacementY,
	}
	tilt := (rng.Float64()*2 - 1) * maxTilt
	return p, tilt
}

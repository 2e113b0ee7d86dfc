// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is a world-space axis-aligned bounding box.
// The zero value is an empty box at the origin; use EmptyBounds when accumulating with Encapsulate.
type Bounds struct {
	// Min is the minimum corner of the box.
	Min mgl32.Vec3
	// Max is the maximum corner of the box.
	Max mgl32.Vec3
}

// EmptyBounds returns an inverted box that becomes valid after the first Encapsulate call.
//
// Returns:
//   - Bounds: a box with Min at +Inf and Max at -Inf on every axis
func EmptyBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewBoundsCenterExtents builds a box from its center and half-size.
//
// Parameters:
//   - center: the center of the box
//   - extents: half the size of the box along each axis
//
// Returns:
//   - Bounds: the constructed box
func NewBoundsCenterExtents(center, extents mgl32.Vec3) Bounds {
	return Bounds{Min: center.Sub(extents), Max: center.Add(extents)}
}

// IsEmpty reports whether the box has not yet enclosed any point.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Encapsulate grows the box so that it also contains other.
//
// Parameters:
//   - other: the box to enclose
//
// Returns:
//   - Bounds: the grown box
func (b Bounds) Encapsulate(other Bounds) Bounds {
	if other.IsEmpty() {
		return b
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], other.Min[i])
		b.Max[i] = max(b.Max[i], other.Max[i])
	}
	return b
}

// IntersectsSphere reports whether the box overlaps the given sphere.
// Uses the closest-point-on-box distance test.
//
// Parameters:
//   - s: the sphere to test against
//
// Returns:
//   - bool: true if the box and the sphere overlap
func (b Bounds) IntersectsSphere(s Sphere) bool {
	if b.IsEmpty() {
		return false
	}
	var distSq float32
	for i := 0; i < 3; i++ {
		c := s.Center[i]
		if c < b.Min[i] {
			d := b.Min[i] - c
			distSq += d * d
		} else if c > b.Max[i] {
			d := c - b.Max[i]
			distSq += d * d
		}
	}
	return distSq <= s.Radius*s.Radius
}

// Sphere is a world-space bounding sphere.
type Sphere struct {
	// Center is the world-space center of the sphere.
	Center mgl32.Vec3
	// Radius is the radius of the sphere in world units.
	Radius float32
}

// Vec4 packs the sphere as (center.xyz, radius), the layout the shading stage reads.
func (s Sphere) Vec4() mgl32.Vec4 {
	return s.Center.Vec4(s.Radius)
}

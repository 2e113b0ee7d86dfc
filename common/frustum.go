package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from p to the plane.
// Positive values lie on the side the normal points to.
func (pl Plane) SignedDistance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum
	r0, r1, r2, r3 := viewProj.Rows()

	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromRow(r3.Add(r2))
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))

	return f
}

// IntersectsSphere reports whether any part of the sphere lies inside the frustum.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: false only when the sphere is fully outside at least one plane
func (f Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// planeFromRow builds a normalized plane from a combined matrix row (a, b, c, d).
func planeFromRow(row mgl32.Vec4) Plane {
	p := Plane{Normal: row.Vec3(), Distance: row[3]}
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}

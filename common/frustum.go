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

// NewPlane creates a plane through point with the given normal. The normal is normalized.
//
// Parameters:
//   - normal: the plane normal, pointing into the accepted half-space
//   - point: any point lying on the plane
//
// Returns:
//   - Plane: the constructed plane
func NewPlane(normal, point mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// SignedDistance returns the signed distance from the plane to p.
// Positive values lie on the side the normal points to.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
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
//   - viewProj: the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	// For column-major matrix M, element M[row][col] is at index col*4 + row.
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f.Planes[FrustumLeft] = planeFromVec4(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromVec4(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromVec4(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromVec4(r3.Sub(r1))
	// WebGPU / zero-to-one clip space: near is row2 alone.
	f.Planes[FrustumNear] = planeFromVec4(r2)
	f.Planes[FrustumFar] = planeFromVec4(r3.Sub(r2))

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IntersectsSphere reports whether a sphere is at least partially inside the frustum.
// The sphere is rejected when its center lies at or beyond -radius from any plane, so a
// sphere straddling a plane is kept.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false if the sphere is entirely outside one plane
func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	return SphereInsidePlanes(f.Planes[:], center, radius)
}

// SphereInsidePlanes performs the frustum sphere test against an arbitrary plane set.
//
// Parameters:
//   - planes: inward-facing planes
//   - center: sphere center
//   - radius: sphere radius
//
// Returns:
//   - bool: false if any plane's signed distance to center is <= -radius
func SphereInsidePlanes(planes []Plane, center mgl32.Vec3, radius float32) bool {
	for i := range planes {
		if planes[i].SignedDistance(center) <= -radius {
			return false
		}
	}
	return true
}

func planeFromVec4(v mgl32.Vec4) Plane {
	return Plane{Normal: v.Vec3(), Distance: v.W()}
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}

package common

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Epsilon is the threshold below which a distance, amount or speed is treated as zero.
	Epsilon float32 = 0.00001

	// FadeEpsilon is the fade distance at or below which LOD cross-fading is disabled.
	FadeEpsilon float32 = 0.001
)

var (
	// Up is the world up axis.
	Up = mgl32.Vec3{0, 1, 0}

	// Forward is the world forward axis used by LookRotation.
	Forward = mgl32.Vec3{0, 0, 1}
)

// SkewScaleMatrix builds a scale matrix with shear injected into the off-diagonal terms.
// The element at row 0, column 1 receives skew.x and the element at row 2, column 1 receives
// skew.y, so both shears are driven by the local Y axis. Storage is column-major.
//
// Parameters:
//   - scale: scale factors along each local axis
//   - skew: shear amounts along the local X and Z axes
//
// Returns:
//   - mgl32.Mat4: the combined scale/shear matrix
func SkewScaleMatrix(scale mgl32.Vec3, skew mgl32.Vec2) mgl32.Mat4 {
	m := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	m[1*4+0] = skew.X()
	m[1*4+2] = skew.Y()
	return m
}

// ComposeMatrix builds Translate(position) * Rotate(rotation) * local, where local is usually
// the result of SkewScaleMatrix.
//
// Parameters:
//   - position: translation in world space
//   - rotation: unit rotation quaternion
//   - local: local-space scale/shear matrix applied before rotation
//
// Returns:
//   - mgl32.Mat4: the composite matrix
func ComposeMatrix(position mgl32.Vec3, rotation mgl32.Quat, local mgl32.Mat4) mgl32.Mat4 {
	return ComposeMatrixRotation(position, rotation.Mat4(), local)
}

// ComposeMatrixRotation is ComposeMatrix with an explicit rotation matrix.
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation matrix (upper 3x3 used)
//   - local: local-space scale/shear matrix applied before rotation
//
// Returns:
//   - mgl32.Mat4: the composite matrix
func ComposeMatrixRotation(position mgl32.Vec3, rotation mgl32.Mat4, local mgl32.Mat4) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	return t.Mul4(rotation).Mul4(local)
}

// TRS builds an unsheared Translate * Rotate * Scale matrix.
//
// Parameters:
//   - position: translation
//   - rotation: unit rotation quaternion
//   - scale: scale factors
//
// Returns:
//   - mgl32.Mat4: the composite matrix
func TRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return ComposeMatrix(position, rotation, mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// PerspectiveZO builds a right-handed perspective projection mapping view-space depth to the
// [0, 1] clip range used by WebGPU.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clip plane distances
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovY/2)
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = (near * far) / (near - far)
	return m
}

// EulerDegrees converts Euler angles in degrees to a quaternion. The rotation is applied
// around Z first, then X, then Y (q = Ry * Rx * Rz).
//
// Parameters:
//   - angles: rotation around the X, Y and Z axes in degrees
//
// Returns:
//   - mgl32.Quat: the resulting rotation
func EulerDegrees(angles mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(angles.X()), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(mgl32.DegToRad(angles.Y()), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(angles.Z()), mgl32.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// ProjectOnPlane removes the component of v along the plane normal.
// A zero normal returns v unchanged.
//
// Parameters:
//   - v: the vector to project
//   - normal: the plane normal (need not be unit length)
//
// Returns:
//   - mgl32.Vec3: the projected vector
func ProjectOnPlane(v, normal mgl32.Vec3) mgl32.Vec3 {
	lenSqr := normal.Dot(normal)
	if lenSqr < Epsilon*Epsilon {
		return v
	}
	return v.Sub(normal.Mul(v.Dot(normal) / lenSqr))
}

// LookRotation returns a rotation matrix whose local +Z axis points along forward and whose
// local +Y axis is as close to up as possible.
//
// Parameters:
//   - forward: the desired forward direction
//   - up: the desired up direction
//
// Returns:
//   - mgl32.Mat4: the rotation matrix
//   - bool: false if forward is degenerate or parallel to up
func LookRotation(forward, up mgl32.Vec3) (mgl32.Mat4, bool) {
	if forward.Len() < Epsilon {
		return mgl32.Ident4(), false
	}
	z := forward.Normalize()
	x := up.Cross(z)
	if x.Len() < Epsilon {
		return mgl32.Ident4(), false
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1}), true
}

// RandomInsideUnitCircle returns a uniformly distributed point inside the unit disk.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - mgl32.Vec2: a point with length <= 1
func RandomInsideUnitCircle(r *rand.Rand) mgl32.Vec2 {
	angle := r.Float32() * 2 * math32.Pi
	radius := math32.Sqrt(r.Float32())
	return mgl32.Vec2{math32.Cos(angle) * radius, math32.Sin(angle) * radius}
}

// RandomOnUnitSphere returns a uniformly distributed point on the unit sphere surface.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - mgl32.Vec3: a unit-length vector
func RandomOnUnitSphere(r *rand.Rand) mgl32.Vec3 {
	z := r.Float32()*2 - 1
	angle := r.Float32() * 2 * math32.Pi
	ring := math32.Sqrt(1 - z*z)
	return mgl32.Vec3{math32.Cos(angle) * ring, math32.Sin(angle) * ring, z}
}

// RandomRange returns a uniformly distributed value in [lo, hi).
//
// Parameters:
//   - r: the random source
//   - lo, hi: range bounds
//
// Returns:
//   - float32: the sampled value
func RandomRange(r *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float32()
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// DistanceSqr returns the squared distance between two points.
func DistanceSqr(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

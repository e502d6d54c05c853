package instance

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceBuilderOption is a functional option for configuring an Instance during construction.
type InstanceBuilderOption func(*Instance)

// WithPosition sets the initial world position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - InstanceBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) InstanceBuilderOption {
	return func(i *Instance) {
		i.position = p
	}
}

// WithRotation sets the initial rotation.
//
// Parameters:
//   - q: a unit quaternion
//
// Returns:
//   - InstanceBuilderOption: functional option to set the rotation
func WithRotation(q mgl32.Quat) InstanceBuilderOption {
	return func(i *Instance) {
		i.rotation = q
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - s: scale factors along each axis
//
// Returns:
//   - InstanceBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) InstanceBuilderOption {
	return func(i *Instance) {
		i.scale = s
	}
}

// WithUniformScale sets the same scale on all three axes.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - InstanceBuilderOption: functional option to set the scale
func WithUniformScale(s float32) InstanceBuilderOption {
	return func(i *Instance) {
		i.scale = mgl32.Vec3{s, s, s}
	}
}

// WithSkew sets the initial shear.
//
// Parameters:
//   - s: shear along local X and Z
//
// Returns:
//   - InstanceBuilderOption: functional option to set the skew
func WithSkew(s mgl32.Vec2) InstanceBuilderOption {
	return func(i *Instance) {
		i.skew = s
	}
}

// WithColor sets the instance tint.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - InstanceBuilderOption: functional option to set the color
func WithColor(c common.Color) InstanceBuilderOption {
	return func(i *Instance) {
		i.Color = c
	}
}

// WithObjectID sets the object type index.
//
// Parameters:
//   - id: index into the group's object names
//
// Returns:
//   - InstanceBuilderOption: functional option to set the object ID
func WithObjectID(id int) InstanceBuilderOption {
	return func(i *Instance) {
		i.ObjectID = id
	}
}

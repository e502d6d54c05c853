package instance

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Reference is an external live object mirroring one Instance's transform.
// The Instance only pushes to it; pulling is the reference's concern.
type Reference interface {
	// PushTransform copies the instance transform onto the external object.
	// Skew and color are not representable on a plain transform and are not pushed.
	//
	// Parameters:
	//   - position: world position
	//   - rotation: world rotation
	//   - scale: local scale
	PushTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3)

	// UnlinkFromInstance severs the association in both directions.
	UnlinkFromInstance()

	// Destroy releases the external object. Called by Group.Remove when requested.
	Destroy()
}

// Instance is one placed copy of an object type.
//
// The composite matrix and bounds radius multiplier are cached together and recomputed lazily
// on the first read after any of position, rotation, scale or skew changed. Color and ObjectID
// do not affect the cache.
type Instance struct {
	id    uint64
	group *Group

	reference Reference

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	skew     mgl32.Vec2

	// Color tints every draw of this instance. Alpha is replaced by the LOD fade opacity.
	Color common.Color
	// ObjectID indexes the owning group's object names. Out-of-range IDs are skipped by renderers and animators.
	ObjectID int

	dirty                  bool
	matrix                 mgl32.Mat4
	boundsRadiusMultiplier float32
}

// New creates an Instance bound to group with an identity transform, white color and ObjectID 0.
// The instance is not a member of the group until Group.Add is called.
//
// Parameters:
//   - group: the owning group, may be nil if Add will be called later
//   - options: functional options to configure the instance
//
// Returns:
//   - *Instance: the new instance
func New(group *Group, options ...InstanceBuilderOption) *Instance {
	inst := &Instance{
		group:    group,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		Color:    common.White,
		dirty:    true,
	}
	for _, option := range options {
		option(inst)
	}
	return inst
}

// ID returns the identifier assigned by the group on Add, or 0 if never added.
func (i *Instance) ID() uint64 {
	return i.id
}

// Group returns the owning group.
func (i *Instance) Group() *Group {
	return i.group
}

// Reference returns the associated external reference, or nil.
func (i *Instance) Reference() Reference {
	return i.reference
}

// SetReference associates an external reference with this instance. Pass nil to clear.
// The reference receives the current transform immediately.
//
// Parameters:
//   - ref: the reference to associate
func (i *Instance) SetReference(ref Reference) {
	i.reference = ref
	if ref != nil {
		ref.PushTransform(i.position, i.rotation, i.scale)
	}
}

// ClearReference drops the association without notifying the reference.
func (i *Instance) ClearReference() {
	i.reference = nil
}

func (i *Instance) Position() mgl32.Vec3 { return i.position }
func (i *Instance) Rotation() mgl32.Quat { return i.rotation }
func (i *Instance) Scale() mgl32.Vec3    { return i.scale }
func (i *Instance) Skew() mgl32.Vec2     { return i.skew }

// SetPosition sets the world position and invalidates the cached matrix.
func (i *Instance) SetPosition(p mgl32.Vec3) {
	i.position = p
	i.dirty = true
}

// SetRotation sets the rotation and invalidates the cached matrix.
func (i *Instance) SetRotation(q mgl32.Quat) {
	i.rotation = q
	i.dirty = true
}

// SetScale sets the scale and invalidates the cached matrix.
func (i *Instance) SetScale(s mgl32.Vec3) {
	i.scale = s
	i.dirty = true
}

// SetSkew sets the shear and invalidates the cached matrix.
func (i *Instance) SetSkew(s mgl32.Vec2) {
	i.skew = s
	i.dirty = true
}

// Dirty reports whether the cached matrix is stale.
func (i *Instance) Dirty() bool {
	return i.dirty
}

// Matrix returns the composite transform, recomputing it if any transform field changed.
//
// Returns:
//   - mgl32.Mat4: Translate(position) * Rotate(rotation) * SkewScale(scale, skew)
func (i *Instance) Matrix() mgl32.Mat4 {
	if i.dirty {
		i.RecalculateMatrix()
	}
	return i.matrix
}

// BoundsRadiusMultiplier returns the factor applied to a mesh bounding radius to size this
// instance's cull sphere, recomputing it if any transform field changed.
//
// Returns:
//   - float32: max(scale.x*(1+skew.x), scale.y, scale.z*(1+skew.y))
func (i *Instance) BoundsRadiusMultiplier() float32 {
	if i.dirty {
		i.RecalculateMatrix()
	}
	return i.boundsRadiusMultiplier
}

// RecalculateMatrix recomputes the matrix and bounds multiplier and pushes the transform to
// the associated reference, if any.
func (i *Instance) RecalculateMatrix() {
	i.matrix, i.boundsRadiusMultiplier = ComputeMatrix(i.position, i.rotation, i.scale, i.skew)
	i.dirty = false

	if i.reference != nil {
		i.reference.PushTransform(i.position, i.rotation, i.scale)
	}
}

// UpdateReferenceIfChanged pushes the transform to the reference only if the cache is stale.
// The cache itself is left stale so the next read still recomputes.
func (i *Instance) UpdateReferenceIfChanged() {
	if i.dirty && i.reference != nil {
		i.reference.PushTransform(i.position, i.rotation, i.scale)
	}
}

// FromTransform pulls position, rotation and scale from an external transform.
//
// Parameters:
//   - position: world position
//   - rotation: world rotation
//   - scale: local scale
func (i *Instance) FromTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	i.position = position
	i.rotation = rotation
	i.scale = scale
	i.dirty = true
}

// BillboardMatrix returns a matrix for this instance that faces eye by rotating around the
// instance's local up axis. It is computed fresh on every call and never touches the cache.
// When eye lies on the up axis the instance rotation is used unchanged.
//
// Parameters:
//   - eye: the viewer position
//
// Returns:
//   - mgl32.Mat4: the billboard matrix
func (i *Instance) BillboardMatrix(eye mgl32.Vec3) mgl32.Mat4 {
	local := common.SkewScaleMatrix(i.scale, i.skew)
	up := i.rotation.Rotate(common.Up)
	direction := common.ProjectOnPlane(eye.Sub(i.position), up)

	rot, ok := common.LookRotation(direction, up)
	if !ok {
		return common.ComposeMatrix(i.position, i.rotation, local)
	}
	return common.ComposeMatrixRotation(i.position, rot, local)
}

// ComputeMatrix is the pure function behind the instance cache.
//
// Parameters:
//   - position, rotation, scale, skew: the transform fields
//
// Returns:
//   - mgl32.Mat4: the composite matrix
//   - float32: the bounds radius multiplier
func ComputeMatrix(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3, skew mgl32.Vec2) (mgl32.Mat4, float32) {
	multiplier := math32.Max(
		math32.Max(scale.X()+scale.X()*skew.X(), scale.Y()),
		scale.Z()+scale.Z()*skew.Y(),
	)
	return common.ComposeMatrix(position, rotation, common.SkewScaleMatrix(scale, skew)), multiplier
}

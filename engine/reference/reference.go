package reference

import (
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
)

// Reference links one instance to one external Transform.
//
// The instance pushes its transform through PushTransform whenever its matrix is recomputed.
// Sync pulls edits made on the Transform back into the instance. Like the group it serves, a
// Reference must only be used from the frame thread.
type Reference struct {
	inst      *instance.Instance
	transform Transform
	destroyed bool
}

var _ instance.Reference = &Reference{}

// Link creates a Reference between inst and t and associates it with inst. The instance
// transform is pushed to t immediately and t's changed flag is cleared.
//
// Parameters:
//   - inst: the instance
//   - t: the external transform
//
// Returns:
//   - *Reference: the new reference
func Link(inst *instance.Instance, t Transform) *Reference {
	r := &Reference{inst: inst, transform: t}
	inst.SetReference(r)
	t.ClearChanged()
	return r
}

// Instance returns the linked instance, or nil once unlinked.
func (r *Reference) Instance() *instance.Instance {
	return r.inst
}

// Transform returns the external transform.
func (r *Reference) Transform() Transform {
	return r.transform
}

// Destroyed reports whether Destroy has been called.
func (r *Reference) Destroyed() bool {
	return r.destroyed
}

// PushTransform mirrors the instance transform onto the external transform.
func (r *Reference) PushTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	r.transform.Mirror(position, rotation, scale)
}

// Sync pulls the external transform into the instance if it changed since the last pull.
//
// Returns:
//   - bool: true if the instance was updated
func (r *Reference) Sync() bool {
	if r.inst == nil || !r.transform.HasChanged() {
		return false
	}
	r.inst.FromTransform(r.transform.Position(), r.transform.Rotation(), r.transform.Scale())
	r.transform.ClearChanged()
	return true
}

// UnlinkFromInstance makes the reference independent from its instance, severing the
// association in both directions. The instance stays in its group.
func (r *Reference) UnlinkFromInstance() {
	if r.inst == nil {
		return
	}
	r.inst.ClearReference()
	r.inst = nil
}

// UnlinkFromGroup permanently removes the linked instance from its group and leaves the
// external transform standing on its own.
func (r *Reference) UnlinkFromGroup() {
	inst := r.inst
	if inst == nil {
		return
	}
	r.UnlinkFromInstance()
	if g := inst.Group(); g != nil {
		_ = g.Remove(inst, false)
	}
}

// Destroy removes the linked instance from its group, if still linked, and destroys the external
// transform. Calling Destroy more than once has no further effect.
func (r *Reference) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.UnlinkFromGroup()
	r.transform.Destroy()
}

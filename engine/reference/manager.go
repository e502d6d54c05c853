package reference

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
)

// Factory creates the external transform for an instance.
//
// Parameters:
//   - inst: the instance the transform will mirror
//   - name: the instance's object type name, or DefaultNodeName
//
// Returns:
//   - Transform: the new transform
type Factory func(inst *instance.Instance, name string) Transform

// DefaultFactory creates a Node named after the object type.
func DefaultFactory(_ *instance.Instance, name string) Transform {
	return NewNode(WithName(name))
}

// Manager maintains one Reference per instance of a group while references are in use.
//
// Enabling references creates them for every current instance and installs the manager as the
// group's add hook so later instances get one too. Sync runs once per frame, after external
// edits and before the render pass reads matrices.
type Manager struct {
	group         *instance.Group
	factory       Factory
	useReferences bool
}

// NewManager creates a Manager for group. References start disabled unless WithUseReferences is
// passed.
//
// Parameters:
//   - group: the group to manage, must not be nil
//   - options: functional options
//
// Returns:
//   - *Manager: the manager
func NewManager(group *instance.Group, options ...ManagerBuilderOption) *Manager {
	if group == nil {
		panic("reference: group is required")
	}
	m := &Manager{
		group:   group,
		factory: DefaultFactory,
	}
	for _, option := range options {
		option(m)
	}
	use := m.useReferences
	m.useReferences = false
	m.SetUseReferences(use)
	return m
}

// Group returns the managed group.
func (m *Manager) Group() *instance.Group {
	return m.group
}

// UseReferences reports whether references are currently maintained.
func (m *Manager) UseReferences() bool {
	return m.useReferences
}

// SetUseReferences creates references for every instance when switched on and unlinks and
// destroys them when switched off. Setting the current value is a no-op.
//
// Parameters:
//   - use: whether references should exist
func (m *Manager) SetUseReferences(use bool) {
	if use == m.useReferences {
		return
	}
	m.useReferences = use
	if use {
		m.createReferences()
		m.group.SetOnAdd(m.onAdd)
		return
	}
	m.group.SetOnAdd(nil)
	m.removeReferences()
}

// CreateReference builds the external transform for inst and links it.
//
// Parameters:
//   - inst: the instance
//
// Returns:
//   - *Reference: the new reference
func (m *Manager) CreateReference(inst *instance.Instance) *Reference {
	name, ok := m.group.ObjectName(inst.ObjectID)
	if !ok {
		name = DefaultNodeName
	}
	return Link(inst, m.factory(inst, name))
}

// Reload rebuilds every reference. It does nothing while references are off.
func (m *Manager) Reload() {
	if !m.useReferences {
		return
	}
	m.SetUseReferences(false)
	m.SetUseReferences(true)
}

// UnlinkReferences detaches every reference from its instance, leaving the external transforms
// alive, and switches references off.
//
// Returns:
//   - []Transform: the detached transforms
func (m *Manager) UnlinkReferences() []Transform {
	var detached []Transform
	for _, inst := range m.group.Instances() {
		ref := inst.Reference()
		if ref == nil {
			continue
		}
		ref.UnlinkFromInstance()
		if r, ok := ref.(*Reference); ok {
			detached = append(detached, r.Transform())
		}
	}
	m.group.SetOnAdd(nil)
	m.useReferences = false
	return detached
}

// UnlinkAll converts every instance into a free-standing external transform: references are
// enabled if needed, then every instance is removed from the group while its transform is kept.
//
// Returns:
//   - []Transform: the transforms that replaced the instances, in group order
func (m *Manager) UnlinkAll() []Transform {
	m.SetUseReferences(true)

	detached := make([]Transform, m.group.Count())
	for n := m.group.Count(); n > 0; n = m.group.Count() {
		inst, err := m.group.At(n - 1)
		if err != nil {
			break
		}
		r, ok := inst.Reference().(*Reference)
		if !ok {
			_ = m.group.Remove(inst, true)
			continue
		}
		detached[n-1] = r.Transform()
		r.UnlinkFromGroup()
	}

	common.Logger().Debug("references unlinked from group", "count", len(detached))
	return detached
}

// Sync pulls changed external transforms into their instances and pushes instances whose
// transform changed since their last matrix read.
//
// Returns:
//   - int: the number of instances updated from their external transform
func (m *Manager) Sync() int {
	if !m.useReferences {
		return 0
	}
	var pulled int
	for _, inst := range m.group.Instances() {
		if r, ok := inst.Reference().(*Reference); ok && r.Sync() {
			pulled++
		}
		inst.UpdateReferenceIfChanged()
	}
	return pulled
}

// Close destroys every reference without touching the instances.
func (m *Manager) Close() {
	m.group.SetOnAdd(nil)
	m.removeReferences()
	m.useReferences = false
}

func (m *Manager) onAdd(inst *instance.Instance) {
	if inst.Reference() != nil {
		return
	}
	m.CreateReference(inst)
}

func (m *Manager) createReferences() {
	for _, inst := range m.group.Instances() {
		if inst.Reference() != nil {
			common.Logger().Error("instance has more than one reference assigned to it", "instance", inst.ID())
		}
		m.CreateReference(inst)
	}
}

func (m *Manager) removeReferences() {
	for _, inst := range m.group.Instances() {
		ref := inst.Reference()
		if ref == nil {
			continue
		}
		ref.UnlinkFromInstance()
		ref.Destroy()
	}
}

package instance

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
)

var (
	// ErrInstanceNotFound is returned when an instance is not a member of the group.
	ErrInstanceNotFound = errors.New("instance: not found in group")

	// ErrIndexOutOfRange is returned by indexed access outside [0, Count).
	ErrIndexOutOfRange = errors.New("instance: index out of range")
)

// instanceCount hands out instance IDs. IDs are unique across every group so an instance keeps a
// distinct ID when it moves between groups.
var instanceCount atomic.Uint64

// DefaultObjectName is the single object type a new Group starts with.
const DefaultObjectName = "Default Object"

// Group owns an ordered sequence of instances and the table of object type names.
//
// Order is insertion order and is stable for indexed access. A Group is not safe for
// concurrent mutation: add, remove and field writes must be confined to the frame thread,
// and readers running on other goroutines must not overlap with them.
type Group struct {
	instances   []*Instance
	objectNames []string

	onAdd func(*Instance)
}

// NewGroup creates an empty group.
//
// Parameters:
//   - options: functional options to configure the group
//
// Returns:
//   - *Group: the new group
func NewGroup(options ...GroupBuilderOption) *Group {
	g := &Group{
		objectNames: []string{DefaultObjectName},
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Count returns the number of instances.
func (g *Group) Count() int {
	return len(g.instances)
}

// At returns the i-th instance.
//
// Parameters:
//   - i: the index
//
// Returns:
//   - *Instance: the instance
//   - error: ErrIndexOutOfRange if i is outside [0, Count)
func (g *Group) At(i int) (*Instance, error) {
	if i < 0 || i >= len(g.instances) {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, i, len(g.instances))
	}
	return g.instances[i], nil
}

// Set replaces the i-th instance. The new instance's back-reference is set to g. When the
// replaced instance no longer appears anywhere in the group, its reference is unlinked and its
// back-reference cleared. Its reference is not destroyed.
//
// Parameters:
//   - i: the index
//   - inst: the replacement
//
// Returns:
//   - error: ErrIndexOutOfRange if i is outside [0, Count)
func (g *Group) Set(i int, inst *Instance) error {
	if i < 0 || i >= len(g.instances) {
		return fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, i, len(g.instances))
	}
	old := g.instances[i]
	g.adopt(inst)
	g.instances[i] = inst
	if old != nil && g.IndexOf(old) < 0 {
		release(old)
	}
	return nil
}

// Instances returns the live instance slice. Callers must not append to or reorder it.
func (g *Group) Instances() []*Instance {
	return g.instances
}

// Add appends inst and points its back-reference at g. If an add hook is installed
// (normally a reference manager) it runs before the instance is appended.
//
// Parameters:
//   - inst: the instance to add
func (g *Group) Add(inst *Instance) {
	g.adopt(inst)
	if g.onAdd != nil {
		g.onAdd(inst)
	}
	g.instances = append(g.instances, inst)
}

// Remove unlinks any reference from inst, optionally destroys that reference, and removes inst.
//
// Parameters:
//   - inst: the instance to remove
//   - destroyReference: whether to destroy the associated reference
//
// Returns:
//   - error: ErrInstanceNotFound if inst is not a member; the group is left unchanged
func (g *Group) Remove(inst *Instance, destroyReference bool) error {
	idx := g.IndexOf(inst)
	if idx < 0 {
		return ErrInstanceNotFound
	}

	if ref := inst.reference; ref != nil {
		ref.UnlinkFromInstance()
		inst.reference = nil
		if destroyReference {
			ref.Destroy()
		}
	}

	// the reference may have removed the instance itself while being destroyed
	if idx >= len(g.instances) || g.instances[idx] != inst {
		idx = g.IndexOf(inst)
		if idx < 0 {
			return nil
		}
	}
	g.instances = slices.Delete(g.instances, idx, idx+1)
	return nil
}

// Clear removes every instance without unlinking references.
func (g *Group) Clear() {
	clear(g.instances)
	g.instances = g.instances[:0]
}

// IndexOf returns the position of inst, or -1.
func (g *Group) IndexOf(inst *Instance) int {
	return slices.Index(g.instances, inst)
}

// SetOnAdd installs a hook run for every instance passed to Add. Pass nil to remove it.
//
// Parameters:
//   - fn: the hook
func (g *Group) SetOnAdd(fn func(*Instance)) {
	g.onAdd = fn
}

// ObjectNames returns the object type names. Index is the object ID.
func (g *Group) ObjectNames() []string {
	return g.objectNames
}

// ObjectCount returns the number of object types.
func (g *Group) ObjectCount() int {
	return len(g.objectNames)
}

// ObjectName returns the name for id.
//
// Returns:
//   - string: the name
//   - bool: false if id has no matching type
func (g *Group) ObjectName(id int) (string, bool) {
	if id < 0 || id >= len(g.objectNames) {
		return "", false
	}
	return g.objectNames[id], true
}

// SetObjectNames replaces the object type table.
func (g *Group) SetObjectNames(names []string) {
	g.objectNames = slices.Clone(names)
}

// AddObjectName appends an object type and returns its ID.
func (g *Group) AddObjectName(name string) int {
	g.objectNames = append(g.objectNames, name)
	return len(g.objectNames) - 1
}

// RemoveObjectName deletes an object type. Instances referencing it, or any later type, keep
// their IDs; those IDs may now be dangling or point at a different type.
//
// Returns:
//   - error: ErrIndexOutOfRange if id is not a valid type
func (g *Group) RemoveObjectName(id int) error {
	if id < 0 || id >= len(g.objectNames) {
		return fmt.Errorf("%w: object id %d", ErrIndexOutOfRange, id)
	}
	g.objectNames = slices.Delete(g.objectNames, id, id+1)
	return nil
}

func (g *Group) adopt(inst *Instance) {
	inst.group = g
	if inst.id == 0 {
		inst.id = instanceCount.Add(1)
	}
}

// release detaches an instance that has left the group without destroying its reference.
func release(inst *Instance) {
	if ref := inst.reference; ref != nil {
		ref.UnlinkFromInstance()
		inst.reference = nil
	}
	inst.group = nil
}

package reference

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// nodeCount generates IDs for nodes created without WithID.
var nodeCount atomic.Uint64

// Transform is the external live object a Reference mirrors.
//
// Edits made through the setters mark the transform as changed so the next Sync pulls them into
// the instance. Mirror is the write path used when the instance pushes to the transform and
// leaves the changed flag untouched.
type Transform interface {
	// Name returns the display name, normally the object type name of the linked instance.
	//
	// Returns:
	//   - string: the name
	Name() string

	Position() mgl32.Vec3
	Rotation() mgl32.Quat
	Scale() mgl32.Vec3

	// SetPosition sets the position and marks the transform changed.
	SetPosition(p mgl32.Vec3)
	// SetRotation sets the rotation and marks the transform changed.
	SetRotation(q mgl32.Quat)
	// SetScale sets the scale and marks the transform changed.
	SetScale(s mgl32.Vec3)

	// Mirror overwrites position, rotation and scale without marking the transform changed.
	//
	// Parameters:
	//   - position: world position
	//   - rotation: world rotation
	//   - scale: local scale
	Mirror(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3)

	// HasChanged reports whether a setter ran since the last ClearChanged.
	//
	// Returns:
	//   - bool: true if changed
	HasChanged() bool

	// ClearChanged resets the changed flag.
	ClearChanged()

	// Destroy releases the external object.
	Destroy()
}

type node struct {
	mu *sync.Mutex

	id        uint64
	name      string
	enabled   atomic.Bool
	destroyed atomic.Bool

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	changed  bool
}

// Node is an in-memory Transform standing in for a live scene entity. It is the default
// object a Manager creates for each instance when no Factory is configured.
type Node interface {
	Transform

	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// SetName sets the display name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Enabled returns whether the node is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the node is enabled.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Destroyed reports whether Destroy has been called.
	//
	// Returns:
	//   - bool: true once destroyed
	Destroyed() bool
}

var _ Node = &node{}

// NewNode creates an enabled Node with an identity transform.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		mu:       &sync.Mutex{},
		name:     DefaultNodeName,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	n.enabled.Store(true)
	for _, option := range options {
		option(n)
	}
	if n.id == 0 {
		n.id = nodeCount.Add(1)
	}
	return n
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Enabled() bool {
	return n.enabled.Load()
}

func (n *node) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

func (n *node) Position() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *node) Rotation() mgl32.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rotation
}

func (n *node) Scale() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *node) SetPosition(p mgl32.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = p
	n.changed = true
}

func (n *node) SetRotation(q mgl32.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = q
	n.changed = true
}

func (n *node) SetScale(s mgl32.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = s
	n.changed = true
}

func (n *node) Mirror(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = position
	n.rotation = rotation
	n.scale = scale
}

func (n *node) HasChanged() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.changed
}

func (n *node) ClearChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = false
}

func (n *node) Destroy() {
	n.destroyed.Store(true)
	n.enabled.Store(false)
}

func (n *node) Destroyed() bool {
	return n.destroyed.Load()
}

package reference

import "github.com/go-gl/mathgl/mgl32"

// DefaultNodeName names nodes created for instances whose object type has no name.
const DefaultNodeName = "InstanceReference"

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithID sets the ID of the Node. Without it a process-unique ID is assigned.
//
// Parameters:
//   - id: unique identifier for the Node
//
// Returns:
//   - NodeBuilderOption: functional option to set the ID
func WithID(id uint64) NodeBuilderOption {
	return func(n *node) {
		n.id = id
	}
}

// WithName sets the display name of the Node.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - NodeBuilderOption: functional option to set the name
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithEnabled sets whether the Node starts enabled.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - NodeBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.enabled.Store(enabled)
	}
}

// WithTransform sets the initial transform of the Node without marking it changed.
//
// Parameters:
//   - position: world position
//   - rotation: world rotation
//   - scale: local scale
//
// Returns:
//   - NodeBuilderOption: functional option to set the transform
func WithTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = position
		n.rotation = rotation
		n.scale = scale
	}
}

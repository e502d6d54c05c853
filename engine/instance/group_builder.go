package instance

import "slices"

// GroupBuilderOption is a functional option for configuring a Group during construction.
type GroupBuilderOption func(*Group)

// WithObjectNames replaces the default object type table.
//
// Parameters:
//   - names: object type names, index is the object ID
//
// Returns:
//   - GroupBuilderOption: functional option to set the object names
func WithObjectNames(names ...string) GroupBuilderOption {
	return func(g *Group) {
		g.objectNames = slices.Clone(names)
	}
}

// WithCapacity preallocates room for n instances.
//
// Parameters:
//   - n: expected instance count
//
// Returns:
//   - GroupBuilderOption: functional option to set the initial capacity
func WithCapacity(n int) GroupBuilderOption {
	return func(g *Group) {
		g.instances = make([]*Instance, 0, n)
	}
}

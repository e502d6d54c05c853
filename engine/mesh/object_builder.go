package mesh

// ObjectBuilderOption is a functional option for configuring an Object during construction.
type ObjectBuilderOption func(*Object)

// WithLODs sets the object's LODs. They are sorted by distance after all options are applied.
//
// Parameters:
//   - lods: the LODs in any order
//
// Returns:
//   - ObjectBuilderOption: functional option to set the LODs
func WithLODs(lods ...*LOD) ObjectBuilderOption {
	return func(o *Object) {
		o.lods = append(o.lods, lods...)
	}
}

// WithHidden sets the hide flag.
//
// Parameters:
//   - hide: whether instances of this type are skipped
//
// Returns:
//   - ObjectBuilderOption: functional option to set the hide flag
func WithHidden(hide bool) ObjectBuilderOption {
	return func(o *Object) {
		o.Hide = hide
	}
}

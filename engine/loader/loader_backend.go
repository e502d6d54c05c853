package loader

import "io"

// loaderBackend reads one file format into CPU-side mesh assets.
type loaderBackend interface {
	// Load imports every mesh of the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Asset: the imported meshes and materials, named after the file
	//   - error: error if loading fails
	Load(path string) (*Asset, error)

	// LoadReader imports a model from a reader stream. External buffers cannot be resolved from a
	// stream, so only self-contained files load this way.
	//
	// Parameters:
	//   - name: the name given to the asset
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error)
}

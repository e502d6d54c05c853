// Package loader imports static meshes from glTF 2.0 files (.gltf with embedded or external
// buffers, and .glb) and turns them into LOD chains for the instance renderer.
package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Asset is the CPU-side result of importing a file.
type Asset struct {
	Name string
	// Meshes are in document order.
	Meshes []*mesh.Mesh
	// Materials holds one slice per mesh with one material per submesh.
	Materials [][]material.Material
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	cache map[string]*Asset

	backend loaderBackend
}

// Loader loads and caches mesh assets and builds LOD objects from them.
type Loader interface {
	// Load imports a model file and caches the result by path.
	// If the asset is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if the extension is unknown or loading fails
	Load(path string) (*Asset, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and asset name
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	Get(name string) *Asset

	// Assets returns a copy of the cache.
	Assets() map[string]*Asset

	// LoadObject loads path and builds an object with one LOD per mesh. Meshes whose names end in
	// "_LOD<n>" are ordered by n; otherwise document order is used. distances[i] becomes the
	// distance of LOD i; LODs without a distance get +Inf. Fade materials are BlendFade copies of
	// the regular materials.
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - distances: LOD band upper bounds in world units
	//
	// Returns:
	//   - *mesh.Object: the new object
	//   - error: error if loading fails or the file holds no mesh
	LoadObject(path string, distances ...float32) (*mesh.Object, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache: make(map[string]*Asset),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	asset, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to load %s: %w", path, err)
	}
	common.Logger().Debug("asset loaded", slog.String("path", path), slog.Int("meshes", len(asset.Meshes)))
	return l.store(path, asset), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	asset, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to load from reader %q: %w", name, err)
	}
	return l.store(name, asset), nil
}

// store keeps the first asset cached under key when two loads race.
func (l *loader) store(key string, asset *Asset) *Asset {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.cache[key]; ok {
		return existing
	}
	l.cache[key] = asset
	return asset
}

func (l *loader) Get(name string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Asset, len(l.cache))
	for k, v := range l.cache {
		result[k] = v
	}
	return result
}

func (l *loader) LoadObject(path string, distances ...float32) (*mesh.Object, error) {
	asset, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return NewObject(asset, distances...)
}

// NewObject builds a LOD object from an already loaded asset. See Loader.LoadObject for the
// ordering and distance rules.
//
// Parameters:
//   - asset: the source asset
//   - distances: LOD band upper bounds in world units
//
// Returns:
//   - *mesh.Object: the new object
//   - error: error if the asset holds no mesh
func NewObject(asset *Asset, distances ...float32) (*mesh.Object, error) {
	if asset == nil || len(asset.Meshes) == 0 {
		return nil, fmt.Errorf("loader: asset has no meshes")
	}

	lods := make([]*mesh.LOD, 0, len(asset.Meshes))
	for i, mi := range lodOrder(asset.Meshes) {
		var mats []material.Material
		if mi < len(asset.Materials) {
			mats = asset.Materials[mi]
		}
		options := []mesh.LODBuilderOption{
			mesh.WithMesh(asset.Meshes[mi]),
			mesh.WithMaterials(mats...),
			mesh.WithFadeMaterials(fadeMaterials(mats)...),
		}
		if i < len(distances) {
			options = append(options, mesh.WithDistance(distances[i]))
		}
		lods = append(lods, mesh.NewLOD(options...))
	}

	obj := mesh.NewObject(mesh.WithLODs(lods...))
	return obj, nil
}

var lodSuffix = regexp.MustCompile(`(?i)_LOD(\d+)$`)

// lodOrder returns mesh indices sorted by their _LOD<n> suffix. If any mesh lacks the suffix the
// document order is kept.
func lodOrder(meshes []*mesh.Mesh) []int {
	order := make([]int, len(meshes))
	levels := make([]int, len(meshes))
	for i, m := range meshes {
		order[i] = i
		match := lodSuffix.FindStringSubmatch(m.Name)
		if match == nil {
			return order
		}
		levels[i], _ = strconv.Atoi(match[1])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return levels[order[a]] < levels[order[b]]
	})
	return order
}

// fadeMaterials derives a BlendFade material per regular material. Nil entries stay nil.
func fadeMaterials(mats []material.Material) []material.Material {
	fades := make([]material.Material, len(mats))
	for i, m := range mats {
		fades[i] = material.FadeVariant(m)
	}
	return fades
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: model format %q", ErrUnsupported, ext)
	}
}

package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrLODNotFound is returned when a LOD index is outside the object's LOD list.
	ErrLODNotFound = errors.New("mesh: lod not found")

	// ErrIndexOutOfBounds is returned by Validate when a submesh references a missing vertex.
	ErrIndexOutOfBounds = errors.New("mesh: vertex index out of bounds")
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size of the box along each axis.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Mesh is CPU-side source geometry split into submeshes. Each submesh is a triangle index list
// into the shared vertex attributes and is drawn with its own material.
type Mesh struct {
	// Name is a debug label, also used to name uploaded GPU buffers.
	Name string

	// Positions are the vertex positions in model space.
	Positions []mgl32.Vec3
	// Normals are optional per-vertex normals; when present the length matches Positions.
	Normals []mgl32.Vec3
	// UVs are optional per-vertex texture coordinates; when present the length matches Positions.
	UVs []mgl32.Vec2

	// Submeshes holds one triangle index list per material slot.
	Submeshes [][]uint32
}

// SubmeshCount returns the number of submeshes.
func (m *Mesh) SubmeshCount() int {
	return len(m.Submeshes)
}

// Bounds returns the axis-aligned box enclosing every vertex. An empty mesh has a zero box.
//
// Returns:
//   - AABB: the bounding box
func (m *Mesh) Bounds() AABB {
	if len(m.Positions) == 0 {
		return AABB{}
	}
	b := AABB{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for k := range 3 {
			b.Min[k] = math32.Min(b.Min[k], p[k])
			b.Max[k] = math32.Max(b.Max[k], p[k])
		}
	}
	return b
}

// BoundsRadius returns the length of the bounding box extents. This is the radius used for
// per-instance cull spheres, before the instance bounds multiplier is applied.
//
// Returns:
//   - float32: the radius
func (m *Mesh) BoundsRadius() float32 {
	return m.Bounds().Extents().Len()
}

// Validate checks that every submesh index refers to an existing vertex and that the optional
// attribute arrays match the position count.
//
// Returns:
//   - error: nil if the mesh is consistent
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("mesh %q: %d normals for %d positions", m.Name, len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("mesh %q: %d uvs for %d positions", m.Name, len(m.UVs), n)
	}
	for s, indices := range m.Submeshes {
		for _, idx := range indices {
			if int(idx) >= n {
				return fmt.Errorf("mesh %q submesh %d: %w: %d >= %d", m.Name, s, ErrIndexOutOfBounds, idx, n)
			}
		}
	}
	return nil
}

// Transformed returns a copy of the mesh with every position multiplied by transform and every
// normal by its inverse transpose. Submesh structure is preserved. The receiver is not modified.
//
// Parameters:
//   - transform: the matrix to bake into the vertices
//
// Returns:
//   - *Mesh: the baked copy
func (m *Mesh) Transformed(transform mgl32.Mat4) *Mesh {
	out := &Mesh{
		Name:      m.Name,
		Positions: make([]mgl32.Vec3, len(m.Positions)),
		UVs:       append([]mgl32.Vec2(nil), m.UVs...),
		Submeshes: make([][]uint32, len(m.Submeshes)),
	}
	for i, p := range m.Positions {
		out.Positions[i] = mgl32.TransformCoordinate(p, transform)
	}

	if len(m.Normals) > 0 {
		normalMatrix := transform.Mat3()
		if math32.Abs(normalMatrix.Det()) > 1e-12 {
			normalMatrix = normalMatrix.Inv().Transpose()
		}
		out.Normals = make([]mgl32.Vec3, len(m.Normals))
		for i, n := range m.Normals {
			t := normalMatrix.Mul3x1(n)
			if t.Len() > 0 {
				t = t.Normalize()
			}
			out.Normals[i] = t
		}
	}

	for s, indices := range m.Submeshes {
		out.Submeshes[s] = append([]uint32(nil), indices...)
	}
	return out
}

// NewQuad creates a single-submesh quad of the given size lying in the XY plane, facing +Z,
// with its bottom edge on the origin. This is the usual shape for billboarded foliage.
//
// Parameters:
//   - name: the debug label
//   - width, height: the quad dimensions
//
// Returns:
//   - *Mesh: the quad
func NewQuad(name string, width, height float32) *Mesh {
	hw := width / 2
	return &Mesh{
		Name: name,
		Positions: []mgl32.Vec3{
			{-hw, 0, 0}, {hw, 0, 0}, {hw, height, 0}, {-hw, height, 0},
		},
		Normals: []mgl32.Vec3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		UVs: []mgl32.Vec2{
			{0, 1}, {1, 1}, {1, 0}, {0, 0},
		},
		Submeshes: [][]uint32{{0, 1, 2, 0, 2, 3}},
	}
}

// NewBox creates an axis-aligned box centered on the origin. The six faces are distributed
// round-robin across the requested number of submeshes, which is mostly useful for exercising
// multi-material paths.
//
// Parameters:
//   - name: the debug label
//   - size: edge lengths along X, Y and Z
//   - submeshes: the number of submeshes to split the faces across
//
// Returns:
//   - *Mesh: the box
func NewBox(name string, size mgl32.Vec3, submeshes int) *Mesh {
	if submeshes < 1 {
		submeshes = 1
	}
	h := size.Mul(0.5)
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h[0], -h[1], h[2]}, {h[0], -h[1], h[2]}, {h[0], h[1], h[2]}, {-h[0], h[1], h[2]}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{h[0], -h[1], -h[2]}, {-h[0], -h[1], -h[2]}, {-h[0], h[1], -h[2]}, {h[0], h[1], -h[2]}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h[0], -h[1], h[2]}, {h[0], -h[1], -h[2]}, {h[0], h[1], -h[2]}, {h[0], h[1], h[2]}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h[0], -h[1], -h[2]}, {-h[0], -h[1], h[2]}, {-h[0], h[1], h[2]}, {-h[0], h[1], -h[2]}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h[0], h[1], h[2]}, {h[0], h[1], h[2]}, {h[0], h[1], -h[2]}, {-h[0], h[1], -h[2]}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h[0], -h[1], -h[2]}, {h[0], -h[1], -h[2]}, {h[0], -h[1], h[2]}, {-h[0], -h[1], h[2]}}},
	}

	m := &Mesh{Name: name, Submeshes: make([][]uint32, submeshes)}
	for f, face := range faces {
		base := uint32(len(m.Positions))
		for _, c := range face.corners {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, face.normal)
		}
		m.UVs = append(m.UVs, mgl32.Vec2{0, 1}, mgl32.Vec2{1, 1}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 0})
		s := f % submeshes
		m.Submeshes[s] = append(m.Submeshes[s], base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

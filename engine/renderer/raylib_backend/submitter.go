package raylib_backend

import (
	"image/color"
	"runtime"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

type meshKey struct {
	mesh    *mesh.Mesh
	submesh int
}

// Submitter draws batched instance commands through raylib. It must be used on the goroutine
// that owns the raylib window, between rl.BeginMode3D and rl.EndMode3D.
//
// Untinted opaque batches go through rl.DrawMeshInstanced when an instancing shader is set.
// Everything else is drawn with rl.DrawMesh, one call per instance, with the material's diffuse
// color set to the instance tint.
type Submitter struct {
	batcher *renderer.Batcher

	meshes    map[meshKey]rl.Mesh
	materials map[material.Material]rl.Material

	// instancing is a shader exposing instanceTransform, ID 0 when none is loaded.
	instancing rl.Shader
	transforms []rl.Matrix
}

var _ renderer.Submitter = &Submitter{}

// SubmitterOption is a functional option applied to a Submitter during construction.
type SubmitterOption func(*Submitter)

// WithInstancingShader sets the shader used for rl.DrawMeshInstanced. Without one, every
// instance is drawn with its own rl.DrawMesh call.
//
// Parameters:
//   - shader: a shader with the instance transform attribute location set
//
// Returns:
//   - SubmitterOption: a function that applies the shader option
func WithInstancingShader(shader rl.Shader) SubmitterOption {
	return func(s *Submitter) {
		s.instancing = shader
	}
}

// NewSubmitter creates an empty raylib Submitter.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Submitter: the submitter
func NewSubmitter(options ...SubmitterOption) *Submitter {
	s := &Submitter{
		batcher:   renderer.NewBatcher(),
		meshes:    make(map[meshKey]rl.Mesh),
		materials: make(map[material.Material]rl.Material),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Submit queues one draw for the next Flush.
func (s *Submitter) Submit(cmd renderer.DrawCommand) {
	s.batcher.Submit(cmd)
}

// Flush draws every queued batch, opaque batches first, then clears the queue.
func (s *Submitter) Flush() {
	batches := s.batcher.Batches()
	for _, transparent := range []bool{false, true} {
		for i := range batches {
			b := &batches[i]
			if b.Key.Material.Transparent() != transparent {
				continue
			}
			s.drawBatch(b)
		}
	}
	s.batcher.Reset()
}

// Unload releases every uploaded mesh and material.
func (s *Submitter) Unload() {
	for k, m := range s.meshes {
		rl.UnloadMesh(&m)
		delete(s.meshes, k)
	}
	for k, m := range s.materials {
		rl.UnloadMaterial(m)
		delete(s.materials, k)
	}
}

func (s *Submitter) drawBatch(b *renderer.Batch) {
	m, ok := s.mesh(b.Key.Mesh, b.Key.Submesh)
	if !ok {
		return
	}
	mat := s.material(b.Key.Material)
	base := b.Key.Material.BaseColor()

	if s.instancing.ID != 0 && untinted(b.Instances) {
		s.transforms = s.transforms[:0]
		for i := range b.Instances {
			s.transforms = append(s.transforms, ToMatrix(b.Instances[i].Model))
		}
		mat.Shader = s.instancing
		mat.Maps.Color = toColor(base)
		rl.DrawMeshInstanced(m, mat, s.transforms, len(s.transforms))
		return
	}

	for i := range b.Instances {
		inst := &b.Instances[i]
		mat.Maps.Color = toColor(Tint(base, inst.Color))
		rl.DrawMesh(m, mat, ToMatrix(inst.Model))
	}
}

// mesh returns the uploaded raylib mesh for one submesh, uploading it on first use.
func (s *Submitter) mesh(src *mesh.Mesh, submesh int) (rl.Mesh, bool) {
	key := meshKey{mesh: src, submesh: submesh}
	if m, ok := s.meshes[key]; ok {
		return m, true
	}

	vertices, normals, uvs := ExpandSubmesh(src, submesh)
	if len(vertices) == 0 {
		return rl.Mesh{}, false
	}

	var m rl.Mesh
	m.VertexCount = int32(len(vertices) / 3)
	m.TriangleCount = m.VertexCount / 3

	// raylib copies the arrays to GPU buffers during upload; they are only borrowed.
	var pinner runtime.Pinner
	pinner.Pin(&vertices[0])
	pinner.Pin(&normals[0])
	pinner.Pin(&uvs[0])
	m.Vertices = &vertices[0]
	m.Normals = &normals[0]
	m.Texcoords = &uvs[0]
	rl.UploadMesh(&m, false)
	m.Vertices, m.Normals, m.Texcoords = nil, nil, nil
	pinner.Unpin()

	common.Logger().Debug("raylib mesh uploaded", "mesh", src.Name, "submesh", submesh, "vertices", m.VertexCount)
	s.meshes[key] = m
	return m, true
}

func (s *Submitter) material(mat material.Material) rl.Material {
	if m, ok := s.materials[mat]; ok {
		return m
	}
	m := rl.LoadMaterialDefault()
	m.Maps.Color = toColor(mat.BaseColor())
	s.materials[mat] = m
	return m
}

// ExpandSubmesh flattens one submesh into non-indexed triangle arrays. Missing normals default
// to +Y and missing UVs to zero.
//
// Parameters:
//   - m: the source mesh
//   - submesh: the submesh index
//
// Returns:
//   - []float32: positions, 3 floats per vertex
//   - []float32: normals, 3 floats per vertex
//   - []float32: texture coordinates, 2 floats per vertex
func ExpandSubmesh(m *mesh.Mesh, submesh int) ([]float32, []float32, []float32) {
	if m == nil || submesh < 0 || submesh >= len(m.Submeshes) {
		return nil, nil, nil
	}
	indices := m.Submeshes[submesh]
	indices = indices[:len(indices)/3*3]

	vertices := make([]float32, 0, len(indices)*3)
	normals := make([]float32, 0, len(indices)*3)
	uvs := make([]float32, 0, len(indices)*2)
	for _, idx := range indices {
		if int(idx) >= len(m.Positions) {
			return nil, nil, nil
		}
		p := m.Positions[idx]
		vertices = append(vertices, p[0], p[1], p[2])

		n := common.Up
		if int(idx) < len(m.Normals) {
			n = m.Normals[idx]
		}
		normals = append(normals, n[0], n[1], n[2])

		var uv mgl32.Vec2
		if int(idx) < len(m.UVs) {
			uv = m.UVs[idx]
		}
		uvs = append(uvs, uv[0], uv[1])
	}
	return vertices, normals, uvs
}

// ToMatrix converts a column-major mgl32 matrix to raylib's matrix, whose field Mi holds
// element i of the same column-major layout.
func ToMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

// Tint multiplies a material base color by a per-instance color.
func Tint(base common.Color, instance mgl32.Vec4) common.Color {
	return common.Color{
		R: base.R * instance[0],
		G: base.G * instance[1],
		B: base.B * instance[2],
		A: base.A * instance[3],
	}
}

func untinted(instances []renderer.GPUInstanceData) bool {
	white := common.White.Vec4()
	for i := range instances {
		if instances[i].Color != white {
			return false
		}
	}
	return true
}

func toColor(c common.Color) color.RGBA {
	r, g, b, a := c.RGBA8()
	return rl.NewColor(r, g, b, a)
}

package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractor turns every glTF mesh of a file into a mesh.Mesh. Each primitive becomes a
// submesh; materials are created once per glTF material and shared between submeshes.
type gltfMeshExtractor struct {
	file      *gltfFile
	materials map[int]material.Material
}

func newGLTFMeshExtractor(f *gltfFile) *gltfMeshExtractor {
	return &gltfMeshExtractor{file: f, materials: make(map[int]material.Material)}
}

// extractAll converts the meshes in document order.
func (e *gltfMeshExtractor) extractAll(name string) (*Asset, error) {
	nodeNames := make(map[int]string)
	for _, n := range e.file.doc.Nodes {
		if n.Mesh != nil && n.Name != "" {
			if _, ok := nodeNames[*n.Mesh]; !ok {
				nodeNames[*n.Mesh] = n.Name
			}
		}
	}

	asset := &Asset{Name: name}
	for i := range e.file.doc.Meshes {
		m, mats, err := e.extractMesh(i, nodeNames[i])
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		asset.Meshes = append(asset.Meshes, m)
		asset.Materials = append(asset.Materials, mats)
	}
	return asset, nil
}

func (e *gltfMeshExtractor) extractMesh(index int, nodeName string) (*mesh.Mesh, []material.Material, error) {
	src := &e.file.doc.Meshes[index]
	m := &mesh.Mesh{Name: common.Coalesce(src.Name, nodeName, fmt.Sprintf("mesh_%d", index))}
	var mats []material.Material
	hasUVs := false

	for p := range src.Primitives {
		prim := &src.Primitives[p]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			return nil, nil, fmt.Errorf("%w: primitive %d mode %d", ErrUnsupported, p, *prim.Mode)
		}
		posAccessor, ok := prim.Attributes["POSITION"]
		if !ok {
			return nil, nil, fmt.Errorf("%w: primitive %d has no POSITION", ErrInvalidGLTF, p)
		}
		positions, err := e.file.readVec3s(posAccessor)
		if err != nil {
			return nil, nil, fmt.Errorf("primitive %d positions: %w", p, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = e.file.readIndices(*prim.Indices); err != nil {
				return nil, nil, fmt.Errorf("primitive %d indices: %w", p, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, nil, fmt.Errorf("%w: primitive %d index %d of %d vertices", mesh.ErrIndexOutOfBounds, p, idx, len(positions))
			}
		}

		var normals []mgl32.Vec3
		if a, ok := prim.Attributes["NORMAL"]; ok {
			if normals, err = e.file.readVec3s(a); err != nil {
				return nil, nil, fmt.Errorf("primitive %d normals: %w", p, err)
			}
		}
		if len(normals) != len(positions) {
			normals = generateNormals(positions, indices)
		}

		var uvs []mgl32.Vec2
		if a, ok := prim.Attributes["TEXCOORD_0"]; ok {
			if uvs, err = e.file.readVec2s(a); err != nil {
				return nil, nil, fmt.Errorf("primitive %d uvs: %w", p, err)
			}
		}
		if len(uvs) == len(positions) && !hasUVs {
			// Backfill the primitives read before the first one with UVs.
			m.UVs = make([]mgl32.Vec2, len(m.Positions))
			hasUVs = true
		}
		if hasUVs && len(uvs) != len(positions) {
			uvs = make([]mgl32.Vec2, len(positions))
		}

		base := uint32(len(m.Positions))
		submesh := make([]uint32, len(indices))
		for i, idx := range indices {
			submesh[i] = base + idx
		}
		m.Positions = append(m.Positions, positions...)
		m.Normals = append(m.Normals, normals...)
		if hasUVs {
			m.UVs = append(m.UVs, uvs...)
		}
		m.Submeshes = append(m.Submeshes, submesh)

		matIndex := -1
		if prim.Material != nil {
			matIndex = *prim.Material
		}
		mats = append(mats, e.material(matIndex))
	}
	return m, mats, nil
}

// material returns the shared material for a glTF material index. -1 yields the default white
// material.
func (e *gltfMeshExtractor) material(index int) material.Material {
	if mat, ok := e.materials[index]; ok {
		return mat
	}

	options := []material.MaterialBuilderOption{material.WithName("default")}
	if index >= 0 && index < len(e.file.doc.Materials) {
		src := e.file.doc.Materials[index]
		options = []material.MaterialBuilderOption{
			material.WithName(common.Coalesce(src.Name, fmt.Sprintf("material_%d", index))),
		}
		if pbr := src.PbrMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			c := pbr.BaseColorFactor
			options = append(options, material.WithBaseColor(common.Color{R: c[0], G: c[1], B: c[2], A: c[3]}))
		}
		switch src.AlphaMode {
		case "MASK":
			options = append(options, material.WithBlendMode(material.BlendCutout))
		case "BLEND":
			options = append(options, material.WithBlendMode(material.BlendFade))
		}
	}

	mat := material.NewMaterial(options...)
	e.materials[index] = mat
	return mat
}

// generateNormals accumulates area-weighted face normals per vertex. Vertices not used by any
// triangle get +Y.
func generateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := positions[i0]
		face := positions[i1].Sub(p0).Cross(positions[i2].Sub(p0))
		normals[i0] = normals[i0].Add(face)
		normals[i1] = normals[i1].Add(face)
		normals[i2] = normals[i2].Add(face)
	}
	for i, n := range normals {
		if n.Len() < common.Epsilon {
			normals[i] = common.Up
			continue
		}
		normals[i] = n.Normalize()
	}
	return normals
}

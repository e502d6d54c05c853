package mesh

import (
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// LODBuilderOption is a functional option for configuring a LOD during construction.
type LODBuilderOption func(*LOD)

// WithMesh assigns the source mesh and sizes the material arrays to match.
//
// Parameters:
//   - m: the source mesh
//
// Returns:
//   - LODBuilderOption: functional option to set the mesh
func WithMesh(m *Mesh) LODBuilderOption {
	return func(l *LOD) {
		l.SetMesh(m)
	}
}

// WithMaterials sets the regular materials. Apply after WithMesh; the array is resized to the
// submesh count when a mesh is present.
//
// Parameters:
//   - materials: one material per submesh
//
// Returns:
//   - LODBuilderOption: functional option to set the materials
func WithMaterials(materials ...material.Material) LODBuilderOption {
	return func(l *LOD) {
		l.Materials = materials
		if l.mesh != nil {
			l.Materials = resize(l.Materials, l.mesh.SubmeshCount())
		}
	}
}

// WithFadeMaterials sets the fade materials. Apply after WithMesh; the array is resized to the
// submesh count when a mesh is present.
//
// Parameters:
//   - materials: one fade material per submesh
//
// Returns:
//   - LODBuilderOption: functional option to set the fade materials
func WithFadeMaterials(materials ...material.Material) LODBuilderOption {
	return func(l *LOD) {
		l.FadeMaterials = materials
		if l.mesh != nil {
			l.FadeMaterials = resize(l.FadeMaterials, l.mesh.SubmeshCount())
		}
	}
}

// WithDistance sets the upper bound of the LOD band.
//
// Parameters:
//   - d: the distance in world units
//
// Returns:
//   - LODBuilderOption: functional option to set the distance
func WithDistance(d float32) LODBuilderOption {
	return func(l *LOD) {
		l.Distance = d
	}
}

// WithShadows sets the shadow casting and receiving flags.
//
// Parameters:
//   - cast: whether the LOD casts shadows
//   - receive: whether the LOD receives shadows
//
// Returns:
//   - LODBuilderOption: functional option to set the shadow flags
func WithShadows(cast, receive bool) LODBuilderOption {
	return func(l *LOD) {
		l.CastShadows = cast
		l.ReceiveShadows = receive
	}
}

// WithBillboard makes instances drawn at this LOD face the viewer.
//
// Returns:
//   - LODBuilderOption: functional option to enable billboarding
func WithBillboard() LODBuilderOption {
	return func(l *LOD) {
		l.Billboard = true
	}
}

// WithBaseTransform sets the base transform and enables baking it into the render mesh.
//
// Parameters:
//   - position: the base offset
//   - rotation: the base rotation
//   - scale: the base scale
//
// Returns:
//   - LODBuilderOption: functional option to set the base transform
func WithBaseTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) LODBuilderOption {
	return func(l *LOD) {
		l.basePosition = position
		l.baseRotation = rotation
		l.baseScale = scale
		l.modifyBaseMesh = true
		l.Invalidate()
	}
}

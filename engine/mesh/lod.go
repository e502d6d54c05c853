package mesh

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LOD is one level of detail of an object type: a mesh, one material per submesh, a parallel set
// of fade materials used while cross-fading, and the distance up to which this level is chosen.
//
// When ModifyBaseMesh is enabled the source mesh is baked with the base transform into a render
// mesh on first use. The baked mesh and its bounding radius are cached until the source mesh, the
// base transform or the flag changes.
type LOD struct {
	// Materials holds one material per submesh, used at full opacity.
	Materials []material.Material
	// FadeMaterials holds one material per submesh, used while the LOD is fading.
	FadeMaterials []material.Material

	// CastShadows is passed through to the submission backend.
	CastShadows bool
	// ReceiveShadows is passed through to the submission backend.
	ReceiveShadows bool

	// Distance is the upper bound of this LOD's band, in world units. Use Object.SetLODDistance to
	// change it on a LOD that belongs to an object so the LOD list stays sorted.
	Distance float32

	// Billboard makes every instance face the viewer around its local up axis.
	Billboard bool

	mesh *Mesh

	basePosition   mgl32.Vec3
	baseRotation   mgl32.Quat
	baseScale      mgl32.Vec3
	modifyBaseMesh bool

	renderMesh   *Mesh
	boundsRadius float32
}

// NewLOD creates a LOD with shadows enabled, an infinite distance and an identity base transform.
//
// Parameters:
//   - options: functional options to configure the LOD
//
// Returns:
//   - *LOD: the new LOD
func NewLOD(options ...LODBuilderOption) *LOD {
	l := &LOD{
		CastShadows:    true,
		ReceiveShadows: true,
		Distance:       math32.Inf(1),
		baseRotation:   mgl32.QuatIdent(),
		baseScale:      mgl32.Vec3{1, 1, 1},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Mesh returns the source mesh, or nil.
func (l *LOD) Mesh() *Mesh {
	return l.mesh
}

// SetMesh assigns the source mesh and resizes the material arrays to its submesh count, keeping
// existing entries. A nil mesh clears both arrays.
//
// Parameters:
//   - m: the source mesh
func (l *LOD) SetMesh(m *Mesh) {
	l.mesh = m
	l.Invalidate()
	if m == nil {
		l.Materials = nil
		l.FadeMaterials = nil
		return
	}
	l.ResizeMaterials()
}

// ResizeMaterials resizes Materials and FadeMaterials to the source mesh's submesh count,
// preserving existing entries and leaving new slots nil. Does nothing without a mesh.
func (l *LOD) ResizeMaterials() {
	if l.mesh == nil {
		return
	}
	n := l.mesh.SubmeshCount()
	l.Materials = resize(l.Materials, n)
	l.FadeMaterials = resize(l.FadeMaterials, n)
}

// DistanceSqr returns Distance squared.
func (l *LOD) DistanceSqr() float32 {
	return l.Distance * l.Distance
}

func (l *LOD) BasePosition() mgl32.Vec3 { return l.basePosition }
func (l *LOD) BaseRotation() mgl32.Quat { return l.baseRotation }
func (l *LOD) BaseScale() mgl32.Vec3    { return l.baseScale }
func (l *LOD) ModifyBaseMesh() bool     { return l.modifyBaseMesh }

// SetBasePosition sets the base offset baked into the render mesh and invalidates the bake.
func (l *LOD) SetBasePosition(p mgl32.Vec3) {
	l.basePosition = p
	l.Invalidate()
}

// SetBaseRotation sets the base rotation baked into the render mesh and invalidates the bake.
func (l *LOD) SetBaseRotation(q mgl32.Quat) {
	l.baseRotation = q
	l.Invalidate()
}

// SetBaseScale sets the base scale baked into the render mesh and invalidates the bake.
func (l *LOD) SetBaseScale(s mgl32.Vec3) {
	l.baseScale = s
	l.Invalidate()
}

// SetModifyBaseMesh toggles baking of the base transform. The bake is only invalidated when the
// flag actually changes.
func (l *LOD) SetModifyBaseMesh(modify bool) {
	if l.modifyBaseMesh != modify {
		l.modifyBaseMesh = modify
		l.Invalidate()
	}
}

// Invalidate drops the cached render mesh so the next RenderMesh call rebuilds it.
func (l *LOD) Invalidate() {
	l.renderMesh = nil
	l.boundsRadius = 0
}

// Baked reports whether a render mesh is currently cached.
func (l *LOD) Baked() bool {
	return l.renderMesh != nil
}

// RenderMesh returns the mesh to draw, building it on first use. Without ModifyBaseMesh the
// source mesh is returned as is; otherwise a copy transformed by TRS(base) is created and cached.
// Not safe to call concurrently with itself while the cache is cold.
//
// Returns:
//   - *Mesh: the render mesh
//   - bool: false if no source mesh is assigned
func (l *LOD) RenderMesh() (*Mesh, bool) {
	if l.renderMesh != nil {
		return l.renderMesh, true
	}
	if l.mesh == nil {
		return nil, false
	}

	if l.modifyBaseMesh {
		l.renderMesh = l.mesh.Transformed(common.TRS(l.basePosition, l.baseRotation, l.baseScale))
	} else {
		l.renderMesh = l.mesh
	}
	l.boundsRadius = l.renderMesh.BoundsRadius()
	return l.renderMesh, true
}

// BoundsRadius returns the bounding radius of the render mesh, baking it if needed.
// A LOD without a mesh has radius 0.
func (l *LOD) BoundsRadius() float32 {
	if _, ok := l.RenderMesh(); !ok {
		return 0
	}
	return l.boundsRadius
}

// IsVisible reports whether the instance's bounding sphere is not entirely behind any frustum
// plane. The sphere is centered on the instance position with radius BoundsRadius times the
// instance bounds multiplier. The render mesh must already be baked for concurrent callers.
//
// Parameters:
//   - inst: the instance to test
//   - frustum: the view frustum
//
// Returns:
//   - bool: false if the sphere is fully outside at least one plane
func (l *LOD) IsVisible(inst *instance.Instance, frustum *common.Frustum) bool {
	radius := l.BoundsRadius() * inst.BoundsRadiusMultiplier()
	return frustum.IntersectsSphere(inst.Position(), radius)
}

// SubmeshDrawCount returns how many submeshes of the render mesh can be drawn: the smaller of the
// submesh count and the material count.
func (l *LOD) SubmeshDrawCount() int {
	m, ok := l.RenderMesh()
	if !ok {
		return 0
	}
	return min(m.SubmeshCount(), len(l.Materials))
}

// MaterialFor returns the material for a submesh at the given opacity. Below the fade threshold
// the fade material is used.
//
// Parameters:
//   - submesh: the submesh index
//   - opacity: the draw opacity
//
// Returns:
//   - material.Material: the material, which may be nil if the slot is empty
func (l *LOD) MaterialFor(submesh int, opacity float32) material.Material {
	if opacity < FadeMaterialThreshold {
		if submesh < len(l.FadeMaterials) {
			return l.FadeMaterials[submesh]
		}
		return nil
	}
	return l.Materials[submesh]
}

// FadeMaterialThreshold is the opacity below which fade materials replace regular materials.
const FadeMaterialThreshold float32 = 0.95

func resize[T any](s []T, n int) []T {
	if len(s) == n {
		return s
	}
	out := make([]T, n)
	copy(out, s)
	return out
}

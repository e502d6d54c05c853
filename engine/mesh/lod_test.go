package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxFrustum() *common.Frustum {
	return &common.Frustum{Planes: [6]common.Plane{
		common.NewPlane(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-10, 0, 0}),
		common.NewPlane(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{10, 0, 0}),
		common.NewPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -10, 0}),
		common.NewPlane(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 10, 0}),
		common.NewPlane(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -10}),
		common.NewPlane(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 10}),
	}}
}

func TestNewLODDefaults(t *testing.T) {
	l := NewLOD()
	assert.True(t, l.CastShadows)
	assert.True(t, l.ReceiveShadows)
	assert.True(t, math32.IsInf(l.Distance, 1))
	assert.False(t, l.Billboard)
	assert.False(t, l.ModifyBaseMesh())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.BaseScale())

	_, ok := l.RenderMesh()
	assert.False(t, ok, "no mesh means nothing to render")
	assert.Zero(t, l.BoundsRadius())
}

func TestLODSetMeshResizesMaterials(t *testing.T) {
	a := material.NewMaterial(material.WithName("a"))
	l := NewLOD(WithMaterials(a))
	l.SetMesh(NewBox("box", mgl32.Vec3{1, 1, 1}, 3))

	require.Len(t, l.Materials, 3)
	require.Len(t, l.FadeMaterials, 3)
	assert.Same(t, a, l.Materials[0])
	assert.Nil(t, l.Materials[2])

	l.SetMesh(NewQuad("quad", 1, 1))
	assert.Len(t, l.Materials, 1)
	assert.Same(t, a, l.Materials[0])

	l.SetMesh(nil)
	assert.Nil(t, l.Materials)
	assert.Nil(t, l.FadeMaterials)
}

func TestLODRenderMeshWithoutModifyReturnsSource(t *testing.T) {
	src := NewQuad("quad", 2, 4)
	l := NewLOD(WithMesh(src))
	got, ok := l.RenderMesh()
	require.True(t, ok)
	assert.Same(t, src, got)
	assert.InDelta(t, src.BoundsRadius(), l.BoundsRadius(), tol)
}

func TestLODBakeIsCachedUntilInvalidated(t *testing.T) {
	src := NewBox("box", mgl32.Vec3{2, 2, 2}, 1)
	l := NewLOD(WithMesh(src), WithBaseTransform(mgl32.Vec3{0, 1, 0}, mgl32.QuatIdent(), mgl32.Vec3{3, 3, 3}))

	first, ok := l.RenderMesh()
	require.True(t, ok)
	assert.NotSame(t, src, first)
	assert.InDelta(t, 3*math32.Sqrt(3), l.BoundsRadius(), tol)
	assert.True(t, first.Bounds().Center().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, tol))

	second, _ := l.RenderMesh()
	assert.Same(t, first, second)

	tests := []struct {
		name   string
		mutate func(*LOD)
	}{
		{"base position", func(l *LOD) { l.SetBasePosition(mgl32.Vec3{0, 2, 0}) }},
		{"base rotation", func(l *LOD) { l.SetBaseRotation(mgl32.QuatRotate(1, common.Up)) }},
		{"base scale", func(l *LOD) { l.SetBaseScale(mgl32.Vec3{1, 1, 1}) }},
		{"source mesh", func(l *LOD) { l.SetMesh(NewBox("other", mgl32.Vec3{1, 1, 1}, 1)) }},
		{"modify flag", func(l *LOD) { l.SetModifyBaseMesh(false) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l.SetModifyBaseMesh(true)
			before, _ := l.RenderMesh()
			tt.mutate(l)
			assert.False(t, l.Baked())
			after, ok := l.RenderMesh()
			require.True(t, ok)
			assert.NotSame(t, before, after)
		})
	}
}

func TestLODSetModifyBaseMeshSameValueKeepsCache(t *testing.T) {
	l := NewLOD(WithMesh(NewQuad("quad", 1, 1)))
	l.RenderMesh()
	l.SetModifyBaseMesh(false)
	assert.True(t, l.Baked())
}

func TestLODIsVisible(t *testing.T) {
	// unit box -> radius sqrt(3)/2
	l := NewLOD(WithMesh(NewBox("box", mgl32.Vec3{1, 1, 1}, 1)))
	f := boxFrustum()

	tests := []struct {
		name string
		inst *instance.Instance
		want bool
	}{
		{"inside", instance.New(nil), true},
		{"far outside", instance.New(nil, instance.WithPosition(mgl32.Vec3{30, 0, 0})), false},
		{"center outside but overlapping", instance.New(nil, instance.WithPosition(mgl32.Vec3{10.5, 0, 0})), true},
		{"scaled up reaches back in", instance.New(nil, instance.WithPosition(mgl32.Vec3{15, 0, 0}), instance.WithUniformScale(8)), true},
		{"skew widens sphere", instance.New(nil, instance.WithPosition(mgl32.Vec3{11, 0, 0}), instance.WithSkew(mgl32.Vec2{1.5, 0})), true},
		{"no skew stays culled", instance.New(nil, instance.WithPosition(mgl32.Vec3{11, 0, 0})), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.IsVisible(tt.inst, f))
		})
	}
}

func TestLODMaterialFor(t *testing.T) {
	solid := material.NewMaterial(material.WithName("solid"))
	fade := material.NewMaterial(material.WithName("fade"), material.WithBlendMode(material.BlendFade))
	l := NewLOD(WithMesh(NewQuad("quad", 1, 1)), WithMaterials(solid), WithFadeMaterials(fade))

	assert.Same(t, solid, l.MaterialFor(0, 1))
	assert.Same(t, solid, l.MaterialFor(0, 0.95))
	assert.Same(t, fade, l.MaterialFor(0, 0.94))
	assert.Same(t, fade, l.MaterialFor(0, 0))
}

func TestLODSubmeshDrawCount(t *testing.T) {
	l := NewLOD(WithMesh(NewBox("box", mgl32.Vec3{1, 1, 1}, 3)))
	assert.Equal(t, 3, l.SubmeshDrawCount())

	l.Materials = l.Materials[:2]
	assert.Equal(t, 2, l.SubmeshDrawCount())

	assert.Zero(t, NewLOD().SubmeshDrawCount())
}

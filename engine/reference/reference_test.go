package reference

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDefaultsAndChangeTracking(t *testing.T) {
	n := NewNode()
	assert.NotZero(t, n.ID())
	assert.Equal(t, DefaultNodeName, n.Name())
	assert.True(t, n.Enabled())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, n.Scale())
	assert.False(t, n.HasChanged())

	n.Mirror(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{2, 2, 2})
	assert.False(t, n.HasChanged(), "mirrored writes are not external edits")
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, n.Position())

	n.SetPosition(mgl32.Vec3{4, 5, 6})
	assert.True(t, n.HasChanged())
	n.ClearChanged()
	assert.False(t, n.HasChanged())

	n.Destroy()
	assert.True(t, n.Destroyed())
	assert.False(t, n.Enabled())
}

func TestNodeOptions(t *testing.T) {
	rot := mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})
	n := NewNode(WithID(99), WithName("tree"), WithEnabled(false), WithTransform(mgl32.Vec3{1, 0, 0}, rot, mgl32.Vec3{3, 3, 3}))
	assert.Equal(t, uint64(99), n.ID())
	assert.Equal(t, "tree", n.Name())
	assert.False(t, n.Enabled())
	assert.Equal(t, rot, n.Rotation())
	assert.False(t, n.HasChanged())
}

func TestLinkPushesAndSyncPulls(t *testing.T) {
	g := instance.NewGroup()
	inst := instance.New(g, instance.WithPosition(mgl32.Vec3{1, 2, 3}))
	g.Add(inst)

	n := NewNode()
	n.SetPosition(mgl32.Vec3{9, 9, 9})
	r := Link(inst, n)

	assert.Same(t, r, inst.Reference())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, n.Position())
	assert.False(t, n.HasChanged())
	assert.False(t, r.Sync())

	n.SetPosition(mgl32.Vec3{5, 0, 0})
	require.True(t, r.Sync())
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, inst.Position())
	assert.True(t, inst.Dirty())
	assert.False(t, n.HasChanged())

	inst.SetScale(mgl32.Vec3{2, 2, 2})
	inst.Matrix()
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, n.Scale(), "matrix recompute pushes")
	assert.False(t, n.HasChanged())
}

func TestUnlinkFromInstance(t *testing.T) {
	g := instance.NewGroup()
	inst := instance.New(g)
	g.Add(inst)
	r := Link(inst, NewNode())

	r.UnlinkFromInstance()
	assert.Nil(t, r.Instance())
	assert.Nil(t, inst.Reference())
	assert.Equal(t, 1, g.Count())
	assert.NotPanics(t, r.UnlinkFromInstance)
}

func TestUnlinkFromGroup(t *testing.T) {
	g := instance.NewGroup()
	inst := instance.New(g)
	g.Add(inst)
	n := NewNode()
	r := Link(inst, n)

	r.UnlinkFromGroup()
	assert.Zero(t, g.Count())
	assert.Nil(t, inst.Reference())
	assert.False(t, n.Destroyed())
}

func TestDestroyRemovesInstance(t *testing.T) {
	g := instance.NewGroup()
	keep := instance.New(g)
	inst := instance.New(g)
	g.Add(keep)
	g.Add(inst)
	n := NewNode()
	r := Link(inst, n)

	r.Destroy()
	assert.True(t, r.Destroyed())
	assert.True(t, n.Destroyed())
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, 0, g.IndexOf(keep))

	r.Destroy()
	assert.Equal(t, 1, g.Count())
}

func TestGroupRemoveDestroysReferenceOnce(t *testing.T) {
	g := instance.NewGroup()
	inst := instance.New(g)
	g.Add(inst)
	n := NewNode()
	r := Link(inst, n)

	require.NoError(t, g.Remove(inst, true))
	assert.True(t, r.Destroyed())
	assert.True(t, n.Destroyed())
	assert.Zero(t, g.Count())
}

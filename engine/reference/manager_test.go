package reference

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroup(n int) *instance.Group {
	g := instance.NewGroup(instance.WithObjectNames("rock", "tree"))
	for i := 0; i < n; i++ {
		g.Add(instance.New(g, instance.WithObjectID(i%3), instance.WithPosition(mgl32.Vec3{float32(i), 0, 0})))
	}
	return g
}

func TestNewManagerRequiresGroup(t *testing.T) {
	assert.Panics(t, func() { NewManager(nil) })
}

func TestManagerToggleReferences(t *testing.T) {
	g := newGroup(3)
	m := NewManager(g)
	assert.False(t, m.UseReferences())
	for _, inst := range g.Instances() {
		assert.Nil(t, inst.Reference())
	}

	m.SetUseReferences(true)
	names := []string{"rock", "tree", DefaultNodeName}
	var nodes []Node
	for i, inst := range g.Instances() {
		r, ok := inst.Reference().(*Reference)
		require.True(t, ok)
		n := r.Transform().(Node)
		assert.Equal(t, names[i], n.Name())
		assert.Equal(t, inst.Position(), n.Position())
		nodes = append(nodes, n)
	}

	m.SetUseReferences(false)
	assert.Equal(t, 3, g.Count(), "instances survive")
	for i, inst := range g.Instances() {
		assert.Nil(t, inst.Reference())
		assert.True(t, nodes[i].Destroyed())
	}
}

func TestManagerAddHook(t *testing.T) {
	g := newGroup(0)
	m := NewManager(g, WithUseReferences(true))
	require.True(t, m.UseReferences())

	inst := instance.New(g, instance.WithObjectID(1))
	g.Add(inst)
	r, ok := inst.Reference().(*Reference)
	require.True(t, ok)
	assert.Equal(t, "tree", r.Transform().Name())

	m.SetUseReferences(false)
	other := instance.New(g)
	g.Add(other)
	assert.Nil(t, other.Reference())
}

func TestManagerFactory(t *testing.T) {
	g := newGroup(2)
	var seen []string
	m := NewManager(g, WithFactory(func(inst *instance.Instance, name string) Transform {
		seen = append(seen, name)
		return NewNode(WithName("custom-" + name))
	}), WithUseReferences(true))

	assert.Equal(t, []string{"rock", "tree"}, seen)
	r := g.Instances()[0].Reference().(*Reference)
	assert.Equal(t, "custom-rock", r.Transform().Name())
	m.Close()
	assert.False(t, m.UseReferences())
}

func TestManagerSync(t *testing.T) {
	g := newGroup(2)
	m := NewManager(g)
	assert.Zero(t, m.Sync(), "no-op while references are off")

	m.SetUseReferences(true)
	first := g.Instances()[0]
	second := g.Instances()[1]
	node := first.Reference().(*Reference).Transform()

	node.SetPosition(mgl32.Vec3{0, 10, 0})
	second.SetPosition(mgl32.Vec3{0, 0, 7})

	assert.Equal(t, 1, m.Sync())
	assert.Equal(t, mgl32.Vec3{0, 10, 0}, first.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, 7}, second.Reference().(*Reference).Transform().Position())
	assert.True(t, second.Dirty(), "push does not refresh the matrix cache")
	assert.Zero(t, m.Sync())
}

func TestManagerUnlinkReferences(t *testing.T) {
	g := newGroup(3)
	m := NewManager(g, WithUseReferences(true))

	detached := m.UnlinkReferences()
	assert.Len(t, detached, 3)
	assert.False(t, m.UseReferences())
	assert.Equal(t, 3, g.Count())
	for i, inst := range g.Instances() {
		assert.Nil(t, inst.Reference())
		assert.False(t, detached[i].(Node).Destroyed())
	}
}

func TestManagerUnlinkAll(t *testing.T) {
	g := newGroup(3)
	positions := []mgl32.Vec3{}
	for _, inst := range g.Instances() {
		positions = append(positions, inst.Position())
	}
	m := NewManager(g)

	detached := m.UnlinkAll()
	require.Len(t, detached, 3)
	assert.Zero(t, g.Count())
	for i, tr := range detached {
		assert.Equal(t, positions[i], tr.Position())
		assert.False(t, tr.(Node).Destroyed())
	}
}

func TestManagerReload(t *testing.T) {
	g := newGroup(1)
	m := NewManager(g, WithUseReferences(true))
	before := g.Instances()[0].Reference().(*Reference)

	m.Reload()
	after := g.Instances()[0].Reference().(*Reference)
	assert.NotSame(t, before, after)
	assert.True(t, before.Destroyed())
	assert.Nil(t, before.Instance())
	assert.Equal(t, 1, g.Count())
}

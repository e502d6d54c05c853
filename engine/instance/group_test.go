package instance

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAddAssignsBackReferenceAndID(t *testing.T) {
	g := NewGroup()
	a := New(nil)
	b := New(nil)
	g.Add(a)
	g.Add(b)

	assert.Equal(t, 2, g.Count())
	assert.Same(t, g, a.Group())
	assert.Same(t, g, b.Group())
	assert.NotZero(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGroupRemoveKeepsOrder(t *testing.T) {
	g := NewGroup()
	insts := make([]*Instance, 4)
	for i := range insts {
		insts[i] = New(g, WithPosition(mgl32.Vec3{float32(i), 0, 0}))
		g.Add(insts[i])
	}

	require.NoError(t, g.Remove(insts[1], false))
	assert.Equal(t, 3, g.Count())
	assert.Equal(t, -1, g.IndexOf(insts[1]))
	assert.Equal(t, 0, g.IndexOf(insts[0]))
	assert.Equal(t, 1, g.IndexOf(insts[2]))
	assert.Equal(t, 2, g.IndexOf(insts[3]))
}

func TestGroupRemoveNotFound(t *testing.T) {
	g := NewGroup()
	g.Add(New(nil))
	err := g.Remove(New(nil), true)
	assert.ErrorIs(t, err, ErrInstanceNotFound)
	assert.Equal(t, 1, g.Count())
}

func TestGroupRemoveUnlinksReference(t *testing.T) {
	tests := []struct {
		name    string
		destroy bool
	}{
		{"keep reference", false},
		{"destroy reference", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup()
			inst := New(nil)
			g.Add(inst)
			ref := &fakeReference{inst: inst}
			inst.SetReference(ref)

			require.NoError(t, g.Remove(inst, tt.destroy))
			assert.True(t, ref.unlinked)
			assert.Equal(t, tt.destroy, ref.destroyed)
			assert.Nil(t, inst.Reference())
			assert.Zero(t, g.Count())
		})
	}
}

type selfRemovingReference struct {
	fakeReference
	group *Group
	inst  *Instance
}

func (s *selfRemovingReference) Destroy() {
	s.destroyed = true
	_ = s.group.Remove(s.inst, false)
}

func TestGroupRemoveToleratesReentrantDestroy(t *testing.T) {
	g := NewGroup()
	keep := New(nil)
	inst := New(nil)
	g.Add(keep)
	g.Add(inst)
	ref := &selfRemovingReference{group: g, inst: inst}
	inst.SetReference(ref)

	require.NoError(t, g.Remove(inst, true))
	assert.True(t, ref.destroyed)
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, 0, g.IndexOf(keep))
}

func TestGroupAtAndSet(t *testing.T) {
	g := NewGroup()
	a := New(nil)
	g.Add(a)

	got, err := g.At(0)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = g.At(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = g.At(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	b := New(nil)
	require.NoError(t, g.Set(0, b))
	assert.Same(t, g, b.Group())
	assert.NotZero(t, b.ID())
	assert.ErrorIs(t, g.Set(3, New(nil)), ErrIndexOutOfRange)
}

func TestGroupSetReleasesReplacedInstance(t *testing.T) {
	g := NewGroup()
	old := New(nil)
	g.Add(old)
	ref := &fakeReference{inst: old}
	old.SetReference(ref)

	require.NoError(t, g.Set(0, New(nil)))
	assert.True(t, ref.unlinked)
	assert.False(t, ref.destroyed)
	assert.Nil(t, old.Reference())
	assert.Nil(t, old.Group())
}

func TestGroupSetKeepsInstanceStillPresent(t *testing.T) {
	g := NewGroup()
	a, b := New(nil), New(nil)
	g.Add(a)
	g.Add(b)

	// a swap passes through a state where one instance sits at two indices
	require.NoError(t, g.Set(0, b))
	require.NoError(t, g.Set(1, a))
	assert.Same(t, g, a.Group())
	assert.Same(t, g, b.Group())
	assert.Equal(t, 0, g.IndexOf(b))
	assert.Equal(t, 1, g.IndexOf(a))
}

func TestInstanceIDsStayUniqueAcrossGroups(t *testing.T) {
	x := NewGroup()
	moved := New(nil)
	x.Add(moved)
	require.NoError(t, x.Remove(moved, false))

	y := NewGroup()
	local := New(nil)
	y.Add(local)
	y.Add(moved)

	assert.NotZero(t, local.ID())
	assert.NotEqual(t, local.ID(), moved.ID())
	assert.Same(t, y, moved.Group())
}

func TestGroupClear(t *testing.T) {
	g := NewGroup(WithCapacity(8))
	for range 5 {
		g.Add(New(nil))
	}
	g.Clear()
	assert.Zero(t, g.Count())
	assert.Empty(t, g.Instances())
}

func TestGroupOnAddHookRunsBeforeAppend(t *testing.T) {
	g := NewGroup()
	var seenCount = -1
	g.SetOnAdd(func(inst *Instance) {
		seenCount = g.Count()
		assert.Same(t, g, inst.Group())
	})
	g.Add(New(nil))
	assert.Equal(t, 0, seenCount)
	assert.Equal(t, 1, g.Count())
}

func TestGroupObjectNames(t *testing.T) {
	g := NewGroup()
	assert.Equal(t, []string{DefaultObjectName}, g.ObjectNames())

	g = NewGroup(WithObjectNames("Tree", "Rock"))
	assert.Equal(t, 2, g.ObjectCount())
	id := g.AddObjectName("Bush")
	assert.Equal(t, 2, id)

	name, ok := g.ObjectName(1)
	assert.True(t, ok)
	assert.Equal(t, "Rock", name)
	_, ok = g.ObjectName(5)
	assert.False(t, ok)

	// removing a type leaves instance IDs untouched
	inst := New(nil, WithObjectID(2))
	g.Add(inst)
	require.NoError(t, g.RemoveObjectName(0))
	assert.Equal(t, 2, inst.ObjectID)
	_, ok = g.ObjectName(inst.ObjectID)
	assert.False(t, ok, "id is now dangling")

	assert.ErrorIs(t, g.RemoveObjectName(9), ErrIndexOutOfRange)
}

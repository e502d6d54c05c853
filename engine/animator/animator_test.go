package animator

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = camera.StaticView{Eye: mgl32.Vec3{0, 0, 0}}

func newGroup(n int, names ...string) *instance.Group {
	g := instance.NewGroup(instance.WithObjectNames(names...))
	for i := 0; i < n; i++ {
		g.Add(instance.New(g, instance.WithPosition(mgl32.Vec3{float32(i), 0, 0})))
	}
	return g
}

func seeded() AnimatorBuilderOption {
	return WithRand(rand.New(rand.NewSource(42)))
}

func TestProfileEnabled(t *testing.T) {
	assert.True(t, DefaultSkewProfile.Enabled())
	assert.True(t, DefaultSwayProfile.Enabled())
	assert.False(t, Profile{Amount: 0, Speed: 1}.Enabled())
	assert.False(t, Profile{Amount: 1, Speed: 0.000001}.Enabled())
}

func TestZeroProfileKeepsInstancesStill(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"zero amount", Profile{Amount: 0, Speed: 2}},
		{"zero speed", Profile{Amount: 2, Speed: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGroup(4, "a")
			rot := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
			for _, inst := range g.Instances() {
				inst.SetRotation(rot)
				inst.SetSkew(mgl32.Vec2{0.1, -0.1})
			}

			skew := NewSkew(g, WithProfiles(tt.profile), seeded())
			sway := NewSway(g, WithProfiles(tt.profile), seeded())
			for i := 0; i < 500; i++ {
				skew.Update(0.016, origin)
				sway.Update(0.016, origin)
			}

			for _, inst := range g.Instances() {
				assert.Equal(t, mgl32.Vec2{0.1, -0.1}, inst.Skew())
				assert.Equal(t, rot, inst.Rotation())
			}
		})
	}
}

func TestSkewConvergesOnSuccessiveTargets(t *testing.T) {
	g := newGroup(1, "a")
	a := NewSkew(g, WithProfiles(Profile{Amount: 1, Speed: 5}), seeded()).(*animatorImpl[skewRecord])

	var retargets int
	var last mgl32.Vec2
	for i := 0; i < 10000; i++ {
		a.Update(0.01, origin)
		rec := a.records[0]
		if rec.target != last {
			retargets++
			last = rec.target
		}
		require.LessOrEqual(t, g.Instances()[0].Skew().Len(), float32(1.5), "frame %d", i)
	}
	assert.GreaterOrEqual(t, retargets, 3)
}

func TestSkewFirstFramePicksTargetWithoutMoving(t *testing.T) {
	g := newGroup(1, "a")
	a := NewSkew(g, WithProfiles(Profile{Amount: 1, Speed: 1}), seeded())
	a.Update(0.1, origin)
	assert.Equal(t, mgl32.Vec2{}, g.Instances()[0].Skew())

	a.Update(0.1, origin)
	assert.NotEqual(t, mgl32.Vec2{}, g.Instances()[0].Skew())
}

func TestSwayStaysWithinAmount(t *testing.T) {
	g := newGroup(1, "a")
	original := mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})
	g.Instances()[0].SetRotation(original)

	p := Profile{Amount: 10, Speed: 4}
	a := NewSway(g, WithProfiles(p), seeded()).(*animatorImpl[swayRecord])

	var retargets int
	var last mgl32.Vec3
	for i := 0; i < 2000; i++ {
		a.Update(0.02, origin)
		rec := a.records[0]
		if rec.target != last {
			retargets++
			last = rec.target
		}
		require.LessOrEqual(t, rec.current.Len(), p.Amount+0.001)
		assert.Equal(t, original, rec.original)
	}
	assert.GreaterOrEqual(t, retargets, 3)
	assert.NotEqual(t, original, g.Instances()[0].Rotation())

	// the rotation never leaves a cone of amount degrees around the original
	angle := original.Inverse().Mul(g.Instances()[0].Rotation()).Normalize()
	half := math32.Acos(math32.Min(1, math32.Abs(angle.W)))
	assert.LessOrEqual(t, mgl32.RadToDeg(2*half), float32(3*p.Amount))
}

func TestMaxDistance(t *testing.T) {
	g := instance.NewGroup()
	near := instance.New(g, instance.WithPosition(mgl32.Vec3{10, 0, 0}))
	far := instance.New(g, instance.WithPosition(mgl32.Vec3{100, 0, 0}))
	g.Add(near)
	g.Add(far)

	a := NewSkew(g, WithMaxDistance(50), WithProfiles(Profile{Amount: 1, Speed: 1}), seeded())
	assert.InDelta(t, 50, a.MaxDistance(), 1e-4)
	for i := 0; i < 20; i++ {
		a.Update(0.05, origin)
	}
	assert.NotEqual(t, mgl32.Vec2{}, near.Skew())
	assert.Equal(t, mgl32.Vec2{}, far.Skew())

	a.SetMaxDistance(200)
	for i := 0; i < 20; i++ {
		a.Update(0.05, origin)
	}
	assert.NotEqual(t, mgl32.Vec2{}, far.Skew())
}

func TestDefaultMaxDistanceIsUnlimited(t *testing.T) {
	a := NewSway(nil)
	assert.True(t, math32.IsInf(a.MaxDistance(), 1))
}

func TestOutOfRangeObjectIDIsSkipped(t *testing.T) {
	g := newGroup(2, "a")
	g.Instances()[1].ObjectID = 7
	g.Instances()[0].ObjectID = -1

	a := NewSkew(g, WithProfiles(Profile{Amount: 1, Speed: 1}), seeded())
	for i := 0; i < 20; i++ {
		a.Update(0.05, origin)
	}
	for _, inst := range g.Instances() {
		assert.Equal(t, mgl32.Vec2{}, inst.Skew())
	}
}

func TestNilGroupOrViewIsNoOp(t *testing.T) {
	a := NewSway(nil)
	assert.NotPanics(t, func() { a.Update(0.1, origin) })

	g := newGroup(1, "a")
	a.SetGroup(g)
	assert.NotPanics(t, func() { a.Update(0.1, nil) })
	assert.Same(t, g, a.Group())
}

func TestProfilesFollowObjectTypes(t *testing.T) {
	g := newGroup(1, "a", "b")
	a := NewSway(g, WithProfiles(Profile{Amount: 1, Speed: 1}))
	a.Update(0.01, origin)
	assert.Equal(t, []Profile{{1, 1}, DefaultSwayProfile}, a.Profiles())

	g.AddObjectName("c")
	a.Update(0.01, origin)
	p, ok := a.Profile(2)
	require.True(t, ok)
	assert.Equal(t, DefaultSwayProfile, p)

	require.NoError(t, g.RemoveObjectName(2))
	require.NoError(t, g.RemoveObjectName(1))
	a.Update(0.01, origin)
	_, ok = a.Profile(1)
	assert.False(t, ok)

	a.SetProfile(3, Profile{Amount: 2, Speed: 2})
	assert.Len(t, a.Profiles(), 4)
	a.SetProfile(-1, Profile{})
	assert.Len(t, a.Profiles(), 4)
}

func TestRecordsFollowInstancesAcrossMutation(t *testing.T) {
	g := newGroup(3, "a")
	for i, inst := range g.Instances() {
		inst.SetRotation(mgl32.QuatRotate(float32(i), mgl32.Vec3{0, 1, 0}))
	}
	originals := map[uint64]mgl32.Quat{}
	for _, inst := range g.Instances() {
		originals[inst.ID()] = inst.Rotation()
	}

	a := NewSway(g, WithProfiles(Profile{Amount: 5, Speed: 5}), seeded()).(*animatorImpl[swayRecord])
	for i := 0; i < 50; i++ {
		a.Update(0.02, origin)
	}

	// swayed rotations must not become the new originals after a structural edit
	require.NoError(t, g.Remove(g.Instances()[0], false))
	added := instance.New(g, instance.WithRotation(mgl32.QuatRotate(2.5, mgl32.Vec3{1, 0, 0})))
	g.Add(added)
	originals[added.ID()] = added.Rotation()
	a.Update(0.02, origin)

	require.Len(t, a.records, 3)
	for i, inst := range g.Instances() {
		assert.Equal(t, inst.ID(), a.ids[i])
		assert.Equal(t, originals[inst.ID()], a.records[i].original)
	}

	// reordering without a count change is detected too
	first, _ := g.At(0)
	last, _ := g.At(2)
	require.NoError(t, g.Set(0, last))
	require.NoError(t, g.Set(2, first))
	a.Update(0.02, origin)
	assert.Equal(t, originals[last.ID()], a.records[0].original)
	assert.Equal(t, originals[first.ID()], a.records[2].original)
}

func TestRecordsStayDistinctForInstanceMovedBetweenGroups(t *testing.T) {
	other := instance.NewGroup()
	moved := instance.New(other, instance.WithRotation(mgl32.QuatRotate(1.5, mgl32.Vec3{0, 1, 0})))
	other.Add(moved)
	require.NoError(t, other.Remove(moved, false))

	g := newGroup(1, "a")
	local, _ := g.At(0)
	a := NewSway(g, WithProfiles(Profile{Amount: 1, Speed: 1}), seeded()).(*animatorImpl[swayRecord])
	a.Update(0.02, origin)

	g.Add(moved)
	a.Update(0.02, origin)

	require.Len(t, a.records, 2)
	assert.NotEqual(t, a.ids[0], a.ids[1])
	assert.Equal(t, mgl32.QuatIdent(), a.records[0].original)
	assert.Equal(t, mgl32.QuatRotate(1.5, mgl32.Vec3{0, 1, 0}), a.records[1].original)

	forward := local.Rotation().Rotate(mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 1, forward.Z(), 0.01)
}

func TestResetRecapturesOriginals(t *testing.T) {
	g := newGroup(1, "a")
	a := NewSway(g, WithProfiles(Profile{Amount: 5, Speed: 5}), seeded()).(*animatorImpl[swayRecord])
	for i := 0; i < 50; i++ {
		a.Update(0.02, origin)
	}
	inst := g.Instances()[0]
	require.NotEqual(t, mgl32.QuatIdent(), inst.Rotation())

	a.Reset()
	a.Update(0.02, origin)
	assert.Equal(t, inst.Rotation(), a.records[0].original)
}

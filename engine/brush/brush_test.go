package brush

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

var up = Hit{Normal: common.Up}

func seeded() *rand.Rand { return rand.New(rand.NewSource(3)) }

func groupAt(points ...mgl32.Vec3) *instance.Group {
	g := instance.NewGroup(instance.WithObjectNames("a", "b"))
	for _, p := range points {
		g.Add(instance.New(g, instance.WithPosition(p)))
	}
	return g
}

func at(x, z float32) Hit {
	return Hit{Point: mgl32.Vec3{x, 0, z}, Normal: common.Up}
}

func TestStrength(t *testing.T) {
	c := mgl32.Vec3{}
	assert.InDelta(t, 0.5, Strength(c, mgl32.Vec3{4, 0, 0}, 5, 0.5, nil), tol)
	assert.InDelta(t, 0.4, Strength(c, mgl32.Vec3{1, 0, 0}, 5, 0.5, Linear), tol)
	assert.InDelta(t, 0, Strength(c, mgl32.Vec3{5, 0, 0}, 5, 1, Linear), tol)
	assert.InDelta(t, 1, Strength(c, c, 5, 3, Constant), tol, "clamped")
	assert.InDelta(t, 0.5, Smooth(0.5), tol)
}

func TestSelectedInstances(t *testing.T) {
	g := groupAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{9, 0, 0})
	sel := SelectedInstances(g, mgl32.Vec3{}, 5)
	require.Len(t, sel, 3, "radius is inclusive")
	assert.Equal(t, g.Instances()[:3], sel)
}

func TestInsertPlacesOneInstance(t *testing.T) {
	g := groupAt()
	b := NewInsert(1)
	b.Rand = seeded()
	b.Object.MinScale, b.Object.MaxScale = 2, 3
	b.Object.Offset = 0.5

	require.Equal(t, 1, b.Apply(g, at(4, 4)))
	inst := g.Instances()[0]
	assert.Equal(t, 1, inst.ObjectID)
	assert.Equal(t, mgl32.Vec3{4, 0.5, 4}, inst.Position())
	s := inst.Scale()
	assert.GreaterOrEqual(t, s.X(), float32(2))
	assert.Less(t, s.X(), float32(3))
	assert.Equal(t, s.X(), s.Y())
	assert.Same(t, g, inst.Group())
}

func TestInsertWithoutObjectTypes(t *testing.T) {
	g := instance.NewGroup(instance.WithObjectNames())
	g.SetObjectNames(nil)
	assert.Zero(t, NewInsert(0).Apply(g, at(0, 0)))
	assert.Zero(t, g.Count())
}

func TestPlaceRespectsMinimumDistance(t *testing.T) {
	g := groupAt(mgl32.Vec3{0, 0, 0})
	o := NewInsertObject()
	o.MinObjectDistances = []float32{2}

	assert.Nil(t, o.Place(g, 0, at(1.5, 0), seeded()))
	assert.Nil(t, o.Place(g, 0, at(2, 0), seeded()), "boundary is rejected")
	assert.NotNil(t, o.Place(g, 0, at(2.5, 0), seeded()))

	// instances of types without a minimum are ignored
	g.Instances()[0].ObjectID = 1
	assert.NotNil(t, o.Place(g, 0, at(0, 0), seeded()))
}

func TestPlaceRespectsSlopeLimit(t *testing.T) {
	g := groupAt()
	o := NewInsertObject()
	o.SlopeLimit = true
	o.SetMaxSlopeDegrees(135)
	assert.InDelta(t, 0.5, o.MaxSlope, tol)
	assert.InDelta(t, 135, o.MaxSlopeDegrees(), tol)

	steep := Hit{Normal: mgl32.Vec3{1, 0.2, 0}.Normalize()}
	assert.Nil(t, o.Place(g, 0, steep, seeded()))
	assert.NotNil(t, o.Place(g, 0, up, seeded()))
}

func TestPlaceOnNormal(t *testing.T) {
	g := groupAt()
	o := NewInsertObject()
	o.PlaceOnNormal = true
	o.RandomSwivel = false
	normal := mgl32.Vec3{1, 0, 0}

	inst := o.Place(g, 0, Hit{Normal: normal}, seeded())
	require.NotNil(t, inst)
	got := inst.Rotation().Rotate(common.Up)
	assert.InDelta(t, 1, got.X(), tol)
	assert.InDelta(t, 0, got.Y(), tol)
}

func TestMultiInsert(t *testing.T) {
	g := groupAt()
	b := NewMultiInsert()
	b.Rand = seeded()
	b.Amount = 10
	b.SyncObjects(g.ObjectCount())
	require.Len(t, b.Objects, 2)
	assert.InDelta(t, 0.5, b.Objects[0].DistributionWeight, tol)

	assert.Equal(t, 10, b.Apply(g, at(0, 0)))
	for _, inst := range g.Instances() {
		p := inst.Position()
		assert.LessOrEqual(t, mgl32.Vec2{p.X(), p.Z()}.Len(), b.Radius+tol)
		assert.InDelta(t, 0, p.Y(), tol)
	}

	assert.Zero(t, b.Apply(g, at(1, 0)), "too close to the previous application")
	assert.Equal(t, 10, b.Apply(g, at(6, 0)))
	b.Release()
	assert.Equal(t, 10, b.Apply(g, at(6.5, 0)))
	assert.Equal(t, 30, g.Count())
}

func TestMultiInsertSampler(t *testing.T) {
	g := groupAt()
	b := NewMultiInsert()
	b.Rand = seeded()
	b.Objects = []InsertObject{NewInsertObject(), NewInsertObject()}
	b.Objects[0].DistributionWeight = 0
	b.Objects[1].DistributionWeight = 1
	b.Sampler = func(hit Hit, amount int, radius float32) []Hit {
		return []Hit{hit, {Point: hit.Point.Add(mgl32.Vec3{1, 0, 0}), Normal: hit.Normal}}
	}

	assert.Equal(t, 2, b.Apply(g, at(0, 0)))
	for _, inst := range g.Instances() {
		assert.Equal(t, 1, inst.ObjectID)
	}
}

func TestRandomObject(t *testing.T) {
	b := &MultiInsert{}
	assert.Equal(t, -1, b.RandomObject(0.5))

	b.Objects = []InsertObject{{DistributionWeight: 0.25}, {DistributionWeight: 0.25}, {DistributionWeight: 0.5}}
	assert.Equal(t, 0, b.RandomObject(0.1))
	assert.Equal(t, 1, b.RandomObject(0.4))
	assert.Equal(t, 2, b.RandomObject(0.9))
	assert.Equal(t, 2, b.RandomObject(1.5))
}

func TestNormalizeDistributionWeights(t *testing.T) {
	weights := func(objs []InsertObject) []float32 {
		var w []float32
		for _, o := range objs {
			w = append(w, o.DistributionWeight)
		}
		return w
	}

	single := []InsertObject{{DistributionWeight: 0.2}}
	NormalizeDistributionWeights(single, 0)
	assert.Equal(t, []float32{1}, weights(single))

	objs := []InsertObject{{DistributionWeight: 0.8}, {DistributionWeight: 0.5}, {DistributionWeight: 0.5}}
	NormalizeDistributionWeights(objs, 0)
	w := weights(objs)
	assert.InDelta(t, 0.8, w[0], tol)
	assert.InDelta(t, 0.1, w[1], tol)
	assert.InDelta(t, 0.1, w[2], tol)

	zero := []InsertObject{{}, {}, {}, {}}
	NormalizeDistributionWeights(zero, 2)
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, weights(zero))

	assert.NotPanics(t, func() { NormalizeDistributionWeights(nil, 0) })
}

func TestDiskSamplerFollowsNormal(t *testing.T) {
	sampler := DiskSampler(seeded())
	hit := Hit{Point: mgl32.Vec3{0, 5, 0}, Normal: mgl32.Vec3{0, 0, 1}}
	hits := sampler(hit, 20, 2)
	require.Len(t, hits, 20)
	for _, h := range hits {
		assert.InDelta(t, 0, h.Point.Z(), tol, "points stay on the tangent plane")
		assert.LessOrEqual(t, h.Point.Sub(hit.Point).Len(), float32(2)+tol)
		assert.Equal(t, hit.Normal, h.Normal)
	}
}

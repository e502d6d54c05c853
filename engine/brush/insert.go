package brush

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
)

// InsertObject describes how new instances of one object type are placed.
type InsertObject struct {
	// DistributionWeight is the chance of this type being picked by MultiInsert.
	DistributionWeight float32
	// MinObjectDistances is indexed by the objectID of existing instances. A new instance is
	// rejected if it would land within that distance of one of them.
	MinObjectDistances []float32
	// PlaceOnNormal aligns the instance's up axis with the surface normal.
	PlaceOnNormal bool
	// Offset moves the instance along the surface normal.
	Offset float32
	// RandomSwivel spins the instance around its up axis.
	RandomSwivel bool
	// Slant is the maximum random tilt in degrees.
	Slant float32

	MinScale, MaxScale float32
	MinColor, MaxColor common.Color

	// SlopeLimit rejects surfaces whose normal dot FlatNormal is below MaxSlope.
	SlopeLimit bool
	MaxSlope   float32
	FlatNormal mgl32.Vec3
}

// NewInsertObject returns the default placement settings: full weight, random swivel, unit scale,
// white color and +Y as the flat normal.
func NewInsertObject() InsertObject {
	return InsertObject{
		DistributionWeight: 1,
		RandomSwivel:       true,
		MinScale:           1,
		MaxScale:           1,
		MinColor:           common.White,
		MaxColor:           common.White,
		FlatNormal:         common.Up,
	}
}

// MaxSlopeDegrees returns MaxSlope as an angle, 0 for flat only and 180 for any surface.
func (o InsertObject) MaxSlopeDegrees() float32 {
	return (o.MaxSlope + 1) * 90
}

// SetMaxSlopeDegrees sets MaxSlope from an angle in [0, 180].
func (o *InsertObject) SetMaxSlopeDegrees(degrees float32) {
	o.MaxSlope = degrees/90 - 1
}

// Place creates one instance of objectID at hit and adds it to g, unless the surface is too steep
// or another instance is closer than its minimum distance.
//
// Parameters:
//   - g: the group
//   - objectID: the object type of the new instance
//   - hit: the surface point
//   - rnd: the random source for scale, color and rotation
//
// Returns:
//   - *instance.Instance: the new instance, nil if rejected
func (o InsertObject) Place(g *instance.Group, objectID int, hit Hit, rnd *rand.Rand) *instance.Instance {
	if o.SlopeLimit && hit.Normal.Dot(o.FlatNormal) < o.MaxSlope {
		return nil
	}

	for _, other := range g.Instances() {
		if other.ObjectID < 0 || other.ObjectID >= len(o.MinObjectDistances) {
			continue
		}
		minDist := o.MinObjectDistances[other.ObjectID]
		if common.DistanceSqr(other.Position(), hit.Point) <= minDist*minDist {
			return nil
		}
	}

	rotation := mgl32.QuatIdent()
	if o.PlaceOnNormal {
		rotation = rotation.Mul(mgl32.QuatBetweenVectors(common.Up, hit.Normal.Normalize()))
	}
	if o.RandomSwivel {
		rotation = rotation.Mul(mgl32.QuatRotate(mgl32.DegToRad(common.RandomRange(rnd, 0, 360)), common.Up))
	}
	dir := common.RandomInsideUnitCircle(rnd)
	if axis := (mgl32.Vec3{dir.X(), 0, dir.Y()}); axis.Len() > common.Epsilon {
		rotation = rotation.Mul(mgl32.QuatRotate(mgl32.DegToRad(common.RandomRange(rnd, 0, o.Slant)), axis.Normalize()))
	}

	inst := instance.New(g,
		instance.WithObjectID(objectID),
		instance.WithPosition(hit.Point.Add(hit.Normal.Mul(o.Offset))),
		instance.WithUniformScale(common.RandomRange(rnd, o.MinScale, o.MaxScale)),
		instance.WithColor(o.MinColor.Lerp(o.MaxColor, rnd.Float32())),
		instance.WithRotation(rotation.Normalize()),
	)
	g.Add(inst)
	return inst
}

// Insert places a single instance of one object type per Apply.
type Insert struct {
	Radius   float32
	ObjectID int
	Object   InsertObject
	Rand     *rand.Rand
}

var _ Brush = &Insert{}

// NewInsert returns an Insert brush for objectID with default placement settings.
func NewInsert(objectID int) *Insert {
	return &Insert{Radius: 1, ObjectID: objectID, Object: NewInsertObject()}
}

func (b *Insert) Name() string { return "Insert" }
func (b *Insert) brush()       {}

// Apply places one instance at hit. Nothing happens when the group has no object types.
func (b *Insert) Apply(g *instance.Group, hit Hit) int {
	if g.ObjectCount() == 0 {
		return 0
	}
	b.Rand = randOrDefault(b.Rand)
	if b.Object.Place(g, b.ObjectID, hit, b.Rand) == nil {
		return 0
	}
	return 1
}

// PointSampler returns up to amount surface points scattered within radius of hit.
type PointSampler func(hit Hit, amount int, radius float32) []Hit

// DiskSampler returns a PointSampler that scatters points uniformly over the disk tangent to the
// hit surface. Every returned point keeps the hit normal.
//
// Parameters:
//   - rnd: the random source
//
// Returns:
//   - PointSampler: the sampler
func DiskSampler(rnd *rand.Rand) PointSampler {
	return func(hit Hit, amount int, radius float32) []Hit {
		rotation := mgl32.QuatBetweenVectors(common.Up, hit.Normal.Normalize())
		hits := make([]Hit, 0, amount)
		for i := 0; i < amount; i++ {
			p := common.RandomInsideUnitCircle(rnd).Mul(radius)
			offset := rotation.Rotate(mgl32.Vec3{p.X(), 0, p.Y()})
			hits = append(hits, Hit{Point: hit.Point.Add(offset), Normal: hit.Normal})
		}
		return hits
	}
}

// MultiInsert scatters several instances per Apply, picking each object type by weight.
// Consecutive applications closer than DistanceBetweenInserts to the previous one are ignored
// until Release is called.
type MultiInsert struct {
	Radius                 float32
	Amount                 int
	DistanceBetweenInserts float32
	// Objects holds one entry per object type, indexed by objectID.
	Objects []InsertObject
	// Sampler picks the surface points. Nil uses DiskSampler.
	Sampler PointSampler
	Rand    *rand.Rand

	last    mgl32.Vec3
	hasLast bool
}

var _ Brush = &MultiInsert{}

// NewMultiInsert returns a MultiInsert brush with a 5 unit radius, one insert per application and
// 5 units between applications.
func NewMultiInsert() *MultiInsert {
	return &MultiInsert{Radius: 5, Amount: 1, DistanceBetweenInserts: 5}
}

func (b *MultiInsert) Name() string { return "MultiInsert" }
func (b *MultiInsert) brush()       {}

// SyncObjects resizes Objects to n object types. New entries get default settings and, when the
// length changes, every weight is reset to 1/n.
//
// Parameters:
//   - n: the object type count
func (b *MultiInsert) SyncObjects(n int) {
	if len(b.Objects) == n {
		return
	}
	for len(b.Objects) < n {
		b.Objects = append(b.Objects, NewInsertObject())
	}
	b.Objects = b.Objects[:n]
	for i := range b.Objects {
		b.Objects[i].DistributionWeight = 1 / float32(n)
	}
}

// RandomObject picks an object type using the distribution weights.
//
// Parameters:
//   - v: a uniform sample in [0, 1]
//
// Returns:
//   - int: the object index, -1 when Objects is empty
func (b *MultiInsert) RandomObject(v float32) int {
	for i := range b.Objects {
		v -= b.Objects[i].DistributionWeight
		if v <= 0 {
			return i
		}
	}
	return len(b.Objects) - 1
}

// Apply scatters Amount instances around hit.
func (b *MultiInsert) Apply(g *instance.Group, hit Hit) int {
	if g.ObjectCount() == 0 || len(b.Objects) == 0 {
		return 0
	}
	if b.hasLast && hit.Point.Sub(b.last).Len() < b.DistanceBetweenInserts {
		return 0
	}
	b.last, b.hasLast = hit.Point, true

	b.Rand = randOrDefault(b.Rand)
	sampler := b.Sampler
	if sampler == nil {
		sampler = DiskSampler(b.Rand)
	}

	var placed int
	for _, h := range sampler(hit, b.Amount, b.Radius) {
		id := b.RandomObject(b.Rand.Float32())
		if b.Objects[id].Place(g, id, h, b.Rand) != nil {
			placed++
		}
	}
	return placed
}

// Release forgets the previous application point so the next Apply always paints.
func (b *MultiInsert) Release() {
	b.hasLast = false
}

// NormalizeDistributionWeights makes the weights of objects sum to 1 after the weight at index
// was edited. The difference is spread evenly over the other entries. A single entry always gets
// weight 1 and a total near zero resets every weight to 1/len.
//
// Parameters:
//   - objects: the entries to normalize in place
//   - index: the entry whose weight was edited
func NormalizeDistributionWeights(objects []InsertObject, index int) {
	if len(objects) == 0 {
		return
	}
	if len(objects) == 1 {
		objects[0].DistributionWeight = 1
		return
	}

	var total float32
	for i := range objects {
		total += objects[i].DistributionWeight
	}
	if total == 1 {
		return
	}
	if total <= 0.000001 {
		for i := range objects {
			objects[i].DistributionWeight = 1 / float32(len(objects))
		}
		return
	}

	share := (1 - total) / float32(len(objects)-1)
	for i := range objects {
		if i != index {
			objects[i].DistributionWeight += share
		}
	}
}

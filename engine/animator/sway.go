package animator

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type swayRecord struct {
	// original is the rotation captured when the record was created. It never changes.
	original mgl32.Quat
	target   mgl32.Vec3
	current  mgl32.Vec3
}

// NewSway creates an animator that rocks each instance around its original rotation. The Euler
// offset in degrees moves at the profile speed toward random points on a sphere of radius
// amount, and the rotation is set to original * Euler(offset).
//
// Parameters:
//   - group: the group to animate, may be nil and set later
//   - options: functional options
//
// Returns:
//   - Animator: the sway animator
func NewSway(group *instance.Group, options ...AnimatorBuilderOption) Animator {
	return newAnimator(group, DefaultSwayProfile, newSwayRecord, stepSway, options)
}

func newSwayRecord(inst *instance.Instance) swayRecord {
	return swayRecord{original: inst.Rotation()}
}

func stepSway(rnd *rand.Rand, inst *instance.Instance, p Profile, rec *swayRecord, deltaTime float32) {
	desired := rec.target.Sub(rec.current)
	distance := desired.Len()

	if distance < p.Speed*reachFactor {
		rec.target = common.RandomOnUnitSphere(rnd).Mul(p.Amount)
		return
	}

	// the step never carries the offset past its target
	step := math32.Min(deltaTime*p.Speed, distance)
	rec.current = rec.current.Add(desired.Mul(step / distance))
	inst.SetRotation(rec.original.Mul(common.EulerDegrees(rec.current)).Normalize())
}

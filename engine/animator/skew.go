package animator

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
)

type skewRecord struct {
	target   mgl32.Vec2
	velocity mgl32.Vec2
}

// NewSkew creates an animator that steers each instance's skew toward random targets inside
// the unit disk. Velocity is smoothed toward the target direction at the profile speed, which
// gives a wobbling shear without overshooting springs.
//
// Parameters:
//   - group: the group to animate, may be nil and set later
//   - options: functional options
//
// Returns:
//   - Animator: the skew animator
func NewSkew(group *instance.Group, options ...AnimatorBuilderOption) Animator {
	return newAnimator(group, DefaultSkewProfile, newSkewRecord, stepSkew, options)
}

func newSkewRecord(inst *instance.Instance) skewRecord {
	return skewRecord{target: inst.Skew()}
}

func stepSkew(rnd *rand.Rand, inst *instance.Instance, p Profile, rec *skewRecord, deltaTime float32) {
	skew := inst.Skew()
	desired := rec.target.Sub(skew)
	distance := desired.Len()

	if distance < p.Speed*reachFactor {
		rec.target = common.RandomInsideUnitCircle(rnd)
		return
	}

	desired = desired.Mul(1 / distance)
	rec.velocity = rec.velocity.Add(desired.Sub(rec.velocity).Mul(deltaTime * p.Speed))
	inst.SetSkew(skew.Add(rec.velocity.Mul(deltaTime)))
}

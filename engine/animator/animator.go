package animator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/chewxy/math32"
)

// reachFactor scales a profile's speed into the distance at which a target counts as reached.
const reachFactor float32 = 0.01

// Profile is the per-object-type behaviour of an animator.
type Profile struct {
	// Amount is the animation strength. For sway it is the offset radius in degrees.
	Amount float32 `toml:"amount" yaml:"amount"`
	// Speed is the rate at which the animated value moves toward its target.
	Speed float32 `toml:"speed" yaml:"speed"`
}

// Enabled reports whether both amount and speed are above common.Epsilon.
func (p Profile) Enabled() bool {
	return p.Amount > common.Epsilon && p.Speed > common.Epsilon
}

var (
	// DefaultSkewProfile is assigned to new object types by a Skew animator.
	DefaultSkewProfile = Profile{Amount: 0.05, Speed: 0.05}

	// DefaultSwayProfile is assigned to new object types by a Sway animator.
	DefaultSwayProfile = Profile{Amount: 0.3, Speed: 0.3}
)

// Animator mutates instance transforms of one group once per frame.
//
// Per-instance simulation state is keyed by instance ID. When the group's membership or order
// changes, surviving instances keep their state and new instances start fresh. The profile table
// is resized to the group's object type count every frame, new slots receiving the animator's
// default profile.
type Animator interface {
	// Group returns the animated group, or nil.
	//
	// Returns:
	//   - *instance.Group: the group
	Group() *instance.Group

	// SetGroup replaces the animated group and drops all simulation state.
	//
	// Parameters:
	//   - g: the new group, nil disables the animator
	SetGroup(g *instance.Group)

	// MaxDistance returns the camera distance beyond which instances are not animated.
	//
	// Returns:
	//   - float32: the distance, +Inf when unlimited
	MaxDistance() float32

	// SetMaxDistance sets the camera distance beyond which instances are not animated.
	//
	// Parameters:
	//   - d: the distance
	SetMaxDistance(d float32)

	// Profile returns the profile of one object type.
	//
	// Parameters:
	//   - objectID: the object type index
	//
	// Returns:
	//   - Profile: the profile
	//   - bool: false if objectID is outside the profile table
	Profile(objectID int) (Profile, bool)

	// SetProfile sets the profile of one object type, growing the table with defaults if needed.
	//
	// Parameters:
	//   - objectID: the object type index, negative values are ignored
	//   - p: the profile
	SetProfile(objectID int, p Profile)

	// Profiles returns a copy of the profile table.
	//
	// Returns:
	//   - []Profile: one profile per object type
	Profiles() []Profile

	// Reset drops all per-instance simulation state. The next Update rebuilds it from the
	// instances' current transforms.
	Reset()

	// Update advances every eligible instance by deltaTime seconds.
	// A nil group or view makes this a no-op frame.
	//
	// Parameters:
	//   - deltaTime: elapsed seconds since the previous frame
	//   - view: the viewer used for the max distance test
	Update(deltaTime float32, view camera.View)
}

// stepFunc advances one instance and its record. rnd is the animator's random source.
type stepFunc[R any] func(rnd *rand.Rand, inst *instance.Instance, p Profile, rec *R, deltaTime float32)

// animatorImpl is the shared Animator implementation. R is the per-instance record type.
type animatorImpl[R any] struct {
	mu *sync.Mutex

	group          *instance.Group
	maxDistanceSqr float32
	profiles       []Profile
	defaultProfile Profile
	rnd            *rand.Rand

	records []R
	ids     []uint64
	byID    map[uint64]R

	newRecord func(*instance.Instance) R
	step      stepFunc[R]
}

var _ Animator = &animatorImpl[skewRecord]{}

func newAnimator[R any](group *instance.Group, def Profile, newRecord func(*instance.Instance) R, step stepFunc[R], options []AnimatorBuilderOption) *animatorImpl[R] {
	s := settings{maxDistance: math32.Inf(1)}
	for _, option := range options {
		option(&s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a := &animatorImpl[R]{
		mu:             &sync.Mutex{},
		group:          group,
		maxDistanceSqr: s.maxDistance * s.maxDistance,
		profiles:       append([]Profile(nil), s.profiles...),
		defaultProfile: def,
		rnd:            s.rnd,
		byID:           make(map[uint64]R),
		newRecord:      newRecord,
		step:           step,
	}
	return a
}

func (a *animatorImpl[R]) Group() *instance.Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.group
}

func (a *animatorImpl[R]) SetGroup(g *instance.Group) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.group = g
	a.records = a.records[:0]
	a.ids = a.ids[:0]
}

func (a *animatorImpl[R]) MaxDistance() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return math32.Sqrt(a.maxDistanceSqr)
}

func (a *animatorImpl[R]) SetMaxDistance(d float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.maxDistanceSqr = d * d
}

func (a *animatorImpl[R]) Profile(objectID int) (Profile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if objectID < 0 || objectID >= len(a.profiles) {
		return Profile{}, false
	}
	return a.profiles[objectID], true
}

func (a *animatorImpl[R]) SetProfile(objectID int, p Profile) {
	if objectID < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for len(a.profiles) <= objectID {
		a.profiles = append(a.profiles, a.defaultProfile)
	}
	a.profiles[objectID] = p
}

func (a *animatorImpl[R]) Profiles() []Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Profile(nil), a.profiles...)
}

func (a *animatorImpl[R]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = a.records[:0]
	a.ids = a.ids[:0]
}

func (a *animatorImpl[R]) Update(deltaTime float32, view camera.View) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.group == nil || view == nil {
		return
	}

	instances := a.group.Instances()
	a.align(instances)
	a.syncProfiles(a.group.ObjectCount())

	eye := view.EyePosition()
	for i, inst := range instances {
		if inst.ObjectID < 0 || inst.ObjectID >= len(a.profiles) {
			continue
		}
		if common.DistanceSqr(eye, inst.Position()) > a.maxDistanceSqr {
			continue
		}
		p := a.profiles[inst.ObjectID]
		if !p.Enabled() {
			continue
		}
		a.step(a.rnd, inst, p, &a.records[i], deltaTime)
	}
}

// align makes records[i] belong to instances[i]. Records of instances still in the group are
// carried over, new instances get a fresh record.
func (a *animatorImpl[R]) align(instances []*instance.Instance) {
	if len(a.ids) == len(instances) {
		aligned := true
		for i, inst := range instances {
			if a.ids[i] != inst.ID() {
				aligned = false
				break
			}
		}
		if aligned {
			return
		}
	}

	clear(a.byID)
	for i, id := range a.ids {
		a.byID[id] = a.records[i]
	}

	records := make([]R, len(instances))
	ids := make([]uint64, len(instances))
	var carried int
	for i, inst := range instances {
		ids[i] = inst.ID()
		if rec, ok := a.byID[inst.ID()]; ok {
			records[i] = rec
			carried++
			continue
		}
		records[i] = a.newRecord(inst)
	}
	a.records = records
	a.ids = ids

	common.Logger().Debug("animator records realigned", "instances", len(instances), "carried", carried)
}

func (a *animatorImpl[R]) syncProfiles(n int) {
	if len(a.profiles) == n {
		return
	}
	if len(a.profiles) > n {
		a.profiles = a.profiles[:n]
		return
	}
	for len(a.profiles) < n {
		a.profiles = append(a.profiles, a.defaultProfile)
	}
}

// Package brush implements the placement and editing operations applied to an instance group
// under a cursor. Each brush is a plain value; Apply mutates the group and reports how many
// instances were touched. Picking the cursor hit is left to the caller.
package brush

import (
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Hit is the cursor position on a surface.
type Hit = common.Hit

// Distribution maps a position inside the brush to a weight. t is 1 at the brush centre and 0 at
// its rim.
type Distribution func(t float32) float32

// Constant weighs every position inside the brush equally.
func Constant(float32) float32 { return 1 }

// Linear falls off linearly from the centre to the rim.
func Linear(t float32) float32 { return t }

// Smooth falls off along a smoothstep curve from the centre to the rim.
func Smooth(t float32) float32 {
	t = common.Clamp01(t)
	return t * t * (3 - 2*t)
}

// Brush is one of the operations in this package: Insert, MultiInsert, Erase, Colorize, Scale
// or Scatter.
type Brush interface {
	// Name returns the brush name.
	Name() string

	// Apply runs the brush once at hit.
	//
	// Parameters:
	//   - g: the group to edit
	//   - hit: the cursor hit
	//
	// Returns:
	//   - int: the number of instances added, removed or modified
	Apply(g *instance.Group, hit Hit) int

	brush()
}

// Falloff holds the radius and strength settings shared by the distribution brushes.
type Falloff struct {
	Radius       float32
	Strength     float32
	Distribution Distribution
}

// DefaultFalloff returns a 5 unit radius at half strength with a constant distribution.
func DefaultFalloff() Falloff {
	return Falloff{Radius: 5, Strength: 0.5, Distribution: Constant}
}

// Weight returns how strongly the brush affects an instance at position, in [0, 1].
//
// Parameters:
//   - cursor: the brush centre
//   - position: the instance position
//
// Returns:
//   - float32: the clamped strength
func (f Falloff) Weight(cursor, position mgl32.Vec3) float32 {
	return Strength(cursor, position, f.Radius, f.Strength, f.Distribution)
}

// Strength evaluates distribution at the instance's normalized distance from the cursor and
// scales it by strength. A nil distribution is treated as Constant.
//
// Parameters:
//   - cursor: the brush centre
//   - position: the instance position
//   - radius: the brush radius
//   - strength: the brush strength
//   - distribution: the falloff curve
//
// Returns:
//   - float32: the result clamped to [0, 1]
func Strength(cursor, position mgl32.Vec3, radius, strength float32, distribution Distribution) float32 {
	if distribution == nil {
		distribution = Constant
	}
	radius = math32.Max(radius, common.Epsilon)
	normalized := position.Sub(cursor).Len() / radius
	return common.Clamp01(distribution(1-normalized) * strength)
}

// SelectedInstances returns the instances within radius of cursor, in group order.
//
// Parameters:
//   - g: the group
//   - cursor: the brush centre
//   - radius: the brush radius
//
// Returns:
//   - []*instance.Instance: the selection
func SelectedInstances(g *instance.Group, cursor mgl32.Vec3, radius float32) []*instance.Instance {
	var selected []*instance.Instance
	radiusSqr := radius * radius
	for _, inst := range g.Instances() {
		if common.DistanceSqr(inst.Position(), cursor) <= radiusSqr {
			selected = append(selected, inst)
		}
	}
	return selected
}

// modifySelected calls fn for every instance within f.Radius of cursor with its strength.
func (f Falloff) modifySelected(g *instance.Group, cursor mgl32.Vec3, fn func(inst *instance.Instance, strength float32)) int {
	selected := SelectedInstances(g, cursor, f.Radius)
	for _, inst := range selected {
		fn(inst, f.Weight(cursor, inst.Position()))
	}
	return len(selected)
}

func randOrDefault(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

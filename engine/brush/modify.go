package brush

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Erase removes every instance within Radius of the cursor, destroying their references.
type Erase struct {
	Radius float32
}

var _ Brush = &Erase{}

// NewErase returns an Erase brush with a 5 unit radius.
func NewErase() *Erase {
	return &Erase{Radius: 5}
}

func (b *Erase) Name() string { return "Erase" }
func (b *Erase) brush()       {}

func (b *Erase) Apply(g *instance.Group, hit Hit) int {
	var removed int
	for _, inst := range SelectedInstances(g, hit.Point, b.Radius) {
		if err := g.Remove(inst, true); err == nil {
			removed++
		}
	}
	return removed
}

// ColorizeAction selects how Colorize changes instance colors.
type ColorizeAction int

const (
	// ColorizeSet assigns Min.
	ColorizeSet ColorizeAction = iota
	// ColorizeSetRange assigns a random blend between Min and Max.
	ColorizeSetRange
	// ColorizeSetNoiseRange draws each channel independently between Min and Max.
	ColorizeSetNoiseRange
	// ColorizeAdd blends the current color toward Min by the brush strength.
	ColorizeAdd
)

// Colorize recolors the instances under the brush.
type Colorize struct {
	Falloff
	Action   ColorizeAction
	Min, Max common.Color
	Rand     *rand.Rand
}

var _ Brush = &Colorize{}

// NewColorize returns a Colorize brush that sets instances to white.
func NewColorize() *Colorize {
	return &Colorize{Falloff: DefaultFalloff(), Min: common.White, Max: common.White}
}

func (b *Colorize) Name() string { return "Colorize" }
func (b *Colorize) brush()       {}

func (b *Colorize) Apply(g *instance.Group, hit Hit) int {
	b.Rand = randOrDefault(b.Rand)
	r := b.Rand
	return b.modifySelected(g, hit.Point, func(inst *instance.Instance, strength float32) {
		switch b.Action {
		case ColorizeSet:
			inst.Color = b.Min
		case ColorizeSetRange:
			inst.Color = b.Min.Lerp(b.Max, r.Float32())
		case ColorizeSetNoiseRange:
			inst.Color = common.Color{
				R: common.RandomRange(r, b.Min.R, b.Max.R),
				G: common.RandomRange(r, b.Min.G, b.Max.G),
				B: common.RandomRange(r, b.Min.B, b.Max.B),
				A: common.RandomRange(r, b.Min.A, b.Max.A),
			}
		case ColorizeAdd:
			inst.Color = inst.Color.Lerp(b.Min, strength)
		}
	})
}

// ScaleAction selects how Scale changes instance scales.
type ScaleAction int

const (
	// ScaleSet assigns a uniform scale of Min.
	ScaleSet ScaleAction = iota
	// ScaleSetRange assigns a random uniform scale between Min and Max.
	ScaleSetRange
	// ScaleShrink multiplies the scale by 1 - strength/2.
	ScaleShrink
	// ScaleGrow multiplies the scale by 1 + strength/2.
	ScaleGrow
)

// Scale resizes the instances under the brush.
type Scale struct {
	Falloff
	Action   ScaleAction
	Min, Max float32
	Rand     *rand.Rand
}

var _ Brush = &Scale{}

// NewScale returns a Scale brush that sets instances to unit scale.
func NewScale() *Scale {
	return &Scale{Falloff: DefaultFalloff(), Min: 1, Max: 1}
}

func (b *Scale) Name() string { return "Scale" }
func (b *Scale) brush()       {}

func (b *Scale) Apply(g *instance.Group, hit Hit) int {
	b.Rand = randOrDefault(b.Rand)
	r := b.Rand
	return b.modifySelected(g, hit.Point, func(inst *instance.Instance, strength float32) {
		switch b.Action {
		case ScaleSet:
			inst.SetScale(mgl32.Vec3{b.Min, b.Min, b.Min})
		case ScaleSetRange:
			s := common.RandomRange(r, b.Min, b.Max)
			inst.SetScale(mgl32.Vec3{s, s, s})
		case ScaleShrink:
			inst.SetScale(inst.Scale().Mul(1 - strength/2))
		case ScaleGrow:
			inst.SetScale(inst.Scale().Mul(1 + strength/2))
		}
	})
}

// Scatter pushes every instance under the brush away from its nearest selected neighbour by
// Amount scaled with the brush strength.
type Scatter struct {
	Falloff
	Amount float32
}

var _ Brush = &Scatter{}

// NewScatter returns a Scatter brush moving instances up to one unit per application.
func NewScatter() *Scatter {
	return &Scatter{Falloff: DefaultFalloff(), Amount: 1}
}

func (b *Scatter) Name() string { return "Scatter" }
func (b *Scatter) brush()       {}

// Apply moves the selection in group order. Instances moved earlier in the pass are seen at
// their new positions by later ones.
func (b *Scatter) Apply(g *instance.Group, hit Hit) int {
	selected := SelectedInstances(g, hit.Point, b.Radius)
	if len(selected) <= 1 {
		return 0
	}

	for i, inst := range selected {
		nearest := 0
		nearestDist := math32.Inf(1)
		for j, other := range selected {
			if j == i {
				continue
			}
			if d := common.DistanceSqr(inst.Position(), other.Position()); d < nearestDist {
				nearest, nearestDist = j, d
			}
		}

		direction := inst.Position().Sub(selected[nearest].Position())
		if direction.Len() <= common.Epsilon {
			continue
		}
		move := direction.Normalize().Mul(b.Weight(hit.Point, inst.Position()) * b.Amount)
		inst.SetPosition(inst.Position().Add(move))
	}
	return len(selected)
}

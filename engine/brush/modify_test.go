package brush

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErase(t *testing.T) {
	g := groupAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{10, 0, 0})
	keep := g.Instances()[2]

	b := NewErase()
	assert.Equal(t, 2, b.Apply(g, at(0, 0)))
	require.Equal(t, 1, g.Count())
	assert.Same(t, keep, g.Instances()[0])
	assert.Zero(t, b.Apply(g, at(0, 0)))
}

func TestColorize(t *testing.T) {
	red := common.Color{R: 1, A: 1}
	blue := common.Color{B: 1, A: 1}

	tests := []struct {
		name   string
		action ColorizeAction
		check  func(t *testing.T, c common.Color)
	}{
		{"set", ColorizeSet, func(t *testing.T, c common.Color) {
			assert.Equal(t, red, c)
		}},
		{"set range", ColorizeSetRange, func(t *testing.T, c common.Color) {
			assert.InDelta(t, 1, c.R+c.B, tol, "a blend between red and blue")
			assert.Zero(t, c.G)
		}},
		{"set noise range", ColorizeSetNoiseRange, func(t *testing.T, c common.Color) {
			assert.True(t, c.R >= 0 && c.R <= 1)
			assert.True(t, c.B >= 0 && c.B <= 1)
			assert.Equal(t, float32(1), c.A)
		}},
		{"add", ColorizeAdd, func(t *testing.T, c common.Color) {
			// white blended halfway toward red at strength 0.5
			assert.InDelta(t, 1, c.R, tol)
			assert.InDelta(t, 0.5, c.G, tol)
			assert.InDelta(t, 0.5, c.B, tol)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := groupAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{20, 0, 0})
			b := NewColorize()
			b.Rand = seeded()
			b.Action = tt.action
			b.Min, b.Max = red, blue

			assert.Equal(t, 1, b.Apply(g, at(0, 0)))
			tt.check(t, g.Instances()[0].Color)
			assert.Equal(t, common.White, g.Instances()[1].Color)
		})
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		name   string
		action ScaleAction
		want   func(s float32) bool
	}{
		{"set", ScaleSet, func(s float32) bool { return s == 2 }},
		{"set range", ScaleSetRange, func(s float32) bool { return s >= 2 && s < 4 }},
		{"shrink", ScaleShrink, func(s float32) bool { return mgl32.FloatEqualThreshold(s, 0.75, tol) }},
		{"grow", ScaleGrow, func(s float32) bool { return mgl32.FloatEqualThreshold(s, 1.25, tol) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := groupAt(mgl32.Vec3{0, 0, 0})
			b := NewScale()
			b.Rand = seeded()
			b.Action = tt.action
			b.Min, b.Max = 2, 4

			require.Equal(t, 1, b.Apply(g, at(0, 0)))
			s := g.Instances()[0].Scale()
			assert.True(t, tt.want(s.X()), "scale %v", s)
			assert.Equal(t, s.X(), s.Z())
			assert.True(t, g.Instances()[0].Dirty())
		})
	}
}

func TestScatterPushesApart(t *testing.T) {
	g := groupAt(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0})
	b := NewScatter()
	b.Strength = 1

	assert.Equal(t, 2, b.Apply(g, at(0, 0)))
	left := g.Instances()[0].Position()
	right := g.Instances()[1].Position()
	assert.InDelta(t, -2, left.X(), tol)
	assert.Greater(t, right.X(), float32(1))
}

func TestScatterNeedsTwoInstances(t *testing.T) {
	g := groupAt(mgl32.Vec3{1, 0, 0})
	assert.Zero(t, NewScatter().Apply(g, at(0, 0)))
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, g.Instances()[0].Position())
}

func TestBrushNames(t *testing.T) {
	brushes := []Brush{NewInsert(0), NewMultiInsert(), NewErase(), NewColorize(), NewScale(), NewScatter()}
	var names []string
	for _, b := range brushes {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"Insert", "MultiInsert", "Erase", "Colorize", "Scale", "Scatter"}, names)
}

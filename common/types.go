// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA color with float32 channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	// White is opaque white, the default instance tint.
	White = Color{1, 1, 1, 1}

	// Black is opaque black.
	Black = Color{0, 0, 0, 1}
)

// WithAlpha returns a copy of c with the alpha channel replaced.
//
// Parameters:
//   - a: the new alpha value
//
// Returns:
//   - Color: the modified color
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Lerp linearly interpolates between c and to by t. t is clamped to [0, 1].
//
// Parameters:
//   - to: the target color
//   - t: interpolation factor
//
// Returns:
//   - Color: the interpolated color
func (c Color) Lerp(to Color, t float32) Color {
	t = Clamp01(t)
	return Color{
		R: c.R + (to.R-c.R)*t,
		G: c.G + (to.G-c.G)*t,
		B: c.B + (to.B-c.B)*t,
		A: c.A + (to.A-c.A)*t,
	}
}

// Vec4 returns the color as an RGBA vector.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// RGBA8 converts the color to 8-bit channels, clamping each channel to [0, 1] first.
//
// Returns:
//   - r, g, b, a: 8-bit channel values
func (c Color) RGBA8() (r, g, b, a uint8) {
	to8 := func(v float32) uint8 { return uint8(Clamp01(v)*255 + 0.5) }
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

// Hit describes a surface point under a cursor or probe ray.
type Hit struct {
	// Point is the world-space position of the hit.
	Point mgl32.Vec3
	// Normal is the unit surface normal at the hit.
	Normal mgl32.Vec3
}

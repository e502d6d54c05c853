package renderer

import (
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/profiler"
)

// InstanceRendererOption is a functional option applied to an InstanceRenderer during construction via NewInstanceRenderer.
type InstanceRendererOption func(*instanceRenderer)

// WithCulling enables or disables frustum culling. Culling is off by default.
//
// Parameters:
//   - enabled: true to reject instances whose bounding sphere is outside the view frustum
//
// Returns:
//   - InstanceRendererOption: a function that applies the culling option
func WithCulling(enabled bool) InstanceRendererOption {
	return func(r *instanceRenderer) {
		r.culling = enabled
	}
}

// WithFadeDistance sets the width of the band before each LOD threshold in which the next LOD
// is cross-faded in. Defaults to DefaultFadeDistance. Values at or below common.FadeEpsilon disable fading.
//
// Parameters:
//   - d: the fade band width in world units
//
// Returns:
//   - InstanceRendererOption: a function that applies the fade distance option
func WithFadeDistance(d float32) InstanceRendererOption {
	return func(r *instanceRenderer) {
		r.fadeDistance = d
	}
}

// WithObjects sets the mesh objects, indexed by ObjectID.
//
// Parameters:
//   - objects: one object per object type
//
// Returns:
//   - InstanceRendererOption: a function that applies the objects option
func WithObjects(objects ...*mesh.Object) InstanceRendererOption {
	return func(r *instanceRenderer) {
		r.objects = objects
	}
}

// WithWorkers sets how many workers classify instances in parallel. The default of 1 keeps
// classification on the calling goroutine. Submission order is the same either way.
//
// Parameters:
//   - n: the worker count, values below 1 are treated as 1
//
// Returns:
//   - InstanceRendererOption: a function that applies the workers option
func WithWorkers(n int) InstanceRendererOption {
	return func(r *instanceRenderer) {
		r.workers = max(n, 1)
	}
}

// WithStats accumulates every Render call's counters into stats.
//
// Parameters:
//   - stats: the accumulator, typically owned by a profiler
//
// Returns:
//   - InstanceRendererOption: a function that applies the stats option
func WithStats(stats *profiler.FrameStats) InstanceRendererOption {
	return func(r *instanceRenderer) {
		r.stats = stats
	}
}

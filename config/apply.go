package config

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine"
	"github.com/Carmen-Shannon/oxy-instancer/engine/animator"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/reference"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Targets are the live components a Config is applied to. Nil fields are skipped.
type Targets struct {
	Engine     engine.Engine
	Group      *instance.Group
	Renderer   renderer.InstanceRenderer
	References *reference.Manager
	Skew       animator.Animator
	Sway       animator.Animator
}

// Apply pushes c into every non-nil target. Object names are only replaced when the config lists
// objects, so an empty config never wipes a group's types.
//
// Parameters:
//   - c: the config
//   - t: the components to update
func Apply(c *Config, t Targets) {
	if c == nil {
		return
	}
	if t.Engine != nil {
		ApplyEngine(c.Engine, t.Engine)
	}
	if t.Group != nil && len(c.Objects) > 0 {
		t.Group.SetObjectNames(c.ObjectNames())
	}
	if t.Renderer != nil {
		ApplyRenderer(c.Renderer, c.Objects, t.Renderer)
	}
	if t.References != nil {
		t.References.SetUseReferences(c.References.Enabled)
	}
	if t.Skew != nil {
		ApplyAnimator(c.Skew, t.Skew)
	}
	if t.Sway != nil {
		ApplyAnimator(c.Sway, t.Sway)
	}
	common.Logger().Info("config applied", slog.Int("objects", len(c.Objects)))
}

// ApplyEngine sets the tick rate and profiler state.
//
// Parameters:
//   - c: the engine settings
//   - e: the engine
func ApplyEngine(c EngineConfig, e engine.Engine) {
	e.SetTickRate(c.TickRate)
	if c.Profiling {
		e.EnableProfiler()
	} else {
		e.DisableProfiler()
	}
}

// ApplyRenderer sets culling, fade distance and worker count, then updates each configured object. Objects
// missing from the renderer are created empty. LOD entries edit the existing LODs in sorted
// order; extra entries grow the object with default LODs.
//
// Parameters:
//   - c: the renderer settings
//   - objects: the per-type settings indexed by ObjectID
//   - r: the renderer
func ApplyRenderer(c RendererConfig, objects []ObjectConfig, r renderer.InstanceRenderer) {
	r.SetCulling(c.Culling)
	fade := renderer.DefaultFadeDistance
	if c.FadeDistance != nil {
		fade = *c.FadeDistance
	}
	r.SetFadeDistance(fade)
	r.SetWorkers(c.Workers)

	for id, oc := range objects {
		obj, ok := r.Object(id)
		if !ok {
			obj = mesh.NewObject()
			r.SetObject(id, obj)
		}
		applyObject(oc, obj)
	}
}

func applyObject(c ObjectConfig, obj *mesh.Object) {
	obj.Hide = c.Hide
	if len(c.LODs) > obj.LODCount() {
		obj.SetLODCount(len(c.LODs))
	}
	// Edit in place first and sort once so entries map to the LODs as they were ordered.
	for i, lc := range c.LODs {
		lod, _ := obj.LOD(i)
		lod.Distance = common.Coalesce(lc.Distance, math32.Inf(1))
		lod.Billboard = lc.Billboard
		if lc.CastShadows != nil {
			lod.CastShadows = *lc.CastShadows
		}
		if lc.ReceiveShadows != nil {
			lod.ReceiveShadows = *lc.ReceiveShadows
		}
		applyBaseTransform(lc, lod)
	}
	obj.SortLODs()
}

// applyBaseTransform only touches values that differ, so reloading an unchanged file keeps the
// baked mesh.
func applyBaseTransform(c LODConfig, lod *mesh.LOD) {
	if !c.HasBaseTransform() {
		return
	}
	if c.BasePosition != nil {
		if p := mgl32.Vec3(*c.BasePosition); p != lod.BasePosition() {
			lod.SetBasePosition(p)
		}
	}
	if c.BaseRotation != nil {
		if q := common.EulerDegrees(mgl32.Vec3(*c.BaseRotation)); !q.ApproxEqual(lod.BaseRotation()) {
			lod.SetBaseRotation(q)
		}
	}
	if c.BaseScale != nil {
		if s := mgl32.Vec3(*c.BaseScale); s != lod.BaseScale() {
			lod.SetBaseScale(s)
		}
	}
	lod.SetModifyBaseMesh(true)
}

// ApplyAnimator sets the max distance and per-type profiles. Types without a configured profile
// keep their current one.
//
// Parameters:
//   - c: the animator settings
//   - a: the animator
func ApplyAnimator(c AnimatorConfig, a animator.Animator) {
	a.SetMaxDistance(common.Coalesce(c.MaxDistance, math32.Inf(1)))
	for id, p := range c.Profiles {
		a.SetProfile(id, p)
	}
}

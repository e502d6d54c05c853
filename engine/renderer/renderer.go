package renderer

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/profiler"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultFadeDistance is the LOD cross-fade band width used when none is configured.
const DefaultFadeDistance float32 = 1.0

// RenderStats reports what one Render call did.
type RenderStats = profiler.FrameStats

// instanceRenderer is the implementation of the InstanceRenderer interface.
type instanceRenderer struct {
	mu *sync.Mutex

	group   *instance.Group
	objects []*mesh.Object

	culling      bool
	fadeDistance float32

	workers int
	pool    worker.DynamicWorkerPool
	stats   *profiler.FrameStats

	// chunks is reused across frames by the parallel path.
	chunks []classifyChunk
	serial []drawDecision
}

// drawDecision is one LOD draw of one instance produced by classification.
type drawDecision struct {
	inst    *instance.Instance
	lod     *mesh.LOD
	opacity float32
}

type classifyChunk struct {
	draws []drawDecision
	stats RenderStats
}

// InstanceRenderer decides, once per frame, which LOD of which object each instance of a group
// is drawn with and at what opacity, then hands the resulting draws to a Submitter.
//
// Objects are indexed by instance ObjectID. Instances whose ObjectID has no object, or whose
// object is hidden, are skipped.
type InstanceRenderer interface {
	// Group returns the instance group being rendered.
	//
	// Returns:
	//   - *instance.Group: the group, or nil
	Group() *instance.Group

	// SetGroup replaces the rendered group and resizes the object list to its type count.
	//
	// Parameters:
	//   - g: the group to render
	SetGroup(g *instance.Group)

	// Objects returns the mesh objects indexed by ObjectID.
	//
	// Returns:
	//   - []*mesh.Object: the object list, entries may be nil
	Objects() []*mesh.Object

	// Object returns the mesh object for an ObjectID.
	//
	// Parameters:
	//   - id: the ObjectID
	//
	// Returns:
	//   - *mesh.Object: the object
	//   - bool: false if id is out of range or the slot is empty
	Object(id int) (*mesh.Object, bool)

	// SetObject assigns the mesh object for an ObjectID, growing the list if needed.
	//
	// Parameters:
	//   - id: the ObjectID
	//   - obj: the mesh object
	SetObject(id int, obj *mesh.Object)

	// SyncObjects resizes the object list to the group's type count. New slots get an empty
	// Object, surplus slots are dropped.
	SyncObjects()

	// Culling reports whether frustum culling is enabled.
	Culling() bool

	// SetCulling enables or disables frustum culling.
	SetCulling(enabled bool)

	// FadeDistance returns the LOD cross-fade band width.
	FadeDistance() float32

	// SetFadeDistance sets the LOD cross-fade band width. Values at or below FadeEpsilon disable fading.
	SetFadeDistance(d float32)

	// Workers returns the number of workers classifying instances in parallel.
	Workers() int

	// SetWorkers changes the worker count. The current pool is stopped and, for more than one
	// worker, replaced by a pool of the new size.
	//
	// Parameters:
	//   - n: the worker count, values below 1 are treated as 1
	SetWorkers(n int)

	// Render classifies every instance of the group against view and submits one DrawCommand per
	// drawn submesh to sub, in group order.
	//
	// Parameters:
	//   - view: the eye position and frustum for this frame
	//   - sub: the receiver of draw commands
	//
	// Returns:
	//   - RenderStats: counters for this call
	Render(view camera.View, sub Submitter) RenderStats
}

var _ InstanceRenderer = &instanceRenderer{}

// NewInstanceRenderer creates a renderer for group.
//
// Parameters:
//   - group: the instance group to render, may be nil and set later
//   - options: functional options
//
// Returns:
//   - InstanceRenderer: the renderer
func NewInstanceRenderer(group *instance.Group, options ...InstanceRendererOption) InstanceRenderer {
	r := &instanceRenderer{
		mu:           &sync.Mutex{},
		group:        group,
		fadeDistance: DefaultFadeDistance,
		workers:      1,
	}
	for _, option := range options {
		option(r)
	}

	r.resizePool()
	if r.group != nil {
		r.syncObjects()
	}
	return r
}

func (r *instanceRenderer) Group() *instance.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.group
}

func (r *instanceRenderer) SetGroup(g *instance.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.group = g
	if g != nil {
		r.syncObjects()
	}
}

func (r *instanceRenderer) Objects() []*mesh.Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects
}

func (r *instanceRenderer) Object(id int) (*mesh.Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.object(id)
	return obj, obj != nil
}

func (r *instanceRenderer) SetObject(id int, obj *mesh.Object) {
	if id < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= len(r.objects) {
		grown := make([]*mesh.Object, id+1)
		copy(grown, r.objects)
		r.objects = grown
	}
	r.objects[id] = obj
}

func (r *instanceRenderer) SyncObjects() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncObjects()
}

func (r *instanceRenderer) Culling() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.culling
}

func (r *instanceRenderer) SetCulling(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.culling = enabled
}

func (r *instanceRenderer) FadeDistance() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fadeDistance
}

func (r *instanceRenderer) SetFadeDistance(d float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fadeDistance = d
}

func (r *instanceRenderer) Workers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workers
}

func (r *instanceRenderer) SetWorkers(n int) {
	n = max(n, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == r.workers {
		return
	}
	r.workers = n
	r.resizePool()
}

// resizePool replaces the pool to match r.workers. Render holds r.mu for the whole frame, so no
// task is in flight while the old pool stops.
func (r *instanceRenderer) resizePool() {
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
	if r.workers > 1 {
		r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	}
	r.chunks = nil
}

func (r *instanceRenderer) Render(view camera.View, sub Submitter) RenderStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats RenderStats
	if r.group == nil || view == nil {
		return stats
	}

	instances := r.group.Instances()
	eye := view.EyePosition()
	frustum := view.Frustum()

	// Bakes and matrix caches are lazy and not safe to fill concurrently, and a matrix recompute
	// may push to a reference, so both happen here on the calling goroutine.
	for _, obj := range r.objects {
		if obj != nil && !obj.Hide {
			obj.PrepareRender()
		}
	}
	for _, inst := range instances {
		inst.Matrix()
	}

	if r.pool == nil || len(instances) < 2*r.workers {
		r.serial = r.serial[:0]
		for _, inst := range instances {
			r.serial = r.classify(inst, eye, &frustum, r.serial, &stats)
		}
		r.submit(r.serial, eye, sub, &stats)
	} else {
		r.renderParallel(instances, eye, &frustum, sub, &stats)
	}

	if r.stats != nil {
		r.stats.Add(stats)
	}
	common.Logger().Debug("instance render",
		"instances", stats.Instances,
		"draws", stats.Draws,
		"culled", stats.Culled,
	)
	return stats
}

// renderParallel classifies contiguous chunks of the group on the worker pool and submits the
// results in chunk order so the draw order matches the serial path.
func (r *instanceRenderer) renderParallel(instances []*instance.Instance, eye mgl32.Vec3, frustum *common.Frustum, sub Submitter, stats *RenderStats) {
	n := r.workers
	size := (len(instances) + n - 1) / n
	if cap(r.chunks) < n {
		r.chunks = make([]classifyChunk, n)
	}
	r.chunks = r.chunks[:n]

	// A WaitGroup is the per-frame barrier; pool.Wait blocks until workers idle out.
	var wg sync.WaitGroup
	for c := 0; c < n; c++ {
		lo := c * size
		hi := min(lo+size, len(instances))
		chunk := &r.chunks[c]
		chunk.draws = chunk.draws[:0]
		chunk.stats = RenderStats{}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		part := instances[lo:hi]
		r.pool.SubmitTask(worker.Task{
			ID: c,
			Do: func() (any, error) {
				defer wg.Done()
				for _, inst := range part {
					chunk.draws = r.classify(inst, eye, frustum, chunk.draws, &chunk.stats)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for c := range r.chunks {
		stats.Add(r.chunks[c].stats)
		r.submit(r.chunks[c].draws, eye, sub, stats)
	}
}

// classify appends the LOD draws for one instance to out. It only reads shared state.
func (r *instanceRenderer) classify(inst *instance.Instance, eye mgl32.Vec3, frustum *common.Frustum, out []drawDecision, stats *RenderStats) []drawDecision {
	stats.Instances++

	obj := r.object(inst.ObjectID)
	if obj == nil || obj.Hide {
		stats.Skipped++
		return out
	}

	distanceSqr := common.DistanceSqr(inst.Position(), eye)
	index := obj.SelectLOD(distanceSqr)
	if index < 0 {
		stats.OutOfRange++
		return out
	}
	lods := obj.LODs()
	lod := lods[index]

	if r.culling && !lod.IsVisible(inst, frustum) {
		stats.Culled++
		return out
	}

	if r.fadeDistance <= common.FadeEpsilon {
		return append(out, drawDecision{inst: inst, lod: lod, opacity: 1})
	}

	edge := lod.Distance - r.fadeDistance
	if distanceSqr <= edge*edge {
		return append(out, drawDecision{inst: inst, lod: lod, opacity: 1})
	}

	opacity := common.Clamp01((math32.Sqrt(distanceSqr) - lod.Distance) / -r.fadeDistance)
	stats.Faded++
	if index+1 < len(lods) {
		out = append(out, drawDecision{inst: inst, lod: lods[index+1], opacity: 1 - opacity})
	}
	return append(out, drawDecision{inst: inst, lod: lod, opacity: opacity})
}

// submit turns draw decisions into one DrawCommand per drawable submesh.
func (r *instanceRenderer) submit(draws []drawDecision, eye mgl32.Vec3, sub Submitter, stats *RenderStats) {
	for _, d := range draws {
		m, ok := d.lod.RenderMesh()
		if !ok {
			continue
		}

		matrix := d.inst.Matrix()
		if d.lod.Billboard {
			matrix = d.inst.BillboardMatrix(eye)
		}
		color := d.inst.Color.WithAlpha(d.opacity)

		for s := range d.lod.SubmeshDrawCount() {
			mat := d.lod.MaterialFor(s, d.opacity)
			if mat == nil {
				continue
			}
			sub.Submit(DrawCommand{
				Mesh:           m,
				Submesh:        s,
				Material:       mat,
				Matrix:         matrix,
				Color:          color,
				Opacity:        d.opacity,
				CastShadows:    d.lod.CastShadows,
				ReceiveShadows: d.lod.ReceiveShadows,
			})
			stats.Draws++
		}
	}
}

func (r *instanceRenderer) object(id int) *mesh.Object {
	if id < 0 || id >= len(r.objects) {
		return nil
	}
	return r.objects[id]
}

func (r *instanceRenderer) syncObjects() {
	n := r.group.ObjectCount()
	if len(r.objects) == n {
		return
	}
	resized := make([]*mesh.Object, n)
	copy(resized, r.objects)
	for i := len(r.objects); i < n; i++ {
		resized[i] = mesh.NewObject()
	}
	r.objects = resized
}

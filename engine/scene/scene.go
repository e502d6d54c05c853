package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-instancer/engine/animator"
	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/instance"
	"github.com/Carmen-Shannon/oxy-instancer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-instancer/engine/reference"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer"
)

// Scene drives one instance group through a frame: the camera is updated, the animators step,
// edits made through reference transforms are pulled back and finally every renderer submits
// its draws. Scenes can be toggled with the Active flag; an inactive scene's Tick does nothing.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether Tick does any work.
	Active() bool

	// SetActive sets whether Tick does any work.
	SetActive(active bool)

	// Group returns the instance group driven by the scene.
	//
	// Returns:
	//   - *instance.Group: the group
	Group() *instance.Group

	// Camera returns the scene's camera, or nil when the scene renders from a fixed view.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera. A non-nil camera takes precedence over the view set
	// with SetView.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// View returns the view used for the next frame: the camera when one is set, otherwise the
	// fixed view.
	//
	// Returns:
	//   - camera.View: the view, or nil if neither is set
	View() camera.View

	// SetView sets the fixed view used when the scene has no camera.
	//
	// Parameters:
	//   - v: the view
	SetView(v camera.View)

	// References returns the reference manager, or nil if the scene has none.
	References() *reference.Manager

	// Animators returns a copy of the registered animators in update order.
	Animators() []animator.Animator

	// AddAnimator appends an animator. Its group is set to the scene's group.
	//
	// Parameters:
	//   - a: the animator to add
	AddAnimator(a animator.Animator)

	// Renderers returns a copy of the registered renderers in draw order.
	Renderers() []renderer.InstanceRenderer

	// AddRenderer appends a renderer. Its group is set to the scene's group.
	//
	// Parameters:
	//   - r: the renderer to add
	AddRenderer(r renderer.InstanceRenderer)

	// Submitter returns the receiver of draw commands.
	Submitter() renderer.Submitter

	// SetSubmitter replaces the receiver of draw commands. Nil discards draws.
	//
	// Parameters:
	//   - sub: the submitter
	SetSubmitter(sub renderer.Submitter)

	// Tick advances the scene by one frame.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - profiler.FrameStats: the combined render counters of this frame
	Tick(deltaTime float32) profiler.FrameStats
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	group *instance.Group
	cam   camera.Camera
	view  camera.View

	references *reference.Manager
	animators  []animator.Animator
	renderers  []renderer.InstanceRenderer
	submitter  renderer.Submitter
}

var _ Scene = &scene{}

var discard = renderer.SubmitterFunc(func(renderer.DrawCommand) {})

// NewScene creates an active Scene for group. Panics if group is nil.
//
// Parameters:
//   - name: the name of the scene
//   - group: the instance group to drive
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, group *instance.Group, options ...SceneBuilderOption) Scene {
	if group == nil {
		panic("scene: NewScene requires a non-nil Group")
	}

	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: true,
		group:  group,
	}
	for _, option := range options {
		option(s)
	}

	for _, a := range s.animators {
		a.SetGroup(group)
	}
	for _, r := range s.renderers {
		r.SetGroup(group)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Group() *instance.Group {
	return s.group
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) View() camera.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentView()
}

func (s *scene) SetView(v camera.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

func (s *scene) References() *reference.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.references
}

func (s *scene) Animators() []animator.Animator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]animator.Animator(nil), s.animators...)
}

func (s *scene) AddAnimator(a animator.Animator) {
	if a == nil {
		return
	}
	a.SetGroup(s.group)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animators = append(s.animators, a)
}

func (s *scene) Renderers() []renderer.InstanceRenderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]renderer.InstanceRenderer(nil), s.renderers...)
}

func (s *scene) AddRenderer(r renderer.InstanceRenderer) {
	if r == nil {
		return
	}
	r.SetGroup(s.group)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, r)
}

func (s *scene) Submitter() renderer.Submitter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitter
}

func (s *scene) SetSubmitter(sub renderer.Submitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitter = sub
}

// Tick runs one frame. The lock is held for the whole frame so configuration changes land
// between frames, never inside one.
func (s *scene) Tick(deltaTime float32) profiler.FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats profiler.FrameStats
	if !s.active {
		return stats
	}

	if s.cam != nil {
		s.cam.Update()
	}
	view := s.currentView()

	for _, a := range s.animators {
		a.Update(deltaTime, view)
	}

	if s.references != nil {
		s.references.Sync()
	}

	sub := s.submitter
	if sub == nil {
		sub = discard
	}
	for _, r := range s.renderers {
		stats.Add(r.Render(view, sub))
	}
	return stats
}

// currentView must be called with the lock held.
func (s *scene) currentView() camera.View {
	if s.cam != nil {
		return s.cam
	}
	return s.view
}

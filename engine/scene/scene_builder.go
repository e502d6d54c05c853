package scene

import (
	"github.com/Carmen-Shannon/oxy-instancer/engine/animator"
	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/reference"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene starts active. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCamera sets the camera the scene updates and renders from each frame.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithView sets a fixed view, used when no camera is set.
//
// Parameters:
//   - v: the view
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithView(v camera.View) SceneBuilderOption {
	return func(s *scene) {
		s.view = v
	}
}

// WithAnimators registers animators in update order. Each is pointed at the scene's group.
//
// Parameters:
//   - animators: the animators to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimators(animators ...animator.Animator) SceneBuilderOption {
	return func(s *scene) {
		for _, a := range animators {
			if a != nil {
				s.animators = append(s.animators, a)
			}
		}
	}
}

// WithRenderers registers renderers in draw order. Each is pointed at the scene's group.
//
// Parameters:
//   - renderers: the renderers to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRenderers(renderers ...renderer.InstanceRenderer) SceneBuilderOption {
	return func(s *scene) {
		for _, r := range renderers {
			if r != nil {
				s.renderers = append(s.renderers, r)
			}
		}
	}
}

// WithSubmitter sets the receiver of draw commands.
//
// Parameters:
//   - sub: the submitter
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSubmitter(sub renderer.Submitter) SceneBuilderOption {
	return func(s *scene) {
		s.submitter = sub
	}
}

// WithReferences attaches a reference manager whose transforms are synced every frame. The
// manager should own the same group as the scene.
//
// Parameters:
//   - m: the reference manager
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithReferences(m *reference.Manager) SceneBuilderOption {
	return func(s *scene) {
		s.references = m
	}
}

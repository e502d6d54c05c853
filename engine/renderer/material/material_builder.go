package material

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/bind_group_provider"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the color the instance tint is multiplied with.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithBlendMode is an option builder that sets how the material composites.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend mode option to a material
func WithBlendMode(mode BlendMode) MaterialBuilderOption {
	return func(m *material) {
		m.blendMode = mode
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBindGroupProvider is an option builder that sets the bind group provider for the material.
//
// Parameters:
//   - provider: the bind group provider containing GPU resources for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the bind group provider option to a material
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}

// WithPayload is an option builder that attaches a backend-specific value to the material.
//
// Parameters:
//   - payload: the value to attach
//
// Returns:
//   - MaterialBuilderOption: a function that applies the payload option to a material
func WithPayload(payload any) MaterialBuilderOption {
	return func(m *material) {
		m.payload = payload
	}
}

package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints overrides the vertex and fragment entry point names. An empty fragment entry
// point builds a depth-only pipeline.
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point, or ""
//
// Returns:
//   - PipelineBuilderOption: functional option to set the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntry = vertex
		p.fragmentEntry = fragment
	}
}

// WithDepthWriteEnabled toggles depth writes. Fade pipelines turn them off so a LOD fading out does
// not hide the LOD fading in behind it.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithBlendEnabled toggles alpha blending with the pipeline's blend state.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithShadowCaster configures a depth-only pipeline for rendering shadow casters: no fragment
// stage, no face culling so single sided cards still cast, and a slope-scaled depth bias against
// acne.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: functional option for shadow casters
func WithShadowCaster(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentEntry = ""
		p.cullMode = wgpu.CullModeNone
		p.blendEnabled = false
		p.depthWriteEnabled = true
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

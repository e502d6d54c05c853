package pipeline

import (
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Default WGSL entry points.
const (
	DefaultVertexEntryPoint   = "vs_main"
	DefaultFragmentEntryPoint = "fs_main"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render state needed to create a wgpu render pipeline and the created pipeline once a backend builds it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, matched against material.Material.PipelineKey
	pipelineKey string

	// source is the WGSL module holding both entry points
	source        string
	vertexEntry   string
	fragmentEntry string

	// renderPipeline is set by the submission backend after creation
	renderPipeline *wgpu.RenderPipeline

	// The following properties are used to configure the pipeline during creation and can be toggled/set with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a GPU render pipeline: its WGSL source, entry points and depth, blend, cull
// and topology settings. A submission backend creates the wgpu object from it and stores it back
// with SetRenderPipeline.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Source returns the WGSL shader module source.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// VertexEntryPoint returns the vertex shader entry point name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment shader entry point name.
	FragmentEntryPoint() string

	// RenderPipeline returns the created render pipeline, or nil before a backend built it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writes are enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias.
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias.
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether alpha blending is enabled.
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created render pipeline.
	//
	// Parameters:
	//   - p: the created render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the created render pipeline, if any.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline with opaque defaults: depth test and write on, blending off,
// no face culling, triangle lists with counter-clockwise front faces.
//
// Parameters:
//   - pipelineKey: the unique identifier for the pipeline
//   - source: the WGSL module source
//   - opts: functional options
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey, source string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		source:            source,
		vertexEntry:       DefaultVertexEntryPoint,
		fragmentEntry:     DefaultFragmentEntryPoint,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForBlendMode creates a Pipeline whose blend and depth state suit a material blend mode.
// Fade pipelines blend and leave the depth buffer untouched so overlapping LODs both show.
//
// Parameters:
//   - pipelineKey: the unique identifier for the pipeline
//   - source: the WGSL module source
//   - mode: the material blend mode
//   - opts: extra options applied after the blend mode defaults
//
// Returns:
//   - Pipeline: the pipeline description
func ForBlendMode(pipelineKey, source string, mode material.BlendMode, opts ...PipelineBuilderOption) Pipeline {
	var modeOpts []PipelineBuilderOption
	switch mode {
	case material.BlendFade:
		modeOpts = append(modeOpts, WithBlendEnabled(true), WithDepthWriteEnabled(false))
	case material.BlendCutout:
		modeOpts = append(modeOpts, WithCullMode(wgpu.CullModeNone))
	default:
		modeOpts = append(modeOpts, WithCullMode(wgpu.CullModeBack))
	}
	return NewPipeline(pipelineKey, source, append(modeOpts, opts...)...)
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source() string {
	return p.source
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// instanceBinding is the BindGroupProvider buffer slot holding the shared instance vertex buffer.
const instanceBinding = 0

// DefaultAlphaCutoff is the alpha below which cutout materials discard fragments.
const DefaultAlphaCutoff float32 = 0.5

// Depth bias of the shadow caster pipeline.
const (
	shadowDepthBias           int32   = 2
	shadowDepthBiasSlopeScale float32 = 2
)

// ShadowPipelineKey is the key of the built-in shadow caster pipeline.
const ShadowPipelineKey = "instanced/shadow"

var errNoDevice = errors.New("renderer: wgpu submitter requires a device and queue")

// instanceVertexLayouts are the vertex buffer layouts of InstancedShaderSource and ShadowShaderSource.
var instanceVertexLayouts = []wgpu.VertexBufferLayout{
	{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	},
	{
		ArrayStride: 80,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 4},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 7},
		},
	},
}

// WGPUSubmitter batches draw commands and encodes them as instanced indexed draws into a
// caller-owned render pass.
//
// Usage pattern per frame:
//  1. SetCamera (and SetShadowCamera when a shadow pass is used)
//  2. InstanceRenderer.Render(view, submitter) for every renderer
//  3. Prepare uploads new meshes and the frame's instance data
//  4. FlushShadows and Flush encode the draws
//  5. Reset clears the batches for the next frame
type WGPUSubmitter struct {
	mu *sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue

	colorFormat  wgpu.TextureFormat
	depthFormat  wgpu.TextureFormat
	shadowFormat wgpu.TextureFormat
	sampleCount  uint32

	batcher *Batcher
	// firstInstance holds each batch's offset into the instance buffer, filled by Prepare.
	firstInstance []uint32
	staging       []byte

	meshes    map[*mesh.Mesh]bind_group_provider.BindGroupProvider
	pipelines map[string]pipeline.Pipeline

	cameraLayout   *wgpu.BindGroupLayout
	materialLayout *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	shadowLayout   *wgpu.PipelineLayout

	camera       bind_group_provider.BindGroupProvider
	shadowCamera bind_group_provider.BindGroupProvider
	instances    bind_group_provider.BindGroupProvider
	capacity     uint64
}

var _ Submitter = &WGPUSubmitter{}

// WGPUSubmitterOption is a functional option applied to a WGPUSubmitter during construction.
type WGPUSubmitterOption func(*WGPUSubmitter)

// WithColorFormat sets the color target format of the render pass. Defaults to BGRA8UnormSrgb.
func WithColorFormat(format wgpu.TextureFormat) WGPUSubmitterOption {
	return func(s *WGPUSubmitter) {
		s.colorFormat = format
	}
}

// WithDepthFormat sets the depth attachment format of the render pass. Defaults to Depth24Plus.
func WithDepthFormat(format wgpu.TextureFormat) WGPUSubmitterOption {
	return func(s *WGPUSubmitter) {
		s.depthFormat = format
	}
}

// WithSampleCount sets the MSAA sample count of the render pass. Defaults to 1.
func WithSampleCount(count uint32) WGPUSubmitterOption {
	return func(s *WGPUSubmitter) {
		s.sampleCount = max(count, 1)
	}
}

// WithPipeline pre-registers a pipeline, matched by key against material.Material.PipelineKey.
//
// Parameters:
//   - p: the pipeline description
//
// Returns:
//   - WGPUSubmitterOption: a function that applies the pipeline option
func WithPipeline(p pipeline.Pipeline) WGPUSubmitterOption {
	return func(s *WGPUSubmitter) {
		s.pipelines[p.PipelineKey()] = p
	}
}

// NewWGPUSubmitter creates the shared bind group layouts, the camera uniforms and the instance
// buffer on device.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the device queue used for uploads
//   - options: functional options
//
// Returns:
//   - *WGPUSubmitter: the submitter
//   - error: an error if a GPU resource could not be created
func NewWGPUSubmitter(device *wgpu.Device, queue *wgpu.Queue, options ...WGPUSubmitterOption) (*WGPUSubmitter, error) {
	if device == nil || queue == nil {
		return nil, errNoDevice
	}

	s := &WGPUSubmitter{
		mu:           &sync.Mutex{},
		device:       device,
		queue:        queue,
		colorFormat:  wgpu.TextureFormatBGRA8UnormSrgb,
		depthFormat:  wgpu.TextureFormatDepth24Plus,
		shadowFormat: wgpu.TextureFormatDepth32Float,
		sampleCount:  1,
		batcher:      NewBatcher(),
		meshes:       make(map[*mesh.Mesh]bind_group_provider.BindGroupProvider),
		pipelines:    make(map[string]pipeline.Pipeline),
		instances:    bind_group_provider.NewBindGroupProvider("Instances"),
	}
	for _, option := range options {
		option(s)
	}

	var err error
	var cam camera.GPUCameraUniform
	s.cameraLayout, err = s.uniformLayout("Camera", uint64(cam.Size()), wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	if err != nil {
		return nil, err
	}
	var mat GPUMaterialUniform
	s.materialLayout, err = s.uniformLayout("Material", uint64(mat.Size()), wgpu.ShaderStageFragment)
	if err != nil {
		return nil, err
	}

	s.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Instanced",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.cameraLayout, s.materialLayout},
	})
	if err != nil {
		return nil, err
	}
	s.shadowLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            ShadowPipelineKey,
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.cameraLayout},
	})
	if err != nil {
		return nil, err
	}

	if s.camera, err = s.uniformProvider("Camera", s.cameraLayout, uint64(cam.Size())); err != nil {
		return nil, err
	}
	if s.shadowCamera, err = s.uniformProvider("Shadow Camera", s.cameraLayout, uint64(cam.Size())); err != nil {
		return nil, err
	}

	return s, nil
}

// Submit queues one draw for the next Prepare/Flush.
func (s *WGPUSubmitter) Submit(cmd DrawCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batcher.Submit(cmd)
}

// SetCamera writes the main pass camera uniform.
//
// Parameters:
//   - v: the view the frame was rendered for
func (s *WGPUSubmitter) SetCamera(v camera.View) {
	u := camera.UniformFor(v)
	s.writeBuffers([]bind_group_provider.BufferWrite{{Provider: s.camera, Binding: 0, Data: u.Marshal()}})
}

// SetShadowCamera writes the light-space camera uniform used by FlushShadows.
//
// Parameters:
//   - v: the light view, e.g. a StaticView placed at the light
func (s *WGPUSubmitter) SetShadowCamera(v camera.View) {
	u := camera.UniformFor(v)
	s.writeBuffers([]bind_group_provider.BufferWrite{{Provider: s.shadowCamera, Binding: 0, Data: u.Marshal()}})
}

// Prepare uploads meshes seen for the first time, creates missing material bind groups and
// pipelines, and writes every batch's instance data into the shared instance buffer.
//
// Returns:
//   - error: the first GPU error; batches that could not be prepared are skipped by Flush
func (s *WGPUSubmitter) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	batches := s.batcher.Batches()
	s.firstInstance = s.firstInstance[:0]
	s.staging = s.staging[:0]

	var first uint32
	for i := range batches {
		b := &batches[i]
		if _, err := s.meshProvider(b.Key.Mesh); err != nil {
			errs = append(errs, err)
		}
		if err := s.prepareMaterial(b.Key.Material); err != nil {
			errs = append(errs, err)
		}
		s.firstInstance = append(s.firstInstance, first)
		for j := range b.Instances {
			s.staging = b.Instances[j].AppendTo(s.staging)
		}
		first += uint32(len(b.Instances))
	}

	if len(s.staging) > 0 {
		if err := s.ensureInstanceCapacity(uint64(len(s.staging))); err != nil {
			errs = append(errs, err)
		} else {
			s.queue.WriteBuffer(s.instances.Buffer(instanceBinding), 0, s.staging)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		common.Logger().Warn("wgpu submitter prepare", "error", err)
	}
	return err
}

// Flush encodes every prepared batch into pass. Opaque batches are drawn before fading ones.
//
// Parameters:
//   - pass: the main render pass
func (s *WGPUSubmitter) Flush(pass *wgpu.RenderPassEncoder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pass == nil || len(s.firstInstance) != len(s.batcher.Batches()) {
		return
	}

	// two passes keep blending draws after everything that writes depth
	for _, transparent := range []bool{false, true} {
		for i, b := range s.batcher.Batches() {
			if b.Key.Material.Transparent() != transparent {
				continue
			}
			p := s.pipelineFor(b.Key.Material)
			if p == nil || p.RenderPipeline() == nil {
				continue
			}
			pass.SetPipeline(p.RenderPipeline())
			pass.SetBindGroup(0, s.camera.BindGroup(), nil)
			pass.SetBindGroup(1, b.Key.Material.BindGroupProvider().BindGroup(), nil)
			s.drawBatch(pass, i, b)
		}
	}
}

// FlushShadows encodes every shadow casting batch into a depth-only pass.
//
// Parameters:
//   - pass: the shadow map render pass
func (s *WGPUSubmitter) FlushShadows(pass *wgpu.RenderPassEncoder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pass == nil || len(s.firstInstance) != len(s.batcher.Batches()) {
		return
	}
	p, err := s.shadowPipeline()
	if err != nil {
		common.Logger().Warn("wgpu submitter shadow pipeline", "error", err)
		return
	}

	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(0, s.shadowCamera.BindGroup(), nil)
	for i, b := range s.batcher.Batches() {
		if !b.Key.CastShadows {
			continue
		}
		s.drawBatch(pass, i, b)
	}
}

// Reset drops the frame's batches, keeping GPU resources.
func (s *WGPUSubmitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batcher.Reset()
	s.firstInstance = s.firstInstance[:0]
}

// ReleaseMesh releases the GPU buffers uploaded for m, for example after a LOD was re-baked.
//
// Parameters:
//   - m: the mesh whose buffers are released
func (s *WGPUSubmitter) ReleaseMesh(m *mesh.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.meshes[m]; ok {
		p.Release()
		delete(s.meshes, m)
	}
}

// Release releases every GPU resource owned by the submitter. Material providers created by
// Prepare stay attached to their materials and are released by the material owner.
func (s *WGPUSubmitter) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for m, p := range s.meshes {
		p.Release()
		delete(s.meshes, m)
	}
	for _, p := range s.pipelines {
		p.Release()
	}
	s.instances.Release()
	s.camera.Release()
	s.shadowCamera.Release()
	s.pipelineLayout.Release()
	s.shadowLayout.Release()
	s.cameraLayout.Release()
	s.materialLayout.Release()
}

func (s *WGPUSubmitter) drawBatch(pass *wgpu.RenderPassEncoder, i int, b Batch) {
	provider, ok := s.meshes[b.Key.Mesh]
	if !ok || provider.VertexBuffer() == nil || provider.IndexBuffer() == nil {
		return
	}
	r, ok := provider.SubmeshRange(b.Key.Submesh)
	if !ok || r.Count == 0 {
		return
	}

	var inst GPUInstanceData
	offset := uint64(s.firstInstance[i]) * uint64(inst.Size())
	pass.SetVertexBuffer(0, provider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, s.instances.Buffer(instanceBinding), offset, wgpu.WholeSize)
	pass.SetIndexBuffer(provider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(r.Count, uint32(len(b.Instances)), r.First, 0, 0)
}

func (s *WGPUSubmitter) meshProvider(m *mesh.Mesh) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := s.meshes[m]; ok {
		return p, nil
	}

	vertexData, indexData, ranges := MarshalMesh(m)
	vertices, err := s.uploadBuffer(m.Name+" Vertex Buffer", wgpu.BufferUsageVertex, vertexData)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	indices, err := s.uploadBuffer(m.Name+" Index Buffer", wgpu.BufferUsageIndex, indexData)
	if err != nil {
		if vertices != nil {
			vertices.Release()
		}
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}

	provider := bind_group_provider.NewBindGroupProvider(m.Name,
		bind_group_provider.WithMeshBuffers(vertices, indices, ranges),
	)
	s.meshes[m] = provider
	common.Logger().Debug("mesh uploaded", "mesh", m.Name, "indices", provider.IndexCount())
	return provider, nil
}

// uploadBuffer creates a buffer holding data. Empty data yields a nil buffer.
func (s *WGPUSubmitter) uploadBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (s *WGPUSubmitter) prepareMaterial(mat material.Material) error {
	if mat.BindGroupProvider() == nil {
		var u GPUMaterialUniform
		provider, err := s.uniformProvider(mat.Name(), s.materialLayout, uint64(u.Size()))
		if err != nil {
			return fmt.Errorf("material %q: %w", mat.Name(), err)
		}
		u.BaseColor = mat.BaseColor().Vec4()
		if mat.BlendMode() == material.BlendCutout {
			u.AlphaCutoff = DefaultAlphaCutoff
		}
		s.writeBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: 0, Data: u.Marshal()}})
		mat.SetBindGroupProvider(provider)
	}

	p := s.pipelineFor(mat)
	if p.RenderPipeline() != nil {
		return nil
	}
	if err := s.createRenderPipeline(p); err != nil {
		return fmt.Errorf("pipeline %q: %w", p.PipelineKey(), err)
	}
	return nil
}

// pipelineFor returns the material's registered pipeline, falling back to a built-in one per
// blend mode. The fallback is registered on first use.
func (s *WGPUSubmitter) pipelineFor(mat material.Material) pipeline.Pipeline {
	if p, ok := s.pipelines[mat.PipelineKey()]; ok && mat.PipelineKey() != "" {
		return p
	}
	key := "instanced/" + mat.BlendMode().String()
	if p, ok := s.pipelines[key]; ok {
		return p
	}
	p := pipeline.ForBlendMode(key, InstancedShaderSource, mat.BlendMode())
	s.pipelines[key] = p
	return p
}

func (s *WGPUSubmitter) shadowPipeline() (pipeline.Pipeline, error) {
	p, ok := s.pipelines[ShadowPipelineKey]
	if !ok {
		p = pipeline.NewPipeline(ShadowPipelineKey, ShadowShaderSource,
			pipeline.WithShadowCaster(shadowDepthBias, shadowDepthBiasSlopeScale),
		)
		s.pipelines[ShadowPipelineKey] = p
	}
	if p.RenderPipeline() != nil {
		return p, nil
	}

	module, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	created, err := s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Shadow Pipeline",
		Layout: s.shadowLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    instanceVertexLayouts,
		},
		// No fragment shader, depth-only pass
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              s.shadowFormat,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	p.SetRenderPipeline(created)
	return p, nil
}

func (s *WGPUSubmitter) createRenderPipeline(p pipeline.Pipeline) error {
	module, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	target := wgpu.ColorTargetState{
		Format:    s.colorFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: s.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    instanceVertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: s.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              s.depthFormat,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (s *WGPUSubmitter) uniformLayout(label string, size uint64, visibility wgpu.ShaderStage) (*wgpu.BindGroupLayout, error) {
	return s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		}},
	})
}

// uniformProvider creates a provider holding one uniform buffer at binding 0 and its bind group.
func (s *WGPUSubmitter) uniformProvider(label string, layout *wgpu.BindGroupLayout, size uint64) (bind_group_provider.BindGroupProvider, error) {
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithUniformBuffer(0, buf, bindGroup)), nil
}

// ensureInstanceCapacity grows the instance buffer to hold at least size bytes, doubling to
// amortize growth.
func (s *WGPUSubmitter) ensureInstanceCapacity(size uint64) error {
	if size <= s.capacity && s.instances.Buffer(instanceBinding) != nil {
		return nil
	}
	capacity := max(s.capacity*2, size, 64*80)
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.instances.Label() + " Buffer",
		Size:  capacity,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	s.instances.SetBuffer(instanceBinding, buf)
	s.capacity = capacity
	common.Logger().Debug("instance buffer grown", "bytes", capacity)
	return nil
}

func (s *WGPUSubmitter) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		if buf := w.Target(); buf != nil {
			s.queue.WriteBuffer(buf, w.Offset, w.Data)
		}
	}
}

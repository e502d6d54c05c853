// Package bind_group_provider holds the wgpu resources uploaded for one mesh, material or uniform
// block so the submitter can bind them while encoding batches.
package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// IndexRange locates one submesh inside a shared index buffer.
type IndexRange struct {
	// First is the offset of the first index, in indices.
	First uint32
	// Count is the number of indices.
	Count uint32
}

type bindGroupProvider struct {
	label string

	// GPU resources, owned by the provider once stored and freed by Release.
	bindGroup    *wgpu.BindGroup
	buffers      map[int]*wgpu.Buffer
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer

	ranges []IndexRange
}

// BindGroupProvider owns the GPU side of one drawable resource.
//
// Mesh providers carry a vertex buffer and one index buffer with every submesh laid out back to
// back; SubmeshRange maps a submesh index to its slice of that buffer. Uniform providers carry a
// buffer per binding and the bind group exposing them. The submitter creates providers lazily the
// first time a mesh or material is drawn and releases them on Release of the submitter.
type BindGroupProvider interface {
	// Release frees every GPU resource and forgets the submesh ranges.
	Release()

	// Label returns the debug label used to name GPU objects.
	Label() string

	// BindGroup returns the bind group, nil for mesh providers.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding or slot index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer

	// SubmeshRange returns the index range of one submesh.
	//
	// Parameters:
	//   - submesh: the submesh index
	//
	// Returns:
	//   - IndexRange: the range
	//   - bool: false if submesh is out of range
	SubmeshRange(submesh int) (IndexRange, bool)

	// SubmeshCount returns the number of recorded submesh ranges.
	SubmeshCount() int

	// IndexCount returns the total number of indices over every submesh.
	IndexCount() uint32

	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores a buffer at binding. A different buffer already stored there is released,
	// which is how growable buffers are replaced.
	//
	// Parameters:
	//   - binding: the binding or slot index
	//   - buf: the new buffer
	SetBuffer(binding int, buf *wgpu.Buffer)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider with no GPU resources unless options supply them.
//
// Parameters:
//   - label: the debug label
//   - options: functional options
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string              { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup { return p.bindGroup }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer  { return p.indexBuffer }
func (p *bindGroupProvider) SubmeshCount() int          { return len(p.ranges) }

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SubmeshRange(submesh int) (IndexRange, bool) {
	if submesh < 0 || submesh >= len(p.ranges) {
		return IndexRange{}, false
	}
	return p.ranges[submesh], true
}

func (p *bindGroupProvider) IndexCount() uint32 {
	var n uint32
	for _, r := range p.ranges {
		n += r.Count
	}
	return n
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) Release() {
	for binding, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, binding)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
	}
	p.bindGroup, p.vertexBuffer, p.indexBuffer = nil, nil, nil
	p.ranges = nil
}

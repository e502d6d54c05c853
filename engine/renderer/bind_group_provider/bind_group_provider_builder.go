package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithUniformBuffer stores a uniform buffer at binding together with the bind group exposing it.
//
// Parameters:
//   - binding: the binding index of the buffer
//   - buf: the uniform buffer
//   - bg: the bind group referencing buf
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer and bind group
func WithUniformBuffer(binding int, buf *wgpu.Buffer, bg *wgpu.BindGroup) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
		p.bindGroup = bg
	}
}

// WithMeshBuffers stores an uploaded mesh: its vertex buffer, the shared index buffer and the range
// of every submesh inside it. Either buffer may be nil for an empty mesh.
//
// Parameters:
//   - vertices: the vertex buffer
//   - indices: the index buffer
//   - ranges: one index range per submesh
//
// Returns:
//   - BindGroupProviderOption: a function that sets the mesh buffers
func WithMeshBuffers(vertices, indices *wgpu.Buffer, ranges []IndexRange) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.vertexBuffer = vertices
		p.indexBuffer = indices
		p.ranges = ranges
	}
}

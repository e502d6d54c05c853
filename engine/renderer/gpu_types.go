package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-instancer/engine/camera"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed assets/instanced.wgsl
var instancedShaderBody string

//go:embed assets/shadow.wgsl
var shadowShaderBody string

// InstancedShaderSource is the WGSL module used for instanced draws. Vertex buffer slot 0 holds
// GPUVertex data and slot 1 holds GPUInstanceData, stepped per instance. The camera struct is
// shared with camera.GPUCameraUniformSource so both sides of the uniform stay in sync.
var InstancedShaderSource = camera.GPUCameraUniformSource + "\n" + instancedShaderBody

// ShadowShaderSource is the depth-only WGSL module used for the shadow caster pass.
var ShadowShaderSource = camera.GPUCameraUniformSource + "\n" + shadowShaderBody

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see InstancedShaderSource).
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in mesh space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUInstanceData is the per-instance vertex data of one draw.
// Matches the WGSL InstanceInput struct layout exactly (see InstancedShaderSource).
// Size: 80 bytes.
type GPUInstanceData struct {
	Model mgl32.Mat4 // offset  0: instance matrix, column-major (64 bytes)
	Color mgl32.Vec4 // offset 64: instance color, alpha is the fade opacity (16 bytes)
}

// Size returns the size of the GPUInstanceData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUInstanceData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstanceData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUInstanceData) Marshal() []byte {
	return g.AppendTo(make([]byte, 0, g.Size()))
}

// AppendTo appends the serialized instance to buf.
//
// Parameters:
//   - buf: the destination buffer
//
// Returns:
//   - []byte: the extended buffer
func (g *GPUInstanceData) AppendTo(buf []byte) []byte {
	for i := range 16 {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(g.Color[i]))
	}
	return buf
}

// GPUMaterialUniform is the per-material uniform block.
// Matches the WGSL MaterialUniform struct layout exactly (see InstancedShaderSource).
// Size: 32 bytes.
type GPUMaterialUniform struct {
	BaseColor   mgl32.Vec4 // offset  0: material tint (16 bytes)
	AlphaCutoff float32    // offset 16: fragments below this alpha are discarded (4 bytes)
	_pad        [3]float32 // offset 20: padding to 32 bytes
}

// Size returns the size of the GPUMaterialUniform struct in bytes.
func (g *GPUMaterialUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.AlphaCutoff))
	return buf
}

// MarshalMesh packs a mesh into an interleaved vertex buffer and a single index buffer holding
// every submesh back to back.
//
// Parameters:
//   - m: the mesh to pack
//
// Returns:
//   - []byte: vertex data, one GPUVertex per position
//   - []byte: index data, uint32 little endian
//   - []bind_group_provider.IndexRange: the range of each submesh in the index data
func MarshalMesh(m *mesh.Mesh) ([]byte, []byte, []bind_group_provider.IndexRange) {
	var v GPUVertex
	vertexData := make([]byte, 0, len(m.Positions)*v.Size())
	for i, p := range m.Positions {
		v = GPUVertex{Position: p}
		if i < len(m.Normals) {
			v.Normal = m.Normals[i]
		}
		if i < len(m.UVs) {
			v.TexCoord = m.UVs[i]
		}
		vertexData = append(vertexData, v.Marshal()...)
	}

	var indexData []byte
	ranges := make([]bind_group_provider.IndexRange, len(m.Submeshes))
	var first uint32
	for s, indices := range m.Submeshes {
		ranges[s] = bind_group_provider.IndexRange{First: first, Count: uint32(len(indices))}
		for _, idx := range indices {
			indexData = binary.LittleEndian.AppendUint32(indexData, idx)
		}
		first += uint32(len(indices))
	}
	return vertexData, indexData, ranges
}

package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource declares the WGSL CameraUniform struct. Shader modules that bind the
// camera prepend it instead of redeclaring the struct.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform mirrors CameraUniform in GPUCameraUniformSource: a mat4x4 at offset 0 and a
// vec3 at offset 64, padded to 80 bytes.
type GPUCameraUniform struct {
	ViewProj       mgl32.Mat4
	CameraPosition mgl32.Vec3
	_pad           float32
}

// UniformFor packs any View. Cameras, static views and light-space shadow views all upload
// through it.
//
// Parameters:
//   - v: the view
//
// Returns:
//   - GPUCameraUniform: the uniform data
func UniformFor(v View) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:       v.ViewProjectionMatrix(),
		CameraPosition: v.EyePosition(),
	}
}

// Size returns the uniform size in bytes (80).
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little-endian, column-major, ready for a queue write.
//
// Returns:
//   - []byte: the encoded uniform
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
	}
	for i, f := range g.ViewProj {
		put(i*4, f)
	}
	for i, f := range g.CameraPosition {
		put(64+i*4, f)
	}
	return buf
}

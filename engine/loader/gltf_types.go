// gltf_types.go holds the subset of the glTF 2.0 JSON schema needed to extract static meshes.
// Unknown fields (skins, animations, textures, cameras) are ignored by encoding/json.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// gltfDocument is the root of a glTF JSON document.
type gltfDocument struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       *int             `json:"scene,omitempty"`
	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
}

type gltfAsset struct {
	// Version must start with "2.".
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode is only read for its name, used to label meshes exported without one.
type gltfNode struct {
	Name string `json:"name,omitempty"`
	Mesh *int   `json:"mesh,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive is one draw of a mesh. Each primitive becomes one submesh.
type gltfPrimitive struct {
	// Attributes maps semantics such as POSITION, NORMAL and TEXCOORD_0 to accessor indices.
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	// Mode defaults to triangles.
	Mode *int `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	// AlphaMode is OPAQUE (default), MASK or BLEND.
	AlphaMode string `json:"alphaMode,omitempty"`
}

type gltfPbrMetallicRoughness struct {
	BaseColorFactor *[4]float32 `json:"baseColorFactor,omitempty"`
}

type gltfAccessor struct {
	BufferView *int `json:"bufferView,omitempty"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	// ComponentType is one of the gltfComponentType constants.
	ComponentType int  `json:"componentType"`
	Normalized    bool `json:"normalized,omitempty"`
	Count         int  `json:"count"`
	// Type is SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3 or MAT4.
	Type   string      `json:"type"`
	Sparse *gltfSparse `json:"sparse,omitempty"`
}

// gltfSparse is only decoded to reject sparse accessors.
type gltfSparse struct {
	Count int `json:"count"`
}

const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	// URI is a relative file path or a base64 data URI. Empty for the GLB binary chunk.
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	data []byte
}

// GLB container layout.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	glbChunkJSON  = 0x4E4F534A // "JSON"
	glbChunkBIN   = 0x004E4942 // "BIN\0"
	glbHeaderSize = 12
)

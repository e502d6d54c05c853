package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer packs 3 float positions followed by 3 ushort indices, padded to 4 bytes.
func triangleBuffer(z float32) []byte {
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, z, 1, 0, z, 0, 1, z} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
	}
	for _, i := range []uint16{0, 1, 2} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

// gltfDoc builds a document with one triangle mesh per name. Every mesh uses its own 44 byte
// slice of a single buffer.
func gltfDoc(names ...string) (map[string]any, []byte) {
	var bin []byte
	var meshes, accessors, views []map[string]any
	for i, name := range names {
		off := len(bin)
		bin = append(bin, triangleBuffer(float32(i))...)
		views = append(views,
			map[string]any{"buffer": 0, "byteOffset": off, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": off + 36, "byteLength": 6},
		)
		accessors = append(accessors,
			map[string]any{"bufferView": 2 * i, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 2*i + 1, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR"},
		)
		meshes = append(meshes, map[string]any{
			"name": name,
			"primitives": []map[string]any{{
				"attributes": map[string]int{"POSITION": 2 * i},
				"indices":    2*i + 1,
				"material":   0,
			}},
		})
	}
	doc := map[string]any{
		"asset":       map[string]any{"version": "2.0"},
		"meshes":      meshes,
		"accessors":   accessors,
		"bufferViews": views,
		"buffers":     []map[string]any{{"byteLength": len(bin)}},
		"materials": []map[string]any{{
			"name":                 "leaf",
			"alphaMode":            "MASK",
			"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{0.2, 0.8, 0.2, 1}},
		}},
	}
	return doc, bin
}

func embedded(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	doc["buffers"] = []map[string]any{{
		"byteLength": len(bin),
		"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin),
	}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func glb(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	var buf bytes.Buffer
	total := glbHeaderSize + 8 + len(js) + 8 + len(bin)
	for _, v := range []uint32{glbMagic, glbVersion, uint32(total), uint32(len(js)), glbChunkJSON} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.Write(js)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(bin)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(glbChunkBIN))
	buf.Write(bin)
	return buf.Bytes()
}

func checkTriangle(t *testing.T, asset *Asset) {
	t.Helper()
	require.Len(t, asset.Meshes, 1)
	m := asset.Meshes[0]
	assert.Equal(t, "leaf_card", m.Name)
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, m.Positions)
	assert.Equal(t, [][]uint32{{0, 1, 2}}, m.Submeshes)
	require.Len(t, m.Normals, 3)
	for _, n := range m.Normals {
		assert.True(t, n.ApproxEqual(mgl32.Vec3{0, 0, 1}), "generated normal %v", n)
	}
	assert.Nil(t, m.UVs)
	require.NoError(t, m.Validate())

	require.Len(t, asset.Materials, 1)
	require.Len(t, asset.Materials[0], 1)
	mat := asset.Materials[0][0]
	assert.Equal(t, "leaf", mat.Name())
	assert.Equal(t, common.Color{R: 0.2, G: 0.8, B: 0.2, A: 1}, mat.BaseColor())
	assert.Equal(t, material.BlendCutout, mat.BlendMode())
}

func TestLoadReaderEmbedded(t *testing.T) {
	doc, bin := gltfDoc("leaf_card")
	l := NewLoader(BackendTypeGLTF)

	asset, err := l.LoadReader("leaf", bytes.NewReader(embedded(t, doc, bin)), false)
	require.NoError(t, err)
	assert.Equal(t, "leaf", asset.Name)
	checkTriangle(t, asset)

	again, err := l.LoadReader("leaf", bytes.NewReader(nil), false)
	require.NoError(t, err)
	assert.Same(t, asset, again, "second load is served from the cache")
	assert.Same(t, asset, l.Get("leaf"))
	assert.Len(t, l.Assets(), 1)
}

func TestLoadReaderGLB(t *testing.T) {
	doc, bin := gltfDoc("leaf_card")
	l := NewLoader(BackendTypeGLTF)

	asset, err := l.LoadReader("leaf", bytes.NewReader(glb(t, doc, bin)), true)
	require.NoError(t, err)
	checkTriangle(t, asset)

	_, err = l.LoadReader("other", bytes.NewReader(embedded(t, doc, bin)), true)
	assert.ErrorIs(t, err, ErrInvalidGLTF, "JSON stream flagged as GLB")
}

func TestLoadExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	doc, bin := gltfDoc("leaf_card")
	doc["buffers"] = []map[string]any{{"byteLength": len(bin), "uri": "leaf.bin"}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaf.bin"), bin, 0o644))
	path := filepath.Join(dir, "leaf.gltf")
	require.NoError(t, os.WriteFile(path, js, 0o644))

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "leaf", asset.Name)
	checkTriangle(t, asset)

	cached, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, asset, cached)

	require.NoError(t, os.Remove(filepath.Join(dir, "leaf.bin")))
	_, err = NewLoader(BackendTypeGLTF).Load(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Load("tree.fbx")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		want   error
	}{
		{"version", func(doc map[string]any) {
			doc["asset"] = map[string]any{"version": "1.0"}
		}, ErrUnsupported},
		{"mode", func(doc map[string]any) {
			doc["meshes"].([]map[string]any)[0]["primitives"].([]map[string]any)[0]["mode"] = 1
		}, ErrUnsupported},
		{"position", func(doc map[string]any) {
			doc["meshes"].([]map[string]any)[0]["primitives"].([]map[string]any)[0]["attributes"] = map[string]int{}
		}, ErrInvalidGLTF},
		{"accessor type", func(doc map[string]any) {
			doc["accessors"].([]map[string]any)[0]["type"] = "VEC2"
		}, ErrInvalidGLTF},
		{"overrun", func(doc map[string]any) {
			doc["accessors"].([]map[string]any)[0]["count"] = 30
		}, ErrInvalidGLTF},
		{"index", func(doc map[string]any) {
			doc["accessors"].([]map[string]any)[1]["componentType"] = gltfComponentTypeByte
		}, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, bin := gltfDoc("leaf_card")
			tt.mutate(doc)
			_, err := NewLoader(BackendTypeGLTF).LoadReader("x", bytes.NewReader(embedded(t, doc, bin)), false)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewLoader(BackendTypeGLTF).LoadReader("x", bytes.NewReader([]byte("{")), false)
	assert.ErrorIs(t, err, ErrInvalidGLTF)
}

func TestNonIndexedPrimitiveAndDefaultMaterial(t *testing.T) {
	doc, bin := gltfDoc("")
	prim := doc["meshes"].([]map[string]any)[0]["primitives"].([]map[string]any)[0]
	delete(prim, "indices")
	delete(prim, "material")
	doc["nodes"] = []map[string]any{{"name": "card_node", "mesh": 0}}

	asset, err := NewLoader(BackendTypeGLTF).LoadReader("x", bytes.NewReader(embedded(t, doc, bin)), false)
	require.NoError(t, err)
	m := asset.Meshes[0]
	assert.Equal(t, "card_node", m.Name, "unnamed mesh takes its node name")
	assert.Equal(t, [][]uint32{{0, 1, 2}}, m.Submeshes)
	assert.Equal(t, "default", asset.Materials[0][0].Name())
	assert.Equal(t, material.BlendOpaque, asset.Materials[0][0].BlendMode())
}

func TestLoadObjectOrdersLODs(t *testing.T) {
	dir := t.TempDir()
	doc, bin := gltfDoc("tree_LOD2", "tree_LOD0", "tree_LOD1")
	path := filepath.Join(dir, "tree.glb")
	require.NoError(t, os.WriteFile(path, glb(t, doc, bin), 0o644))

	obj, err := NewLoader(BackendTypeGLTF).LoadObject(path, 10, 40)
	require.NoError(t, err)
	require.Equal(t, 3, obj.LODCount())

	lods := obj.LODs()
	assert.Equal(t, "tree_LOD0", lods[0].Mesh().Name)
	assert.Equal(t, "tree_LOD1", lods[1].Mesh().Name)
	assert.Equal(t, "tree_LOD2", lods[2].Mesh().Name)
	assert.Equal(t, float32(10), lods[0].Distance)
	assert.Equal(t, float32(40), lods[1].Distance)
	assert.True(t, math32.IsInf(lods[2].Distance, 1))

	for _, lod := range lods {
		require.Len(t, lod.Materials, 1)
		require.Len(t, lod.FadeMaterials, 1)
		assert.Equal(t, "leaf", lod.Materials[0].Name())
		assert.Equal(t, "leaf_fade", lod.FadeMaterials[0].Name())
		assert.Equal(t, material.BlendFade, lod.FadeMaterials[0].BlendMode())
		assert.Equal(t, lod.Materials[0].BaseColor(), lod.FadeMaterials[0].BaseColor())
	}
}

func TestLodOrderKeepsDocumentOrderWithoutSuffix(t *testing.T) {
	meshes := []*mesh.Mesh{{Name: "b_LOD1"}, {Name: "a"}, {Name: "c_LOD0"}}
	assert.Equal(t, []int{0, 1, 2}, lodOrder(meshes))
	meshes[1].Name = "a_lod3"
	assert.Equal(t, []int{2, 0, 1}, lodOrder(meshes))
}

func TestNewObjectRequiresMeshes(t *testing.T) {
	_, err := NewObject(nil)
	assert.Error(t, err)
	_, err = NewObject(&Asset{Name: "empty"})
	assert.Error(t, err)
}

func TestWithAsset(t *testing.T) {
	asset := &Asset{Name: "quad", Meshes: []*mesh.Mesh{mesh.NewQuad("quad", 1, 1)}}
	l := NewLoader(BackendTypeGLTF, WithAsset("quad", asset), WithAsset("nil", nil))
	assert.Same(t, asset, l.Get("quad"))
	assert.Nil(t, l.Get("nil"))

	obj, err := NewObject(l.Get("quad"), 25)
	require.NoError(t, err)
	assert.Equal(t, float32(25), obj.LODs()[0].Distance)
}

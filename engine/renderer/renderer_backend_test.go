package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcherGroupsInFirstSeenOrder(t *testing.T) {
	quad := mesh.NewQuad("q", 1, 1)
	a := material.NewMaterial(material.WithName("a"))
	b := material.NewMaterial(material.WithName("b"))

	batcher := NewBatcher()
	submit := func(mat material.Material, x float32, cast bool) {
		batcher.Submit(DrawCommand{
			Mesh:        quad,
			Material:    mat,
			Matrix:      mgl32.Translate3D(x, 0, 0),
			Color:       common.White,
			CastShadows: cast,
		})
	}
	submit(b, 1, true)
	submit(a, 2, true)
	submit(b, 3, true)
	submit(b, 4, false)

	batches := batcher.Batches()
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batcher.Len())
	assert.Equal(t, b, batches[0].Key.Material)
	require.Len(t, batches[0].Instances, 2)
	assert.Equal(t, float32(3), batches[0].Instances[1].Model[12])
	assert.Equal(t, a, batches[1].Key.Material)
	assert.False(t, batches[2].Key.CastShadows)

	batcher.Reset()
	assert.Zero(t, batcher.Len())
	assert.Empty(t, batcher.Batches())

	submit(a, 5, true)
	batches = batcher.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Instances, 1, "reused slot starts empty")
	assert.Equal(t, a, batches[0].Key.Material)
}

func TestSubmitterFunc(t *testing.T) {
	var n int
	var sub Submitter = SubmitterFunc(func(DrawCommand) { n++ })
	sub.Submit(DrawCommand{})
	sub.Submit(DrawCommand{})
	assert.Equal(t, 2, n)
}

func TestGPUInstanceDataMarshal(t *testing.T) {
	d := GPUInstanceData{Model: mgl32.Translate3D(1, 2, 3), Color: mgl32.Vec4{0.5, 0.25, 1, 0.75}}
	require.Equal(t, 80, d.Size())

	buf := d.Marshal()
	require.Len(t, buf, 80)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(2), f(13*4))
	assert.Equal(t, float32(0.75), f(76))
}

func TestGPUVertexAndMaterialSizes(t *testing.T) {
	var v GPUVertex
	assert.Equal(t, 32, v.Size())
	assert.Len(t, v.Marshal(), 32)

	u := GPUMaterialUniform{BaseColor: mgl32.Vec4{1, 1, 1, 1}, AlphaCutoff: 0.5}
	assert.Equal(t, 32, u.Size())
	buf := u.Marshal()
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
}

func TestMarshalMesh(t *testing.T) {
	box := mesh.NewBox("box", mgl32.Vec3{1, 1, 1}, 2)
	vertexData, indexData, ranges := MarshalMesh(box)

	assert.Len(t, vertexData, len(box.Positions)*32)
	assert.Len(t, indexData, 36*4)
	assert.Equal(t, []bind_group_provider.IndexRange{{First: 0, Count: 18}, {First: 18, Count: 18}}, ranges)
	assert.Equal(t, box.Submeshes[1][0], binary.LittleEndian.Uint32(indexData[18*4:]))
}

func TestShaderSourcesEmbedded(t *testing.T) {
	assert.Contains(t, InstancedShaderSource, "fn vs_main")
	assert.Contains(t, InstancedShaderSource, "fn fs_main")
	assert.Contains(t, ShadowShaderSource, "fn vs_main")
}

func TestNewWGPUSubmitterRequiresDevice(t *testing.T) {
	_, err := NewWGPUSubmitter(nil, nil)
	assert.ErrorIs(t, err, errNoDevice)
}

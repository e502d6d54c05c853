package renderer

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawCommand is one submesh draw of one instance.
type DrawCommand struct {
	// Mesh is the render mesh of the selected LOD, already baked.
	Mesh *mesh.Mesh
	// Submesh indexes Mesh.Submeshes.
	Submesh int
	// Material is the regular or fade material for the submesh.
	Material material.Material
	// Matrix is the instance matrix, or its billboard variant.
	Matrix mgl32.Mat4
	// Color is the instance color with alpha replaced by Opacity.
	Color common.Color
	// Opacity is the LOD fade opacity in [0, 1].
	Opacity        float32
	CastShadows    bool
	ReceiveShadows bool
}

// Submitter receives draw commands from an InstanceRenderer. Implementations decide how the
// draw reaches a GPU; Submit is always called from the goroutine that called Render.
type Submitter interface {
	// Submit queues or issues one draw.
	//
	// Parameters:
	//   - cmd: the draw to issue
	Submit(cmd DrawCommand)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(cmd DrawCommand)

// Submit calls f(cmd).
func (f SubmitterFunc) Submit(cmd DrawCommand) { f(cmd) }

// RecordingSubmitter keeps every submitted command in order.
type RecordingSubmitter struct {
	Commands []DrawCommand
}

var _ Submitter = &RecordingSubmitter{}

func (s *RecordingSubmitter) Submit(cmd DrawCommand) {
	s.Commands = append(s.Commands, cmd)
}

// Reset drops the recorded commands, keeping capacity.
func (s *RecordingSubmitter) Reset() {
	s.Commands = s.Commands[:0]
}

// BatchKey identifies draws that can share one instanced draw call.
type BatchKey struct {
	Mesh           *mesh.Mesh
	Submesh        int
	Material       material.Material
	CastShadows    bool
	ReceiveShadows bool
}

// Batch is every instance of one BatchKey collected during a frame.
type Batch struct {
	Key       BatchKey
	Instances []GPUInstanceData
}

// Batcher groups draw commands by mesh, submesh, material and shadow flags. Batches are kept in
// the order their first command arrived so transparent draws keep the classification order.
type Batcher struct {
	index   map[BatchKey]int
	batches []Batch
	count   int
}

var _ Submitter = &Batcher{}

// NewBatcher creates an empty Batcher.
//
// Returns:
//   - *Batcher: the batcher
func NewBatcher() *Batcher {
	return &Batcher{index: make(map[BatchKey]int)}
}

func (b *Batcher) Submit(cmd DrawCommand) {
	key := BatchKey{
		Mesh:           cmd.Mesh,
		Submesh:        cmd.Submesh,
		Material:       cmd.Material,
		CastShadows:    cmd.CastShadows,
		ReceiveShadows: cmd.ReceiveShadows,
	}
	i, ok := b.index[key]
	if !ok {
		i = len(b.batches)
		b.index[key] = i
		if i < cap(b.batches) {
			// reuse the instance slice left over from a previous frame
			b.batches = b.batches[:i+1]
			b.batches[i].Key = key
			b.batches[i].Instances = b.batches[i].Instances[:0]
		} else {
			b.batches = append(b.batches, Batch{Key: key})
		}
	}
	b.batches[i].Instances = append(b.batches[i].Instances, GPUInstanceData{
		Model: cmd.Matrix,
		Color: cmd.Color.Vec4(),
	})
	b.count++
}

// Batches returns the batches collected since the last Reset.
func (b *Batcher) Batches() []Batch {
	return b.batches
}

// Len returns the number of commands collected since the last Reset.
func (b *Batcher) Len() int {
	return b.count
}

// Reset empties the batcher for the next frame, keeping allocations.
func (b *Batcher) Reset() {
	clear(b.index)
	b.batches = b.batches[:0]
	b.count = 0
}

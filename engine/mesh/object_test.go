package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distances(o *Object) []float32 {
	out := make([]float32, 0, o.LODCount())
	for _, l := range o.LODs() {
		out = append(out, l.Distance)
	}
	return out
}

func TestObjectKeepsLODsSorted(t *testing.T) {
	o := NewObject(WithLODs(NewLOD(WithDistance(100)), NewLOD(WithDistance(10)), NewLOD(WithDistance(50))))
	assert.Equal(t, []float32{10, 50, 100}, distances(o))

	o.AddLOD(NewLOD(WithDistance(25)))
	assert.Equal(t, []float32{10, 25, 50, 100}, distances(o))

	require.NoError(t, o.SetLODDistance(0, 75))
	assert.Equal(t, []float32{25, 50, 75, 100}, distances(o))

	require.NoError(t, o.RemoveLOD(1))
	assert.Equal(t, []float32{25, 75, 100}, distances(o))
}

func TestObjectSortIsStable(t *testing.T) {
	a := NewLOD(WithDistance(10))
	b := NewLOD(WithDistance(10))
	o := NewObject(WithLODs(a, b))
	o.AddLOD(NewLOD(WithDistance(5)))

	first, _ := o.LOD(1)
	second, _ := o.LOD(2)
	assert.Same(t, a, first)
	assert.Same(t, b, second)
}

func TestObjectLODErrors(t *testing.T) {
	o := NewObject()
	_, ok := o.LOD(0)
	assert.False(t, ok)
	assert.ErrorIs(t, o.RemoveLOD(0), ErrLODNotFound)
	assert.ErrorIs(t, o.SetLODDistance(-1, 3), ErrLODNotFound)
}

func TestObjectSetLODCount(t *testing.T) {
	o := NewObject(WithLODs(NewLOD(WithDistance(10)), NewLOD(WithDistance(20))))
	o.SetLODCount(4)
	require.Equal(t, 4, o.LODCount())
	last, _ := o.LOD(3)
	assert.True(t, last.CastShadows)

	o.SetLODCount(1)
	assert.Equal(t, []float32{10}, distances(o))

	o.SetLODCount(-3)
	assert.Zero(t, o.LODCount())
}

func TestObjectSelectLODBanding(t *testing.T) {
	o := NewObject(WithLODs(NewLOD(WithDistance(10)), NewLOD(WithDistance(100))))

	tests := []struct {
		name     string
		distance float32
		want     int
	}{
		{"near", 0, 0},
		{"on first threshold", 10, 0},
		{"just past first threshold", 10.01, 1},
		{"middle of second band", 50, 1},
		{"on last threshold", 100, 1},
		{"beyond all", 100.5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.SelectLOD(tt.distance*tt.distance))
		})
	}

	assert.Equal(t, -1, NewObject().SelectLOD(0))
}

func TestObjectPrepareRenderBakesEveryLOD(t *testing.T) {
	o := NewObject(WithLODs(NewLOD(WithMesh(NewQuad("a", 1, 1))), NewLOD(WithMesh(NewQuad("b", 1, 1)), WithDistance(5))))
	o.PrepareRender()
	for _, l := range o.LODs() {
		assert.True(t, l.Baked())
	}
}

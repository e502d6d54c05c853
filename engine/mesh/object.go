package mesh

import (
	"fmt"
	"slices"
)

// Object holds the LODs of one object type and whether that type is hidden.
//
// LODs are kept sorted by ascending Distance after every structural edit made through the
// Object's methods. Sorting is stable, so LODs with equal distances keep their relative order.
type Object struct {
	// Hide skips every instance of this type during rendering.
	Hide bool

	lods []*LOD
}

// NewObject creates an object with no LODs.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - *Object: the new object
func NewObject(options ...ObjectBuilderOption) *Object {
	o := &Object{}
	for _, option := range options {
		option(o)
	}
	o.SortLODs()
	return o
}

// LODs returns the sorted LOD list. Callers must not reorder it; use SetLODDistance instead of
// writing Distance directly.
func (o *Object) LODs() []*LOD {
	return o.lods
}

// LODCount returns the number of LODs.
func (o *Object) LODCount() int {
	return len(o.lods)
}

// LOD returns the i-th LOD in sorted order.
//
// Returns:
//   - *LOD: the LOD
//   - bool: false if i is out of range
func (o *Object) LOD(i int) (*LOD, bool) {
	if i < 0 || i >= len(o.lods) {
		return nil, false
	}
	return o.lods[i], true
}

// AddLOD inserts a LOD and re-sorts.
//
// Parameters:
//   - l: the LOD to add
func (o *Object) AddLOD(l *LOD) {
	o.lods = append(o.lods, l)
	o.SortLODs()
}

// RemoveLOD deletes the i-th LOD.
//
// Returns:
//   - error: ErrLODNotFound if i is out of range
func (o *Object) RemoveLOD(i int) error {
	if i < 0 || i >= len(o.lods) {
		return fmt.Errorf("%w: %d of %d", ErrLODNotFound, i, len(o.lods))
	}
	o.lods = slices.Delete(o.lods, i, i+1)
	return nil
}

// SetLODCount grows the list with default LODs or truncates it from the end, then re-sorts.
//
// Parameters:
//   - n: the desired LOD count, negative values are treated as 0
func (o *Object) SetLODCount(n int) {
	n = max(n, 0)
	for len(o.lods) < n {
		o.lods = append(o.lods, NewLOD())
	}
	if len(o.lods) > n {
		clear(o.lods[n:])
		o.lods = o.lods[:n]
	}
	o.SortLODs()
}

// SetLODDistance changes the i-th LOD's distance and re-sorts. The LOD may move to a new index.
//
// Parameters:
//   - i: the LOD index
//   - d: the new distance
//
// Returns:
//   - error: ErrLODNotFound if i is out of range
func (o *Object) SetLODDistance(i int, d float32) error {
	if i < 0 || i >= len(o.lods) {
		return fmt.Errorf("%w: %d of %d", ErrLODNotFound, i, len(o.lods))
	}
	o.lods[i].Distance = d
	o.SortLODs()
	return nil
}

// SortLODs stable-sorts the LODs by ascending Distance.
func (o *Object) SortLODs() {
	slices.SortStableFunc(o.lods, func(a, b *LOD) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
}

// SelectLOD returns the index of the first LOD whose band contains the squared distance, that is
// the smallest i with distanceSqr <= Distance(i)^2, or -1 if the instance is beyond every LOD.
//
// Parameters:
//   - distanceSqr: squared distance from the viewer to the instance
//
// Returns:
//   - int: the LOD index or -1
func (o *Object) SelectLOD(distanceSqr float32) int {
	for i, l := range o.lods {
		if distanceSqr <= l.DistanceSqr() {
			return i
		}
	}
	return -1
}

// PrepareRender bakes every LOD's render mesh so later reads are side-effect free.
func (o *Object) PrepareRender() {
	for _, l := range o.lods {
		l.RenderMesh()
	}
}

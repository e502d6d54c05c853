package camera

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// StaticView is a fixed View, useful for offscreen passes and headless runs.
type StaticView struct {
	Eye      mgl32.Vec3
	Planes   common.Frustum
	ViewProj mgl32.Mat4
}

var _ View = StaticView{}

// NewStaticView builds a StaticView looking from eye toward target with a [0, 1] depth projection.
//
// Parameters:
//   - eye: the viewer position
//   - target: the look-at point
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clip plane distances
//
// Returns:
//   - StaticView: the view
func NewStaticView(eye, target mgl32.Vec3, fovY, aspect, near, far float32) StaticView {
	vp := common.PerspectiveZO(fovY, aspect, near, far).Mul4(mgl32.LookAtV(eye, target, common.Up))
	return StaticView{
		Eye:      eye,
		Planes:   common.ExtractFrustumFromMatrix(vp),
		ViewProj: vp,
	}
}

func (v StaticView) EyePosition() mgl32.Vec3          { return v.Eye }
func (v StaticView) Frustum() common.Frustum          { return v.Planes }
func (v StaticView) ViewProjectionMatrix() mgl32.Mat4 { return v.ViewProj }

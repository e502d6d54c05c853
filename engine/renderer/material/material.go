package material

import (
	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/renderer/bind_group_provider"
)

// BlendMode selects how a material composites with what is already in the target.
type BlendMode int

const (
	// BlendOpaque writes color and depth with no blending.
	BlendOpaque BlendMode = iota

	// BlendCutout discards fragments below an alpha threshold; used for dithered LOD fades.
	BlendCutout

	// BlendFade alpha-blends the fragment using the instance alpha.
	BlendFade
)

// String returns the lowercase name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendOpaque:
		return "opaque"
	case BlendCutout:
		return "cutout"
	case BlendFade:
		return "fade"
	default:
		return "unknown"
	}
}

// material is the implementation of the Material interface.
type material struct {
	name              string
	baseColor         common.Color
	blendMode         BlendMode
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
	payload           any
}

// Material defines the interface for a render material handle referenced by mesh LODs.
//
// A Material is opaque to the instancing pipeline: it is compared by identity when batching draw
// commands and otherwise passed through to a submission backend. Backend resources (pipeline key,
// bind group provider, backend payload) are mutable so they can be attached after construction
// when the backend uploads its GPU state.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA color the instance tint is multiplied with.
	//
	// Returns:
	//   - common.Color: the base color
	BaseColor() common.Color

	// BlendMode retrieves how the material composites.
	//
	// Returns:
	//   - BlendMode: the blend mode
	BlendMode() BlendMode

	// Transparent reports whether the material reads the instance alpha.
	//
	// Returns:
	//   - bool: true for BlendCutout and BlendFade
	Transparent() bool

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Payload retrieves a backend-specific value attached to the material, such as a raylib material.
	//
	// Returns:
	//   - any: the payload, or nil
	Payload() any

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// SetPayload attaches a backend-specific value.
	//
	// Parameters:
	//   - payload: the value to attach
	SetPayload(payload any)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: common.White,
		blendMode: BlendOpaque,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FadeVariant returns a new BlendFade material with the name, color and pipeline key of m, suffixed
// "_fade". GPU resources and payload are not shared. Returns nil for a nil m.
//
// Parameters:
//   - m: the regular material
//
// Returns:
//   - Material: the fade material
func FadeVariant(m Material) Material {
	if m == nil {
		return nil
	}
	return NewMaterial(
		WithName(m.Name()+"_fade"),
		WithBaseColor(m.BaseColor()),
		WithBlendMode(BlendFade),
		WithPipelineKey(m.PipelineKey()),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() common.Color {
	return m.baseColor
}

func (m *material) BlendMode() BlendMode {
	return m.blendMode
}

func (m *material) Transparent() bool {
	return m.blendMode != BlendOpaque
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) Payload() any {
	return m.payload
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}

func (m *material) SetPayload(payload any) {
	m.payload = payload
}

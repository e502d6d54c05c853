package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, common.White, m.BaseColor())
	assert.Equal(t, BlendOpaque, m.BlendMode())
	assert.False(t, m.Transparent())
	assert.Nil(t, m.BindGroupProvider())
}

func TestTransparent(t *testing.T) {
	assert.True(t, NewMaterial(WithBlendMode(BlendCutout)).Transparent())
	assert.True(t, NewMaterial(WithBlendMode(BlendFade)).Transparent())
}

func TestFadeVariant(t *testing.T) {
	red := common.Color{R: 1, A: 1}
	m := NewMaterial(WithName("bark"), WithBaseColor(red), WithPipelineKey("trees"), WithPayload(42))
	f := FadeVariant(m)

	assert.Equal(t, "bark_fade", f.Name())
	assert.Equal(t, red, f.BaseColor())
	assert.Equal(t, BlendFade, f.BlendMode())
	assert.Equal(t, "trees", f.PipelineKey())
	assert.Nil(t, f.Payload())
	assert.NotSame(t, m, f)
	assert.Nil(t, FadeVariant(nil))
}

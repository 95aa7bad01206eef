// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShrinkMaterialsDropsMinorTextureSlots(t *testing.T) {
	b := newGraphBuilder(t)
	texture := b.addTexture("Body", 2, 2, white)
	index := b.addMaterial("Body_01", texture, 1, 1, 1, 1)
	material := &b.g.Materials[index]
	for _, key := range []string{model.PropBumpMap, model.PropSphereAdd, model.PropOutlineWidthTexture, model.PropShadeTexture} {
		material.Vrm.TextureProperties[key] = texture
	}
	material.Vrm.KeywordMap[model.KeywordNormalMap] = true
	material.Standard.NormalTexture = &model.TextureRef{Index: texture}
	material.Standard.EmissiveTexture = &model.TextureRef{Index: texture}

	shrunk, err := ShrinkMaterials(b.graph())
	require.NoError(t, err)

	got := shrunk.Materials[0]
	assert.Equal(t, map[string]int{model.PropMainTex: texture, model.PropShadeTexture: texture}, got.Vrm.TextureProperties)
	assert.NotContains(t, got.Vrm.KeywordMap, model.KeywordNormalMap)
	assert.Nil(t, got.Standard.NormalTexture)
	assert.Nil(t, got.Standard.EmissiveTexture)
	assert.NotNil(t, got.Standard.BaseColorTexture)
	assert.Len(t, b.g.Materials[0].Vrm.TextureProperties, 5, "入力グラフは変更しない")
}

// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGarbageGraph は未参照の材質・テクスチャ・アクセサーを含むグラフを作る。
func buildGarbageGraph(t *testing.T) *model.Graph {
	b := newGraphBuilder(t)
	b.addTexture("Unused", 2, 2, blue)
	b.addMaterial("Orphan", b.addTexture("Orphan", 2, 2, green), 0, 1, 0, 1)
	b.addUVs([2]float32{0.5, 0.5})
	body := b.addTexturedPrimitive("Body", "Body_01", red)
	thumbnail := b.addTexture("Thumbnail", 2, 2, white)
	b.g.Vrm.ThumbnailTexture = model.Ptr(thumbnail)
	b.g.Materials[body].Vrm.TextureProperties[model.PropShadeTexture] = b.addTexture("Shade", 2, 2, blue)

	inverseBind := b.addUVs([2]float32{1, 1})
	b.g.Skins = []model.Skin{{Name: "skin", InverseBindMatrices: model.Ptr(inverseBind)}}
	return b.graph()
}

func TestCleanGraphDropsUnreferencedElements(t *testing.T) {
	g := buildGarbageGraph(t)

	cleaned, err := CleanGraph(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"Body_01"}, cleaned.MaterialNames())
	require.Len(t, cleaned.Textures, 3)
	assert.Equal(t, []string{"Body_01", "Thumbnail", "Shade"}, textureNames(cleaned))
	require.Len(t, cleaned.Images, 3)
	// UV, インデックス, スキン行列
	assert.Len(t, cleaned.Accessors, 3)
	// 画像3件 + アクセサー3件
	assert.Len(t, cleaned.BufferViews, 6)

	primitive := cleaned.Meshes[0].Primitives[0]
	assert.Equal(t, 0, *primitive.Material)
	uvs := accessorUVs(t, cleaned, primitive.Attributes[model.AttributeTexCoord0])
	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {1, 1}}, uvs)
	indices, err := readIndices(cleaned, *primitive.Indices)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indices)

	material := cleaned.Materials[0]
	assert.Equal(t, 0, material.Vrm.TextureProperties[model.PropMainTex])
	assert.Equal(t, 0, material.Standard.BaseColorTexture.Index)
	assert.Equal(t, 2, material.Vrm.TextureProperties[model.PropShadeTexture])
	assert.Equal(t, 1, *cleaned.Vrm.ThumbnailTexture)
	assert.Equal(t, 2, *cleaned.Skins[0].InverseBindMatrices)
	for i, texture := range cleaned.Textures {
		_, err := cleaned.ImageData(*texture.Source)
		assert.NoError(t, err, "texture=%d", i)
	}
}

func TestCleanGraphIsIdempotent(t *testing.T) {
	once, err := CleanGraph(buildGarbageGraph(t))
	require.NoError(t, err)
	twice, err := CleanGraph(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestCleanGraphKeepsSparseViews(t *testing.T) {
	b := newGraphBuilder(t)
	b.addTexturedPrimitive("Body", "Body_01", red)
	sparseIndices := b.g.AppendBufferView(model.BufferView{Data: []byte{0, 0}})
	sparseValues := b.g.AppendBufferView(model.BufferView{Data: make([]byte, 8)})
	target := b.g.AppendAccessor(model.Accessor{
		ComponentType: model.ComponentFloat,
		Count:         3,
		Type:          model.AccessorVec2,
		Sparse: &model.AccessorSparse{
			Count:                1,
			IndicesBufferView:    sparseIndices,
			IndicesComponentType: model.ComponentUshort,
			ValuesBufferView:     sparseValues,
		},
	})
	b.g.Meshes[0].Primitives[0].Targets = []map[string]int{{"TEXCOORD_0": target}}
	b.g.BufferViews = append([]model.BufferView{{Data: []byte{9}}}, b.g.BufferViews...)
	shiftViews(b.g, 1)

	cleaned, err := CleanGraph(b.graph())
	require.NoError(t, err)

	sparse := cleaned.Accessors[cleaned.Meshes[0].Primitives[0].Targets[0]["TEXCOORD_0"]].Sparse
	require.NotNil(t, sparse)
	assert.Equal(t, []byte{0, 0}, cleaned.BufferViews[sparse.IndicesBufferView].Data)
	assert.Len(t, cleaned.BufferViews[sparse.ValuesBufferView].Data, 8)
	assert.Len(t, cleaned.BufferViews, len(b.g.BufferViews)-1)
}

func TestCleanGraphRejectsDanglingReference(t *testing.T) {
	g := buildGarbageGraph(t)
	g.Materials[len(g.Materials)-1].Vrm.TextureProperties[model.PropEmissionMap] = 99

	_, err := CleanGraph(g)
	assert.ErrorIs(t, err, model.ErrReference)
}

func textureNames(g *model.Graph) []string {
	names := make([]string, len(g.Textures))
	for i, texture := range g.Textures {
		names[i] = texture.Name
	}
	return names
}

// shiftViews は先頭へbufferViewを挿入した後の参照をずらす。
func shiftViews(g *model.Graph, offset int) {
	for i := range g.Accessors {
		accessor := &g.Accessors[i]
		if accessor.BufferView != nil {
			accessor.BufferView = model.Ptr(*accessor.BufferView + offset)
		}
		if accessor.Sparse != nil {
			accessor.Sparse.IndicesBufferView += offset
			accessor.Sparse.ValuesBufferView += offset
		}
	}
	for i := range g.Images {
		if g.Images[i].BufferView != nil {
			g.Images[i].BufferView = model.Ptr(*g.Images[i].BufferView + offset)
		}
	}
}

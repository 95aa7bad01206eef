// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildHairGraph は材質 hair, hair, back, hair の順にプリミティブを持つ髪メッシュを作る。
func buildHairGraph(t *testing.T) *model.Graph {
	b := newGraphBuilder(t)
	hair := b.addMaterial("Hair_01", -1)
	back := b.addMaterial("HairBack_01", -1)
	uv := b.addUVs([2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1}, [2]float32{0, 1})
	attributes := map[string]int{model.AttributeTexCoord0: uv}

	for _, p := range []struct {
		material int
		indices  []int
	}{
		{hair, []int{0, 1, 2}},
		{hair, []int{2, 3, 0}},
		{back, []int{0, 1, 3}},
		{hair, []int{1, 2, 3}},
	} {
		indices := b.addIndices(model.ComponentUshort, p.indices...)
		b.addPrimitive("Hair001", p.material, attributes, model.Ptr(indices))
	}
	b.addPrimitive("Body", back, attributes, model.Ptr(b.addIndices(model.ComponentUshort, 0, 1, 2)))
	return b.graph()
}

func TestCombinePrimitivesMergesConsecutiveRuns(t *testing.T) {
	g := buildHairGraph(t)

	merged, err := CombinePrimitives(g, model.MeshKeyHair)
	require.NoError(t, err)

	hair := merged.Meshes[0]
	require.Len(t, hair.Primitives, 3)
	assert.Equal(t, []string{"Hair_01", "HairBack_01", "Hair_01"}, primitiveMaterialNames(t, merged, 0))

	indices, err := readIndices(merged, *hair.Primitives[0].Indices)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 2, 3, 0}, indices)
	assert.Equal(t, g.Meshes[0].Primitives[0].Attributes, hair.Primitives[0].Attributes)

	single, err := readIndices(merged, *hair.Primitives[1].Indices)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, single)

	assert.Len(t, merged.Meshes[1].Primitives, 1, "一致しないメッシュは変更しない")
	assert.Len(t, g.Meshes[0].Primitives, 4, "入力グラフは変更しない")
}

func TestCombinePrimitivesWithoutMatchingMesh(t *testing.T) {
	g := buildHairGraph(t)

	merged, err := CombinePrimitives(g, "Tail")
	require.NoError(t, err)
	assert.Equal(t, g.Meshes, merged.Meshes)
}

func TestCombinePrimitivesRejectsOffsetFragment(t *testing.T) {
	g := buildHairGraph(t)
	second := *g.Meshes[0].Primitives[1].Indices
	g.Accessors[second].ByteOffset = 2
	g.Accessors[second].Count = 2

	_, err := CombinePrimitives(g, model.MeshKeyHair)
	assert.ErrorIs(t, err, model.ErrPrecondition)
}

func TestCombinePrimitivesRejectsShortFragment(t *testing.T) {
	g := buildHairGraph(t)
	first := *g.Meshes[0].Primitives[0].Indices
	g.Accessors[first].Count = 2

	_, err := CombinePrimitives(g, model.MeshKeyHair)
	assert.ErrorIs(t, err, model.ErrPrecondition)
}

func TestCombinePrimitivesRejectsMismatchedAttributes(t *testing.T) {
	g := buildHairGraph(t)
	g.Meshes[0].Primitives[1].Attributes = map[string]int{"POSITION": 0}

	_, err := CombinePrimitives(g, model.MeshKeyHair)
	assert.ErrorIs(t, err, model.ErrPrecondition)
}

func TestCombinePrimitivesRejectsMismatchedComponentType(t *testing.T) {
	g := buildHairGraph(t)
	b := &graphBuilder{t: t, g: g}
	g.Meshes[0].Primitives[1].Indices = model.Ptr(b.addIndices(model.ComponentUint, 2, 3, 0))

	_, err := CombinePrimitives(g, model.MeshKeyHair)
	assert.ErrorIs(t, err, model.ErrPrecondition)
}

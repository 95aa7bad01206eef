// 指示: miu200521358
package minteractor

import (
	"maps"
	"slices"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// ModifyMaterials は材質名キーごとのパッチを、名前に部分一致する最初の材質へ適用する。
// 適用はキーの辞書順で行う。
func ModifyMaterials(graph *model.Graph, patches map[string]model.MaterialPatch) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(patches)) {
		index, err := g.MustFindMaterial(name)
		if err != nil {
			return nil, err
		}
		modified, err := patches[name].Apply(g.Materials[index].Vrm)
		if err != nil {
			return nil, err
		}
		g.Materials[index].Vrm = modified
		logReduceDebug("材質パッチ適用: %s", g.Materials[index].Name)
	}
	return g, nil
}

// SetFaceRenderType は顔材質をアルファテストで描画するよう切り替える。
func SetFaceRenderType(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	index, err := g.MustFindMaterial(model.MaterialKeyFace)
	if err != nil {
		return nil, err
	}
	vrm := &g.Materials[index].Vrm
	vrm.Normalize()
	vrm.KeywordMap[model.KeywordAlphaTestOn] = true
	vrm.TagMap[model.TagRenderType] = model.RenderTypeTransparentCutout
	return g, nil
}

// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"

// unusedVrmTextureProperties は削除するVRM材質のテクスチャスロット。
var unusedVrmTextureProperties = []string{
	model.PropBumpMap,
	model.PropSphereAdd,
	model.PropOutlineWidthTexture,
}

// ShrinkMaterials は法線マップ・スフィアマップ・アウトライン幅テクスチャなど
// 見た目への寄与が小さいテクスチャ参照を材質から外す。
func ShrinkMaterials(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	for i := range g.Materials {
		material := &g.Materials[i]
		material.Standard.EmissiveTexture = nil
		material.Standard.NormalTexture = nil

		material.Vrm.Normalize()
		for _, key := range unusedVrmTextureProperties {
			delete(material.Vrm.TextureProperties, key)
		}
		delete(material.Vrm.KeywordMap, model.KeywordNormalMap)
	}
	return g, nil
}

// 指示: miu200521358
package minteractor

import (
	"math"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"gonum.org/v1/gonum/floats"
)

// FindNearVrmMaterial は名前にキーを含む材質のうち、基準材質と _Color が最も近い材質のインデックスを返す。
// 基準材質自身と _Color を比較できない材質は候補から除く。見つからなければ -1。
func FindNearVrmMaterial(graph *model.Graph, key string, baseIndex int) int {
	if key == "" || baseIndex < 0 || baseIndex >= len(graph.Materials) {
		return -1
	}
	baseColor, ok := graph.Materials[baseIndex].Vrm.VectorProperties[model.PropColor]
	if !ok {
		return -1
	}

	nearest := -1
	nearestDistance := math.Inf(1)
	for i, material := range graph.Materials {
		if i == baseIndex || !strings.Contains(material.Name, key) {
			continue
		}
		color, ok := material.Vrm.VectorProperties[model.PropColor]
		if !ok || len(color) != len(baseColor) {
			continue
		}
		if distance := floats.Distance(color, baseColor, 2); distance < nearestDistance {
			nearest = i
			nearestDistance = distance
		}
	}
	return nearest
}

// buildNearAtlas は基準材質と色の近い材質を組み合わせたアトラス指定を返す。
// 結合先は色の近い材質側になる。組み合わせる材質がなければ false。
func buildNearAtlas(graph *model.Graph, spec model.NearAtlasSpec) (model.AtlasSpec, bool) {
	baseIndex := graph.FindMaterial(spec.Base)
	if baseIndex < 0 {
		return model.AtlasSpec{}, false
	}
	nearIndex := FindNearVrmMaterial(graph, spec.NearKey, baseIndex)
	if nearIndex < 0 {
		return model.AtlasSpec{}, false
	}
	nearName := graph.Materials[nearIndex].Name
	return model.AtlasSpec{
		Base: nearName,
		Layout: model.AtlasLayout{
			{Name: spec.Base, Pos: spec.Pos, Size: spec.Size},
			{Name: nearName, Pos: spec.NearPos, Size: spec.NearSize},
		},
	}, true
}

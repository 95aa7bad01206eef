// 指示: miu200521358
package minteractor

import (
	"slices"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// FindEyeExtraName は > < 目の材質名を返す。見つからなければ空文字。
func FindEyeExtraName(graph *model.Graph) string {
	for _, material := range graph.Materials {
		if strings.Contains(material.Name, model.MaterialKeyEyeExtra) ||
			strings.Contains(material.Name, model.MaterialKeyFaceEyeSP) {
			return material.Name
		}
	}
	return ""
}

// FaceDrawOrder は顔メッシュの描画順に並べた材質キーを返す。
func FaceDrawOrder(graph *model.Graph) []string {
	return []string{
		model.MaterialKeyFace,
		FindEyeExtraName(graph),
		model.MaterialKeyFaceMouth,
		model.MaterialKeyFaceEyeline,
		model.MaterialKeyFaceEyelash,
		model.MaterialKeyFaceBrow,
		model.MaterialKeyEyeWhite,
		model.MaterialKeyEyeIris,
		model.MaterialKeyEyeHighlight,
	}
}

// SortMeshPrimitives は名前に部分一致する全メッシュのプリミティブを、
// 材質名が最初に部分一致する順序キーの位置で安定ソートする。一致しない材質は末尾に回す。
func SortMeshPrimitives(graph *model.Graph, meshName string, order []string) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	keys := slices.DeleteFunc(slices.Clone(order), func(key string) bool { return key == "" })
	weight := func(name string) int {
		for i, key := range keys {
			if strings.Contains(name, key) {
				return i
			}
		}
		return len(keys)
	}

	for _, meshIndex := range g.FindMeshes(meshName) {
		mesh := &g.Meshes[meshIndex]
		weights := make([]int, len(mesh.Primitives))
		sorted := make([]int, len(mesh.Primitives))
		for i, primitive := range mesh.Primitives {
			name, err := g.PrimitiveMaterialName(primitive)
			if err != nil {
				return nil, err
			}
			weights[i] = weight(name)
			sorted[i] = i
		}
		slices.SortStableFunc(sorted, func(a int, b int) int {
			return weights[a] - weights[b]
		})
		primitives := make([]model.Primitive, len(mesh.Primitives))
		for i, from := range sorted {
			primitives[i] = mesh.Primitives[from]
		}
		mesh.Primitives = primitives
	}
	return g, nil
}

// 指示: miu200521358
package minteractor

import (
	"slices"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// ReplaceShadeColor は陰色を主色と同じにして陰影色を無視させる。
func ReplaceShadeColor(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	for i := range g.Materials {
		vrm := &g.Materials[i].Vrm
		vrm.Normalize()
		color, ok := vrm.VectorProperties[model.PropColor]
		if !ok {
			continue
		}
		vrm.VectorProperties[model.PropShadeColor] = slices.Clone(color)
	}
	return g, nil
}

// EmissiveMaterials は主テクスチャを発光テクスチャとして表示し、光源の影響を受けないようにする。
func EmissiveMaterials(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	for i := range g.Materials {
		vrm := &g.Materials[i].Vrm
		vrm.Normalize()
		vrm.FloatProperties[model.PropIndirectLightIntensity] = 0
		if color, ok := vrm.VectorProperties[model.PropColor]; ok {
			vrm.VectorProperties[model.PropEmissionColor] = slices.Clone(color)
		}
		vrm.VectorProperties[model.PropColor] = []float64{0, 0, 0, 1}
		vrm.VectorProperties[model.PropShadeColor] = []float64{0, 0, 0, 1}
		if mainTex, ok := vrm.TextureProperties[model.PropMainTex]; ok {
			vrm.TextureProperties[model.PropEmissionMap] = mainTex
		}
	}
	return g, nil
}

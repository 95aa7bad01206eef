// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// NamePair は材質名と正規名の対応を表す。
type NamePair struct {
	Name      string
	Canonical string
}

// UniqueMaterialNames は材質名ごとに、構造的に等しい最初の材質名を正規名として対応付ける。
// 名前と _OutlineColor は比較から除外する。
func UniqueMaterialNames(materials []model.Material) []NamePair {
	type seenMaterial struct {
		vrm  model.VrmMaterial
		name string
	}
	seen := make([]seenMaterial, 0, len(materials))
	pairs := make([]NamePair, 0, len(materials))
	for _, material := range materials {
		canonical, found := "", false
		for _, s := range seen {
			if s.vrm.EqualIgnoring(material.Vrm, model.PropOutlineColor) {
				canonical, found = s.name, true
				break
			}
		}
		if !found {
			seen = append(seen, seenMaterial{vrm: material.Vrm, name: material.Name})
			canonical = material.Name
		}
		pairs = append(pairs, NamePair{Name: material.Name, Canonical: canonical})
	}
	return pairs
}

// DeduplicateMaterials は重複材質を正規材質へ統合する。
func DeduplicateMaterials(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}

	pairs := UniqueMaterialNames(g.Materials)
	canonicalByName := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if _, exists := canonicalByName[pair.Name]; !exists {
			canonicalByName[pair.Name] = pair.Canonical
		}
	}

	firstIndexByName := make(map[string]int, len(g.Materials))
	for i, material := range g.Materials {
		if _, exists := firstIndexByName[material.Name]; !exists {
			firstIndexByName[material.Name] = i
		}
	}

	materials := make([]model.Material, 0, len(g.Materials))
	newIndexByCanonical := map[string]int{}
	for _, pair := range pairs {
		if _, exists := newIndexByCanonical[pair.Canonical]; exists {
			continue
		}
		newIndexByCanonical[pair.Canonical] = len(materials)
		materials = append(materials, g.Materials[firstIndexByName[pair.Canonical]])
	}

	for meshIndex := range g.Meshes {
		for primitiveIndex := range g.Meshes[meshIndex].Primitives {
			primitive := &g.Meshes[meshIndex].Primitives[primitiveIndex]
			name, err := g.PrimitiveMaterialName(*primitive)
			if err != nil {
				return nil, err
			}
			canonical, ok := canonicalByName[name]
			if !ok {
				return nil, model.NewReferenceError("canonical material", name, -1)
			}
			primitive.Material = model.Ptr(newIndexByCanonical[canonical])
		}
	}

	logReduceDebug("材質重複排除: %d -> %d", len(g.Materials), len(materials))
	g.Materials = materials
	return g, nil
}

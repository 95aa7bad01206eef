// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// liveSet は要素ごとの生存フラグと、旧インデックスから新インデックスへの対応を表す。
type liveSet struct {
	kind  string
	live  []bool
	remap []int
}

// newLiveSet は全要素を未参照として初期化する。
func newLiveSet(kind string, size int) *liveSet {
	return &liveSet{kind: kind, live: make([]bool, size)}
}

// mark は参照された要素を生存扱いにする。範囲外は参照エラー。
func (s *liveSet) mark(index int) error {
	if index < 0 || index >= len(s.live) {
		return model.NewReferenceError(s.kind, "", index)
	}
	s.live[index] = true
	return nil
}

// markPtr はnilでない参照を生存扱いにする。
func (s *liveSet) markPtr(index *int) error {
	if index == nil {
		return nil
	}
	return s.mark(*index)
}

// build は生存要素を詰めた新インデックス表を作る。削除要素は -1。
func (s *liveSet) build() {
	s.remap = make([]int, len(s.live))
	next := 0
	for i, live := range s.live {
		if !live {
			s.remap[i] = -1
			continue
		}
		s.remap[i] = next
		next++
	}
}

// at は新インデックスを返す。
func (s *liveSet) at(index int) int {
	return s.remap[index]
}

// ptr は参照を新インデックスへ置き換えたポインタを返す。
func (s *liveSet) ptr(index *int) *int {
	if index == nil {
		return nil
	}
	return model.Ptr(s.remap[*index])
}

// filterLive は生存要素だけを順序を保って返す。
func filterLive[T any](items []T, set *liveSet) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		if set.live[i] {
			out = append(out, item)
		}
	}
	return out
}

// CleanGraph はプリミティブや生存材質から到達できない材質・テクスチャ・画像・アクセサー・bufferViewを取り除き、
// 残った要素の順序を保ったまま参照を詰め直す。
func CleanGraph(graph *model.Graph) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}

	materials := newLiveSet("material", len(g.Materials))
	textures := newLiveSet("texture", len(g.Textures))
	images := newLiveSet("image", len(g.Images))
	accessors := newLiveSet("accessor", len(g.Accessors))
	views := newLiveSet("bufferView", len(g.BufferViews))

	if err := markMeshReferences(g, materials, accessors); err != nil {
		return nil, err
	}
	for _, skin := range g.Skins {
		if err := accessors.markPtr(skin.InverseBindMatrices); err != nil {
			return nil, err
		}
	}
	for i, material := range g.Materials {
		if !materials.live[i] {
			continue
		}
		for _, ref := range material.Standard.TextureRefs() {
			if err := textures.mark(ref.Index); err != nil {
				return nil, err
			}
		}
		for _, textureIndex := range material.Vrm.TextureProperties {
			if err := textures.mark(textureIndex); err != nil {
				return nil, err
			}
		}
	}
	if err := textures.markPtr(g.Vrm.ThumbnailTexture); err != nil {
		return nil, err
	}
	for i, texture := range g.Textures {
		if textures.live[i] {
			if err := images.markPtr(texture.Source); err != nil {
				return nil, err
			}
		}
	}
	for i, image := range g.Images {
		if images.live[i] {
			if err := views.markPtr(image.BufferView); err != nil {
				return nil, err
			}
		}
	}
	for i, accessor := range g.Accessors {
		if !accessors.live[i] {
			continue
		}
		if err := views.markPtr(accessor.BufferView); err != nil {
			return nil, err
		}
		if sparse := accessor.Sparse; sparse != nil {
			if err := views.mark(sparse.IndicesBufferView); err != nil {
				return nil, err
			}
			if err := views.mark(sparse.ValuesBufferView); err != nil {
				return nil, err
			}
		}
	}

	for _, set := range []*liveSet{materials, textures, images, accessors, views} {
		set.build()
	}
	remapGraphReferences(g, materials, textures, images, accessors, views)

	logReduceDebug(
		"不要要素削除: materials %d->%d textures %d->%d images %d->%d accessors %d->%d bufferViews %d->%d",
		len(g.Materials), countLive(materials),
		len(g.Textures), countLive(textures),
		len(g.Images), countLive(images),
		len(g.Accessors), countLive(accessors),
		len(g.BufferViews), countLive(views),
	)
	g.Materials = filterLive(g.Materials, materials)
	g.Textures = filterLive(g.Textures, textures)
	g.Images = filterLive(g.Images, images)
	g.Accessors = filterLive(g.Accessors, accessors)
	g.BufferViews = filterLive(g.BufferViews, views)
	return g, nil
}

// markMeshReferences はプリミティブが参照する材質とアクセサーを生存扱いにする。
func markMeshReferences(g *model.Graph, materials *liveSet, accessors *liveSet) error {
	for _, mesh := range g.Meshes {
		for _, primitive := range mesh.Primitives {
			if err := materials.markPtr(primitive.Material); err != nil {
				return err
			}
			if err := accessors.markPtr(primitive.Indices); err != nil {
				return err
			}
			for _, accessorIndex := range primitive.Attributes {
				if err := accessors.mark(accessorIndex); err != nil {
					return err
				}
			}
			for _, target := range primitive.Targets {
				for _, accessorIndex := range target {
					if err := accessors.mark(accessorIndex); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// remapGraphReferences は生存要素の参照を新インデックスへ置き換える。
func remapGraphReferences(g *model.Graph, materials, textures, images, accessors, views *liveSet) {
	for meshIndex := range g.Meshes {
		for primitiveIndex := range g.Meshes[meshIndex].Primitives {
			primitive := &g.Meshes[meshIndex].Primitives[primitiveIndex]
			primitive.Material = materials.ptr(primitive.Material)
			primitive.Indices = accessors.ptr(primitive.Indices)
			for key, accessorIndex := range primitive.Attributes {
				primitive.Attributes[key] = accessors.at(accessorIndex)
			}
			for _, target := range primitive.Targets {
				for key, accessorIndex := range target {
					target[key] = accessors.at(accessorIndex)
				}
			}
		}
	}
	for i := range g.Skins {
		g.Skins[i].InverseBindMatrices = accessors.ptr(g.Skins[i].InverseBindMatrices)
	}
	for i := range g.Materials {
		if !materials.live[i] {
			continue
		}
		material := &g.Materials[i]
		for _, ref := range material.Standard.TextureRefs() {
			ref.Index = textures.at(ref.Index)
		}
		for key, textureIndex := range material.Vrm.TextureProperties {
			material.Vrm.TextureProperties[key] = textures.at(textureIndex)
		}
	}
	g.Vrm.ThumbnailTexture = textures.ptr(g.Vrm.ThumbnailTexture)
	for i := range g.Textures {
		if textures.live[i] {
			g.Textures[i].Source = images.ptr(g.Textures[i].Source)
		}
	}
	for i := range g.Images {
		if images.live[i] {
			g.Images[i].BufferView = views.ptr(g.Images[i].BufferView)
		}
	}
	for i := range g.Accessors {
		if !accessors.live[i] {
			continue
		}
		accessor := &g.Accessors[i]
		accessor.BufferView = views.ptr(accessor.BufferView)
		if sparse := accessor.Sparse; sparse != nil {
			sparse.IndicesBufferView = views.at(sparse.IndicesBufferView)
			sparse.ValuesBufferView = views.at(sparse.ValuesBufferView)
		}
	}
}

// countLive は生存要素数を返す。
func countLive(set *liveSet) int {
	count := 0
	for _, live := range set.live {
		if live {
			count++
		}
	}
	return count
}

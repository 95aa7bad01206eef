// 指示: miu200521358
package model

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Material は標準材質とVRM材質を1つにまとめた材質エンティティを表す。
type Material struct {
	Name     string
	Standard StandardMaterial
	Vrm      VrmMaterial
}

// TextureRef は材質からのテクスチャ参照を表す。
type TextureRef struct {
	Index    int
	TexCoord int
	// Scale は normalTexture の scale、occlusionTexture の strength を保持する。
	Scale *float64
}

// StandardMaterial はglTF標準材質の属性を表す。
type StandardMaterial struct {
	BaseColorFactor          *[4]float64
	BaseColorTexture         *TextureRef
	MetallicFactor           *float64
	RoughnessFactor          *float64
	MetallicRoughnessTexture *TextureRef
	NormalTexture            *TextureRef
	OcclusionTexture         *TextureRef
	EmissiveTexture          *TextureRef
	EmissiveFactor           [3]float64
	AlphaMode                string
	AlphaCutoff              *float64
	DoubleSided              bool
	Extensions               map[string]json.RawMessage
	Extras                   json.RawMessage
}

// TextureRefs は標準材質が参照するテクスチャ参照を列挙する。
func (m *StandardMaterial) TextureRefs() []*TextureRef {
	refs := []*TextureRef{}
	for _, ref := range []*TextureRef{
		m.BaseColorTexture,
		m.MetallicRoughnessTexture,
		m.NormalTexture,
		m.OcclusionTexture,
		m.EmissiveTexture,
	} {
		if ref != nil {
			refs = append(refs, ref)
		}
	}
	return refs
}

// VrmMaterial はVRM0 materialProperties の1要素を表す。
type VrmMaterial struct {
	Shader            string               `json:"shader"`
	RenderQueue       int                  `json:"renderQueue"`
	FloatProperties   map[string]float64   `json:"floatProperties"`
	VectorProperties  map[string][]float64 `json:"vectorProperties"`
	TextureProperties map[string]int       `json:"textureProperties"`
	KeywordMap        map[string]bool      `json:"keywordMap"`
	TagMap            map[string]string    `json:"tagMap"`
}

// NewVrmMaterial は空のプロパティマップを持つVRM材質を生成する。
func NewVrmMaterial() VrmMaterial {
	return VrmMaterial{
		FloatProperties:   map[string]float64{},
		VectorProperties:  map[string][]float64{},
		TextureProperties: map[string]int{},
		KeywordMap:        map[string]bool{},
		TagMap:            map[string]string{},
	}
}

// Normalize は nil のプロパティマップを空マップへ置き換える。
func (m *VrmMaterial) Normalize() {
	if m.FloatProperties == nil {
		m.FloatProperties = map[string]float64{}
	}
	if m.VectorProperties == nil {
		m.VectorProperties = map[string][]float64{}
	}
	if m.TextureProperties == nil {
		m.TextureProperties = map[string]int{}
	}
	if m.KeywordMap == nil {
		m.KeywordMap = map[string]bool{}
	}
	if m.TagMap == nil {
		m.TagMap = map[string]string{}
	}
}

// Clone はプロパティマップを複製したVRM材質を返す。
func (m VrmMaterial) Clone() VrmMaterial {
	dst := m
	dst.FloatProperties = maps.Clone(m.FloatProperties)
	dst.TextureProperties = maps.Clone(m.TextureProperties)
	dst.KeywordMap = maps.Clone(m.KeywordMap)
	dst.TagMap = maps.Clone(m.TagMap)
	if m.VectorProperties != nil {
		dst.VectorProperties = make(map[string][]float64, len(m.VectorProperties))
		for k, v := range m.VectorProperties {
			dst.VectorProperties[k] = slices.Clone(v)
		}
	}
	dst.Normalize()
	return dst
}

// EqualIgnoring は指定したベクタープロパティを除いて構造的に等しいか判定する。
// マップのキー順序は比較に影響しない。
func (m VrmMaterial) EqualIgnoring(other VrmMaterial, ignoredVectors ...string) bool {
	if m.Shader != other.Shader || m.RenderQueue != other.RenderQueue {
		return false
	}
	if !maps.Equal(m.FloatProperties, other.FloatProperties) ||
		!maps.Equal(m.TextureProperties, other.TextureProperties) ||
		!maps.Equal(m.KeywordMap, other.KeywordMap) ||
		!maps.Equal(m.TagMap, other.TagMap) {
		return false
	}
	return maps.EqualFunc(
		withoutKeys(m.VectorProperties, ignoredVectors),
		withoutKeys(other.VectorProperties, ignoredVectors),
		slices.Equal[[]float64],
	)
}

// withoutKeys は指定キーを除いたマップの浅いコピーを返す。
func withoutKeys(src map[string][]float64, keys []string) map[string][]float64 {
	dst := make(map[string][]float64, len(src))
	for k, v := range src {
		if slices.Contains(keys, k) {
			continue
		}
		dst[k] = v
	}
	return dst
}

// FindMaterial は名前に部分一致する最初の材質インデックスを返す。見つからなければ -1。
func (g *Graph) FindMaterial(name string) int {
	if name == "" {
		return -1
	}
	for i, material := range g.Materials {
		if strings.Contains(material.Name, name) {
			return i
		}
	}
	return -1
}

// MustFindMaterial は名前に部分一致する最初の材質インデックスを返す。
// 見つからない場合は参照エラーを返す。
func (g *Graph) MustFindMaterial(name string) (int, error) {
	index := g.FindMaterial(name)
	if index < 0 {
		return -1, NewReferenceError("material", name, -1)
	}
	return index, nil
}

// MaterialNames は材質名を順に列挙する。
func (g *Graph) MaterialNames() []string {
	names := make([]string, len(g.Materials))
	for i, material := range g.Materials {
		names[i] = material.Name
	}
	return names
}

// PrimitiveMaterialName はプリミティブが参照する材質名を返す。
func (g *Graph) PrimitiveMaterialName(primitive Primitive) (string, error) {
	if primitive.Material == nil {
		return "", NewReferenceError("primitive material", "", -1)
	}
	index := *primitive.Material
	if index < 0 || index >= len(g.Materials) {
		return "", NewReferenceError("material", "", index)
	}
	return g.Materials[index].Name, nil
}

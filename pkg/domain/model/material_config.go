// 指示: miu200521358
package model

import (
	"encoding/json"
	"image"
	"maps"
	"slices"
)

// Placement はアトラス上の1区画を表す。Name は材質名の部分一致キー。
// Name が空の区画は材質を貼らず、合成画像の外接サイズにだけ寄与する。
type Placement struct {
	Name string
	Pos  image.Point
	Size image.Point
}

// Rect は区画の矩形を返す。
func (p Placement) Rect() image.Rectangle {
	return image.Rectangle{Min: p.Pos, Max: p.Pos.Add(p.Size)}
}

// AtlasLayout は順序付きの区画列を表す。順序は合成とUV更新の適用順になる。
type AtlasLayout []Placement

// Keys は区画の材質キーを順に列挙する。
func (l AtlasLayout) Keys() []string {
	keys := make([]string, len(l))
	for i, placement := range l {
		keys[i] = placement.Name
	}
	return keys
}

// Find はキーに一致する区画を返す。
func (l AtlasLayout) Find(name string) (Placement, bool) {
	for _, placement := range l {
		if placement.Name == name {
			return placement, true
		}
	}
	return Placement{}, false
}

// AtlasSpec は基準材質と区画列の組を表す。
type AtlasSpec struct {
	Base   string
	Layout AtlasLayout
}

// NearAtlasSpec は基準材質と色の近い材質を組み合わせるアトラス指定を表す。
type NearAtlasSpec struct {
	Base     string
	NearKey  string
	Pos      image.Point
	Size     image.Point
	NearPos  image.Point
	NearSize image.Point
}

// PatchNode は材質パッチの1要素を表す。Children が nil なら Value で上書きする葉。
type PatchNode struct {
	Value    any
	Children MaterialPatch
}

// IsLeaf は上書き値を持つ葉か判定する。
func (n PatchNode) IsLeaf() bool {
	return n.Children == nil
}

// MaterialPatch はVRM材質へ再帰的に適用する部分更新を表す。
type MaterialPatch map[string]PatchNode

// NewMaterialPatch は汎用マップからパッチを構築する。入れ子のマップは再帰、それ以外は葉になる。
func NewMaterialPatch(values map[string]any) MaterialPatch {
	patch := make(MaterialPatch, len(values))
	for key, value := range values {
		if children, ok := value.(map[string]any); ok {
			patch[key] = PatchNode{Children: NewMaterialPatch(children)}
			continue
		}
		patch[key] = PatchNode{Value: value}
	}
	return patch
}

// Apply はVRM材質へパッチを適用した結果を返す。型の合わない値は前提条件エラー。
func (p MaterialPatch) Apply(material VrmMaterial) (VrmMaterial, error) {
	raw, err := json.Marshal(material)
	if err != nil {
		return VrmMaterial{}, NewPreconditionError("材質の展開に失敗しました: %v", err)
	}
	tree := map[string]any{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return VrmMaterial{}, NewPreconditionError("材質の展開に失敗しました: %v", err)
	}
	p.mergeInto(tree)

	merged, err := json.Marshal(tree)
	if err != nil {
		return VrmMaterial{}, NewPreconditionError("材質パッチの変換に失敗しました: %v", err)
	}
	out := VrmMaterial{}
	if err := json.Unmarshal(merged, &out); err != nil {
		return VrmMaterial{}, NewPreconditionError("材質パッチの値が不正です: %v", err)
	}
	out.Normalize()
	return out, nil
}

// mergeInto は汎用マップへ再帰的に上書きする。
func (p MaterialPatch) mergeInto(tree map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(p)) {
		node := p[key]
		if node.IsLeaf() {
			tree[key] = node.Value
			continue
		}
		child, ok := tree[key].(map[string]any)
		if !ok {
			child = map[string]any{}
		}
		node.Children.mergeInto(child)
		tree[key] = child
	}
}

// MaterialConfig は利用者指定の材質設定を表す。
type MaterialConfig struct {
	Atlases     []AtlasSpec
	NearAtlases []NearAtlasSpec
	// Modify は材質名キーごとのパッチ。
	Modify map[string]MaterialPatch
}

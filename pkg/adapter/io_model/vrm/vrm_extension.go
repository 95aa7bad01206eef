// 指示: miu200521358
package vrm

import (
	"encoding/json"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

const (
	vrmMetaKey        = "meta"
	vrmMetaTextureKey = "texture"
)

// vrmMaterialProperty は materialProperties の1要素を名前付きで表す。
type vrmMaterialProperty struct {
	Name string `json:"name"`
	model.VrmMaterial
}

// decodeVrmExtension はVRM拡張を材質プロパティとそれ以外に分解する。
func decodeVrmExtension(raw json.RawMessage) (model.VrmExtension, []vrmMaterialProperty, error) {
	ext := model.VrmExtension{Raw: map[string]json.RawMessage{}}
	if err := json.Unmarshal(raw, &ext.Raw); err != nil {
		return model.VrmExtension{}, nil, io_common.NewIoParseFailed("VRM拡張の解析に失敗しました", err)
	}

	properties := []vrmMaterialProperty{}
	if propertiesRaw, ok := ext.Raw[model.VrmMaterialPropertiesKey]; ok {
		if err := json.Unmarshal(propertiesRaw, &properties); err != nil {
			return model.VrmExtension{}, nil, io_common.NewIoParseFailed("VRM材質プロパティの解析に失敗しました", err)
		}
		delete(ext.Raw, model.VrmMaterialPropertiesKey)
	}

	thumbnail, err := decodeThumbnailTexture(ext.Raw[vrmMetaKey])
	if err != nil {
		return model.VrmExtension{}, nil, err
	}
	ext.ThumbnailTexture = thumbnail
	return ext, properties, nil
}

// decodeThumbnailTexture は meta.texture を取り出す。未設定や負値は nil。
func decodeThumbnailTexture(metaRaw json.RawMessage) (*int, error) {
	if len(metaRaw) == 0 {
		return nil, nil
	}
	meta := map[string]json.RawMessage{}
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, io_common.NewIoParseFailed("VRMメタ情報の解析に失敗しました", err)
	}
	textureRaw, ok := meta[vrmMetaTextureKey]
	if !ok {
		return nil, nil
	}
	var texture int
	if err := json.Unmarshal(textureRaw, &texture); err != nil {
		return nil, io_common.NewIoParseFailed("VRMサムネイル参照の解析に失敗しました", err)
	}
	if texture < 0 {
		return nil, nil
	}
	return &texture, nil
}

// encodeVrmExtension は材質順に materialProperties を組み立ててVRM拡張を再構成する。
func encodeVrmExtension(graph *model.Graph) (json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(graph.Vrm.Raw)+1)
	for key, value := range graph.Vrm.Raw {
		out[key] = value
	}

	properties := make([]vrmMaterialProperty, len(graph.Materials))
	for i, material := range graph.Materials {
		vrmMaterial := material.Vrm
		vrmMaterial.Normalize()
		properties[i] = vrmMaterialProperty{Name: material.Name, VrmMaterial: vrmMaterial}
	}
	propertiesRaw, err := json.Marshal(properties)
	if err != nil {
		return nil, io_common.NewIoSaveFailed("VRM材質プロパティの変換に失敗しました", err)
	}
	out[model.VrmMaterialPropertiesKey] = propertiesRaw

	if graph.Vrm.ThumbnailTexture != nil {
		metaRaw, err := encodeThumbnailTexture(out[vrmMetaKey], *graph.Vrm.ThumbnailTexture)
		if err != nil {
			return nil, err
		}
		out[vrmMetaKey] = metaRaw
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, io_common.NewIoSaveFailed("VRM拡張の変換に失敗しました", err)
	}
	return raw, nil
}

// encodeThumbnailTexture は meta.texture を差し替えたメタ情報を返す。
func encodeThumbnailTexture(metaRaw json.RawMessage, texture int) (json.RawMessage, error) {
	meta := map[string]json.RawMessage{}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return nil, io_common.NewIoSaveFailed("VRMメタ情報の変換に失敗しました", err)
		}
	}
	textureRaw, err := json.Marshal(texture)
	if err != nil {
		return nil, io_common.NewIoSaveFailed("VRMサムネイル参照の変換に失敗しました", err)
	}
	meta[vrmMetaTextureKey] = textureRaw
	out, err := json.Marshal(meta)
	if err != nil {
		return nil, io_common.NewIoSaveFailed("VRMメタ情報の変換に失敗しました", err)
	}
	return out, nil
}

// pairVrmMaterials は標準材質とVRM材質を名前で対応付ける。
func pairVrmMaterials(materials []model.Material, properties []vrmMaterialProperty) error {
	byName := make(map[string]model.VrmMaterial, len(properties))
	for _, property := range properties {
		if _, exists := byName[property.Name]; exists {
			logVrmWarn("VRM材質名が重複しています。先頭を採用します: %s", property.Name)
			continue
		}
		byName[property.Name] = property.VrmMaterial
	}
	for i := range materials {
		vrmMaterial, ok := byName[materials[i].Name]
		if !ok {
			return io_common.NewIoFormatNotSupported("VRM材質プロパティがない材質があります: %s", nil, materials[i].Name)
		}
		materials[i].Vrm = vrmMaterial.Clone()
	}
	return nil
}

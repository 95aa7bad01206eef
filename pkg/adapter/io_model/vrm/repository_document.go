// 指示: miu200521358
package vrm

import (
	"encoding/json"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_image"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/qmuntal/gltf"
)

// documentToGraph はglTFドキュメントをグラフへ変換する。
func documentToGraph(doc *gltf.Document) (*model.Graph, error) {
	if len(doc.Animations) > 0 {
		return nil, io_common.NewIoFormatNotSupported("アニメーションを含むVRMは未対応です", nil)
	}
	vrmRaw, ok, err := extensionRaw(doc.Extensions, model.VrmExtensionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io_common.NewIoFormatNotSupported("VRM拡張がありません", nil)
	}
	vrmExtension, properties, err := decodeVrmExtension(vrmRaw)
	if err != nil {
		return nil, err
	}

	graph := &model.Graph{
		Asset: model.Asset{
			Generator: doc.Asset.Generator,
			Version:   doc.Asset.Version,
			Copyright: doc.Asset.Copyright,
		},
		ExtensionsUsed:     append([]string(nil), doc.ExtensionsUsed...),
		ExtensionsRequired: append([]string(nil), doc.ExtensionsRequired...),
		Scene:              doc.Scene,
		Vrm:                vrmExtension,
		Extensions:         map[string]json.RawMessage{},
	}
	if graph.Extras, err = rawJSON(doc.Extras); err != nil {
		return nil, err
	}
	for key := range doc.Extensions {
		if key == model.VrmExtensionKey {
			continue
		}
		raw, _, err := extensionRaw(doc.Extensions, key)
		if err != nil {
			return nil, err
		}
		graph.Extensions[key] = raw
	}

	if graph.Scenes, err = rawJSONList(doc.Scenes); err != nil {
		return nil, err
	}
	if graph.Nodes, err = rawJSONList(doc.Nodes); err != nil {
		return nil, err
	}
	if graph.Cameras, err = rawJSONList(doc.Cameras); err != nil {
		return nil, err
	}
	if graph.Samplers, err = rawJSONList(doc.Samplers); err != nil {
		return nil, err
	}

	if graph.BufferViews, err = loadBufferViews(doc); err != nil {
		return nil, err
	}
	if graph.Accessors, err = loadAccessors(doc.Accessors); err != nil {
		return nil, err
	}
	if graph.Meshes, err = loadMeshes(doc.Meshes); err != nil {
		return nil, err
	}
	if graph.Skins, err = loadSkins(doc.Skins); err != nil {
		return nil, err
	}
	if graph.Materials, err = loadMaterials(doc.Materials); err != nil {
		return nil, err
	}
	if err := pairVrmMaterials(graph.Materials, properties); err != nil {
		return nil, err
	}
	graph.Textures = loadTextures(doc.Textures)
	graph.Images = loadImages(doc.Images, graph.BufferViews)
	return graph, nil
}

// loadBufferViews は各bufferViewの領域をバッファから複製する。
func loadBufferViews(doc *gltf.Document) ([]model.BufferView, error) {
	views := make([]model.BufferView, len(doc.BufferViews))
	for i, view := range doc.BufferViews {
		if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
			return nil, io_common.NewIoParseFailed("bufferView[%d] のバッファ参照が不正です: %d", nil, i, view.Buffer)
		}
		data := doc.Buffers[view.Buffer].Data
		end := view.ByteOffset + view.ByteLength
		if view.ByteOffset < 0 || end > len(data) {
			return nil, io_common.NewIoParseFailed(
				"bufferView[%d] がバッファ範囲外です: offset=%d length=%d buffer=%d",
				nil, i, view.ByteOffset, view.ByteLength, len(data),
			)
		}
		target, err := fromGltfTarget(view.Target)
		if err != nil {
			return nil, err
		}
		views[i] = model.BufferView{
			Name:       view.Name,
			Data:       append([]byte(nil), data[view.ByteOffset:end]...),
			ByteStride: view.ByteStride,
			Target:     target,
		}
	}
	return views, nil
}

// loadAccessors はアクセサーを変換する。
func loadAccessors(accessors []*gltf.Accessor) ([]model.Accessor, error) {
	out := make([]model.Accessor, len(accessors))
	for i, accessor := range accessors {
		componentType, err := fromGltfComponentType(accessor.ComponentType)
		if err != nil {
			return nil, err
		}
		accessorType, err := fromGltfAccessorType(accessor.Type)
		if err != nil {
			return nil, err
		}
		out[i] = model.Accessor{
			Name:          accessor.Name,
			BufferView:    copyIntPtr(accessor.BufferView),
			ByteOffset:    accessor.ByteOffset,
			ComponentType: componentType,
			Normalized:    accessor.Normalized,
			Count:         accessor.Count,
			Type:          accessorType,
			Max:           append([]float64(nil), accessor.Max...),
			Min:           append([]float64(nil), accessor.Min...),
		}
		if accessor.Sparse != nil {
			indicesType, err := fromGltfComponentType(accessor.Sparse.Indices.ComponentType)
			if err != nil {
				return nil, err
			}
			out[i].Sparse = &model.AccessorSparse{
				Count:                accessor.Sparse.Count,
				IndicesBufferView:    accessor.Sparse.Indices.BufferView,
				IndicesByteOffset:    accessor.Sparse.Indices.ByteOffset,
				IndicesComponentType: indicesType,
				ValuesBufferView:     accessor.Sparse.Values.BufferView,
				ValuesByteOffset:     accessor.Sparse.Values.ByteOffset,
			}
		}
	}
	return out, nil
}

// loadMeshes はメッシュとプリミティブを変換する。
func loadMeshes(meshes []*gltf.Mesh) ([]model.Mesh, error) {
	out := make([]model.Mesh, len(meshes))
	for i, mesh := range meshes {
		extras, err := rawJSON(mesh.Extras)
		if err != nil {
			return nil, err
		}
		primitives := make([]model.Primitive, len(mesh.Primitives))
		for j, primitive := range mesh.Primitives {
			primitiveExtras, err := rawJSON(primitive.Extras)
			if err != nil {
				return nil, err
			}
			targets := make([]map[string]int, len(primitive.Targets))
			for k, target := range primitive.Targets {
				targets[k] = copyAttributes(target)
			}
			primitives[j] = model.Primitive{
				Attributes: copyAttributes(primitive.Attributes),
				Indices:    copyIntPtr(primitive.Indices),
				Material:   copyIntPtr(primitive.Material),
				Mode:       int(primitive.Mode),
				Targets:    targets,
				Extras:     primitiveExtras,
			}
		}
		out[i] = model.Mesh{
			Name:       mesh.Name,
			Primitives: primitives,
			Weights:    append([]float64(nil), mesh.Weights...),
			Extras:     extras,
		}
	}
	return out, nil
}

// loadSkins はスキンを変換する。
func loadSkins(skins []*gltf.Skin) ([]model.Skin, error) {
	out := make([]model.Skin, len(skins))
	for i, skin := range skins {
		extras, err := rawJSON(skin.Extras)
		if err != nil {
			return nil, err
		}
		out[i] = model.Skin{
			Name:                skin.Name,
			InverseBindMatrices: copyIntPtr(skin.InverseBindMatrices),
			Skeleton:            copyIntPtr(skin.Skeleton),
			Joints:              append([]int(nil), skin.Joints...),
			Extras:              extras,
		}
	}
	return out, nil
}

// loadMaterials は標準材質を変換する。VRM材質は後で名前対応で補う。
func loadMaterials(materials []*gltf.Material) ([]model.Material, error) {
	out := make([]model.Material, len(materials))
	for i, material := range materials {
		standard := model.StandardMaterial{
			EmissiveFactor: material.EmissiveFactor,
			AlphaMode:      fromGltfAlphaMode(material.AlphaMode),
			AlphaCutoff:    copyFloatPtr(material.AlphaCutoff),
			DoubleSided:    material.DoubleSided,
		}
		if pbr := material.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				factor := *pbr.BaseColorFactor
				standard.BaseColorFactor = &factor
			}
			standard.BaseColorTexture = fromTextureInfo(pbr.BaseColorTexture)
			standard.MetallicFactor = copyFloatPtr(pbr.MetallicFactor)
			standard.RoughnessFactor = copyFloatPtr(pbr.RoughnessFactor)
			standard.MetallicRoughnessTexture = fromTextureInfo(pbr.MetallicRoughnessTexture)
		}
		if normal := material.NormalTexture; normal != nil && normal.Index != nil {
			standard.NormalTexture = &model.TextureRef{
				Index:    *normal.Index,
				TexCoord: normal.TexCoord,
				Scale:    copyFloatPtr(normal.Scale),
			}
		}
		if occlusion := material.OcclusionTexture; occlusion != nil && occlusion.Index != nil {
			standard.OcclusionTexture = &model.TextureRef{
				Index:    *occlusion.Index,
				TexCoord: occlusion.TexCoord,
				Scale:    copyFloatPtr(occlusion.Strength),
			}
		}
		standard.EmissiveTexture = fromTextureInfo(material.EmissiveTexture)

		extensions, err := rawExtensions(material.Extensions)
		if err != nil {
			return nil, err
		}
		standard.Extensions = extensions
		if standard.Extras, err = rawJSON(material.Extras); err != nil {
			return nil, err
		}
		out[i] = model.Material{Name: material.Name, Standard: standard}
	}
	return out, nil
}

// loadTextures はテクスチャを変換する。
func loadTextures(textures []*gltf.Texture) []model.Texture {
	out := make([]model.Texture, len(textures))
	for i, texture := range textures {
		out[i] = model.Texture{
			Name:    texture.Name,
			Sampler: copyIntPtr(texture.Sampler),
			Source:  copyIntPtr(texture.Source),
		}
	}
	return out
}

// loadImages は画像を変換する。MIMEタイプが空の埋め込み画像はシグネチャから補う。
func loadImages(images []*gltf.Image, views []model.BufferView) []model.Image {
	out := make([]model.Image, len(images))
	for i, image := range images {
		out[i] = model.Image{
			Name:       image.Name,
			MimeType:   image.MimeType,
			URI:        image.URI,
			BufferView: copyIntPtr(image.BufferView),
		}
		if out[i].MimeType != "" || image.BufferView == nil {
			continue
		}
		viewIndex := *image.BufferView
		if viewIndex < 0 || viewIndex >= len(views) {
			continue
		}
		out[i].MimeType = io_image.DetectMimeType(views[viewIndex].Data)
		logVrmDebug("画像MIMEタイプ補完: image=%s mime=%s", image.Name, out[i].MimeType)
	}
	return out
}

// fromTextureInfo はテクスチャ参照を変換する。
func fromTextureInfo(info *gltf.TextureInfo) *model.TextureRef {
	if info == nil {
		return nil
	}
	return &model.TextureRef{Index: info.Index, TexCoord: info.TexCoord}
}

// extensionRaw は拡張値をJSONとして取り出す。未登録の拡張は生JSONのまま格納されている。
func extensionRaw(extensions gltf.Extensions, key string) (json.RawMessage, bool, error) {
	value, ok := extensions[key]
	if !ok || value == nil {
		return nil, false, nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// rawExtensions は拡張マップを生JSONマップへ変換する。
func rawExtensions(extensions gltf.Extensions) (map[string]json.RawMessage, error) {
	if len(extensions) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(extensions))
	for key := range extensions {
		raw, _, err := extensionRaw(extensions, key)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return out, nil
}

// rawJSON は任意値を生JSONへ変換する。nil は nil のまま返す。
func rawJSON(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return append(json.RawMessage(nil), v...), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, io_common.NewIoParseFailed("JSON要素の変換に失敗しました", err)
		}
		return raw, nil
	}
}

// rawJSONList は要素列をそれぞれ生JSONへ変換する。
func rawJSONList[T any](values []*T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, io_common.NewIoParseFailed("JSON要素の変換に失敗しました", err)
		}
		out[i] = raw
	}
	return out, nil
}

// copyAttributes は属性マップを複製する。
func copyAttributes(attributes map[string]int) map[string]int {
	out := make(map[string]int, len(attributes))
	for key, value := range attributes {
		out[key] = value
	}
	return out
}

// copyIntPtr は整数ポインタを複製する。
func copyIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// copyFloatPtr は浮動小数ポインタを複製する。
func copyFloatPtr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// 指示: miu200521358
package vrm

import (
	"encoding/json"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/qmuntal/gltf"
)

// graphToDocument はグラフを単一バッファのglTFドキュメントへ変換する。
func graphToDocument(graph *model.Graph) (*gltf.Document, error) {
	doc := &gltf.Document{
		Asset: gltf.Asset{
			Generator: graph.Asset.Generator,
			Version:   graph.Asset.Version,
			Copyright: graph.Asset.Copyright,
		},
		ExtensionsUsed:     append([]string(nil), graph.ExtensionsUsed...),
		ExtensionsRequired: append([]string(nil), graph.ExtensionsRequired...),
		Scene:              copyIntPtr(graph.Scene),
		Extensions:         gltf.Extensions{},
	}
	if doc.Asset.Version == "" {
		doc.Asset.Version = "2.0"
	}
	if len(graph.Extras) > 0 {
		doc.Extras = graph.Extras
	}
	for key, raw := range graph.Extensions {
		doc.Extensions[key] = raw
	}
	vrmRaw, err := encodeVrmExtension(graph)
	if err != nil {
		return nil, err
	}
	doc.Extensions[model.VrmExtensionKey] = vrmRaw

	if doc.Scenes, err = decodeJSONList[gltf.Scene](graph.Scenes, "scene"); err != nil {
		return nil, err
	}
	if doc.Nodes, err = decodeJSONList[gltf.Node](graph.Nodes, "node"); err != nil {
		return nil, err
	}
	if doc.Cameras, err = decodeJSONList[gltf.Camera](graph.Cameras, "camera"); err != nil {
		return nil, err
	}
	if doc.Samplers, err = decodeJSONList[gltf.Sampler](graph.Samplers, "sampler"); err != nil {
		return nil, err
	}

	buffer, views, err := packBufferViews(graph.BufferViews)
	if err != nil {
		return nil, err
	}
	doc.Buffers = []*gltf.Buffer{buffer}
	doc.BufferViews = views
	if doc.Accessors, err = saveAccessors(graph.Accessors); err != nil {
		return nil, err
	}
	doc.Meshes = saveMeshes(graph.Meshes)
	doc.Skins = saveSkins(graph.Skins)
	doc.Materials = saveMaterials(graph.Materials)
	doc.Textures = saveTextures(graph.Textures)
	doc.Images = saveImages(graph.Images)
	return doc, nil
}

// packBufferViews は全bufferViewを4バイト境界で1つのバッファへ詰め直す。
func packBufferViews(views []model.BufferView) (*gltf.Buffer, []*gltf.BufferView, error) {
	total := 0
	for _, view := range views {
		total += alignTo(view.ByteLength(), bufferAlign)
	}
	data := make([]byte, 0, total)
	out := make([]*gltf.BufferView, len(views))
	for i, view := range views {
		target, err := toGltfTarget(view.Target)
		if err != nil {
			return nil, nil, err
		}
		out[i] = &gltf.BufferView{
			Name:       view.Name,
			Buffer:     0,
			ByteOffset: len(data),
			ByteLength: view.ByteLength(),
			ByteStride: view.ByteStride,
			Target:     target,
		}
		data = append(data, view.Data...)
		for len(data)%bufferAlign != 0 {
			data = append(data, 0)
		}
	}
	return &gltf.Buffer{ByteLength: len(data), Data: data}, out, nil
}

// alignTo は境界へ切り上げた長さを返す。
func alignTo(length int, align int) int {
	return (length + align - 1) / align * align
}

// saveAccessors はアクセサーを変換する。
func saveAccessors(accessors []model.Accessor) ([]*gltf.Accessor, error) {
	out := make([]*gltf.Accessor, len(accessors))
	for i, accessor := range accessors {
		componentType, err := toGltfComponentType(accessor.ComponentType)
		if err != nil {
			return nil, err
		}
		accessorType, err := toGltfAccessorType(accessor.Type)
		if err != nil {
			return nil, err
		}
		out[i] = &gltf.Accessor{
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
		if sparse := accessor.Sparse; sparse != nil {
			indicesType, err := toGltfComponentType(sparse.IndicesComponentType)
			if err != nil {
				return nil, err
			}
			out[i].Sparse = &gltf.Sparse{
				Count: sparse.Count,
				Indices: gltf.SparseIndices{
					BufferView:    sparse.IndicesBufferView,
					ByteOffset:    sparse.IndicesByteOffset,
					ComponentType: indicesType,
				},
				Values: gltf.SparseValues{
					BufferView: sparse.ValuesBufferView,
					ByteOffset: sparse.ValuesByteOffset,
				},
			}
		}
	}
	return out, nil
}

// saveMeshes はメッシュとプリミティブを変換する。
func saveMeshes(meshes []model.Mesh) []*gltf.Mesh {
	out := make([]*gltf.Mesh, len(meshes))
	for i, mesh := range meshes {
		primitives := make([]*gltf.Primitive, len(mesh.Primitives))
		for j, primitive := range mesh.Primitives {
			targets := make([]gltf.PrimitiveAttributes, len(primitive.Targets))
			for k, target := range primitive.Targets {
				targets[k] = copyAttributes(target)
			}
			primitives[j] = &gltf.Primitive{
				Attributes: copyAttributes(primitive.Attributes),
				Indices:    copyIntPtr(primitive.Indices),
				Material:   copyIntPtr(primitive.Material),
				Mode:       gltf.PrimitiveMode(primitive.Mode),
				Targets:    targets,
				Extras:     extrasValue(primitive.Extras),
			}
		}
		out[i] = &gltf.Mesh{
			Name:       mesh.Name,
			Primitives: primitives,
			Weights:    append([]float64(nil), mesh.Weights...),
			Extras:     extrasValue(mesh.Extras),
		}
	}
	return out
}

// saveSkins はスキンを変換する。
func saveSkins(skins []model.Skin) []*gltf.Skin {
	out := make([]*gltf.Skin, len(skins))
	for i, skin := range skins {
		out[i] = &gltf.Skin{
			Name:                skin.Name,
			InverseBindMatrices: copyIntPtr(skin.InverseBindMatrices),
			Skeleton:            copyIntPtr(skin.Skeleton),
			Joints:              append([]int(nil), skin.Joints...),
			Extras:              extrasValue(skin.Extras),
		}
	}
	return out
}

// saveMaterials は標準材質を変換する。
func saveMaterials(materials []model.Material) []*gltf.Material {
	out := make([]*gltf.Material, len(materials))
	for i, material := range materials {
		standard := material.Standard
		pbr := &gltf.PBRMetallicRoughness{
			MetallicFactor:           copyFloatPtr(standard.MetallicFactor),
			RoughnessFactor:          copyFloatPtr(standard.RoughnessFactor),
			BaseColorTexture:         toTextureInfo(standard.BaseColorTexture),
			MetallicRoughnessTexture: toTextureInfo(standard.MetallicRoughnessTexture),
		}
		if standard.BaseColorFactor != nil {
			factor := *standard.BaseColorFactor
			pbr.BaseColorFactor = &factor
		}
		gltfMaterial := &gltf.Material{
			Name:                 material.Name,
			PBRMetallicRoughness: pbr,
			EmissiveTexture:      toTextureInfo(standard.EmissiveTexture),
			EmissiveFactor:       standard.EmissiveFactor,
			AlphaMode:            toGltfAlphaMode(standard.AlphaMode),
			AlphaCutoff:          copyFloatPtr(standard.AlphaCutoff),
			DoubleSided:          standard.DoubleSided,
			Extras:               extrasValue(standard.Extras),
		}
		if ref := standard.NormalTexture; ref != nil {
			gltfMaterial.NormalTexture = &gltf.NormalTexture{
				Index:    model.Ptr(ref.Index),
				TexCoord: ref.TexCoord,
				Scale:    copyFloatPtr(ref.Scale),
			}
		}
		if ref := standard.OcclusionTexture; ref != nil {
			gltfMaterial.OcclusionTexture = &gltf.OcclusionTexture{
				Index:    model.Ptr(ref.Index),
				TexCoord: ref.TexCoord,
				Strength: copyFloatPtr(ref.Scale),
			}
		}
		if len(standard.Extensions) > 0 {
			gltfMaterial.Extensions = gltf.Extensions{}
			for key, raw := range standard.Extensions {
				gltfMaterial.Extensions[key] = raw
			}
		}
		out[i] = gltfMaterial
	}
	return out
}

// saveTextures はテクスチャを変換する。
func saveTextures(textures []model.Texture) []*gltf.Texture {
	out := make([]*gltf.Texture, len(textures))
	for i, texture := range textures {
		out[i] = &gltf.Texture{
			Name:    texture.Name,
			Sampler: copyIntPtr(texture.Sampler),
			Source:  copyIntPtr(texture.Source),
		}
	}
	return out
}

// saveImages は画像を変換する。
func saveImages(images []model.Image) []*gltf.Image {
	out := make([]*gltf.Image, len(images))
	for i, image := range images {
		out[i] = &gltf.Image{
			Name:       image.Name,
			MimeType:   image.MimeType,
			URI:        image.URI,
			BufferView: copyIntPtr(image.BufferView),
		}
	}
	return out
}

// toTextureInfo はテクスチャ参照を変換する。
func toTextureInfo(ref *model.TextureRef) *gltf.TextureInfo {
	if ref == nil {
		return nil
	}
	return &gltf.TextureInfo{Index: ref.Index, TexCoord: ref.TexCoord}
}

// extrasValue は生JSONを extras 値へ戻す。空なら nil。
func extrasValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// decodeJSONList は生JSON列をglTF要素列へ戻す。
func decodeJSONList[T any](raws []json.RawMessage, kind string) ([]*T, error) {
	out := make([]*T, len(raws))
	for i, raw := range raws {
		value := new(T)
		if err := json.Unmarshal(raw, value); err != nil {
			return nil, io_common.NewIoSaveFailed("%s[%d] の変換に失敗しました", err, kind, i)
		}
		out[i] = value
	}
	return out, nil
}

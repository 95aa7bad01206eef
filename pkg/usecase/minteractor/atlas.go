// 指示: miu200521358
package minteractor

import (
	"image"
	"math"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
)

const pngMimeType = "image/png"

// atlasSource は区画に貼り付ける元材質の情報を表す。
type atlasSource struct {
	placement     model.Placement
	materialIndex int
	imageIndex    int
}

// atlasTarget はUVを付け替えるプリミティブを表す。
type atlasTarget struct {
	meshIndex      int
	primitiveIndex int
	placement      model.Placement
}

// CombineMaterials は配置指定の材質の主テクスチャを1枚へ合成し、
// 該当プリミティブの材質を基準材質へ、UVを合成先の区画へ付け替える。
// 合成画像は区画全体の外接サイズを maxSize 以下へ縮小したものになる。
func CombineMaterials(
	graph *model.Graph,
	layout model.AtlasLayout,
	baseName string,
	maxSize image.Point,
	codec moutput.IImageCodec,
) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	if !hasNonBaseKey(layout, baseName) {
		logReduceDebug("材質結合スキップ(結合済み): base=%s", baseName)
		return g, nil
	}
	if codec == nil {
		return nil, model.NewPreconditionError("画像コーデックが設定されていません")
	}

	sources, err := resolveAtlasSources(g, layout)
	if err != nil {
		return nil, err
	}
	baseIndex, err := g.MustFindMaterial(baseName)
	if err != nil {
		return nil, err
	}
	union := layoutBounds(layout)
	if union.X <= 0 || union.Y <= 0 {
		return nil, model.NewPreconditionError("配置区画のサイズが不正です: %v", union)
	}

	imageIndex, err := composeAtlasImage(g, sources, union, maxSize, codec)
	if err != nil {
		return nil, err
	}
	if err := repointMainTexture(g, baseIndex, imageIndex); err != nil {
		return nil, err
	}
	if err := remapAtlasUVs(g, layout, baseIndex, union); err != nil {
		return nil, err
	}
	logReduceInfo("材質結合: base=%s keys=%s size=%dx%d", g.Materials[baseIndex].Name, strings.Join(layout.Keys(), ","), union.X, union.Y)
	return g, nil
}

// hasNonBaseKey は基準材質以外の区画があるか判定する。
func hasNonBaseKey(layout model.AtlasLayout, baseName string) bool {
	for _, placement := range layout {
		if placement.Name != "" && placement.Name != baseName {
			return true
		}
	}
	return false
}

// resolveAtlasSources は各区画の材質と主テクスチャ画像を解決する。
func resolveAtlasSources(g *model.Graph, layout model.AtlasLayout) ([]atlasSource, error) {
	sources := make([]atlasSource, 0, len(layout))
	for _, placement := range layout {
		if placement.Name == "" {
			continue
		}
		materialIndex, err := g.MustFindMaterial(placement.Name)
		if err != nil {
			return nil, err
		}
		imageIndex, err := mainTextureImage(g, materialIndex)
		if err != nil {
			return nil, err
		}
		sources = append(sources, atlasSource{placement: placement, materialIndex: materialIndex, imageIndex: imageIndex})
	}
	return sources, nil
}

// mainTextureImage は材質の主テクスチャが参照する画像インデックスを返す。
func mainTextureImage(g *model.Graph, materialIndex int) (int, error) {
	material := g.Materials[materialIndex]
	textureIndex, ok := material.Vrm.TextureProperties[model.PropMainTex]
	if !ok {
		return -1, model.NewReferenceError("main texture", material.Name, -1)
	}
	if textureIndex < 0 || textureIndex >= len(g.Textures) {
		return -1, model.NewReferenceError("texture", material.Name, textureIndex)
	}
	source := g.Textures[textureIndex].Source
	if source == nil || *source < 0 || *source >= len(g.Images) {
		return -1, model.NewReferenceError("texture source", material.Name, textureIndex)
	}
	return *source, nil
}

// layoutBounds は全区画の外接サイズを返す。
func layoutBounds(layout model.AtlasLayout) image.Point {
	bounds := image.Point{}
	for _, placement := range layout {
		end := placement.Pos.Add(placement.Size)
		bounds.X = max(bounds.X, end.X)
		bounds.Y = max(bounds.Y, end.Y)
	}
	return bounds
}

// atlasCanvasSize は上限サイズ以下に収めた合成画像サイズを返す。0以下の上限は無制限とみなす。
func atlasCanvasSize(union image.Point, maxSize image.Point) image.Point {
	size := union
	if maxSize.X > 0 {
		size.X = min(size.X, maxSize.X)
	}
	if maxSize.Y > 0 {
		size.Y = min(size.Y, maxSize.Y)
	}
	return size
}

// scalePoint は軸ごとの縮尺を掛けて切り捨てた座標を返す。
func scalePoint(p image.Point, scaleX float64, scaleY float64) image.Point {
	return image.Pt(int(float64(p.X)*scaleX), int(float64(p.Y)*scaleY))
}

// composeAtlasImage は各区画の画像を縮小配置したPNGを画像として追加し、そのインデックスを返す。
func composeAtlasImage(
	g *model.Graph,
	sources []atlasSource,
	union image.Point,
	maxSize image.Point,
	codec moutput.IImageCodec,
) (int, error) {
	canvasSize := atlasCanvasSize(union, maxSize)
	scaleX := float64(canvasSize.X) / float64(union.X)
	scaleY := float64(canvasSize.Y) / float64(union.Y)

	canvas := codec.NewCanvas(canvasSize.X, canvasSize.Y)
	imageNames := make([]string, 0, len(sources))
	for _, source := range sources {
		data, err := g.ImageData(source.imageIndex)
		if err != nil {
			return -1, err
		}
		img, err := codec.Decode(data)
		if err != nil {
			return -1, err
		}
		pos := scalePoint(source.placement.Pos, scaleX, scaleY)
		size := scalePoint(source.placement.Size, scaleX, scaleY)
		codec.Paste(canvas, codec.Resample(img, size.X, size.Y), pos)
		if name := g.Images[source.imageIndex].Name; name != "" {
			imageNames = append(imageNames, name)
		}
	}

	encoded, err := codec.EncodePNG(canvas)
	if err != nil {
		return -1, err
	}
	viewIndex := g.AppendBufferView(model.BufferView{Data: encoded})
	return g.AppendImage(model.Image{
		Name:       strings.Join(imageNames, "-"),
		MimeType:   pngMimeType,
		BufferView: model.Ptr(viewIndex),
	}), nil
}

// repointMainTexture は合成画像を参照するテクスチャを追加し、
// 基準材質で旧主テクスチャを参照していたスロットをすべて付け替える。
func repointMainTexture(g *model.Graph, baseIndex int, imageIndex int) error {
	base := &g.Materials[baseIndex]
	oldTexture, ok := base.Vrm.TextureProperties[model.PropMainTex]
	if !ok || oldTexture < 0 || oldTexture >= len(g.Textures) {
		return model.NewReferenceError("main texture", base.Name, oldTexture)
	}
	texture := model.Texture{Source: model.Ptr(imageIndex)}
	if sampler := g.Textures[oldTexture].Sampler; sampler != nil {
		texture.Sampler = model.Ptr(*sampler)
	}
	newTexture := g.AppendTexture(texture)

	for key, textureIndex := range base.Vrm.TextureProperties {
		if textureIndex == oldTexture {
			base.Vrm.TextureProperties[key] = newTexture
		}
	}
	if ref := base.Standard.BaseColorTexture; ref != nil && ref.Index == oldTexture {
		ref.Index = newTexture
	}
	return nil
}

// collectAtlasTargets は付け替え前の材質名で区画キーに最初に一致するプリミティブを列挙する。
func collectAtlasTargets(g *model.Graph, layout model.AtlasLayout) ([]atlasTarget, error) {
	targets := []atlasTarget{}
	for meshIndex, mesh := range g.Meshes {
		for primitiveIndex, primitive := range mesh.Primitives {
			name, err := g.PrimitiveMaterialName(primitive)
			if err != nil {
				return nil, err
			}
			for _, placement := range layout {
				if placement.Name != "" && strings.Contains(name, placement.Name) {
					targets = append(targets, atlasTarget{
						meshIndex:      meshIndex,
						primitiveIndex: primitiveIndex,
						placement:      placement,
					})
					break
				}
			}
		}
	}
	return targets, nil
}

// remapAtlasUVs は対象プリミティブの材質を基準材質へ付け替え、参照頂点のUVを区画へ写す。
// 共有頂点の二重変換を避けるため、変換前の値のままの頂点だけを更新する。
func remapAtlasUVs(g *model.Graph, layout model.AtlasLayout, baseIndex int, union image.Point) error {
	targets, err := collectAtlasTargets(g, layout)
	if err != nil {
		return err
	}

	originals := map[int][]byte{}
	for _, target := range targets {
		uvAccessor, ok := g.Meshes[target.meshIndex].Primitives[target.primitiveIndex].Attributes[model.AttributeTexCoord0]
		if !ok {
			continue
		}
		_, uvLayout, err := resolveAccessorLayout(g, uvAccessor)
		if err != nil {
			return err
		}
		if _, exists := originals[uvLayout.viewIndex]; !exists {
			originals[uvLayout.viewIndex] = append([]byte(nil), g.BufferViews[uvLayout.viewIndex].Data...)
		}
	}

	width := float64(union.X)
	height := float64(union.Y)
	remapped := map[int]struct{}{}
	for _, target := range targets {
		primitive := &g.Meshes[target.meshIndex].Primitives[target.primitiveIndex]
		primitive.Material = model.Ptr(baseIndex)

		uvAccessorIndex, ok := primitive.Attributes[model.AttributeTexCoord0]
		if !ok {
			logReduceDebug("UVを持たないプリミティブのため付け替えのみ: mesh=%d primitive=%d", target.meshIndex, target.primitiveIndex)
			continue
		}
		uvAccessor, uvLayout, err := resolveAccessorLayout(g, uvAccessorIndex)
		if err != nil {
			return err
		}
		if uvAccessor.ComponentType != model.ComponentFloat || uvAccessor.Type != model.AccessorVec2 {
			return model.NewPreconditionError("UVアクセサーがfloat VEC2ではありません: accessor=%d", uvAccessorIndex)
		}
		indices, err := primitiveVertexIndices(g, *primitive, uvAccessor.Count)
		if err != nil {
			return err
		}
		remapped[uvAccessorIndex] = struct{}{}

		x := float64(target.placement.Pos.X) / width
		y := float64(target.placement.Pos.Y) / height
		w := float64(target.placement.Size.X) / width
		h := float64(target.placement.Size.Y) / height
		original := originals[uvLayout.viewIndex]
		data := g.BufferViews[uvLayout.viewIndex].Data
		visited := make(map[int]struct{}, len(indices))
		for _, index := range indices {
			if _, done := visited[index]; done {
				continue
			}
			visited[index] = struct{}{}
			if index < 0 || index >= uvAccessor.Count {
				return model.NewPreconditionError("頂点インデックスがUV範囲外です: index=%d count=%d", index, uvAccessor.Count)
			}
			at := uvLayout.elementOffset(index)
			ou, ov := readVec2(original, at)
			u, v := readVec2(data, at)
			if ou != u || ov != v {
				continue
			}
			writeVec2(data, at, float32(x+float64(u)*w), float32(y+float64(v)*h))
		}
	}
	for accessorIndex := range remapped {
		if err := updateVec2Bounds(g, accessorIndex); err != nil {
			return err
		}
	}
	return nil
}

// updateVec2Bounds はmin/maxを持つVEC2アクセサーの範囲を現在の値から計算し直す。
func updateVec2Bounds(g *model.Graph, accessorIndex int) error {
	accessor := &g.Accessors[accessorIndex]
	if len(accessor.Min) == 0 && len(accessor.Max) == 0 {
		return nil
	}
	_, layout, err := resolveAccessorLayout(g, accessorIndex)
	if err != nil {
		return err
	}
	if accessor.Count == 0 {
		accessor.Min, accessor.Max = nil, nil
		return nil
	}
	data := g.BufferViews[layout.viewIndex].Data
	minValues := []float64{math.Inf(1), math.Inf(1)}
	maxValues := []float64{math.Inf(-1), math.Inf(-1)}
	for i := 0; i < accessor.Count; i++ {
		u, v := readVec2(data, layout.elementOffset(i))
		for axis, value := range []float64{float64(u), float64(v)} {
			minValues[axis] = min(minValues[axis], value)
			maxValues[axis] = max(maxValues[axis], value)
		}
	}
	accessor.Min = minValues
	accessor.Max = maxValues
	return nil
}

// primitiveVertexIndices はプリミティブが参照する頂点インデックスを返す。
// インデックスを持たない場合は全頂点を順に返す。
func primitiveVertexIndices(g *model.Graph, primitive model.Primitive, vertexCount int) ([]int, error) {
	if primitive.Indices == nil {
		indices := make([]int, vertexCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	return readIndices(g, *primitive.Indices)
}

// 指示: miu200521358
package minteractor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/require"
)

// graphBuilder はテスト用のグラフを組み立てる。
type graphBuilder struct {
	t *testing.T
	g *model.Graph
}

func newGraphBuilder(t *testing.T) *graphBuilder {
	t.Helper()
	return &graphBuilder{t: t, g: &model.Graph{Asset: model.Asset{Version: "2.0"}}}
}

func (b *graphBuilder) graph() *model.Graph {
	return b.g
}

// addTexture は単色PNG画像とそれを参照するテクスチャを追加し、テクスチャインデックスを返す。
func (b *graphBuilder) addTexture(name string, width int, height int, c color.NRGBA) int {
	b.t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(b.t, png.Encode(buf, img))
	viewIndex := b.g.AppendBufferView(model.BufferView{Data: buf.Bytes()})
	imageIndex := b.g.AppendImage(model.Image{Name: name, MimeType: "image/png", BufferView: model.Ptr(viewIndex)})
	return b.g.AppendTexture(model.Texture{Name: name, Source: model.Ptr(imageIndex)})
}

// addMaterial は _MainTex と _Color を持つ材質を追加し、材質インデックスを返す。
func (b *graphBuilder) addMaterial(name string, mainTex int, rgba ...float64) int {
	vrm := model.NewVrmMaterial()
	vrm.Shader = "VRM/MToon"
	vrm.RenderQueue = 2000
	if mainTex >= 0 {
		vrm.TextureProperties[model.PropMainTex] = mainTex
	}
	if len(rgba) > 0 {
		vrm.VectorProperties[model.PropColor] = rgba
		vrm.VectorProperties[model.PropShadeColor] = []float64{0.5, 0.5, 0.5, 1}
	}
	material := model.Material{Name: name, Vrm: vrm, Standard: model.StandardMaterial{AlphaMode: "OPAQUE"}}
	if mainTex >= 0 {
		material.Standard.BaseColorTexture = &model.TextureRef{Index: mainTex}
	}
	b.g.Materials = append(b.g.Materials, material)
	return len(b.g.Materials) - 1
}

// addUVs はfloat VEC2のUVアクセサーを専用bufferViewで追加する。
func (b *graphBuilder) addUVs(uvs ...[2]float32) int {
	data := make([]byte, 0, len(uvs)*8)
	for _, uv := range uvs {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(uv[0]))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(uv[1]))
	}
	viewIndex := b.g.AppendBufferView(model.BufferView{Data: data, Target: model.TargetArrayBuffer})
	return b.g.AppendAccessor(model.Accessor{
		BufferView:    model.Ptr(viewIndex),
		ComponentType: model.ComponentFloat,
		Count:         len(uvs),
		Type:          model.AccessorVec2,
	})
}

// addIndices は指定成分型のインデックスアクセサーを専用bufferViewで追加する。
func (b *graphBuilder) addIndices(componentType model.ComponentType, indices ...int) int {
	viewIndex := b.g.AppendBufferView(model.BufferView{
		Data:   encodeIndices(componentType, indices),
		Target: model.TargetElementArrayBuffer,
	})
	return b.g.AppendAccessor(model.Accessor{
		BufferView:    model.Ptr(viewIndex),
		ComponentType: componentType,
		Count:         len(indices),
		Type:          model.AccessorScalar,
	})
}

// addPrimitive は名前に一致するメッシュへプリミティブを追加する。メッシュがなければ作る。
func (b *graphBuilder) addPrimitive(meshName string, material int, attributes map[string]int, indices *int) {
	meshIndex := -1
	for i, mesh := range b.g.Meshes {
		if mesh.Name == meshName {
			meshIndex = i
		}
	}
	if meshIndex < 0 {
		b.g.Meshes = append(b.g.Meshes, model.Mesh{Name: meshName})
		meshIndex = len(b.g.Meshes) - 1
	}
	primitive := model.Primitive{Attributes: attributes, Indices: indices, Mode: 4}
	if material >= 0 {
		primitive.Material = model.Ptr(material)
	}
	b.g.Meshes[meshIndex].Primitives = append(b.g.Meshes[meshIndex].Primitives, primitive)
}

// addTexturedPrimitive はテクスチャ・材質・UV・u16インデックスを持つプリミティブをまとめて追加する。
func (b *graphBuilder) addTexturedPrimitive(meshName string, materialName string, c color.NRGBA) int {
	texture := b.addTexture(materialName, 4, 4, c)
	material := b.addMaterial(materialName, texture, float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1)
	uv := b.addUVs([2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1})
	indices := b.addIndices(model.ComponentUshort, 0, 1, 2)
	b.addPrimitive(meshName, material, map[string]int{model.AttributeTexCoord0: uv}, model.Ptr(indices))
	return material
}

func encodeIndices(componentType model.ComponentType, indices []int) []byte {
	data := []byte{}
	for _, index := range indices {
		switch componentType {
		case model.ComponentUbyte:
			data = append(data, byte(index))
		case model.ComponentUshort:
			data = binary.LittleEndian.AppendUint16(data, uint16(index))
		default:
			data = binary.LittleEndian.AppendUint32(data, uint32(index))
		}
	}
	return data
}

// accessorUVs はUVアクセサーの値を読み出す。
func accessorUVs(t *testing.T, g *model.Graph, accessorIndex int) [][2]float32 {
	t.Helper()
	accessor, layout, err := resolveAccessorLayout(g, accessorIndex)
	require.NoError(t, err)
	data := g.BufferViews[layout.viewIndex].Data
	uvs := make([][2]float32, accessor.Count)
	for i := range uvs {
		u, v := readVec2(data, layout.elementOffset(i))
		uvs[i] = [2]float32{u, v}
	}
	return uvs
}

// primitiveMaterialNames はメッシュのプリミティブが参照する材質名を順に返す。
func primitiveMaterialNames(t *testing.T, g *model.Graph, meshIndex int) []string {
	t.Helper()
	names := []string{}
	for _, primitive := range g.Meshes[meshIndex].Primitives {
		name, err := g.PrimitiveMaterialName(primitive)
		require.NoError(t, err)
		names = append(names, name)
	}
	return names
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

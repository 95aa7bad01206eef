// 指示: miu200521358
package minteractor

import (
	"image"
	"image/color"
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_image"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clothLayout は服上を上段、服下を下段に置く 64x128 の配置。
var clothLayout = model.AtlasLayout{
	{Name: model.MaterialKeyTops, Pos: image.Pt(0, 0), Size: image.Pt(64, 64)},
	{Name: model.MaterialKeyBottoms, Pos: image.Pt(0, 64), Size: image.Pt(64, 64)},
}

func buildClothGraph(t *testing.T) *model.Graph {
	b := newGraphBuilder(t)
	b.addTexturedPrimitive("Body", "F00_000_Tops_01", red)
	b.addTexturedPrimitive("Body", "F00_000_Bottoms_01", green)
	return b.graph()
}

func TestCombineMaterialsComposesAtlasAndRemapsUVs(t *testing.T) {
	g := buildClothGraph(t)
	codec := io_image.NewCodec()

	combined, err := CombineMaterials(g, clothLayout, model.MaterialKeyTops, image.Pt(2048, 2048), codec)
	require.NoError(t, err)

	assert.Equal(t, []string{"F00_000_Tops_01", "F00_000_Tops_01"}, primitiveMaterialNames(t, combined, 0))

	topsUV := combined.Meshes[0].Primitives[0].Attributes[model.AttributeTexCoord0]
	bottomsUV := combined.Meshes[0].Primitives[1].Attributes[model.AttributeTexCoord0]
	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {1, 0.5}}, accessorUVs(t, combined, topsUV))
	assert.Equal(t, [][2]float32{{0, 0.5}, {1, 0.5}, {1, 1}}, accessorUVs(t, combined, bottomsUV))

	base := combined.Materials[0]
	newTexture := len(combined.Textures) - 1
	assert.Equal(t, newTexture, base.Vrm.TextureProperties[model.PropMainTex])
	assert.Equal(t, newTexture, base.Standard.BaseColorTexture.Index)

	imageIndex := *combined.Textures[newTexture].Source
	atlasImage := combined.Images[imageIndex]
	assert.Equal(t, "F00_000_Tops_01-F00_000_Bottoms_01", atlasImage.Name)
	assert.Equal(t, "image/png", atlasImage.MimeType)

	data, err := combined.ImageData(imageIndex)
	require.NoError(t, err)
	img, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 128), img.Bounds().Size())
	assertColorAt(t, img, 32, 32, red)
	assertColorAt(t, img, 32, 96, green)

	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {1, 1}}, accessorUVs(t, g, bottomsUV), "入力グラフは変更しない")
}

func TestCombineMaterialsScalesCanvasToMaxSize(t *testing.T) {
	g := buildClothGraph(t)
	codec := io_image.NewCodec()

	combined, err := CombineMaterials(g, clothLayout, model.MaterialKeyTops, image.Pt(32, 32), codec)
	require.NoError(t, err)

	data, err := combined.ImageData(len(combined.Images) - 1)
	require.NoError(t, err)
	cfg, _, err := codec.DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 32, cfg.Height)

	// UVは縮小前の配置で計算する
	bottomsUV := combined.Meshes[0].Primitives[1].Attributes[model.AttributeTexCoord0]
	assert.Equal(t, [][2]float32{{0, 0.5}, {1, 0.5}, {1, 1}}, accessorUVs(t, combined, bottomsUV))
}

func TestCombineMaterialsRemapsSharedVerticesOnce(t *testing.T) {
	b := newGraphBuilder(t)
	b.addTexturedPrimitive("Body", "F00_000_Tops_01", red)
	bottoms := b.addTexturedPrimitive("Body", "F00_000_Bottoms_01", green)
	shared := b.g.Meshes[0].Primitives[1].Attributes
	b.addPrimitive("Body", bottoms, shared, model.Ptr(b.addIndices(model.ComponentUbyte, 2, 1, 0)))
	b.addPrimitive("Body", bottoms, shared, nil)
	g := b.graph()

	combined, err := CombineMaterials(g, clothLayout, model.MaterialKeyTops, image.Pt(2048, 2048), io_image.NewCodec())
	require.NoError(t, err)

	uvs := accessorUVs(t, combined, shared[model.AttributeTexCoord0])
	assert.Equal(t, [][2]float32{{0, 0.5}, {1, 0.5}, {1, 1}}, uvs)
	for _, uv := range uvs {
		assert.GreaterOrEqual(t, uv[1], float32(0))
		assert.LessOrEqual(t, uv[1], float32(1))
	}
}

func TestCombineMaterialsReadsAllIndexWidths(t *testing.T) {
	for _, componentType := range []model.ComponentType{model.ComponentUbyte, model.ComponentUshort, model.ComponentUint} {
		b := newGraphBuilder(t)
		b.addTexturedPrimitive("Body", "F00_000_Tops_01", red)
		b.addTexturedPrimitive("Body", "F00_000_Bottoms_01", green)
		uv := b.addUVs([2]float32{0, 0}, [2]float32{0.5, 0.5}, [2]float32{1, 1})
		b.g.Meshes[0].Primitives[1].Attributes = map[string]int{model.AttributeTexCoord0: uv}
		b.g.Meshes[0].Primitives[1].Indices = model.Ptr(b.addIndices(componentType, 1, 2))

		combined, err := CombineMaterials(b.graph(), clothLayout, model.MaterialKeyTops, image.Pt(2048, 2048), io_image.NewCodec())
		require.NoError(t, err)
		assert.Equal(t, [][2]float32{{0, 0}, {0.5, 0.75}, {1, 1}}, accessorUVs(t, combined, uv), "component=%d", componentType)
	}
}

func TestCombineMaterialsRepointsPrimitiveWithoutUV(t *testing.T) {
	g := buildClothGraph(t)
	delete(g.Meshes[0].Primitives[1].Attributes, model.AttributeTexCoord0)

	combined, err := CombineMaterials(g, clothLayout, model.MaterialKeyTops, image.Pt(2048, 2048), io_image.NewCodec())
	require.NoError(t, err)
	assert.Equal(t, []string{"F00_000_Tops_01", "F00_000_Tops_01"}, primitiveMaterialNames(t, combined, 0))
}

func TestCombineMaterialsSkipsLayoutWithOnlyBase(t *testing.T) {
	g := buildClothGraph(t)
	layout := model.AtlasLayout{{Name: model.MaterialKeyTops, Size: image.Pt(64, 64)}}

	combined, err := CombineMaterials(g, layout, model.MaterialKeyTops, image.Pt(2048, 2048), nil)
	require.NoError(t, err)
	assert.Equal(t, len(g.Images), len(combined.Images))
	assert.Equal(t, g.Meshes, combined.Meshes)
}

func TestCombineMaterialsRejectsMissingMaterial(t *testing.T) {
	g := buildClothGraph(t)
	layout := append(model.AtlasLayout{}, clothLayout...)
	layout = append(layout, model.Placement{Name: model.MaterialKeyShoes, Pos: image.Pt(64, 0), Size: image.Pt(32, 32)})

	_, err := CombineMaterials(g, layout, model.MaterialKeyTops, image.Pt(2048, 2048), io_image.NewCodec())
	assert.ErrorIs(t, err, model.ErrReference)
}

func TestCombineMaterialsUpdatesUVBounds(t *testing.T) {
	g := buildClothGraph(t)
	bottomsUV := g.Meshes[0].Primitives[1].Attributes[model.AttributeTexCoord0]
	g.Accessors[bottomsUV].Min = []float64{0, 0}
	g.Accessors[bottomsUV].Max = []float64{1, 1}

	combined, err := CombineMaterials(g, clothLayout, model.MaterialKeyTops, image.Pt(2048, 2048), io_image.NewCodec())
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.5}, combined.Accessors[bottomsUV].Min)
	assert.Equal(t, []float64{1, 1}, combined.Accessors[bottomsUV].Max)
	topsUV := combined.Meshes[0].Primitives[0].Attributes[model.AttributeTexCoord0]
	assert.Nil(t, combined.Accessors[topsUV].Min)
	assert.Nil(t, combined.Accessors[topsUV].Max)
	assert.Equal(t, []float64{0, 0}, g.Accessors[bottomsUV].Min, "入力グラフは変更しない")
}

func TestCombineMaterialsKeepsEmptyPlacementInCanvas(t *testing.T) {
	g := buildClothGraph(t)
	codec := io_image.NewCodec()
	layout := append(model.AtlasLayout{}, clothLayout...)
	layout = append(layout, model.Placement{Pos: image.Pt(64, 96), Size: image.Pt(64, 32)})

	combined, err := CombineMaterials(g, layout, model.MaterialKeyTops, image.Pt(2048, 2048), codec)
	require.NoError(t, err)

	data, err := combined.ImageData(len(combined.Images) - 1)
	require.NoError(t, err)
	img, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(128, 128), img.Bounds().Size())
	assertColorAt(t, img, 32, 96, green)
	assertColorAt(t, img, 96, 112, color.NRGBA{})

	bottomsUV := combined.Meshes[0].Primitives[1].Attributes[model.AttributeTexCoord0]
	assert.Equal(t, [][2]float32{{0, 0.5}, {0.5, 0.5}, {0.5, 1}}, accessorUVs(t, combined, bottomsUV))
}

func TestCombineMaterialsSkipsLayoutWithOnlyEmptyPlacement(t *testing.T) {
	g := buildClothGraph(t)
	layout := model.AtlasLayout{
		{Name: model.MaterialKeyTops, Size: image.Pt(64, 64)},
		{Pos: image.Pt(64, 0), Size: image.Pt(64, 64)},
	}

	combined, err := CombineMaterials(g, layout, model.MaterialKeyTops, image.Pt(2048, 2048), nil)
	require.NoError(t, err)
	assert.Equal(t, len(g.Images), len(combined.Images))
}

func TestFaceAtlasKeepsEyeExtraArea(t *testing.T) {
	b := newGraphBuilder(t)
	b.addMaterial("F00_000_00_Face_00_SKIN", -1)
	without := faceAtlas(b.graph())
	assert.Equal(t, image.Pt(2048, 2048), layoutBounds(without.Layout))
	placement := without.Layout[len(without.Layout)-1]
	assert.Equal(t, "", placement.Name)
	assert.Equal(t, image.Pt(1024, 1536), placement.Pos)

	b.addMaterial("F00_000_00_EyeExtra_01_EYE", -1)
	with := faceAtlas(b.graph())
	assert.Equal(t, image.Pt(2048, 2048), layoutBounds(with.Layout))
	assert.Equal(t, "F00_000_00_EyeExtra_01_EYE", with.Layout[len(with.Layout)-1].Name)
}

func TestAtlasCanvasSize(t *testing.T) {
	assert.Equal(t, image.Pt(2048, 1024), atlasCanvasSize(image.Pt(2048, 1024), image.Pt(4096, 4096)))
	assert.Equal(t, image.Pt(1024, 1024), atlasCanvasSize(image.Pt(2048, 1024), image.Pt(1024, 1024)))
	assert.Equal(t, image.Pt(2048, 512), atlasCanvasSize(image.Pt(2048, 1024), image.Pt(0, 512)))
}

func assertColorAt(t *testing.T, img image.Image, x int, y int, want color.NRGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.Equal(t, want, got, "pixel (%d,%d)", x, y)
}

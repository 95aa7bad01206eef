// 指示: miu200521358
package vrm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVrmRepositoryCanLoad(t *testing.T) {
	repository := NewVrmRepository()

	assert.True(t, repository.CanLoad("sample.vrm"))
	assert.True(t, repository.CanLoad("sample.VRM"))
	assert.False(t, repository.CanLoad("sample.glb"))
}

func TestVrmRepositoryInferName(t *testing.T) {
	repository := NewVrmRepository()

	assert.Equal(t, "avatar", repository.InferName("C:/work/avatar.vrm"))
}

func TestVrmRepositoryLoadReturnsExtInvalid(t *testing.T) {
	repository := NewVrmRepository()

	_, err := repository.Load("sample.pmx")
	assert.ErrorIs(t, err, io_common.ErrIoExtInvalid)
}

func TestVrmRepositoryLoadReturnsFileNotFound(t *testing.T) {
	repository := NewVrmRepository()

	_, err := repository.Load(filepath.Join(t.TempDir(), "missing.vrm"))
	assert.ErrorIs(t, err, io_common.ErrIoFileNotFound)
}

func TestVrmRepositoryLoadBuildsGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.vrm")
	doc, bin := buildVrmFixture(t)
	writeGLBFileForTestWithBin(t, path, doc, bin)

	graph, err := NewVrmRepository().Load(path)
	require.NoError(t, err)

	require.Len(t, graph.Materials, 2)
	assert.Equal(t, "F00_000_00_Body_00_SKIN", graph.Materials[0].Name)
	assert.Equal(t, []float64{1, 0.5, 0.5, 1}, graph.Materials[0].Vrm.VectorProperties[model.PropColor])
	assert.Equal(t, 0, graph.Materials[0].Vrm.TextureProperties[model.PropMainTex])
	assert.Equal(t, "F00_000_00_HairBack_00_HAIR", graph.Materials[1].Name)
	assert.Equal(t, "VRM/MToon", graph.Materials[1].Vrm.Shader)
	assert.NotNil(t, graph.Materials[1].Vrm.KeywordMap)

	require.Len(t, graph.BufferViews, 3)
	assert.Equal(t, 8*4, graph.BufferViews[0].ByteLength())
	assert.Equal(t, model.TargetArrayBuffer, graph.BufferViews[0].Target)
	require.Len(t, graph.Accessors, 2)
	assert.Equal(t, model.ComponentFloat, graph.Accessors[0].ComponentType)
	assert.Equal(t, model.AccessorVec2, graph.Accessors[0].Type)
	assert.Equal(t, model.ComponentUshort, graph.Accessors[1].ComponentType)

	require.Len(t, graph.Images, 1)
	assert.Equal(t, "image/png", graph.Images[0].MimeType)
	require.NotNil(t, graph.Vrm.ThumbnailTexture)
	assert.Equal(t, 0, *graph.Vrm.ThumbnailTexture)
	assert.Contains(t, graph.Vrm.Raw, "meta")
	assert.NotContains(t, graph.Vrm.Raw, model.VrmMaterialPropertiesKey)
	assert.Len(t, graph.Nodes, 1)
	assert.Len(t, graph.Samplers, 1)
}

func TestVrmRepositoryLoadRejectsMissingVrmExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.vrm")
	doc, bin := buildVrmFixture(t)
	delete(doc, "extensions")
	writeGLBFileForTestWithBin(t, path, doc, bin)

	_, err := NewVrmRepository().Load(path)
	assert.ErrorIs(t, err, io_common.ErrIoFormatNotSupported)
}

func TestVrmRepositoryLoadRejectsMaterialWithoutVrmProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unpaired.vrm")
	doc, bin := buildVrmFixture(t)
	materials := doc["materials"].([]any)
	doc["materials"] = append(materials, map[string]any{"name": "Orphan"})
	writeGLBFileForTestWithBin(t, path, doc, bin)

	_, err := NewVrmRepository().Load(path)
	assert.ErrorIs(t, err, io_common.ErrIoFormatNotSupported)
}

func TestVrmRepositorySaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "avatar.vrm")
	doc, bin := buildVrmFixture(t)
	writeGLBFileForTestWithBin(t, srcPath, doc, bin)

	repository := NewVrmRepository()
	graph, err := repository.Load(srcPath)
	require.NoError(t, err)
	graph.Materials[1].Vrm.FloatProperties[model.PropIndirectLightIntensity] = 0

	dstPath := filepath.Join(dir, "result", "avatar.vrm")
	require.NoError(t, repository.Save(dstPath, graph))

	reloaded, err := repository.Load(dstPath)
	require.NoError(t, err)
	assert.Equal(t, graph.MaterialNames(), reloaded.MaterialNames())
	for i := range graph.Materials {
		assert.True(t, graph.Materials[i].Vrm.EqualIgnoring(reloaded.Materials[i].Vrm), "material %d", i)
	}
	assert.Equal(t, float64(0), reloaded.Materials[1].Vrm.FloatProperties[model.PropIndirectLightIntensity])
	require.Len(t, reloaded.BufferViews, len(graph.BufferViews))
	for i := range graph.BufferViews {
		assert.Equal(t, graph.BufferViews[i].Data, reloaded.BufferViews[i].Data, "bufferView %d", i)
	}
	assert.Equal(t, graph.Meshes[0].Primitives[0].Attributes, reloaded.Meshes[0].Primitives[0].Attributes)
	assert.Equal(t, *graph.Vrm.ThumbnailTexture, *reloaded.Vrm.ThumbnailTexture)
	assert.Equal(t, graph.Asset.Generator, reloaded.Asset.Generator)
}

func TestVrmRepositorySaveRejectsNilGraph(t *testing.T) {
	err := NewVrmRepository().Save(filepath.Join(t.TempDir(), "out.vrm"), nil)
	assert.ErrorIs(t, err, io_common.ErrIoSaveFailed)
}

func TestExportTexturesWritesEmbeddedImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.vrm")
	doc, bin := buildVrmFixture(t)
	writeGLBFileForTestWithBin(t, path, doc, bin)
	graph, err := NewVrmRepository().Load(path)
	require.NoError(t, err)
	graph.AppendImage(model.Image{Name: "external", URI: "external.png"})

	textureDir := filepath.Join(t.TempDir(), "textures")
	names, err := ExportTextures(graph, textureDir, "avatar")
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "Tex_Body.png", names[0])
	assert.Equal(t, "", names[1])

	written, err := os.ReadFile(filepath.Join(textureDir, names[0]))
	require.NoError(t, err)
	expected, err := graph.ImageData(0)
	require.NoError(t, err)
	assert.Equal(t, expected, written)
}

func TestBuildUniqueTextureFileName(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "tex.png", buildUniqueTextureFileName("tex", ".PNG", used))
	assert.Equal(t, "tex_1.png", buildUniqueTextureFileName("tex", "png", used))
	assert.Equal(t, "texture.bin", buildUniqueTextureFileName("", "", used))
}

// buildVrmFixture はUV・インデックス・画像を1つずつ持つVRM0のJSONとBINを構築する。
func buildVrmFixture(t *testing.T) (map[string]any, []byte) {
	t.Helper()
	bin := &bytes.Buffer{}
	for _, v := range []float32{0, 0, 1, 0, 1, 1, 0, 1} {
		require.NoError(t, binary.Write(bin, binary.LittleEndian, math.Float32bits(v)))
	}
	uvLength := bin.Len()
	for _, v := range []uint16{0, 1, 2, 0, 2, 3} {
		require.NoError(t, binary.Write(bin, binary.LittleEndian, v))
	}
	indicesLength := bin.Len() - uvLength
	imageOffset := bin.Len()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	pngBuf := &bytes.Buffer{}
	require.NoError(t, png.Encode(pngBuf, img))
	bin.Write(pngBuf.Bytes())

	doc := map[string]any{
		"asset": map[string]any{
			"version":   "2.0",
			"generator": "VRoid Studio v1.0.0",
		},
		"extensionsUsed": []string{"VRM"},
		"scene":          0,
		"scenes":         []any{map[string]any{"nodes": []int{0}}},
		"nodes":          []any{map[string]any{"name": "Body", "mesh": 0}},
		"buffers":        []any{map[string]any{"byteLength": alignTo(bin.Len(), bufferAlign)}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": uvLength, "target": 34962},
			map[string]any{"buffer": 0, "byteOffset": uvLength, "byteLength": indicesLength, "target": 34963},
			map[string]any{"buffer": 0, "byteOffset": imageOffset, "byteLength": pngBuf.Len()},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC2"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"},
		},
		"meshes": []any{
			map[string]any{
				"name": "Body.baked",
				"primitives": []any{
					map[string]any{
						"attributes": map[string]int{"TEXCOORD_0": 0},
						"indices":    1,
						"material":   0,
					},
				},
			},
		},
		"materials": []any{
			map[string]any{
				"name":                 "F00_000_00_Body_00_SKIN",
				"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
			},
			map[string]any{"name": "F00_000_00_HairBack_00_HAIR", "alphaMode": "MASK", "alphaCutoff": 0.5},
		},
		"samplers": []any{map[string]any{"magFilter": 9729, "minFilter": 9729}},
		"textures": []any{map[string]any{"sampler": 0, "source": 0}},
		"images":   []any{map[string]any{"name": "Tex:Body", "bufferView": 2}},
		"extensions": map[string]any{
			"VRM": map[string]any{
				"exporterVersion": "VRoidStudio-1.0.0",
				"meta":            map[string]any{"title": "avatar", "texture": 0},
				"materialProperties": []any{
					map[string]any{
						"name":              "F00_000_00_HairBack_00_HAIR",
						"shader":            "VRM/MToon",
						"renderQueue":       2450,
						"floatProperties":   map[string]any{"_Cutoff": 0.5},
						"vectorProperties":  map[string]any{"_Color": []float64{0.2, 0.1, 0.1, 1}},
						"textureProperties": map[string]any{},
						"keywordMap":        map[string]any{},
						"tagMap":            map[string]any{"RenderType": "TransparentCutout"},
					},
					map[string]any{
						"name":              "F00_000_00_Body_00_SKIN",
						"shader":            "VRM/MToon",
						"renderQueue":       2000,
						"floatProperties":   map[string]any{"_IndirectLightIntensity": 0.1},
						"vectorProperties":  map[string]any{"_Color": []float64{1, 0.5, 0.5, 1}},
						"textureProperties": map[string]any{"_MainTex": 0},
						"keywordMap":        map[string]any{"_NORMALMAP": false},
						"tagMap":            map[string]any{"RenderType": "Opaque"},
					},
				},
			},
		},
	}
	return doc, bin.Bytes()
}

// writeGLBFileForTestWithBin はテスト用のJSON/BINをGLBとして書き込む。
func writeGLBFileForTestWithBin(t *testing.T, path string, doc map[string]any, binChunk []byte) {
	t.Helper()
	jsonBytes, err := json.Marshal(doc)
	require.NoError(t, err)
	jsonPadSize := (4 - (len(jsonBytes) % 4)) % 4
	if jsonPadSize > 0 {
		jsonBytes = append(jsonBytes, bytes.Repeat([]byte(" "), jsonPadSize)...)
	}
	binBytes := append([]byte(nil), binChunk...)
	binPadSize := (4 - (len(binBytes) % 4)) % 4
	if binPadSize > 0 {
		binBytes = append(binBytes, bytes.Repeat([]byte{0x00}, binPadSize)...)
	}

	totalLength := uint32(12 + 8 + len(jsonBytes))
	if len(binBytes) > 0 {
		totalLength += uint32(8 + len(binBytes))
	}
	var buf bytes.Buffer
	for _, value := range []uint32{0x46546C67, 2, totalLength, uint32(len(jsonBytes)), 0x4E4F534A} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, value))
	}
	buf.Write(jsonBytes)
	if len(binBytes) > 0 {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(binBytes))))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0x004E4942)))
		buf.Write(binBytes)
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

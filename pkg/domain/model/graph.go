// 指示: miu200521358
package model

import (
	"encoding/json"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// ComponentType はアクセサー要素の成分型(glTF定数値)を表す。
type ComponentType int

const (
	ComponentByte   ComponentType = 5120
	ComponentUbyte  ComponentType = 5121
	ComponentShort  ComponentType = 5122
	ComponentUshort ComponentType = 5123
	ComponentUint   ComponentType = 5125
	ComponentFloat  ComponentType = 5126
)

// ByteSize は成分1つあたりのバイト数を返す。
func (c ComponentType) ByteSize() int {
	switch c {
	case ComponentByte, ComponentUbyte:
		return 1
	case ComponentShort, ComponentUshort:
		return 2
	case ComponentUint, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// AccessorType はアクセサー要素の構造型を表す。
type AccessorType string

const (
	AccessorScalar AccessorType = "SCALAR"
	AccessorVec2   AccessorType = "VEC2"
	AccessorVec3   AccessorType = "VEC3"
	AccessorVec4   AccessorType = "VEC4"
	AccessorMat2   AccessorType = "MAT2"
	AccessorMat3   AccessorType = "MAT3"
	AccessorMat4   AccessorType = "MAT4"
)

// Components は要素あたりの成分数を返す。
func (a AccessorType) Components() int {
	switch a {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	default:
		return 0
	}
}

// Target はbufferViewの用途を表す。
type Target int

const (
	TargetNone               Target = 0
	TargetArrayBuffer        Target = 34962
	TargetElementArrayBuffer Target = 34963
)

// AttributeTexCoord0 は1つ目のUV属性名。
const AttributeTexCoord0 = "TEXCOORD_0"

// Graph はVRMモデル1体分のシーングラフを表す。
// 要素間の参照はすべて配列インデックスで表現する。
type Graph struct {
	Asset              Asset
	ExtensionsUsed     []string
	ExtensionsRequired []string
	Scene              *int
	Scenes             []json.RawMessage
	Nodes              []json.RawMessage
	Cameras            []json.RawMessage
	Samplers           []json.RawMessage
	Skins              []Skin
	Meshes             []Mesh
	Materials          []Material
	Textures           []Texture
	Images             []Image
	Accessors          []Accessor
	BufferViews        []BufferView
	Vrm                VrmExtension
	Extensions         map[string]json.RawMessage
	Extras             json.RawMessage
}

// Asset はglTF asset要素を表す。
type Asset struct {
	Generator string
	Version   string
	Copyright string
}

// Skin はスキン要素を表す。
type Skin struct {
	Name                string
	InverseBindMatrices *int
	Skeleton            *int
	Joints              []int
	Extras              json.RawMessage
}

// Mesh はメッシュ要素を表す。
type Mesh struct {
	Name       string
	Primitives []Primitive
	Weights    []float64
	Extras     json.RawMessage
}

// Primitive はメッシュ内の描画単位を表す。
type Primitive struct {
	Attributes map[string]int
	Indices    *int
	Material   *int
	Mode       int
	Targets    []map[string]int
	Extras     json.RawMessage
}

// Accessor はbufferView内の型付き領域を表す。
type Accessor struct {
	Name          string
	BufferView    *int
	ByteOffset    int
	ComponentType ComponentType
	Normalized    bool
	Count         int
	Type          AccessorType
	Max           []float64
	Min           []float64
	Sparse        *AccessorSparse
}

// ElementSize は1要素あたりのバイト数を返す。
func (a Accessor) ElementSize() int {
	return a.ComponentType.ByteSize() * a.Type.Components()
}

// AccessorSparse は疎アクセサー情報を表す。
type AccessorSparse struct {
	Count                int
	IndicesBufferView    int
	IndicesByteOffset    int
	IndicesComponentType ComponentType
	ValuesBufferView     int
	ValuesByteOffset     int
}

// BufferView はバイト列を所有する連続領域を表す。
type BufferView struct {
	Name       string
	Data       []byte
	ByteStride int
	Target     Target
}

// ByteLength はバイト長を返す。
func (v BufferView) ByteLength() int {
	return len(v.Data)
}

// Image は画像要素を表す。
type Image struct {
	Name       string
	MimeType   string
	URI        string
	BufferView *int
}

// Texture はテクスチャ要素を表す。
type Texture struct {
	Name    string
	Sampler *int
	Source  *int
}

// VrmExtension はVRM0拡張のうち材質以外の要素を保持する。
type VrmExtension struct {
	// Raw は materialProperties 以外のキーをそのまま保持する。
	Raw map[string]json.RawMessage
	// ThumbnailTexture は meta.texture のテクスチャインデックス。
	ThumbnailTexture *int
}

// Clone はグラフの完全な複製を返す。
func (g *Graph) Clone() (*Graph, error) {
	if g == nil {
		return nil, nil
	}
	dst := &Graph{}
	if err := deepcopy.Copy(dst, *g); err != nil {
		return nil, err
	}
	return dst, nil
}

// FindMeshes は名前に部分一致するメッシュのインデックスを列挙する。
func (g *Graph) FindMeshes(name string) []int {
	indexes := []int{}
	for i, mesh := range g.Meshes {
		if strings.Contains(mesh.Name, name) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// AppendBufferView はbufferViewを追加し、そのインデックスを返す。
func (g *Graph) AppendBufferView(view BufferView) int {
	g.BufferViews = append(g.BufferViews, view)
	return len(g.BufferViews) - 1
}

// AppendAccessor はアクセサーを追加し、そのインデックスを返す。
func (g *Graph) AppendAccessor(accessor Accessor) int {
	g.Accessors = append(g.Accessors, accessor)
	return len(g.Accessors) - 1
}

// AppendImage は画像を追加し、そのインデックスを返す。
func (g *Graph) AppendImage(image Image) int {
	g.Images = append(g.Images, image)
	return len(g.Images) - 1
}

// AppendTexture はテクスチャを追加し、そのインデックスを返す。
func (g *Graph) AppendTexture(texture Texture) int {
	g.Textures = append(g.Textures, texture)
	return len(g.Textures) - 1
}

// ImageData は画像のエンコード済みバイト列を返す。
func (g *Graph) ImageData(imageIndex int) ([]byte, error) {
	if imageIndex < 0 || imageIndex >= len(g.Images) {
		return nil, NewReferenceError("image", "", imageIndex)
	}
	image := g.Images[imageIndex]
	if image.BufferView == nil {
		return nil, NewReferenceError("image bufferView", image.Name, imageIndex)
	}
	viewIndex := *image.BufferView
	if viewIndex < 0 || viewIndex >= len(g.BufferViews) {
		return nil, NewReferenceError("bufferView", image.Name, viewIndex)
	}
	return g.BufferViews[viewIndex].Data, nil
}

// Ptr は値のポインタを返す。
func Ptr[T any](v T) *T {
	return &v
}

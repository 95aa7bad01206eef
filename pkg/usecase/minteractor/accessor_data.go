// 指示: miu200521358
package minteractor

import (
	"encoding/binary"
	"math"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// accessorLayout はアクセサー要素のbufferView上の配置を表す。
type accessorLayout struct {
	viewIndex int
	offset    int
	stride    int
	size      int
}

// resolveAccessorLayout はアクセサーの要素配置を解決し、範囲を検証する。
func resolveAccessorLayout(g *model.Graph, accessorIndex int) (model.Accessor, accessorLayout, error) {
	if accessorIndex < 0 || accessorIndex >= len(g.Accessors) {
		return model.Accessor{}, accessorLayout{}, model.NewReferenceError("accessor", "", accessorIndex)
	}
	accessor := g.Accessors[accessorIndex]
	if accessor.BufferView == nil || accessor.Sparse != nil {
		return model.Accessor{}, accessorLayout{}, model.NewPreconditionError("accessor[%d] は密なbufferView参照ではありません", accessorIndex)
	}
	viewIndex := *accessor.BufferView
	if viewIndex < 0 || viewIndex >= len(g.BufferViews) {
		return model.Accessor{}, accessorLayout{}, model.NewReferenceError("bufferView", "", viewIndex)
	}
	view := g.BufferViews[viewIndex]
	size := accessor.ElementSize()
	if size == 0 {
		return model.Accessor{}, accessorLayout{}, model.NewPreconditionError("accessor[%d] の要素型が不正です", accessorIndex)
	}
	stride := size
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}
	if accessor.Count > 0 {
		end := accessor.ByteOffset + (accessor.Count-1)*stride + size
		if accessor.ByteOffset < 0 || end > view.ByteLength() {
			return model.Accessor{}, accessorLayout{}, model.NewPreconditionError(
				"accessor[%d] がbufferView範囲外です: end=%d length=%d", accessorIndex, end, view.ByteLength())
		}
	}
	return accessor, accessorLayout{viewIndex: viewIndex, offset: accessor.ByteOffset, stride: stride, size: size}, nil
}

// elementOffset は要素のバイト位置を返す。
func (l accessorLayout) elementOffset(index int) int {
	return l.offset + index*l.stride
}

// readIndices はインデックスアクセサーの値を読み出す。u8/u16/u32 に対応する。
func readIndices(g *model.Graph, accessorIndex int) ([]int, error) {
	accessor, layout, err := resolveAccessorLayout(g, accessorIndex)
	if err != nil {
		return nil, err
	}
	if accessor.Type != model.AccessorScalar {
		return nil, model.NewPreconditionError("accessor[%d] はスカラーではありません", accessorIndex)
	}
	data := g.BufferViews[layout.viewIndex].Data
	indices := make([]int, accessor.Count)
	for i := range indices {
		at := layout.elementOffset(i)
		switch accessor.ComponentType {
		case model.ComponentUbyte:
			indices[i] = int(data[at])
		case model.ComponentUshort:
			indices[i] = int(binary.LittleEndian.Uint16(data[at:]))
		case model.ComponentUint:
			indices[i] = int(binary.LittleEndian.Uint32(data[at:]))
		default:
			return nil, model.NewPreconditionError("accessor[%d] のインデックス成分型が未対応です: %d", accessorIndex, int(accessor.ComponentType))
		}
	}
	return indices, nil
}

// readVec2 はfloat32の2成分要素を読み出す。
func readVec2(data []byte, at int) (float32, float32) {
	u := math.Float32frombits(binary.LittleEndian.Uint32(data[at:]))
	v := math.Float32frombits(binary.LittleEndian.Uint32(data[at+4:]))
	return u, v
}

// writeVec2 はfloat32の2成分要素を書き込む。
func writeVec2(data []byte, at int, u float32, v float32) {
	binary.LittleEndian.PutUint32(data[at:], math.Float32bits(u))
	binary.LittleEndian.PutUint32(data[at+4:], math.Float32bits(v))
}

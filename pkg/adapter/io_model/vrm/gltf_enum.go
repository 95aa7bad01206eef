// 指示: miu200521358
package vrm

import (
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/qmuntal/gltf"
)

const (
	alphaModeOpaque = "OPAQUE"
	alphaModeMask   = "MASK"
	alphaModeBlend  = "BLEND"
)

// fromGltfComponentType は成分型をglTF定数値へ変換する。
func fromGltfComponentType(value gltf.ComponentType) (model.ComponentType, error) {
	switch value {
	case gltf.ComponentByte:
		return model.ComponentByte, nil
	case gltf.ComponentUbyte:
		return model.ComponentUbyte, nil
	case gltf.ComponentShort:
		return model.ComponentShort, nil
	case gltf.ComponentUshort:
		return model.ComponentUshort, nil
	case gltf.ComponentUint:
		return model.ComponentUint, nil
	case gltf.ComponentFloat:
		return model.ComponentFloat, nil
	default:
		return 0, io_common.NewIoFormatNotSupported("未対応の成分型です: %v", nil, value)
	}
}

// toGltfComponentType は成分型をライブラリ定数へ変換する。
func toGltfComponentType(value model.ComponentType) (gltf.ComponentType, error) {
	switch value {
	case model.ComponentByte:
		return gltf.ComponentByte, nil
	case model.ComponentUbyte:
		return gltf.ComponentUbyte, nil
	case model.ComponentShort:
		return gltf.ComponentShort, nil
	case model.ComponentUshort:
		return gltf.ComponentUshort, nil
	case model.ComponentUint:
		return gltf.ComponentUint, nil
	case model.ComponentFloat:
		return gltf.ComponentFloat, nil
	default:
		return 0, io_common.NewIoFormatNotSupported("未対応の成分型です: %d", nil, int(value))
	}
}

// fromGltfAccessorType は要素型を文字列表現へ変換する。
func fromGltfAccessorType(value gltf.AccessorType) (model.AccessorType, error) {
	switch value {
	case gltf.AccessorScalar:
		return model.AccessorScalar, nil
	case gltf.AccessorVec2:
		return model.AccessorVec2, nil
	case gltf.AccessorVec3:
		return model.AccessorVec3, nil
	case gltf.AccessorVec4:
		return model.AccessorVec4, nil
	case gltf.AccessorMat2:
		return model.AccessorMat2, nil
	case gltf.AccessorMat3:
		return model.AccessorMat3, nil
	case gltf.AccessorMat4:
		return model.AccessorMat4, nil
	default:
		return "", io_common.NewIoFormatNotSupported("未対応の要素型です: %v", nil, value)
	}
}

// toGltfAccessorType は要素型をライブラリ定数へ変換する。
func toGltfAccessorType(value model.AccessorType) (gltf.AccessorType, error) {
	switch value {
	case model.AccessorScalar:
		return gltf.AccessorScalar, nil
	case model.AccessorVec2:
		return gltf.AccessorVec2, nil
	case model.AccessorVec3:
		return gltf.AccessorVec3, nil
	case model.AccessorVec4:
		return gltf.AccessorVec4, nil
	case model.AccessorMat2:
		return gltf.AccessorMat2, nil
	case model.AccessorMat3:
		return gltf.AccessorMat3, nil
	case model.AccessorMat4:
		return gltf.AccessorMat4, nil
	default:
		return 0, io_common.NewIoFormatNotSupported("未対応の要素型です: %s", nil, string(value))
	}
}

// fromGltfTarget はbufferView用途を変換する。
func fromGltfTarget(value gltf.Target) (model.Target, error) {
	switch value {
	case gltf.TargetNone:
		return model.TargetNone, nil
	case gltf.TargetArrayBuffer:
		return model.TargetArrayBuffer, nil
	case gltf.TargetElementArrayBuffer:
		return model.TargetElementArrayBuffer, nil
	default:
		return 0, io_common.NewIoFormatNotSupported("未対応のbufferView用途です: %v", nil, value)
	}
}

// toGltfTarget はbufferView用途をライブラリ定数へ変換する。
func toGltfTarget(value model.Target) (gltf.Target, error) {
	switch value {
	case model.TargetNone:
		return gltf.TargetNone, nil
	case model.TargetArrayBuffer:
		return gltf.TargetArrayBuffer, nil
	case model.TargetElementArrayBuffer:
		return gltf.TargetElementArrayBuffer, nil
	default:
		return 0, io_common.NewIoFormatNotSupported("未対応のbufferView用途です: %d", nil, int(value))
	}
}

// fromGltfAlphaMode はアルファモードを文字列表現へ変換する。
func fromGltfAlphaMode(value gltf.AlphaMode) string {
	switch value {
	case gltf.AlphaMask:
		return alphaModeMask
	case gltf.AlphaBlend:
		return alphaModeBlend
	default:
		return alphaModeOpaque
	}
}

// toGltfAlphaMode はアルファモードをライブラリ定数へ変換する。
func toGltfAlphaMode(value string) gltf.AlphaMode {
	switch value {
	case alphaModeMask:
		return gltf.AlphaMask
	case alphaModeBlend:
		return gltf.AlphaBlend
	default:
		return gltf.AlphaOpaque
	}
}

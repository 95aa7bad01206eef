// 指示: miu200521358
package minteractor

import (
	"image"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// skirtBottomsPrefixes はスカート型の服下材質名の接頭辞。
var skirtBottomsPrefixes = []string{"F00_001_01_Bottoms_", "M00_003_01_Bottoms_"}

// ClothPlacement は服テクスチャの配置結果を表す。
type ClothPlacement struct {
	// Main は結合先の材質キー。服がない場合は空。
	Main   string
	Layout model.AtlasLayout
}

// IsEmpty は配置対象の服がないか判定する。
func (p ClothPlacement) IsEmpty() bool {
	return p.Main == "" || len(p.Layout) == 0
}

// BuildClothPlacement は材質名から服テクスチャの配置を決める。
// 左列に服上・服下、右列に靴・アクセサリを固定サイズで並べる。
func BuildClothPlacement(materialNames []string) ClothPlacement {
	hasTops := containsAny(materialNames, model.MaterialKeyTops)
	hasBottoms := containsAny(materialNames, model.MaterialKeyBottoms)
	hasShoes := containsAny(materialNames, model.MaterialKeyShoes)
	hasAccessory := containsAny(materialNames, model.MaterialKeyAccessory)
	isSkirt := hasPrefixAny(materialNames, skirtBottomsPrefixes...)

	placement := ClothPlacement{Layout: model.AtlasLayout{}}
	setMain := func(key string) {
		if placement.Main == "" {
			placement.Main = key
		}
	}

	if hasTops {
		setMain(model.MaterialKeyTops)
		size := image.Pt(1024, 1024)
		if !hasBottoms && !hasShoes && !hasAccessory {
			size = image.Pt(2048, 2048)
		}
		placement.Layout = append(placement.Layout, model.Placement{Name: model.MaterialKeyTops, Size: size})
	}
	if hasBottoms {
		setMain(model.MaterialKeyBottoms)
		pos := image.Pt(0, 0)
		if hasTops {
			pos = image.Pt(0, 1024)
		}
		size := image.Pt(1024, 1024)
		if isSkirt {
			size = image.Pt(1024, 512)
		}
		placement.Layout = append(placement.Layout, model.Placement{Name: model.MaterialKeyBottoms, Pos: pos, Size: size})
	}

	rightX := 0
	if hasTops || hasBottoms {
		rightX = 1024
	}
	if hasShoes {
		setMain(model.MaterialKeyShoes)
		placement.Layout = append(placement.Layout, model.Placement{
			Name: model.MaterialKeyShoes,
			Pos:  image.Pt(rightX, 0),
			Size: image.Pt(512, 512),
		})
	}
	if hasAccessory {
		setMain(model.MaterialKeyAccessory)
		y := 0
		if hasShoes {
			y = 512
		}
		placement.Layout = append(placement.Layout, model.Placement{
			Name: model.MaterialKeyAccessory,
			Pos:  image.Pt(rightX, y),
			Size: image.Pt(256, 256),
		})
	}

	if placement.Main == "" {
		return ClothPlacement{}
	}
	return placement
}

// containsAny は名前のいずれかがキーを含むか判定する。
func containsAny(names []string, key string) bool {
	for _, name := range names {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

// hasPrefixAny は名前のいずれかが接頭辞のいずれかで始まるか判定する。
func hasPrefixAny(names []string, prefixes ...string) bool {
	for _, name := range names {
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}

// 指示: miu200521358
// Package io_config は材質設定ファイルの読み込みを提供する。
package io_config

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var _ moutput.IMaterialConfigReader = (*MaterialConfigRepository)(nil)

// fileConfig は設定ファイルの構造を表す。
type fileConfig struct {
	Atlases     []fileAtlas               `yaml:"atlases" toml:"atlases"`
	NearAtlases []fileNearAtlas           `yaml:"near_atlases" toml:"near_atlases"`
	Modify      map[string]map[string]any `yaml:"modify" toml:"modify"`
}

// fileAtlas はアトラス1件の設定を表す。
type fileAtlas struct {
	Base   string      `yaml:"base" toml:"base"`
	Places []filePlace `yaml:"places" toml:"places"`
}

// filePlace は区画1件の設定を表す。
type filePlace struct {
	Name string `yaml:"name" toml:"name"`
	Pos  []int  `yaml:"pos" toml:"pos"`
	Size []int  `yaml:"size" toml:"size"`
}

// fileNearAtlas は近似色アトラス1件の設定を表す。
type fileNearAtlas struct {
	Base     string `yaml:"base" toml:"base"`
	NearKey  string `yaml:"near_key" toml:"near_key"`
	Pos      []int  `yaml:"pos" toml:"pos"`
	Size     []int  `yaml:"size" toml:"size"`
	NearPos  []int  `yaml:"near_pos" toml:"near_pos"`
	NearSize []int  `yaml:"near_size" toml:"near_size"`
}

// MaterialConfigRepository は材質設定ファイルを読み込む。
type MaterialConfigRepository struct{}

// NewMaterialConfigRepository はMaterialConfigRepositoryを生成する。
func NewMaterialConfigRepository() *MaterialConfigRepository {
	return &MaterialConfigRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MaterialConfigRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

// Load は YAML または TOML の材質設定を読み込む。
func (r *MaterialConfigRepository) Load(path string) (*model.MaterialConfig, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("材質設定の読み取りに失敗しました: %s", err, path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse は拡張子で形式を切り替えて材質設定を解析する。
func Parse(data []byte, ext string) (*model.MaterialConfig, error) {
	cfg := fileConfig{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, io_common.NewIoParseFailed("YAML材質設定の解析に失敗しました", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, io_common.NewIoParseFailed("TOML材質設定の解析に失敗しました", err)
		}
	default:
		return nil, io_common.NewIoFormatNotSupported("未対応の材質設定形式です: %s", nil, ext)
	}
	return cfg.toModel()
}

// toModel は設定ファイル構造をドメインの材質設定へ変換する。
func (c fileConfig) toModel() (*model.MaterialConfig, error) {
	out := &model.MaterialConfig{
		Atlases:     make([]model.AtlasSpec, 0, len(c.Atlases)),
		NearAtlases: make([]model.NearAtlasSpec, 0, len(c.NearAtlases)),
		Modify:      make(map[string]model.MaterialPatch, len(c.Modify)),
	}
	for i, atlas := range c.Atlases {
		if atlas.Base == "" {
			return nil, io_common.NewIoParseFailed("atlases[%d] の base が未指定です", nil, i)
		}
		layout := make(model.AtlasLayout, 0, len(atlas.Places))
		for j, place := range atlas.Places {
			pos, err := toPoint(place.Pos, "atlases[%d].places[%d].pos", i, j)
			if err != nil {
				return nil, err
			}
			size, err := toPoint(place.Size, "atlases[%d].places[%d].size", i, j)
			if err != nil {
				return nil, err
			}
			layout = append(layout, model.Placement{Name: place.Name, Pos: pos, Size: size})
		}
		out.Atlases = append(out.Atlases, model.AtlasSpec{Base: atlas.Base, Layout: layout})
	}
	for i, near := range c.NearAtlases {
		if near.Base == "" || near.NearKey == "" {
			return nil, io_common.NewIoParseFailed("near_atlases[%d] の base / near_key が未指定です", nil, i)
		}
		points := make([]image.Point, 4)
		for k, values := range [][]int{near.Pos, near.Size, near.NearPos, near.NearSize} {
			point, err := toPoint(values, "near_atlases[%d] の座標", i)
			if err != nil {
				return nil, err
			}
			points[k] = point
		}
		out.NearAtlases = append(out.NearAtlases, model.NearAtlasSpec{
			Base:     near.Base,
			NearKey:  near.NearKey,
			Pos:      points[0],
			Size:     points[1],
			NearPos:  points[2],
			NearSize: points[3],
		})
	}
	for name, values := range c.Modify {
		out.Modify[name] = model.NewMaterialPatch(values)
	}
	return out, nil
}

// toPoint は2要素配列を座標へ変換する。
func toPoint(values []int, label string, params ...any) (image.Point, error) {
	if len(values) != 2 {
		return image.Point{}, io_common.NewIoParseFailed(label+" は2要素で指定してください", nil, params...)
	}
	return image.Pt(values[0], values[1]), nil
}

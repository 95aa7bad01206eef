// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
)

// SaveModel はVRMモデルを保存する。
func (uc *VrmReducerUsecase) SaveModel(rep moutput.IModelWriter, path string, graph *model.Graph) error {
	writer := rep
	if writer == nil {
		writer = uc.modelWriter
	}
	if writer == nil {
		return fmt.Errorf("モデル保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if graph == nil {
		return fmt.Errorf("保存対象モデルが未設定です")
	}
	return writer.Save(path, graph)
}

// ExportTextures は軽量化後の埋め込み画像をディレクトリへ書き出す。
func (uc *VrmReducerUsecase) ExportTextures(graph *model.Graph, textureDir string, fallbackBase string) ([]string, error) {
	if uc.textureExporter == nil {
		return nil, fmt.Errorf("テクスチャ書き出しリポジトリが設定されていません")
	}
	return uc.textureExporter.ExportTextures(graph, textureDir, fallbackBase)
}

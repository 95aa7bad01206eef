// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
)

// LoadModel はVRMモデルを読み込む。
func (uc *VrmReducerUsecase) LoadModel(rep moutput.IModelReader, path string) (*model.Graph, error) {
	repo := rep
	if repo == nil {
		repo = uc.modelReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モデル読み込みリポジトリが設定されていません")
	}
	graph, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, fmt.Errorf("モデル読み込み結果が空です")
	}
	return graph, nil
}

// LoadMaterialConfig は材質設定ファイルを読み込む。
func (uc *VrmReducerUsecase) LoadMaterialConfig(path string) (*model.MaterialConfig, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("材質設定ファイルパスが未指定です")
	}
	if uc.configReader == nil {
		return nil, fmt.Errorf("材質設定リポジトリが設定されていません")
	}
	cfg, err := uc.configReader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("材質設定の読み込みに失敗しました: %w", err)
	}
	return cfg, nil
}

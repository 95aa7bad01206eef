// 指示: miu200521358
package vrm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/shared/logging"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
	"github.com/qmuntal/gltf"
)

const (
	vrmExt      = ".vrm"
	saveDirMode = 0o755
	bufferAlign = 4
)

var (
	_ moutput.IModelReader     = (*VrmRepository)(nil)
	_ moutput.IModelWriter     = (*VrmRepository)(nil)
	_ moutput.ITextureExporter = (*VrmRepository)(nil)
)

// VrmRepository はVRM0モデルの読み込みと保存を行う。
type VrmRepository struct{}

// NewVrmRepository はVrmRepositoryを生成する。
func NewVrmRepository() *VrmRepository {
	return &VrmRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), vrmExt)
}

// InferName はパスから表示名を推定する。
func (r *VrmRepository) InferName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load はVRMを読み込み、インデックス参照のグラフへ変換する。
func (r *VrmRepository) Load(path string) (*model.Graph, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("VRMファイル情報の取得に失敗しました: %s", err, path)
	}
	logVrmInfo("VRM読込開始: file=%s", filepath.Base(path))

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, io_common.NewIoParseFailed("VRMコンテナの解析に失敗しました: %s", err, path)
	}
	logVrmDebug(
		"VRM読込ステップ: コンテナ解析完了 buffers=%d bufferViews=%d accessors=%d meshes=%d",
		len(doc.Buffers),
		len(doc.BufferViews),
		len(doc.Accessors),
		len(doc.Meshes),
	)

	graph, err := documentToGraph(doc)
	if err != nil {
		return nil, err
	}
	logVrmInfo(
		"VRM読込完了: file=%s materials=%d textures=%d images=%d",
		filepath.Base(path),
		len(graph.Materials),
		len(graph.Textures),
		len(graph.Images),
	)
	return graph, nil
}

// Save はグラフを単一バッファのGLBとして保存する。
func (r *VrmRepository) Save(path string, graph *model.Graph) error {
	if graph == nil {
		return io_common.NewIoSaveFailed("保存対象のモデルがありません", nil)
	}
	if !r.CanLoad(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, saveDirMode); err != nil {
			return io_common.NewIoSaveFailed("保存先ディレクトリの作成に失敗しました: %s", err, dir)
		}
	}

	doc, err := graphToDocument(graph)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return io_common.NewIoSaveFailed("VRMの保存に失敗しました: %s", err, path)
	}
	logVrmInfo("VRM保存完了: file=%s bytes=%d", filepath.Base(path), doc.Buffers[0].ByteLength)
	return nil
}

// logVrmInfo はVRM入出力のINFOログを出力する。
func logVrmInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logVrmDebug はVRM入出力のデバッグログを出力する。
func logVrmDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logVrmWarn はVRM入出力の警告ログを出力する。
func logVrmWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

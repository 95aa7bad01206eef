// 指示: miu200521358
package minteractor

import (
	"image"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
)

// DefaultTextureSize はテクスチャ画像の既定の上限サイズ。
var DefaultTextureSize = image.Pt(2048, 2048)

// ReduceProgressEventType は軽量化処理の進捗イベント種別を表す。
type ReduceProgressEventType string

const (
	// ReduceProgressEventTypeInputValidated は入力検証完了イベントを表す。
	ReduceProgressEventTypeInputValidated ReduceProgressEventType = "input_validated"
	// ReduceProgressEventTypeModelLoaded はモデル読み込み完了イベントを表す。
	ReduceProgressEventTypeModelLoaded ReduceProgressEventType = "model_loaded"
	// ReduceProgressEventTypeMaterialsDeduplicated は材質重複排除完了イベントを表す。
	ReduceProgressEventTypeMaterialsDeduplicated ReduceProgressEventType = "materials_deduplicated"
	// ReduceProgressEventTypePrimitivesCombined は髪プリミティブ統合完了イベントを表す。
	ReduceProgressEventTypePrimitivesCombined ReduceProgressEventType = "primitives_combined"
	// ReduceProgressEventTypeMaterialsShrunk は不要テクスチャスロット削除完了イベントを表す。
	ReduceProgressEventTypeMaterialsShrunk ReduceProgressEventType = "materials_shrunk"
	// ReduceProgressEventTypePrimitivesSorted は顔プリミティブ並べ替え完了イベントを表す。
	ReduceProgressEventTypePrimitivesSorted ReduceProgressEventType = "primitives_sorted"
	// ReduceProgressEventTypeMaterialsCombined は材質結合完了イベントを表す。
	ReduceProgressEventTypeMaterialsCombined ReduceProgressEventType = "materials_combined"
	// ReduceProgressEventTypeColorsApplied は陰色・発光色の置き換え完了イベントを表す。
	ReduceProgressEventTypeColorsApplied ReduceProgressEventType = "colors_applied"
	// ReduceProgressEventTypeGraphCleaned は不要要素削除完了イベントを表す。
	ReduceProgressEventTypeGraphCleaned ReduceProgressEventType = "graph_cleaned"
	// ReduceProgressEventTypeImagesReduced は画像縮小完了イベントを表す。
	ReduceProgressEventTypeImagesReduced ReduceProgressEventType = "images_reduced"
	// ReduceProgressEventTypeModelSaved はモデル保存完了イベントを表す。
	ReduceProgressEventTypeModelSaved ReduceProgressEventType = "model_saved"
)

// ReduceProgressStepCount は1回の軽量化で通知される進捗イベント数。
const ReduceProgressStepCount = 12

// ReduceProgressEvent は軽量化処理の進捗イベントを表す。
type ReduceProgressEvent struct {
	Type      ReduceProgressEventType
	Materials int
	Images    int
}

// IReduceProgressReporter は軽量化処理の進捗通知契約を表す。
type IReduceProgressReporter interface {
	// ReportReduceProgress は軽量化処理進捗を通知する。
	ReportReduceProgress(event ReduceProgressEvent)
}

// ReduceOptions は軽量化パイプラインの動作指定を表す。
type ReduceOptions struct {
	// ReplaceShadeColor は陰色を基本色で置き換える。
	ReplaceShadeColor bool
	// Emissive は光源の影響を受けない発光表示へ切り替える。
	Emissive bool
	// TextureSize はテクスチャ画像の上限サイズ。未指定(0,0)なら既定値、負の軸は無制限。
	TextureSize image.Point
	// MaterialConfig は内蔵の材質結合定義の代わりに使う設定。
	MaterialConfig *model.MaterialConfig
}

// ReduceRequest はVRM軽量化要求を表す。
type ReduceRequest struct {
	InputPath          string
	OutputPath         string
	Graph              *model.Graph
	MaterialConfigPath string
	TextureExportDir   string
	Options            ReduceOptions
	Reader             moutput.IModelReader
	Writer             moutput.IModelWriter
	ProgressReporter   IReduceProgressReporter
}

// ReduceResult はVRM軽量化結果を表す。
type ReduceResult struct {
	Graph        *model.Graph
	OutputPath   string
	Before       model.GraphStat
	After        model.GraphStat
	TextureNames []string
}

// 指示: miu200521358
// Package messages はCLI表示に使うメッセージを提供する。
package messages

// メッセージ一覧。
const (
	CommandUse   = "mu_vrm_reducer PATH"
	CommandShort = "VRoid出力VRMの材質・テクスチャを結合して軽量化する"
	CommandLong  = "VRoid Studioが出力したVRM0.xモデルの重複材質・重複テクスチャ・過大な画像・分割された描画単位をまとめ、見た目を保ったまま軽量化したVRMを出力します。"

	FlagReplaceShadeColor = "陰色を基本色で置き換える"
	FlagEmissive          = "発光テクスチャで表示し、光源の影響を受けないようにする"
	FlagTextureSize       = "テクスチャ画像の上限サイズ (W または W,H)"
	FlagForce             = "出力先が存在しても確認せずに上書きする"
	FlagConfig            = "材質結合設定ファイル (.yaml/.yml/.toml)"
	FlagOutput            = "出力VRMパス (既定: 入力と同じフォルダの result 配下)"
	FlagExportTextures    = "軽量化後のテクスチャを書き出すディレクトリ"
	FlagVerbose           = "詳細ログを出力する"

	PromptOverwrite = "Already exists file. Overwrite?(y/N):"

	MessageInputRequired  = "VRMファイルを指定してください"
	MessageInputExtension = "入力拡張子が .vrm ではありません: %s"
	MessageTextureSize    = "テクスチャサイズの指定が不正です: %s"
	MessageCanceled       = "上書きしないため処理を中止しました"
	MessageReduceFailed   = "軽量化に失敗しました"

	ProgressDescription = "軽量化"

	LogLoadStart     = "[mu_vrm_reducer] 読み込み開始: %s"
	LogReduceSuccess = "[mu_vrm_reducer] 保存完了: %s"
	LogReduceStat    = "[mu_vrm_reducer] 材質 %d -> %d, テクスチャ %d -> %d, 画像 %d -> %d bytes"
	LogTextureExport = "[mu_vrm_reducer] テクスチャ書き出し: %s (%d 件)"
)

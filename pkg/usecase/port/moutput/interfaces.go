// 指示: miu200521358
package moutput

import (
	"image"
	"image/draw"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// IModelReader はモデル読み込みの契約を表す。
type IModelReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// Load はモデルを読み込む。
	Load(path string) (*model.Graph, error)
}

// IModelWriter はモデル保存の契約を表す。
type IModelWriter interface {
	// Save はモデルを保存する。
	Save(path string, graph *model.Graph) error
}

// IImageCodec は画像のデコード・エンコード・リサンプルの契約を表す。
type IImageCodec interface {
	// DecodeConfig は画素を展開せずに画像サイズを取得する。
	DecodeConfig(data []byte) (image.Config, string, error)
	// Decode は画像バイト列を画素グリッドへ展開する。
	Decode(data []byte) (image.Image, error)
	// EncodePNG は画素グリッドをPNGバイト列へ変換する。
	EncodePNG(img image.Image) ([]byte, error)
	// Resample は3次補間で指定サイズへ再標本化する。
	Resample(img image.Image, width int, height int) image.Image
	// NewCanvas は透明で初期化した合成先を生成する。
	NewCanvas(width int, height int) draw.Image
	// Paste は画像を合成先の指定位置へアルファ合成で貼り付ける。
	Paste(canvas draw.Image, img image.Image, at image.Point)
}

// IMaterialConfigReader は材質設定ファイル読み込みの契約を表す。
type IMaterialConfigReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// Load は材質設定を読み込む。
	Load(path string) (*model.MaterialConfig, error)
}

// ITextureExporter は埋め込み画像の書き出し契約を表す。
type ITextureExporter interface {
	// ExportTextures は埋め込み画像をディレクトリへ書き出し、画像ごとのファイル名を返す。
	ExportTextures(graph *model.Graph, textureDir string, fallbackBase string) ([]string, error)
}

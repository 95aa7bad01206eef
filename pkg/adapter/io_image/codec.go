// 指示: miu200521358
// Package io_image は画像バイト列の入出力と再標本化を提供する。
package io_image

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// MimeTypePNG はPNG画像のMIMEタイプ。
	MimeTypePNG = "image/png"
	mimeTypeTGA = "image/x-tga"
)

var _ moutput.IImageCodec = (*Codec)(nil)

// Codec は標準的な画像形式のデコードとPNGエンコードを行う。
type Codec struct {
	encoder png.Encoder
}

// NewCodec はCodecを生成する。
func NewCodec() *Codec {
	return &Codec{encoder: png.Encoder{CompressionLevel: png.BestCompression}}
}

// imageFormat は形式名ごとのデコード関数を表す。
type imageFormat struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// imageFormats は対応する画像形式。image パッケージの登録表は使わず形式名で直接振り分ける。
var imageFormats = map[string]imageFormat{
	"png":  {decode: png.Decode, decodeConfig: png.DecodeConfig},
	"jpeg": {decode: jpeg.Decode, decodeConfig: jpeg.DecodeConfig},
	"gif":  {decode: gif.Decode, decodeConfig: gif.DecodeConfig},
	"bmp":  {decode: bmp.Decode, decodeConfig: bmp.DecodeConfig},
	"webp": {decode: webp.Decode, decodeConfig: webp.DecodeConfig},
	"tga":  {decode: tga.Decode, decodeConfig: tga.DecodeConfig},
}

// DecodeConfig は画素を展開せずに画像サイズと形式名を取得する。
func (c *Codec) DecodeConfig(data []byte) (image.Config, string, error) {
	name, format, err := detectImageFormat(data)
	if err != nil {
		return image.Config{}, "", io_common.NewIoParseFailed("画像サイズの取得に失敗しました", err)
	}
	cfg, err := format.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", io_common.NewIoParseFailed("画像サイズの取得に失敗しました: %s", err, name)
	}
	return cfg, name, nil
}

// Decode は画像バイト列を画素グリッドへ展開する。
func (c *Codec) Decode(data []byte) (image.Image, error) {
	name, format, err := detectImageFormat(data)
	if err != nil {
		return nil, io_common.NewIoParseFailed("画像のデコードに失敗しました", err)
	}
	img, err := format.decode(bytes.NewReader(data))
	if err != nil {
		return nil, io_common.NewIoParseFailed("画像のデコードに失敗しました: %s", err, name)
	}
	return img, nil
}

// detectImageFormat はシグネチャから形式名とデコード関数を決める。
// TGAはマジックを持たないため、他の形式に一致しない場合だけヘッダで判定する。
func detectImageFormat(data []byte) (string, imageFormat, error) {
	name := ""
	if kind, err := filetype.Image(data); err == nil && kind != filetype.Unknown {
		name = kind.MIME.Subtype
	} else if isTGA(data) {
		name = "tga"
	}
	format, ok := imageFormats[name]
	if !ok {
		return "", imageFormat{}, fmt.Errorf("未対応の画像形式です: %q", name)
	}
	return name, format, nil
}

// EncodePNG は画素グリッドをPNGバイト列へ変換する。
func (c *Codec) EncodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := c.encoder.Encode(buf, img); err != nil {
		return nil, io_common.NewIoSaveFailed("PNGエンコードに失敗しました", err)
	}
	return buf.Bytes(), nil
}

// Resample はCatmull-Rom補間で指定サイズへ再標本化する。
func (c *Codec) Resample(img image.Image, width int, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// NewCanvas は透明で初期化したRGBAキャンバスを生成する。
func (c *Codec) NewCanvas(width int, height int) draw.Image {
	return NewCanvas(width, height)
}

// Paste は画像をキャンバスの指定位置へアルファ合成で貼り付ける。
func (c *Codec) Paste(canvas draw.Image, img image.Image, at image.Point) {
	Paste(canvas, img, at)
}

// NewCanvas は透明で初期化したRGBAキャンバスを生成する。
func NewCanvas(width int, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// Paste は画像をキャンバスの指定位置へアルファ合成で貼り付ける。
func Paste(canvas draw.Image, img image.Image, at image.Point) {
	rect := image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}
	draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Over)
}

// DetectMimeType はシグネチャから画像のMIMEタイプを推定する。判定できなければ空文字。
func DetectMimeType(data []byte) string {
	kind, err := filetype.Image(data)
	if err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if isTGA(data) {
		return mimeTypeTGA
	}
	return ""
}

// isTGA はTGAとして解釈可能なヘッダか簡易判定する。TGAにはマジックがないため形式種別で判定する。
func isTGA(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	colorMapType := data[1]
	imageType := data[2]
	if colorMapType > 1 {
		return false
	}
	switch imageType {
	case 1, 2, 3, 9, 10, 11:
		return true
	default:
		return false
	}
}

// 指示: miu200521358
package vrm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

const (
	exportDirMode  = 0o755
	exportFileMode = 0o644
)

// ExportTextures はグラフに埋め込まれた画像をディレクトリへ書き出し、画像順のファイル名を返す。
// 外部URI参照など埋め込みでない画像は空文字になる。
func ExportTextures(graph *model.Graph, textureDir string, fallbackBase string) ([]string, error) {
	if graph == nil || len(graph.Images) == 0 {
		return []string{}, nil
	}
	if strings.TrimSpace(textureDir) == "" {
		return nil, fmt.Errorf("テクスチャ出力先ディレクトリが未指定です")
	}
	if err := os.MkdirAll(textureDir, exportDirMode); err != nil {
		return nil, io_common.NewIoSaveFailed("テクスチャ出力先ディレクトリの作成に失敗しました: %s", err, textureDir)
	}

	textureNames := make([]string, len(graph.Images))
	used := map[string]int{}
	for imageIndex, image := range graph.Images {
		imageBytes, err := graph.ImageData(imageIndex)
		if err != nil || len(imageBytes) == 0 {
			logVrmDebug("テクスチャ書き出しスキップ: image=%d name=%s", imageIndex, image.Name)
			continue
		}
		ext := extByMimeType(image.MimeType)
		if ext == "" {
			ext = detectImageExt(imageBytes)
		}
		nameBase := chooseTextureBaseName(image, imageIndex, fallbackBase)
		fileName := buildUniqueTextureFileName(nameBase, ext, used)
		savePath := filepath.Join(textureDir, fileName)
		if err := os.WriteFile(savePath, imageBytes, exportFileMode); err != nil {
			return nil, io_common.NewIoSaveFailed("テクスチャファイルの保存に失敗しました: %s", err, savePath)
		}
		textureNames[imageIndex] = fileName
	}
	logVrmInfo("テクスチャ書き出し完了: dir=%s images=%d", textureDir, len(graph.Images))
	return textureNames, nil
}

// ExportTextures は埋め込み画像をディレクトリへ書き出す。
func (r *VrmRepository) ExportTextures(graph *model.Graph, textureDir string, fallbackBase string) ([]string, error) {
	return ExportTextures(graph, textureDir, fallbackBase)
}

// extByMimeType はMIMEタイプから拡張子を返す。
func extByMimeType(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/gif":
		return ".gif"
	case "image/tga", "image/x-tga":
		return ".tga"
	default:
		return ""
	}
}

// detectImageExt はシグネチャから画像拡張子を推定する。
func detectImageExt(data []byte) string {
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return "." + kind.Extension
}

// chooseTextureBaseName は画像出力ファイルのベース名を決定する。
func chooseTextureBaseName(image model.Image, index int, fallbackBase string) string {
	if name := sanitizeFileName(image.Name); name != "" {
		return name
	}
	base := sanitizeFileName(fallbackBase)
	if base == "" {
		base = "texture"
	}
	return fmt.Sprintf("%s_tex_%03d", base, index+1)
}

// buildUniqueTextureFileName は重複しないテクスチャファイル名を生成する。
func buildUniqueTextureFileName(base string, ext string, used map[string]int) string {
	safeBase := sanitizeFileName(base)
	if safeBase == "" {
		safeBase = "texture"
	}
	if ext == "" {
		ext = ".bin"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ext = strings.ToLower(ext)

	key := strings.ToLower(safeBase + ext)
	if _, exists := used[key]; !exists {
		used[key] = 1
		return safeBase + ext
	}
	serial := used[key]
	for {
		candidate := fmt.Sprintf("%s_%d", safeBase, serial)
		candidateKey := strings.ToLower(candidate + ext)
		if _, exists := used[candidateKey]; !exists {
			used[candidateKey] = 1
			used[key] = serial + 1
			return candidate + ext
		}
		serial++
	}
}

// sanitizeFileName はファイル名に使えない文字を置換する。
func sanitizeFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"\\", "_",
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	safe := strings.TrimSpace(replacer.Replace(trimmed))
	if safe == "" {
		return ""
	}
	return strings.Trim(safe, ".")
}

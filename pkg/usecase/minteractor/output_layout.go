// 指示: miu200521358
package minteractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultResultDirName  = "result"
	defaultTextureDirName = "tex"
	vrmExt                = ".vrm"
)

// BuildDefaultOutputPath は入力VRMパスから既定の出力パスを生成する。
// 入力と同じディレクトリの result 配下へ同名で出力する。
func BuildDefaultOutputPath(inputPath string) string {
	base := strings.TrimSpace(filepath.Base(inputPath))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return ""
	}
	return filepath.Join(filepath.Dir(inputPath), defaultResultDirName, base)
}

// BuildDefaultTextureExportDir は出力パスからテクスチャ書き出し先の既定ディレクトリを生成する。
func BuildDefaultTextureExportDir(outputPath string) string {
	return filepath.Join(filepath.Dir(outputPath), defaultTextureDirName)
}

// OutputExists は出力先に既存ファイルがあるか判定する。
func OutputExists(outputPath string) bool {
	info, err := os.Stat(outputPath)
	return err == nil && !info.IsDir()
}

// resolveVrmOutputPath はVRM保存先パスを解決し、拡張子を検証する。
func resolveVrmOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先VRMパスが未指定です")
	}
	if !strings.EqualFold(filepath.Ext(resolved), vrmExt) {
		return "", fmt.Errorf("保存先拡張子が .vrm ではありません: %s", resolved)
	}
	if sameFilePath(inputPath, resolved) {
		return "", fmt.Errorf("保存先が入力VRMと同じです: %s", resolved)
	}
	return resolved, nil
}

// sameFilePath は2つのパスが同じファイルを指すか判定する。
func sameFilePath(a string, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// textureFallbackBase は画像名がない場合に使う書き出しファイル名の基底を返す。
func textureFallbackBase(outputPath string) string {
	return strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
}

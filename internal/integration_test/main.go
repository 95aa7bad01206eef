// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_config"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_image"
	"github.com/miu200521358/mu_vrm_reducer/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ軽量化の実行設定を表す。
type batchConfig struct {
	InputDir    string
	InputPaths  []string
	OutputRoot  string
	ConfigPath  string
	TextureSize int
	DryRun      bool
	FailFast    bool
}

// reduceEntry は1モデル分の軽量化入力情報を表す。
type reduceEntry struct {
	Index      int
	SourcePath string
	ModelName  string
	CaseDir    string
	OutputPath string
}

// reduceResult は1モデル分の軽量化結果を表す。
type reduceResult struct {
	Entry     reduceEntry
	Status    string
	Duration  time.Duration
	Err       error
	StageInfo string
	Materials [2]int
	Images    [2]int
}

// reduceProgressCollector は軽量化パイプラインの進捗イベントを収集する。
type reduceProgressCollector struct {
	eventCounts  map[minteractor.ReduceProgressEventType]int
	materialsMin int
	imagesMin    int
}

// main は実モデル検証向けのVRM一括軽量化を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括軽量化を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	inputPaths, err := collectInputPaths(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "入力解決に失敗しました: %v\n", err)
		return 2
	}
	entries := buildReduceEntries(config.OutputRoot, inputPaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "軽量化対象モデルがありません")
		return 2
	}

	results := executeBatchReduce(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig(args []string) (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	flags := flag.NewFlagSet("integration_test", flag.ContinueOnError)
	inputDir := flags.String("input-dir", "", "軽量化対象VRMを探すディレクトリ")
	outputRoot := flags.String("output-root", defaultOutputRoot, "軽量化結果の出力ルートディレクトリ")
	configPath := flags.String("config", "", "材質設定ファイル(YAML/TOML)")
	textureSize := flags.Int("texture-size", 2048, "テクスチャの最大辺")
	dryRun := flags.Bool("dry-run", false, "実処理せず、入力解決と出力先計画のみ表示する")
	failFast := flags.Bool("fail-fast", false, "失敗時に即時終了する")
	if err := flags.Parse(args); err != nil {
		return batchConfig{}, err
	}

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	if *textureSize <= 0 {
		return batchConfig{}, fmt.Errorf("texture-size が不正です: %d", *textureSize)
	}
	return batchConfig{
		InputDir:    strings.TrimSpace(*inputDir),
		InputPaths:  flags.Args(),
		OutputRoot:  filepath.Clean(trimmedOutputRoot),
		ConfigPath:  strings.TrimSpace(*configPath),
		TextureSize: *textureSize,
		DryRun:      *dryRun,
		FailFast:    *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// collectInputPaths は引数と入力ディレクトリ配下の .vrm を重複なく列挙する。
func collectInputPaths(config batchConfig) ([]string, error) {
	paths := append([]string(nil), config.InputPaths...)
	if config.InputDir != "" {
		matches, err := filepath.Glob(filepath.Join(normalizeInputPath(config.InputDir), "*.vrm"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	unique := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" || slices.Contains(unique, path) {
			continue
		}
		unique = append(unique, path)
	}
	return unique, nil
}

// buildReduceEntries は入力パス一覧から軽量化対象エントリを生成する。
func buildReduceEntries(outputRoot string, inputPaths []string) []reduceEntry {
	entries := make([]reduceEntry, 0, len(inputPaths))
	for i, rawPath := range inputPaths {
		modelName := resolveModelName(rawPath)
		safeModelName := sanitizePathComponent(modelName)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, safeModelName))
		entries = append(entries, reduceEntry{
			Index:      i + 1,
			SourcePath: normalizeInputPath(rawPath),
			ModelName:  modelName,
			CaseDir:    caseDir,
			OutputPath: filepath.Join(caseDir, safeModelName+".vrm"),
		})
	}
	return entries
}

// executeBatchReduce は全モデルの軽量化を順次実行する。
func executeBatchReduce(config batchConfig, entries []reduceEntry) []reduceResult {
	results := make([]reduceResult, 0, len(entries))
	repository := vrm.NewVrmRepository()
	usecase := minteractor.NewVrmReducerUsecase(minteractor.VrmReducerUsecaseDeps{
		ModelReader:     repository,
		ModelWriter:     repository,
		ImageCodec:      io_image.NewCodec(),
		ConfigReader:    io_config.NewMaterialConfigRepository(),
		TextureExporter: repository,
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 軽量化開始: model=%s\n", entry.Index, total, entry.ModelName)
		result := reduceModelEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 軽量化成功: model=%s output=%s materials=%d->%d images=%d->%d elapsed=%s\n",
				entry.Index, total, entry.ModelName, entry.OutputPath,
				result.Materials[0], result.Materials[1], result.Images[0], result.Images[1],
				result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] 進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: model=%s input=%s output=%s\n", entry.Index, total, entry.ModelName, entry.SourcePath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: model=%s input=%s reason=%v\n", entry.Index, total, entry.ModelName, entry.SourcePath, result.Err)
		default:
			fmt.Printf("[%d/%d] 軽量化失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// reduceModelEntry は1モデル分の軽量化を実行する。
func reduceModelEntry(usecase *minteractor.VrmReducerUsecase, config batchConfig, entry reduceEntry) reduceResult {
	result := reduceResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.SourcePath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newReduceProgressCollector()
	reduced, err := usecase.Reduce(context.Background(), minteractor.ReduceRequest{
		InputPath:          entry.SourcePath,
		OutputPath:         entry.OutputPath,
		MaterialConfigPath: config.ConfigPath,
		TextureExportDir:   filepath.Join(entry.CaseDir, "tex"),
		Options: minteractor.ReduceOptions{
			TextureSize: image.Pt(config.TextureSize, config.TextureSize),
		},
		ProgressReporter: progressCollector,
	})
	if err != nil {
		result.Err = fmt.Errorf("Reduceに失敗しました: %w", err)
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.StageInfo = progressCollector.Summary()
	result.Materials = [2]int{reduced.Before.Materials, reduced.After.Materials}
	result.Images = [2]int{reduced.Before.Images, reduced.After.Images}
	return result
}

// printBatchSummary は軽量化結果の集計を標準出力へ表示する。
func printBatchSummary(results []reduceResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ軽量化サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newReduceProgressCollector は軽量化進捗収集器を生成する。
func newReduceProgressCollector() *reduceProgressCollector {
	return &reduceProgressCollector{
		eventCounts:  map[minteractor.ReduceProgressEventType]int{},
		materialsMin: -1,
		imagesMin:    -1,
	}
}

// ReportReduceProgress は軽量化の進捗イベントを収集する。
func (collector *reduceProgressCollector) ReportReduceProgress(event minteractor.ReduceProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.ReduceProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.Type == minteractor.ReduceProgressEventTypeInputValidated {
		return
	}
	if collector.materialsMin < 0 || event.Materials < collector.materialsMin {
		collector.materialsMin = event.Materials
	}
	if collector.imagesMin < 0 || event.Images < collector.imagesMin {
		collector.imagesMin = event.Images
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *reduceProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d materialsMin=%d imagesMin=%d stages=%s",
		len(collector.eventCounts),
		collector.materialsMin,
		collector.imagesMin,
		strings.Join(types, ","),
	)
}

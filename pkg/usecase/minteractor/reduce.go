// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/shared/logging"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
)

// reducePass はパイプライン1段分の処理を表す。
type reducePass struct {
	name  string
	event ReduceProgressEventType
	run   func(graph *model.Graph) (*model.Graph, error)
}

// Reduce はVRM入力を読み込み、軽量化して保存する。
// いずれかの段で失敗した場合は何も保存しない。
func (uc *VrmReducerUsecase) Reduce(ctx context.Context, request ReduceRequest) (*ReduceResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.Graph == nil {
		return nil, fmt.Errorf("入力VRMパスが未指定です")
	}
	outputPath, err := resolveVrmOutputPath(request.InputPath, request.OutputPath)
	if err != nil {
		return nil, err
	}
	options := request.Options
	if options.MaterialConfig == nil && strings.TrimSpace(request.MaterialConfigPath) != "" {
		cfg, err := uc.LoadMaterialConfig(request.MaterialConfigPath)
		if err != nil {
			return nil, err
		}
		options.MaterialConfig = cfg
	}
	reportReduceProgress(request.ProgressReporter, ReduceProgressEvent{Type: ReduceProgressEventTypeInputValidated})

	graph := request.Graph
	if graph == nil {
		graph, err = uc.LoadModel(request.Reader, request.InputPath)
		if err != nil {
			return nil, err
		}
	}
	reportReduceProgress(request.ProgressReporter, ReduceProgressEvent{
		Type:      ReduceProgressEventTypeModelLoaded,
		Materials: len(graph.Materials),
		Images:    len(graph.Images),
	})

	reduced, err := uc.ReduceGraph(ctx, graph, options, request.ProgressReporter)
	if err != nil {
		return nil, err
	}
	if err := uc.SaveModel(request.Writer, outputPath, reduced); err != nil {
		return nil, err
	}
	reportReduceProgress(request.ProgressReporter, ReduceProgressEvent{
		Type:      ReduceProgressEventTypeModelSaved,
		Materials: len(reduced.Materials),
		Images:    len(reduced.Images),
	})

	result := &ReduceResult{
		Graph:      reduced,
		OutputPath: outputPath,
		Before:     graph.Stat(),
		After:      reduced.Stat(),
	}
	if dir := strings.TrimSpace(request.TextureExportDir); dir != "" {
		names, err := uc.ExportTextures(reduced, dir, textureFallbackBase(outputPath))
		if err != nil {
			return nil, fmt.Errorf("テクスチャ書き出しに失敗しました: %w", err)
		}
		result.TextureNames = names
	}
	return result, nil
}

// ReduceGraph は読み込み済みモデルへ軽量化パイプラインを順に適用する。
// 入力グラフは変更しない。
func (uc *VrmReducerUsecase) ReduceGraph(
	ctx context.Context,
	graph *model.Graph,
	options ReduceOptions,
	reporter IReduceProgressReporter,
) (*model.Graph, error) {
	if graph == nil {
		return nil, fmt.Errorf("軽量化対象モデルが未設定です")
	}
	textureSize := options.TextureSize
	if textureSize == (image.Point{}) {
		textureSize = DefaultTextureSize
	}
	before := graph.Stat()
	logGraphStat("軽量化前", before)

	passes := []reducePass{
		{name: "材質重複排除", event: ReduceProgressEventTypeMaterialsDeduplicated, run: DeduplicateMaterials},
		{name: "髪プリミティブ統合", event: ReduceProgressEventTypePrimitivesCombined, run: func(g *model.Graph) (*model.Graph, error) {
			return CombinePrimitives(g, model.MeshKeyHair)
		}},
		{name: "不要テクスチャスロット削除", event: ReduceProgressEventTypeMaterialsShrunk, run: ShrinkMaterials},
		{name: "顔プリミティブ並べ替え", event: ReduceProgressEventTypePrimitivesSorted, run: func(g *model.Graph) (*model.Graph, error) {
			return SortMeshPrimitives(g, model.MeshKeyFace, FaceDrawOrder(g))
		}},
		{name: "材質結合", event: ReduceProgressEventTypeMaterialsCombined, run: func(g *model.Graph) (*model.Graph, error) {
			if options.MaterialConfig != nil {
				return combineConfiguredMaterials(g, options.MaterialConfig, textureSize, uc.imageCodec)
			}
			return combineBuiltinMaterials(g, textureSize, uc.imageCodec)
		}},
		{name: "陰色・発光色置き換え", event: ReduceProgressEventTypeColorsApplied, run: func(g *model.Graph) (*model.Graph, error) {
			return applyColorOptions(g, options)
		}},
		{name: "不要要素削除", event: ReduceProgressEventTypeGraphCleaned, run: CleanGraph},
		{name: "画像縮小", event: ReduceProgressEventTypeImagesReduced, run: func(g *model.Graph) (*model.Graph, error) {
			return ReduceImages(ctx, g, textureSize, uc.imageCodec)
		}},
		{name: "不要要素削除", event: ReduceProgressEventTypeGraphCleaned, run: CleanGraph},
	}

	current := graph
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := pass.run(current)
		if err != nil {
			return nil, fmt.Errorf("%sに失敗しました: %w", pass.name, err)
		}
		current = next
		logReduceDebug("%s完了: materials=%d images=%d", pass.name, len(current.Materials), len(current.Images))
		reportReduceProgress(reporter, ReduceProgressEvent{
			Type:      pass.event,
			Materials: len(current.Materials),
			Images:    len(current.Images),
		})
	}

	logGraphStat("軽量化後", current.Stat())
	return current, nil
}

// combineBuiltinMaterials はVRoid標準の材質構成を前提に服・顔・アイライン・髪の材質を結合する。
func combineBuiltinMaterials(g *model.Graph, textureSize image.Point, codec moutput.IImageCodec) (*model.Graph, error) {
	current := g
	var err error
	if cloth := BuildClothPlacement(current.MaterialNames()); !cloth.IsEmpty() {
		if current, err = CombineMaterials(current, cloth.Layout, cloth.Main, textureSize, codec); err != nil {
			return nil, err
		}
	}
	if current, err = SetFaceRenderType(current); err != nil {
		return nil, err
	}
	for _, atlas := range []model.AtlasSpec{faceAtlas(current), eyelineAtlas()} {
		if current, err = CombineMaterials(current, atlas.Layout, atlas.Base, textureSize, codec); err != nil {
			return nil, err
		}
	}
	if atlas, ok := buildNearAtlas(current, hairNearAtlas()); ok {
		if current, err = CombineMaterials(current, atlas.Layout, atlas.Base, textureSize, codec); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// combineConfiguredMaterials は材質設定に従って材質を結合し、パッチを適用する。
func combineConfiguredMaterials(
	g *model.Graph,
	cfg *model.MaterialConfig,
	textureSize image.Point,
	codec moutput.IImageCodec,
) (*model.Graph, error) {
	current := g
	var err error
	for _, atlas := range cfg.Atlases {
		if current, err = CombineMaterials(current, atlas.Layout, atlas.Base, textureSize, codec); err != nil {
			return nil, err
		}
	}
	for _, near := range cfg.NearAtlases {
		atlas, ok := buildNearAtlas(current, near)
		if !ok {
			logReduceDebug("近似色材質が見つからないため結合をスキップ: base=%s near=%s", near.Base, near.NearKey)
			continue
		}
		if current, err = CombineMaterials(current, atlas.Layout, atlas.Base, textureSize, codec); err != nil {
			return nil, err
		}
	}
	if len(cfg.Modify) == 0 {
		return current, nil
	}
	return ModifyMaterials(current, cfg.Modify)
}

// applyColorOptions は陰色・発光色の置き換えを指定に応じて適用する。
func applyColorOptions(g *model.Graph, options ReduceOptions) (*model.Graph, error) {
	current := g
	var err error
	if options.ReplaceShadeColor {
		if current, err = ReplaceShadeColor(current); err != nil {
			return nil, err
		}
	}
	if options.Emissive {
		if current, err = EmissiveMaterials(current); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// faceAtlas は顔・口・目の材質を1枚にまとめる配置を返す。
// > < 目が無い場合もその区画は空けたまま 2048x2048 を保つ。
func faceAtlas(g *model.Graph) model.AtlasSpec {
	return model.AtlasSpec{
		Base: model.MaterialKeyFace,
		Layout: model.AtlasLayout{
			{Name: model.MaterialKeyFace, Pos: image.Pt(0, 0), Size: image.Pt(1024, 1024)},
			{Name: model.MaterialKeyFaceMouth, Pos: image.Pt(0, 1024), Size: image.Pt(1024, 1024)},
			{Name: model.MaterialKeyEyeIris, Pos: image.Pt(1024, 0), Size: image.Pt(1024, 512)},
			{Name: model.MaterialKeyEyeHighlight, Pos: image.Pt(1024, 512), Size: image.Pt(1024, 512)},
			{Name: model.MaterialKeyEyeWhite, Pos: image.Pt(1024, 1024), Size: image.Pt(1024, 512)},
			{Name: FindEyeExtraName(g), Pos: image.Pt(1024, 1536), Size: image.Pt(1024, 512)},
		},
	}
}

// eyelineAtlas はアイライン・まつ毛・眉毛の材質を縦に並べる配置を返す。
func eyelineAtlas() model.AtlasSpec {
	return model.AtlasSpec{
		Base: model.MaterialKeyFaceEyeline,
		Layout: model.AtlasLayout{
			{Name: model.MaterialKeyFaceEyeline, Pos: image.Pt(0, 0), Size: image.Pt(1024, 512)},
			{Name: model.MaterialKeyFaceEyelash, Pos: image.Pt(0, 512), Size: image.Pt(1024, 512)},
			{Name: model.MaterialKeyFaceBrow, Pos: image.Pt(0, 1024), Size: image.Pt(1024, 512)},
		},
	}
}

// hairNearAtlas は頭の下毛と色の近い髪材質を結合する指定を返す。
func hairNearAtlas() model.NearAtlasSpec {
	return model.NearAtlasSpec{
		Base:     model.MaterialKeyHairBack,
		NearKey:  model.MaterialKeyHair,
		Pos:      image.Pt(512, 0),
		Size:     image.Pt(1024, 1024),
		NearPos:  image.Pt(0, 0),
		NearSize: image.Pt(512, 1024),
	}
}

// reportReduceProgress は軽量化処理の進捗を通知する。
func reportReduceProgress(reporter IReduceProgressReporter, event ReduceProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportReduceProgress(event)
}

// logGraphStat はモデルの要素数をINFOログへ出力する。
func logGraphStat(label string, stat model.GraphStat) {
	logReduceInfo("%s: materials=%d textures=%d images=%d accessors=%d bufferViews=%d primitives=%d imageBytes=%d",
		label, stat.Materials, stat.Textures, stat.Images, stat.Accessors, stat.BufferViews, stat.Primitives, stat.ImageBytes)
	for _, mesh := range stat.Meshes {
		logReduceDebug("%s: mesh=%s primitives=%d", label, mesh.Name, mesh.Primitives)
	}
}

// logReduceInfo は軽量化処理のINFOログを出力する。
func logReduceInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logReduceDebug は軽量化処理のデバッグログを出力する。
func logReduceDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"

// VrmReducerUsecaseDeps はVRM軽量化ユースケースの依存を表す。
type VrmReducerUsecaseDeps struct {
	ModelReader     moutput.IModelReader
	ModelWriter     moutput.IModelWriter
	ImageCodec      moutput.IImageCodec
	ConfigReader    moutput.IMaterialConfigReader
	TextureExporter moutput.ITextureExporter
}

// VrmReducerUsecase はVRMモデルの軽量化処理をまとめたユースケースを表す。
type VrmReducerUsecase struct {
	modelReader     moutput.IModelReader
	modelWriter     moutput.IModelWriter
	imageCodec      moutput.IImageCodec
	configReader    moutput.IMaterialConfigReader
	textureExporter moutput.ITextureExporter
}

// NewVrmReducerUsecase はVRM軽量化ユースケースを生成する。
func NewVrmReducerUsecase(deps VrmReducerUsecaseDeps) *VrmReducerUsecase {
	return &VrmReducerUsecase{
		modelReader:     deps.ModelReader,
		modelWriter:     deps.ModelWriter,
		imageCodec:      deps.ImageCodec,
		configReader:    deps.ConfigReader,
		textureExporter: deps.TextureExporter,
	}
}

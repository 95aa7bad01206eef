// 指示: miu200521358
package model

const (
	// VrmExtensionKey はVRM0拡張のトップレベルキー。
	VrmExtensionKey = "VRM"
	// VrmMaterialPropertiesKey はVRM0拡張内の材質プロパティ配列キー。
	VrmMaterialPropertiesKey = "materialProperties"

	// MaterialKeyTops は服上材質名の識別子。
	MaterialKeyTops = "_Tops_"
	// MaterialKeyBottoms は服下材質名の識別子。
	MaterialKeyBottoms = "_Bottoms_"
	// MaterialKeyShoes は靴材質名の識別子。
	MaterialKeyShoes = "_Shoes_"
	// MaterialKeyAccessory はアクセサリ材質名の識別子。
	MaterialKeyAccessory = "_Accessory_"

	// MaterialKeyFace は顔材質名の識別子。
	MaterialKeyFace = "_Face_"
	// MaterialKeyFaceMouth は口材質名の識別子。
	MaterialKeyFaceMouth = "_FaceMouth_"
	// MaterialKeyFaceEyeline はアイライン材質名の識別子。
	MaterialKeyFaceEyeline = "_FaceEyeline_"
	// MaterialKeyFaceEyelash はまつ毛材質名の識別子。
	MaterialKeyFaceEyelash = "_FaceEyelash_"
	// MaterialKeyFaceBrow は眉毛材質名の識別子。
	MaterialKeyFaceBrow = "_FaceBrow_"
	// MaterialKeyEyeWhite は白目材質名の識別子。
	MaterialKeyEyeWhite = "_EyeWhite_"
	// MaterialKeyEyeIris は瞳材質名の識別子。
	MaterialKeyEyeIris = "_EyeIris_"
	// MaterialKeyEyeHighlight は目のハイライト材質名の識別子。
	MaterialKeyEyeHighlight = "_EyeHighlight_"
	// MaterialKeyEyeExtra は > < 目材質名の識別子。
	MaterialKeyEyeExtra = "_EyeExtra_"
	// MaterialKeyFaceEyeSP は > < 目材質名の旧識別子。
	MaterialKeyFaceEyeSP = "_FaceEyeSP"

	// MaterialKeyHair は髪材質名の識別子。
	MaterialKeyHair = "_Hair_"
	// MaterialKeyHairBack は頭の下毛材質名の識別子。
	MaterialKeyHairBack = "_HairBack_"

	// MeshKeyHair は髪メッシュ名の識別子。
	MeshKeyHair = "Hair"
	// MeshKeyFace は顔メッシュ名の識別子。
	MeshKeyFace = "Face"
)

// MToon 材質プロパティ名。
const (
	PropMainTex                = "_MainTex"
	PropShadeTexture           = "_ShadeTexture"
	PropEmissionMap            = "_EmissionMap"
	PropBumpMap                = "_BumpMap"
	PropSphereAdd              = "_SphereAdd"
	PropOutlineWidthTexture    = "_OutlineWidthTexture"
	PropColor                  = "_Color"
	PropShadeColor             = "_ShadeColor"
	PropEmissionColor          = "_EmissionColor"
	PropOutlineColor           = "_OutlineColor"
	PropIndirectLightIntensity = "_IndirectLightIntensity"

	KeywordNormalMap   = "_NORMALMAP"
	KeywordAlphaTestOn = "_ALPHATEST_ON"

	TagRenderType               = "RenderType"
	RenderTypeTransparentCutout = "TransparentCutout"
)

package floral

import (
	"floral-studio-server/modules/common/gemini"
)

// GiftType - 선물 형태
type GiftType string

const (
	GiftBouquet   GiftType = "bouquet"
	GiftHugBucket GiftType = "hug_bucket"
	GiftBox       GiftType = "gift_box"
)

// Composition - 인물 구성 (none = 정물 촬영)
type Composition string

const (
	CompositionSingle      Composition = "single"
	CompositionDoubleBFF   Composition = "double_bff"
	CompositionCouple      Composition = "couple"
	CompositionMultipleBFF Composition = "multiple_bff"
	CompositionNone        Composition = "none"
)

// 크기 슬라이더 범위 (cm)
const (
	MinSizeCm     = 25
	MaxSizeCm     = 70
	DefaultSizeCm = 35
)

// PlanSize - 요청 1건당 프롬프트 수
const PlanSize = 4

// 모델 식별자 (artistic 은 UI 식별자일 뿐 실제 호출 모델은 standard)
const (
	ModelStandard = "gemini-2.5-flash-image"
	ModelArtistic = "gemini-2.5-flash-image-artistic"
)

type (
	// ReferenceImage - 사용자가 업로드한 꽃 사진
	ReferenceImage = gemini.Image
	// GeneratedImage - 생성 결과 이미지
	GeneratedImage = gemini.Image
)

// GenerationRequest - 생성 요청 1건 (불변 값)
type GenerationRequest struct {
	Reference    ReferenceImage
	GiftType     GiftType
	SizeCm       int
	Scene        string
	Style        string
	Composition  Composition
	ArtisticMode bool
}

// PromptPlan - 순서가 있는 프롬프트 4개
type PromptPlan []string

// GenerationResult - 실제로 만들어진 이미지들 (항상 계획 순서의 prefix)
type GenerationResult struct {
	Images    []GeneratedImage
	Requested int
}

// Partial reports whether fewer images came back than were planned.
func (r GenerationResult) Partial() bool {
	return len(r.Images) < r.Requested
}

// ClampSize - 크기를 [25,70] 범위로 보정
func ClampSize(size int) int {
	if size < MinSizeCm {
		return MinSizeCm
	}
	if size > MaxSizeCm {
		return MaxSizeCm
	}
	return size
}

// IsArtisticModel - 모델 식별자가 artistic 모드인지
func IsArtisticModel(model string) bool {
	return model == ModelArtistic
}

package floral

import (
	"fmt"
)

const (
	primaryInstruction = "PRIMARY MANDATE: The floral arrangement in this photo MUST be a 100% VISUAL REPLICA of the uploaded image. " +
		"Replicate the EXACT flower species, color tones, and wrapping style. Do not invent new flower types."
	artisticInstruction = "STYLE UPGRADE: Enhance artistic composition, cinematic lighting, and rich professional color grading. Soft film-like textures."
)

// SizeDescription - 크기(cm)를 자연어 설명으로 변환 (구간 상한 포함)
func SizeDescription(sizeCm int, composition Composition) string {
	switch {
	case sizeCm <= 30:
		if composition == CompositionNone {
			return "a small, dainty arrangement (approx 25cm in diameter), acting as a delicate centerpiece, placed gracefully on a surface, in scale with small items like keys or a cup"
		}
		return "small and dainty (approx 25cm), held delicately with one or two hands, looking compact, precious, and easily portable"
	case sizeCm <= 45:
		return "medium-sized, a balanced and standard celebratory floral arrangement"
	case sizeCm <= 60:
		return "large, luxurious and voluminous floral statement, capturing attention"
	default:
		return "spectacular giant bouquet, massive in scale, nearly covering the surface it is on or the person holding it"
	}
}

// giftAction - 선물 형태별 동작 묘사
func giftAction(giftType GiftType) string {
	if giftType == GiftBouquet {
		return "holding the exact bouquet from reference"
	}
	return fmt.Sprintf("posing with the exact flowers in a %s", giftType)
}

// ComposePrompts - 요청 1건을 프롬프트 4개로 변환 (순수 함수)
// composition == none 이면 정물 4컷, 그 외에는 인물 4컷
func ComposePrompts(req GenerationRequest) PromptPlan {
	sizePart := fmt.Sprintf("SIZE ACCURACY: The bouquet size must be %s. "+
		"Maintain realistic proportions relative to the surrounding environment and objects.",
		SizeDescription(req.SizeCm, req.Composition))

	artistic := ""
	if req.ArtisticMode {
		artistic = artisticInstruction
	}

	scene := Scenes.Lookup(req.Scene).Description

	if req.Composition == CompositionNone {
		base := fmt.Sprintf("%s %s STILL LIFE COMMERCIAL PHOTOGRAPHY. "+
			"The exact flowers from the reference are placed elegantly on the table/surface of %s. "+
			"%s Beautiful camera angle, perfect lighting, cinematic depth of field. "+
			"High-end aesthetic, sharp focus on floral textures. No people in frame.",
			primaryInstruction, artistic, scene, sizePart)

		return PromptPlan{
			base + " Elegant top-down flat-lay style.",
			base + " 45-degree professional product shot with soft bokeh background.",
			base + " Close-up macro shot showing dew on petals and exquisite wrapping detail.",
			base + " Cinematic wide shot showing the luxurious environment of " + scene + ".",
		}
	}

	subject := Compositions.Lookup(string(req.Composition)).Description
	outfit := Styles.Lookup(req.Style).Description
	gift := giftAction(req.GiftType)
	lead := primaryInstruction + " " + artistic

	return PromptPlan{
		fmt.Sprintf("%s Professional lifestyle portrait of %s. Scene: %s. Outfit: %s. Activity: %s. %s "+
			"Cinematic lighting, extremely detailed skin and floral textures.",
			lead, subject, scene, outfit, gift, sizePart),
		fmt.Sprintf("%s Aesthetic Xiaohongshu style photo. %s at %s. Wearing %s. %s. %s Soft natural light, 4k.",
			lead, subject, scene, outfit, gift, sizePart),
		fmt.Sprintf("%s Close-up portrait. %s posing with %s. Background: %s. %s Realistic textures, joyful expression.",
			lead, subject, gift, scene, sizePart),
		fmt.Sprintf("%s Candid celebration. %s in %s, %s. Outfit: %s. %s Vibrant colors, high fashion atmosphere.",
			lead, subject, scene, gift, outfit, sizePart),
	}
}

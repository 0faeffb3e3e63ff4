package floral

import (
	"context"
	"time"

	"floral-studio-server/modules/common/gemini"
	"floral-studio-server/modules/common/logger"
)

// ProgressFunc 는 이미지가 하나 만들어질 때마다 호출됩니다 (index 는 0부터).
type ProgressFunc func(index int, img GeneratedImage)

// Orchestrator - 프롬프트를 순서대로 하나씩 실행 (동시 호출 없음)
type Orchestrator struct {
	Policy         gemini.RetryPolicy
	InterCallDelay time.Duration
	Sleep          gemini.Sleeper
}

// NewOrchestrator - 기본 정책 (5회 시도, 3초 백오프, 2초 간격)
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Policy:         gemini.DefaultRetryPolicy(),
		InterCallDelay: 2 * time.Second,
		Sleep:          gemini.SleepContext,
	}
}

// Run executes plan against gen strictly in order.
// A prompt that ultimately fails ends the run: the error is returned only when no image
// exists yet, otherwise the images gathered so far are returned with a nil error.
func (o *Orchestrator) Run(ctx context.Context, gen gemini.ImageGenerator, ref ReferenceImage, plan PromptPlan) (GenerationResult, error) {
	return o.RunWithProgress(ctx, gen, ref, plan, nil)
}

// RunWithProgress - Run 과 같지만 이미지가 나올 때마다 onImage 호출
func (o *Orchestrator) RunWithProgress(ctx context.Context, gen gemini.ImageGenerator, ref ReferenceImage, plan PromptPlan, onImage ProgressFunc) (GenerationResult, error) {
	sleep := o.Sleep
	if sleep == nil {
		sleep = gemini.SleepContext
	}

	result := GenerationResult{
		Images:    make([]GeneratedImage, 0, len(plan)),
		Requested: len(plan),
	}

	for i, prompt := range plan {
		img, err := gemini.GenerateWithRetry(ctx, gen, o.Policy, sleep, ref, prompt)
		if err != nil {
			if len(result.Images) > 0 {
				logger.L().Warn().
					Err(err).
					Int("prompt", i+1).
					Int("generated", len(result.Images)).
					Int("requested", result.Requested).
					Msg("⚠️  [Floral] Stopping early, returning partial results")
				return result, nil
			}
			return result, err
		}

		result.Images = append(result.Images, *img)
		logger.L().Info().
			Int("prompt", i+1).
			Int("requested", result.Requested).
			Msg("✅ [Floral] Image generated")
		if onImage != nil {
			onImage(i, *img)
		}

		if len(result.Images) < len(plan) {
			if err := sleep(ctx, o.InterCallDelay); err != nil {
				logger.L().Warn().Err(err).Msg("⚠️  [Floral] Interrupted between calls")
				return result, nil
			}
		}
	}

	return result, nil
}

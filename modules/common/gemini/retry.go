package gemini

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"floral-studio-server/modules/common/logger"
)

// RetryPolicy - 프롬프트 1개당 재시도 정책
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// MaxAttemptsLimit - 프롬프트 1개당 허용되는 최대 시도 횟수
const MaxAttemptsLimit = 10

// maxBackoffShift - 2^attempt 지수 상한 (오버플로 방지)
const maxBackoffShift = 16

// DefaultRetryPolicy - 최대 5회 시도, 3초 기준 지수 백오프
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 3 * time.Second}
}

// Backoff returns BaseDelay * 2^attempt, where attempt is the zero-based index of the failed try.
// The exponent is capped so that large attempt numbers never overflow into a negative delay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Sleeper 는 대기 지점을 추상화합니다. ctx 가 취소되면 에러를 돌려줘야 합니다.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext - ctx 를 존중하는 기본 Sleeper
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateWithRetry - 429/500 에러 시 지수 백오프로 재시도하는 헬퍼 함수
// 그 외 에러는 즉시 반환 (재시도 안 함)
func GenerateWithRetry(
	ctx context.Context,
	gen ImageGenerator,
	policy RetryPolicy,
	sleep Sleeper,
	ref Image,
	prompt string,
) (*Image, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.MaxAttempts > MaxAttemptsLimit {
		policy.MaxAttempts = MaxAttemptsLimit
	}
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		img, err := gen.GenerateImage(ctx, ref, prompt)
		if err == nil {
			if attempt > 0 {
				logger.L().Info().
					Int("attempt", attempt+1).
					Int("max_attempts", policy.MaxAttempts).
					Msg("✅ [Gemini Retry] Success after retry")
			}
			return img, nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.L().Warn().Err(err).Int("attempt", attempt+1).Msg("❌ [Gemini Retry] Non-retryable error")
			return nil, err
		}

		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := policy.Backoff(attempt)
		logger.L().Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", policy.MaxAttempts).
			Dur("backoff", delay).
			Msg("⚠️  [Gemini Retry] Rate limited or overloaded, backing off")

		if err := sleep(ctx, delay); err != nil {
			return nil, errors.Wrap(err, "gemini: retry wait interrupted")
		}
	}

	return nil, errors.Wrapf(lastErr, "gemini: exhausted %d attempts", policy.MaxAttempts)
}

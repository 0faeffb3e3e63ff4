package floral

import (
	"context"

	"github.com/pkg/errors"

	"floral-studio-server/modules/common/gemini"
	"floral-studio-server/modules/common/logger"
)

var (
	// ErrQuotaExceeded - rate limit / quota 소진으로 한 장도 만들지 못함
	ErrQuotaExceeded = errors.New("floral: quota exceeded")
	// ErrGenerationFailed - 그 외 이유로 한 장도 만들지 못함
	ErrGenerationFailed = errors.New("floral: generation failed")
)

// GenerationError 는 분류(kind)와 원인(cause)을 함께 담습니다.
// errors.Is 로 kind 와 cause 모두 확인 가능
type GenerationError struct {
	Kind  error
	Cause error
}

func (e *GenerationError) Error() string {
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// classify - 최종 에러를 ErrQuotaExceeded / ErrGenerationFailed 로 분류
func classify(err error) error {
	kind := ErrGenerationFailed
	if gemini.IsQuotaExceeded(err) {
		kind = ErrQuotaExceeded
	}
	return &GenerationError{Kind: kind, Cause: err}
}

// Service - 클라이언트 획득 → 프롬프트 생성 → 순차 실행 → 에러 분류
type Service struct {
	clients      gemini.ClientFactory
	orchestrator *Orchestrator
}

// NewService - 요청마다 clients 로 새 Gemini 클라이언트를 만듦
func NewService(clients gemini.ClientFactory, orchestrator *Orchestrator) *Service {
	if orchestrator == nil {
		orchestrator = NewOrchestrator()
	}
	return &Service{clients: clients, orchestrator: orchestrator}
}

// Generate - 요청 1건 처리
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	return s.GenerateWithProgress(ctx, req, nil)
}

// GenerateWithProgress - Generate 와 같지만 이미지마다 onImage 호출
func (s *Service) GenerateWithProgress(ctx context.Context, req GenerationRequest, onImage ProgressFunc) (GenerationResult, error) {
	req.SizeCm = ClampSize(req.SizeCm)
	plan := ComposePrompts(req)

	logger.L().Info().
		Str("gift_type", string(req.GiftType)).
		Int("size_cm", req.SizeCm).
		Str("scene", req.Scene).
		Str("style", req.Style).
		Str("composition", string(req.Composition)).
		Bool("artistic", req.ArtisticMode).
		Int("prompts", len(plan)).
		Msg("🎨 [Floral] Starting generation")

	gen, err := s.clients(ctx)
	if err != nil {
		return GenerationResult{Requested: len(plan)}, &GenerationError{Kind: ErrGenerationFailed, Cause: err}
	}

	result, err := s.orchestrator.RunWithProgress(ctx, gen, req.Reference, plan, onImage)
	if err != nil {
		logger.L().Error().Err(err).Msg("❌ [Floral] Generation failed")
		return result, classify(err)
	}

	logger.L().Info().
		Int("generated", len(result.Images)).
		Int("requested", result.Requested).
		Bool("partial", result.Partial()).
		Msg("✅ [Floral] Generation finished")
	return result, nil
}

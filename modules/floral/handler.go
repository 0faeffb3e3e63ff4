package floral

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/common/middleware"
	"floral-studio-server/modules/common/session"
	"floral-studio-server/modules/common/utils"
)

// 화면에 노출되는 메시지
const (
	msgPartial        = "由于请求配额限制，仅为您生成了部分图片。您可以稍后再试以获得完整结果。"
	msgQuotaExceeded  = "AI 摄影师目前太忙了（配额已满），请等待 1-2 分钟后再试。"
	msgGenerationFail = "生成失败，请检查网络或更换照片重试。"
	msgBusy           = "当前已有生成任务进行中，请稍候。"
	msgLimitReached   = "今日免费生成次数已用完，请明天再来。"
)

// ErrorCode - 응답 에러 코드
type ErrorCode string

const (
	CodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	CodeRequestInProgress ErrorCode = "REQUEST_IN_PROGRESS"
	CodeGuestLimitReached ErrorCode = "GUEST_LIMIT_REACHED"
	CodeQuotaExceeded     ErrorCode = "QUOTA_EXCEEDED"
	CodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
)

// Params - 생성 파라미터 (prompts / generate 공통)
type Params struct {
	GiftType     string `json:"giftType" validate:"omitempty,oneof=bouquet hug_bucket gift_box"`
	Size         int    `json:"size" validate:"gte=0"`
	Scene        string `json:"scene" validate:"max=64"`
	Style        string `json:"style" validate:"max=64"`
	Composition  string `json:"composition" validate:"omitempty,oneof=single double_bff couple multiple_bff none"`
	Model        string `json:"model" validate:"omitempty,oneof=gemini-2.5-flash-image gemini-2.5-flash-image-artistic"`
	ArtisticMode bool   `json:"artisticMode"`
}

// GenerateRequest - POST /api/floral/generate 요청
type GenerateRequest struct {
	Params
	Image     string `json:"image" validate:"required"`
	MimeType  string `json:"mimeType" validate:"max=64"`
	SessionID string `json:"sessionId" validate:"max=128"`
}

// ToRequest - 기본값 적용 후 도메인 요청으로 변환
func (p Params) ToRequest(ref ReferenceImage) GenerationRequest {
	giftType := GiftType(p.GiftType)
	if giftType == "" {
		giftType = GiftBouquet
	}
	composition := Composition(p.Composition)
	if composition == "" {
		composition = CompositionSingle
	}
	size := p.Size
	if size == 0 {
		size = DefaultSizeCm
	}
	return GenerationRequest{
		Reference:    ref,
		GiftType:     giftType,
		SizeCm:       ClampSize(size),
		Scene:        p.Scene,
		Style:        p.Style,
		Composition:  composition,
		ArtisticMode: p.ArtisticMode || IsArtisticModel(p.Model),
	}
}

// ImagePayload - 결과 이미지 1장
type ImagePayload struct {
	MimeType string `json:"mimeType"`
	DataURL  string `json:"dataUrl"`
	URL      string `json:"url,omitempty"`
}

// GenerateResponse - 생성 응답
type GenerateResponse struct {
	Success      bool           `json:"success"`
	RequestID    string         `json:"requestId,omitempty"`
	Images       []ImagePayload `json:"images"`
	Requested    int            `json:"requested"`
	Partial      bool           `json:"partial"`
	Warning      string         `json:"warning,omitempty"`
	ErrorCode    ErrorCode      `json:"errorCode,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// PromptsResponse - POST /api/floral/prompts 응답
type PromptsResponse struct {
	Success      bool      `json:"success"`
	Prompts      []string  `json:"prompts,omitempty"`
	ErrorCode    ErrorCode `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Recorder 는 생성 건수를 집계합니다 (서버 메트릭).
type Recorder interface {
	GenerationStarted()
	GenerationFinished(generated, requested int, err error)
}

type apiError struct {
	status  int
	code    ErrorCode
	message string
}

// Deps - Handler 구성 요소 (Archiver, Metrics 는 선택)
type Deps struct {
	Service        *Service
	Guard          session.Guard
	Usage          session.Usage
	Archiver       Archiver
	Metrics        Recorder
	MaxUploadBytes int64
}

var validate = validator.New()

// Validate - 태그 기반 파라미터 검증
func (p Params) Validate() error {
	return validate.Struct(p)
}

// Handler - floral HTTP/WebSocket 엔드포인트
type Handler struct {
	Deps
}

// NewHandler - Guard/Usage 가 없으면 메모리 구현 사용
func NewHandler(d Deps) *Handler {
	if d.Guard == nil {
		d.Guard = session.NewMemoryGuard()
	}
	if d.Usage == nil {
		d.Usage = session.NewMemoryUsage(0)
	}
	return &Handler{Deps: d}
}

// HandleOptions - GET /api/floral/options
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BuildOptions())
}

// HandlePrompts - POST /api/floral/prompts
// Gemini 호출 없이 프롬프트 4개만 반환
func (h *Handler) HandlePrompts(w http.ResponseWriter, r *http.Request) {
	var params Params
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, PromptsResponse{ErrorCode: CodeInvalidRequest, ErrorMessage: "Invalid request format"})
		return
	}
	if err := params.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, PromptsResponse{ErrorCode: CodeInvalidRequest, ErrorMessage: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, PromptsResponse{Success: true, Prompts: ComposePrompts(params.ToRequest(ReferenceImage{}))})
}

// HandleGenerate - POST /api/floral/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes())).Decode(&body); err != nil {
		logger.L().Warn().Err(err).Msg("❌ [Floral] Invalid request")
		writeJSON(w, http.StatusBadRequest, GenerateResponse{
			Images:       []ImagePayload{},
			ErrorCode:    CodeInvalidRequest,
			ErrorMessage: "Invalid request format",
		})
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	resp, apiErr := h.execute(r.Context(), requestID, body, nil)
	if apiErr != nil {
		writeJSON(w, apiErr.status, GenerateResponse{
			RequestID:    requestID,
			Images:       []ImagePayload{},
			Requested:    PlanSize,
			ErrorCode:    apiErr.code,
			ErrorMessage: apiErr.message,
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// preparedRequest - 검증과 세션 잠금을 통과한 요청. release 는 반드시 호출
type preparedRequest struct {
	req       GenerationRequest
	sessionID string
	release   func()
}

// execute - prepare → run
func (h *Handler) execute(ctx context.Context, requestID string, body GenerateRequest, onImage ProgressFunc) (*GenerateResponse, *apiError) {
	p, apiErr := h.prepare(ctx, requestID, body)
	if apiErr != nil {
		return nil, apiErr
	}
	defer p.release()
	return h.run(ctx, requestID, p, onImage)
}

// prepare - 검증 → 이미지 디코드 → 사용량 확인 → 세션 잠금
func (h *Handler) prepare(ctx context.Context, requestID string, body GenerateRequest) (*preparedRequest, *apiError) {
	if err := validate.Struct(body); err != nil {
		return nil, &apiError{http.StatusBadRequest, CodeInvalidRequest, err.Error()}
	}

	data, declared, err := utils.DecodeDataURL(body.Image)
	if err != nil {
		return nil, &apiError{http.StatusBadRequest, CodeInvalidRequest, err.Error()}
	}
	if body.MimeType != "" {
		declared = body.MimeType
	}
	mimeType, err := utils.ValidateImage(data, declared, h.MaxUploadBytes)
	if err != nil {
		return nil, &apiError{http.StatusBadRequest, CodeInvalidRequest, err.Error()}
	}

	sessionID := strings.TrimSpace(body.SessionID)
	if err := h.Usage.Check(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			return nil, &apiError{http.StatusTooManyRequests, CodeGuestLimitReached, msgLimitReached}
		}
		// 사용량 저장소 장애는 생성 자체를 막지 않음
		logger.L().Warn().Err(err).Msg("⚠️  [Floral] Usage check failed")
	}

	release, err := h.Guard.Acquire(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			return nil, &apiError{http.StatusConflict, CodeRequestInProgress, msgBusy}
		}
		logger.L().Error().Err(err).Msg("❌ [Floral] Session guard unavailable")
		return nil, &apiError{http.StatusBadGateway, CodeGenerationFailed, msgGenerationFail}
	}

	req := body.Params.ToRequest(ReferenceImage{Data: data, MimeType: mimeType})
	logger.L().Info().
		Str("request_id", requestID).
		Str("session", sessionID).
		Int("ref_bytes", len(data)).
		Str("ref_mime", mimeType).
		Msg("🌸 [Floral] Processing request")
	return &preparedRequest{req: req, sessionID: sessionID, release: release}, nil
}

// run - 생성 → 보관 → 에러 매핑 → 사용량 증가 → 응답 구성
func (h *Handler) run(ctx context.Context, requestID string, p *preparedRequest, onImage ProgressFunc) (*GenerateResponse, *apiError) {
	req, sessionID := p.req, p.sessionID

	if h.Metrics != nil {
		h.Metrics.GenerationStarted()
	}
	result, genErr := h.Service.GenerateWithProgress(ctx, req, onImage)
	if h.Metrics != nil {
		h.Metrics.GenerationFinished(len(result.Images), result.Requested, genErr)
	}

	var urls []string
	if h.Archiver != nil {
		urls = h.Archiver.Archive(ctx, ArchiveMeta{RequestID: requestID, SessionID: sessionID}, req, result, genErr)
	}

	if genErr != nil {
		if errors.Is(genErr, ErrQuotaExceeded) {
			return nil, &apiError{http.StatusTooManyRequests, CodeQuotaExceeded, msgQuotaExceeded}
		}
		return nil, &apiError{http.StatusBadGateway, CodeGenerationFailed, msgGenerationFail}
	}

	if err := h.Usage.Increment(ctx, sessionID); err != nil {
		logger.L().Warn().Err(err).Msg("⚠️  [Floral] Usage increment failed")
	}

	resp := &GenerateResponse{
		Success:   true,
		RequestID: requestID,
		Images:    make([]ImagePayload, 0, len(result.Images)),
		Requested: result.Requested,
		Partial:   result.Partial(),
	}
	for i, img := range result.Images {
		payload := ImagePayload{MimeType: img.MimeType, DataURL: utils.EncodeDataURL(img.Data, img.MimeType)}
		if i < len(urls) {
			payload.URL = urls[i]
		}
		resp.Images = append(resp.Images, payload)
	}
	if resp.Partial {
		resp.Warning = msgPartial
	}
	return resp, nil
}

// maxBodyBytes - base64 오버헤드 포함 요청 본문 한도
func (h *Handler) maxBodyBytes() int64 {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	return limit*4/3 + 64<<10
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn().Err(err).Msg("⚠️  Failed to write response")
	}
}

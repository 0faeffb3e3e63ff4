package gemini

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// ErrNoImageData - 응답은 성공했지만 이미지 파트가 없음
var ErrNoImageData = errors.New("gemini: no image data in response")

// IsTransient - 429(rate limit) / 500(overload) 신호가 담긴 에러만 재시도 대상
// 에러 본문에 "429" 또는 "500" 이 포함되어도 같은 신호로 취급
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := apiErrorCode(err); ok {
		if code == http.StatusTooManyRequests || code == http.StatusInternalServerError {
			return true
		}
	}
	text := err.Error()
	return strings.Contains(text, "429") || strings.Contains(text, "500")
}

// IsQuotaExceeded - rate limit / quota 소진 신호인지 확인
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := apiErrorCode(err); ok && code == http.StatusTooManyRequests {
		return true
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "429") ||
		strings.Contains(text, "resource_exhausted") ||
		strings.Contains(text, "rate limit") ||
		strings.Contains(text, "quota")
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
